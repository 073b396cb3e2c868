package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"support-desk/internal/domain"
	"support-desk/internal/email"
	"support-desk/internal/service"
	"support-desk/internal/storage"
)

const testPassword = "secret123"

type mockUserRepo struct {
	mu           sync.Mutex
	usersByID    map[string]domain.User
	usersByEmail map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user.ID
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	id, ok := m.usersByEmail[email]
	m.mu.Unlock()
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = passwordHash
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, user domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.usersByID[user.ID]; !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	m.usersByID[user.ID] = user
	return user, nil
}

func (m *mockUserRepo) delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := m.usersByID[id]
	delete(m.usersByID, id)
	delete(m.usersByEmail, user.Email)
}

type mockTokenRepo struct {
	mu     sync.Mutex
	byUser map[string]domain.OneTimeToken
}

func (m *mockTokenRepo) Upsert(_ context.Context, token domain.OneTimeToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byUser[token.UserID] = token
	return nil
}

func (m *mockTokenRepo) GetByUserID(_ context.Context, userID string) (domain.OneTimeToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byUser[userID]
	if !ok {
		return domain.OneTimeToken{}, pgx.ErrNoRows
	}
	return t, nil
}

func (m *mockTokenRepo) GetByToken(_ context.Context, purpose domain.TokenPurpose, token string) (domain.OneTimeToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.byUser {
		if t.Purpose == purpose && t.Token == token {
			return t, nil
		}
	}
	return domain.OneTimeToken{}, pgx.ErrNoRows
}

func (m *mockTokenRepo) DeleteByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for userID, t := range m.byUser {
		if t.ID == id {
			delete(m.byUser, userID)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *mockTokenRepo) DeleteExpired(_ context.Context) (int64, error) {
	return 0, nil
}

type mockBookingRepo struct {
	mu       sync.Mutex
	bookings []domain.Booking
}

func (m *mockBookingRepo) Create(_ context.Context, b domain.Booking) (domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = int64(len(m.bookings) + 1)
	b.CreatedAt = time.Now().UTC()
	m.bookings = append(m.bookings, b)
	return b, nil
}

func (m *mockBookingRepo) FindOverlapping(_ context.Context, srID int64, start, end time.Time) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Booking
	want := domain.Interval{Start: start, End: end}
	for _, b := range m.bookings {
		if b.ServiceRequestID == srID && want.Overlaps(domain.Interval{Start: b.StartTime, End: b.EndTime}) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBookingRepo) ListStartingBetween(_ context.Context, srID int64, from, to time.Time) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Booking
	for _, b := range m.bookings {
		if b.ServiceRequestID == srID && !b.StartTime.Before(from) && b.StartTime.Before(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBookingRepo) ListByServiceRequest(_ context.Context, srID int64) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Booking
	for _, b := range m.bookings {
		if b.ServiceRequestID == srID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBookingRepo) ListByUser(_ context.Context, userID string) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBookingRepo) ListAll(_ context.Context) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Booking(nil), m.bookings...), nil
}

type mockServiceRequestRepo struct {
	mu       sync.Mutex
	requests map[int64]domain.ServiceRequest
	nextID   int64
}

func (m *mockServiceRequestRepo) Create(_ context.Context, req domain.ServiceRequest) (domain.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	req.ID = m.nextID
	req.CreatedAt = time.Now().UTC()
	req.UpdatedAt = req.CreatedAt
	m.requests[req.ID] = req
	return req, nil
}

func (m *mockServiceRequestRepo) GetByID(_ context.Context, id int64) (domain.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return domain.ServiceRequest{}, pgx.ErrNoRows
	}
	return req, nil
}

func (m *mockServiceRequestRepo) ListByUser(_ context.Context, userID string) ([]domain.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ServiceRequest
	for _, r := range m.requests {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockServiceRequestRepo) ListAll(_ context.Context) ([]domain.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ServiceRequest
	for _, r := range m.requests {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockServiceRequestRepo) UpdateStatus(_ context.Context, id int64, status domain.ServiceRequestStatus) (domain.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return domain.ServiceRequest{}, pgx.ErrNoRows
	}
	req.Status = status
	m.requests[id] = req
	return req, nil
}

func (m *mockServiceRequestRepo) GetRequestType(_ context.Context, name string) (domain.RequestType, error) {
	switch strings.ToLower(name) {
	case "technical_support":
		return domain.RequestType{ID: 1, Type: "technical_support"}, nil
	case "billing":
		return domain.RequestType{ID: 2, Type: "billing"}, nil
	}
	return domain.RequestType{}, pgx.ErrNoRows
}

func (m *mockServiceRequestRepo) ListRequestTypes(_ context.Context) ([]domain.RequestType, error) {
	return []domain.RequestType{{ID: 1, Type: "technical_support"}, {ID: 2, Type: "billing"}}, nil
}

type mockTicketLogRepo struct {
	mu    sync.Mutex
	notes []domain.AdditionalInformation
	spent []domain.SpentTime
}

func (m *mockTicketLogRepo) AddNote(_ context.Context, note domain.AdditionalInformation) (domain.AdditionalInformation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	note.ID = int64(len(m.notes) + 1)
	m.notes = append(m.notes, note)
	return note, nil
}

func (m *mockTicketLogRepo) ListNotes(_ context.Context, srID int64) ([]domain.AdditionalInformation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AdditionalInformation
	for _, n := range m.notes {
		if n.ServiceRequestID == srID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockTicketLogRepo) AddSpentTime(_ context.Context, entry domain.SpentTime) (domain.SpentTime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = int64(len(m.spent) + 1)
	m.spent = append(m.spent, entry)
	return entry, nil
}

func (m *mockTicketLogRepo) ListSpentTime(_ context.Context, srID int64) ([]domain.SpentTime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.SpentTime
	for _, e := range m.spent {
		if e.ServiceRequestID == srID {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockEmailSender struct {
	mu       sync.Mutex
	lastTo   string
	lastCode string
	lastURL  string
	notices  int
	err      error
}

func (m *mockEmailSender) SendLoginOTP(_ context.Context, toEmail, _, code string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTo = toEmail
	m.lastCode = code
	return m.err
}

func (m *mockEmailSender) SendPasswordReset(_ context.Context, toEmail, _, resetURL string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTo = toEmail
	m.lastURL = resetURL
	return m.err
}

func (m *mockEmailSender) SendServiceRequestNotice(_ context.Context, toEmail string, _ email.ServiceRequestNotice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTo = toEmail
	m.notices++
	return m.err
}

type mockUploader struct{}

func (mockUploader) Upload(_ context.Context, folder string, file storage.File) (string, error) {
	return "https://files.example.com/" + folder + "/" + file.Name, nil
}

type testServer struct {
	router   *gin.Engine
	users    *mockUserRepo
	tokens   *mockTokenRepo
	bookings *mockBookingRepo
	requests *mockServiceRequestRepo
	logs     *mockTicketLogRepo
	sender   *mockEmailSender
	jwt      *service.JWTService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	ts := &testServer{
		users:    newMockUserRepo(),
		tokens:   &mockTokenRepo{byUser: make(map[string]domain.OneTimeToken)},
		bookings: &mockBookingRepo{},
		requests: &mockServiceRequestRepo{requests: make(map[int64]domain.ServiceRequest)},
		logs:     &mockTicketLogRepo{},
		sender:   &mockEmailSender{},
		jwt:      service.NewJWTService("access-secret", "refresh-secret", 15*time.Minute, time.Hour, service.NewMemoryRefreshTokenStore()),
	}

	authSvc := service.NewAuthService(logger, ts.users, ts.tokens, ts.sender, service.AuthOptions{
		BcryptCost: bcrypt.MinCost,
		ClientURL:  "http://client.example.com",
		OTPLimiter: service.NewOTPRateLimiter(time.Minute, 100),
	})
	userSvc := service.NewUserService(logger, ts.users, mockUploader{})
	availability := service.NewAvailabilityService(ts.bookings, time.UTC)
	bookingSvc := service.NewBookingService(logger, ts.bookings, ts.requests, nil, time.UTC)
	ticketSvc := service.NewTicketService(logger, ts.requests, mockUploader{}, ts.sender, "support@example.com", nil)
	logSvc := service.NewTicketLogService(ts.requests, ts.logs)

	ts.router = NewRouter(logger, RouterOptions{CORSOrigins: []string{"http://client.example.com"}}, ts.jwt, userSvc, Handlers{
		Auth:           NewAuthHandler(logger, authSvc, ts.jwt, userSvc, false),
		User:           NewUserHandler(logger, userSvc),
		Booking:        NewBookingHandler(logger, bookingSvc, availability),
		ServiceRequest: NewServiceRequestHandler(logger, ticketSvc),
		TicketLog:      NewTicketLogHandler(logSvc),
		Health:         NewHealthHandler(nil),
	})
	return ts
}

// seedUser crea un usuario con testPassword y devuelve su access token.
func (ts *testServer) seedUser(t *testing.T, email string, role domain.Role) (domain.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Name:         "Test " + string(role),
	}
	if err := ts.users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	pair, err := ts.jwt.GeneratePair(context.Background(), user)
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	return user, pair.AccessToken
}

func (ts *testServer) seedTicket(userID string) int64 {
	req, _ := ts.requests.Create(context.Background(), domain.ServiceRequest{
		Name:          "Ana",
		Email:         "ana@example.com",
		Subject:       "Broken printer",
		RequestTypeID: 1,
		Status:        domain.StatusPending,
		UserID:        userID,
	})
	return req.ID
}

func performRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	return performAuthRequest(r, method, path, body, "")
}

func performAuthRequest(r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func stringsReader(s string) *strings.Reader { return strings.NewReader(s) }
