package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"support-desk/internal/domain"
	"support-desk/internal/email"
	"support-desk/internal/storage"
)

type mockUserRepo struct {
	usersByID    map[string]domain.User
	usersByEmail map[string]string
	createErr    error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user.ID
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	id, ok := m.usersByEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = passwordHash
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, user domain.User) (domain.User, error) {
	if _, ok := m.usersByID[user.ID]; !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	m.usersByID[user.ID] = user
	return user, nil
}

type mockTokenRepo struct {
	mu     sync.Mutex
	byUser map[string]domain.OneTimeToken
}

func newMockTokenRepo() *mockTokenRepo {
	return &mockTokenRepo{byUser: make(map[string]domain.OneTimeToken)}
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
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	var n int64
	for userID, t := range m.byUser {
		if t.ExpiresAt.Before(now) {
			delete(m.byUser, userID)
			n++
		}
	}
	return n, nil
}

func (m *mockTokenRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byUser)
}

type mockBookingRepo struct {
	bookings  []domain.Booking
	nextID    int64
	createErr []error
	creates   int
	overlapQs int
}

func (m *mockBookingRepo) Create(_ context.Context, b domain.Booking) (domain.Booking, error) {
	m.creates++
	if len(m.createErr) > 0 {
		err := m.createErr[0]
		m.createErr = m.createErr[1:]
		if err != nil {
			return domain.Booking{}, err
		}
	}
	m.nextID++
	b.ID = m.nextID
	b.CreatedAt = time.Now().UTC()
	m.bookings = append(m.bookings, b)
	return b, nil
}

func (m *mockBookingRepo) FindOverlapping(_ context.Context, srID int64, start, end time.Time) ([]domain.Booking, error) {
	m.overlapQs++
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
	var out []domain.Booking
	for _, b := range m.bookings {
		if b.ServiceRequestID == srID && !b.StartTime.Before(from) && b.StartTime.Before(to) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (m *mockBookingRepo) ListByServiceRequest(_ context.Context, srID int64) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range m.bookings {
		if b.ServiceRequestID == srID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBookingRepo) ListByUser(_ context.Context, userID string) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBookingRepo) ListAll(_ context.Context) ([]domain.Booking, error) {
	return append([]domain.Booking(nil), m.bookings...), nil
}

type mockServiceRequestRepo struct {
	requests map[int64]domain.ServiceRequest
	types    map[string]domain.RequestType
	nextID   int64
}

func newMockServiceRequestRepo() *mockServiceRequestRepo {
	return &mockServiceRequestRepo{
		requests: make(map[int64]domain.ServiceRequest),
		types: map[string]domain.RequestType{
			"billing":           {ID: 1, Type: "billing"},
			"technical_support": {ID: 2, Type: "technical_support"},
		},
	}
}

func (m *mockServiceRequestRepo) Create(_ context.Context, req domain.ServiceRequest) (domain.ServiceRequest, error) {
	m.nextID++
	req.ID = m.nextID
	req.CreatedAt = time.Now().UTC()
	req.UpdatedAt = req.CreatedAt
	m.requests[req.ID] = req
	return req, nil
}

func (m *mockServiceRequestRepo) GetByID(_ context.Context, id int64) (domain.ServiceRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return domain.ServiceRequest{}, pgx.ErrNoRows
	}
	return req, nil
}

func (m *mockServiceRequestRepo) ListByUser(_ context.Context, userID string) ([]domain.ServiceRequest, error) {
	var out []domain.ServiceRequest
	for _, r := range m.requests {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockServiceRequestRepo) ListAll(_ context.Context) ([]domain.ServiceRequest, error) {
	var out []domain.ServiceRequest
	for _, r := range m.requests {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockServiceRequestRepo) UpdateStatus(_ context.Context, id int64, status domain.ServiceRequestStatus) (domain.ServiceRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return domain.ServiceRequest{}, pgx.ErrNoRows
	}
	req.Status = status
	m.requests[id] = req
	return req, nil
}

func (m *mockServiceRequestRepo) GetRequestType(_ context.Context, name string) (domain.RequestType, error) {
	rt, ok := m.types[strings.ToLower(name)]
	if !ok {
		return domain.RequestType{}, pgx.ErrNoRows
	}
	return rt, nil
}

func (m *mockServiceRequestRepo) ListRequestTypes(_ context.Context) ([]domain.RequestType, error) {
	out := make([]domain.RequestType, 0, len(m.types))
	for _, rt := range m.types {
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type mockTicketLogRepo struct {
	notes []domain.AdditionalInformation
	spent []domain.SpentTime
}

func (m *mockTicketLogRepo) AddNote(_ context.Context, note domain.AdditionalInformation) (domain.AdditionalInformation, error) {
	note.ID = int64(len(m.notes) + 1)
	note.CreatedAt = time.Now().UTC()
	m.notes = append(m.notes, note)
	return note, nil
}

func (m *mockTicketLogRepo) ListNotes(_ context.Context, srID int64) ([]domain.AdditionalInformation, error) {
	var out []domain.AdditionalInformation
	for _, n := range m.notes {
		if n.ServiceRequestID == srID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockTicketLogRepo) AddSpentTime(_ context.Context, entry domain.SpentTime) (domain.SpentTime, error) {
	entry.ID = int64(len(m.spent) + 1)
	entry.CreatedAt = time.Now().UTC()
	m.spent = append(m.spent, entry)
	return entry, nil
}

func (m *mockTicketLogRepo) ListSpentTime(_ context.Context, srID int64) ([]domain.SpentTime, error) {
	var out []domain.SpentTime
	for _, e := range m.spent {
		if e.ServiceRequestID == srID {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockEmailSender struct {
	lastTo      string
	lastCode    string
	lastURL     string
	lastExpires time.Time
	notices     []email.ServiceRequestNotice
	err         error
}

func (m *mockEmailSender) SendLoginOTP(_ context.Context, toEmail, _, code string, expiresAt time.Time) error {
	m.lastTo = toEmail
	m.lastCode = code
	m.lastExpires = expiresAt
	return m.err
}

func (m *mockEmailSender) SendPasswordReset(_ context.Context, toEmail, _, resetURL string, expiresAt time.Time) error {
	m.lastTo = toEmail
	m.lastURL = resetURL
	m.lastExpires = expiresAt
	return m.err
}

func (m *mockEmailSender) SendServiceRequestNotice(_ context.Context, toEmail string, notice email.ServiceRequestNotice) error {
	m.lastTo = toEmail
	m.notices = append(m.notices, notice)
	return m.err
}

type mockUploader struct {
	uploads []string
	err     error
}

func (m *mockUploader) Upload(_ context.Context, folder string, file storage.File) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	url := "https://files.example.com/" + folder + "/" + file.Name
	m.uploads = append(m.uploads, url)
	return url, nil
}
