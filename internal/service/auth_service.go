package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"support-desk/internal/domain"
	"support-desk/internal/email"
	"support-desk/internal/repository"
)

const (
	otpTTL        = 10 * time.Minute
	resetTokenTTL = 10 * time.Minute
)

// AuthService orquesta el login con OTP y el ciclo de reseteo de contraseña.
// Cada usuario tiene a lo sumo un token de un solo uso vivo.
type AuthService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	tokens      repository.TokenRepository
	emailSender email.Sender
	otpLimiter  OTPRateLimiter
	metrics     *Metrics
	bcryptCost  int
	clientURL   string
	now         func() time.Time
}

type AuthOptions struct {
	BcryptCost int
	ClientURL  string
	OTPLimiter OTPRateLimiter
	Metrics    *Metrics
}

func NewAuthService(logger *zap.Logger, users repository.UserRepository, tokens repository.TokenRepository, emailSender email.Sender, opts AuthOptions) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.OTPLimiter == nil {
		opts.OTPLimiter = NewOTPRateLimiter(otpTTL, 5)
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	if opts.BcryptCost < bcrypt.MinCost || opts.BcryptCost > bcrypt.MaxCost {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		logger:      logger,
		users:       users,
		tokens:      tokens,
		emailSender: emailSender,
		otpLimiter:  opts.OTPLimiter,
		metrics:     opts.Metrics,
		bcryptCost:  opts.BcryptCost,
		clientURL:   strings.TrimRight(opts.ClientURL, "/"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type SignupInput struct {
	Name        string
	Email       string
	Password    string
	Phone       string
	Address     string
	CompanyName string
	Designation string
}

func (s *AuthService) Signup(ctx context.Context, input SignupInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("auth service not configured")
	}

	emailAddr := normalizeEmail(input.Email)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}
	if input.Password == "" {
		return domain.User{}, ErrInvalidPassword
	}

	_, err := s.users.GetByEmail(ctx, emailAddr)
	if err == nil {
		return domain.User{}, ErrEmailTaken
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return domain.User{}, err
	}

	now := s.now()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Name:         strings.TrimSpace(input.Name),
		Phone:        strings.TrimSpace(input.Phone),
		Address:      strings.TrimSpace(input.Address),
		CompanyName:  strings.TrimSpace(input.CompanyName),
		Designation:  strings.TrimSpace(input.Designation),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// Una violación de unicidad por carrera llega tal cual y se responde 409.
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// RequestLoginOTP valida la contraseña y envía un código nuevo, reemplazando el anterior.
func (s *AuthService) RequestLoginOTP(ctx context.Context, emailAddr, password string) (time.Time, error) {
	if s.users == nil || s.tokens == nil {
		return time.Time{}, errors.New("auth service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return time.Time{}, ErrInvalidEmail
	}
	if !s.otpLimiter.Allow(ctx, "login:"+emailAddr) {
		return time.Time{}, ErrRateLimited
	}

	user, err := s.lookupByEmail(ctx, emailAddr)
	if err != nil {
		return time.Time{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return time.Time{}, ErrInvalidPassword
	}

	code, err := generateOTP()
	if err != nil {
		return time.Time{}, err
	}
	now := s.now()
	expiresAt := now.Add(otpTTL)
	token := domain.OneTimeToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Purpose:   domain.PurposeLoginOTP,
		Token:     code,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}
	if err := s.tokens.Upsert(ctx, token); err != nil {
		return time.Time{}, err
	}
	s.metrics.OTPIssued.Inc()

	if err := s.send(func() error {
		return s.emailSender.SendLoginOTP(ctx, user.Email, user.Name, code, expiresAt)
	}); err != nil {
		s.metrics.emailFailed("login_otp")
		s.logger.Warn("send login otp failed", zap.Error(err), zap.String("email", emailAddr))
		return time.Time{}, ErrEmailSendFailure
	}
	return expiresAt, nil
}

// VerifyLoginOTP consume el código. Un segundo intento con el mismo código falla.
func (s *AuthService) VerifyLoginOTP(ctx context.Context, emailAddr, code string) (domain.User, error) {
	if s.users == nil || s.tokens == nil {
		return domain.User{}, errors.New("auth service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}
	user, err := s.lookupByEmail(ctx, emailAddr)
	if err != nil {
		return domain.User{}, err
	}

	token, err := s.tokens.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrOTPNotRequested
		}
		return domain.User{}, err
	}
	if token.Purpose != domain.PurposeLoginOTP {
		return domain.User{}, ErrOTPNotRequested
	}
	if strings.TrimSpace(code) != token.Token {
		return domain.User{}, ErrOTPInvalid
	}
	if token.Expired(s.now()) {
		return domain.User{}, ErrOTPExpired
	}

	if err := s.tokens.DeleteByID(ctx, token.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// otra solicitud lo consumió primero
			return domain.User{}, ErrOTPNotRequested
		}
		return domain.User{}, err
	}
	s.metrics.OTPVerified.Inc()
	return user, nil
}

// ForgotPassword guarda el hash de un token aleatorio y envía el valor crudo por correo.
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string) error {
	if s.users == nil || s.tokens == nil {
		return errors.New("auth service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidEmail
	}
	if !s.otpLimiter.Allow(ctx, "reset:"+emailAddr) {
		return ErrRateLimited
	}

	user, err := s.lookupByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}

	raw, err := generateResetToken()
	if err != nil {
		return err
	}
	now := s.now()
	expiresAt := now.Add(resetTokenTTL)
	token := domain.OneTimeToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Purpose:   domain.PurposePasswordReset,
		Token:     hashResetToken(raw),
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}
	if err := s.tokens.Upsert(ctx, token); err != nil {
		return err
	}
	s.metrics.ResetIssued.Inc()

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.clientURL, raw)
	if err := s.send(func() error {
		return s.emailSender.SendPasswordReset(ctx, user.Email, user.Name, resetURL, expiresAt)
	}); err != nil {
		s.metrics.emailFailed("password_reset")
		s.logger.Warn("send password reset failed", zap.Error(err), zap.String("email", emailAddr))
		return ErrEmailSendFailure
	}
	return nil
}

// ResetPassword busca el token por su hash, no por usuario.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if s.users == nil || s.tokens == nil {
		return errors.New("auth service not configured")
	}

	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return ErrResetTokenInvalid
	}
	if newPassword == "" {
		return ErrInvalidPassword
	}

	token, err := s.tokens.GetByToken(ctx, domain.PurposePasswordReset, hashResetToken(rawToken))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrResetTokenInvalid
		}
		return err
	}
	if token.Expired(s.now()) {
		return ErrResetTokenExpired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return err
	}
	// el borrado reclama el token: si otra solicitud ya lo consumió no se toca la contraseña
	if err := s.tokens.DeleteByID(ctx, token.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrResetTokenInvalid
		}
		return err
	}
	if err := s.users.UpdatePassword(ctx, token.UserID, string(hash)); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	s.metrics.ResetCompleted.Inc()
	return nil
}

func (s *AuthService) lookupByEmail(ctx context.Context, emailAddr string) (domain.User, error) {
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *AuthService) send(fn func() error) error {
	if s.emailSender == nil {
		return errors.New("email sender not configured")
	}
	return fn()
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
