package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"support-desk/internal/domain"
)

func newTestJWTService() *JWTService {
	return NewJWTService("access-secret", "refresh-secret", 15*time.Minute, 30*time.Minute, NewMemoryRefreshTokenStore())
}

func testUser() domain.User {
	return domain.User{ID: "u1", Email: "user@example.com", Name: "Ana", Role: domain.RoleAdmin}
}

func TestJWTService_GenerateParseAccess(t *testing.T) {
	svc := newTestJWTService()

	pair, err := svc.GeneratePair(context.Background(), testUser())
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected tokens")
	}

	claims, err := svc.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "user@example.com" || claims.Name != "Ana" || claims.Role != domain.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJWTService_DistinctSecrets(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GeneratePair(context.Background(), testUser())
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	if _, err := svc.ParseAccessToken(pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected refresh token rejected as access token, got %v", err)
	}
	if _, err := svc.ConsumeRefreshToken(context.Background(), pair.AccessToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected access token rejected in refresh flow, got %v", err)
	}
}

func TestJWTService_RefreshRotation(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GeneratePair(context.Background(), testUser())
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	claims, err := svc.ConsumeRefreshToken(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("consume refresh: %v", err)
	}
	if claims.UserID != "u1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := svc.ConsumeRefreshToken(context.Background(), pair.RefreshToken); err == nil {
		t.Fatalf("expected old refresh token to be revoked")
	}
}

func TestJWTService_RevokeRefresh(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GeneratePair(context.Background(), testUser())
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	if err := svc.RevokeRefresh(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("revoke refresh: %v", err)
	}
	if _, err := svc.ConsumeRefreshToken(context.Background(), pair.RefreshToken); err == nil {
		t.Fatalf("expected refresh to fail after revoke")
	}
}

func TestJWTService_RejectsEmptySecret(t *testing.T) {
	svc := NewJWTService("", "refresh", time.Minute, time.Hour, nil)

	if _, err := svc.GeneratePair(context.Background(), testUser()); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid on empty secret, got %v", err)
	}
}

func TestJWTService_Expired(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().UTC().Add(-time.Hour) }

	pair, err := svc.GeneratePair(context.Background(), testUser())
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	if _, err := svc.ParseAccessToken(pair.AccessToken); !errors.Is(err, ErrJWTExpired) {
		t.Fatalf("expected ErrJWTExpired, got %v", err)
	}
}

func TestJWTService_RejectsWrongIssuer(t *testing.T) {
	svc := newTestJWTService()
	now := time.Now().UTC()
	claims := Claims{
		UserID:    "u1",
		Email:     "user@example.com",
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "other-issuer",
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("access-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := svc.ParseAccessToken(signed); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for wrong issuer, got %v", err)
	}
}

func TestJWTService_RejectsTamperedSignature(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GeneratePair(context.Background(), testUser())
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	other := NewJWTService("another-secret", "refresh-secret", time.Minute, time.Hour, nil)
	if _, err := other.ParseAccessToken(pair.AccessToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for foreign signature, got %v", err)
	}
}

func TestJWTService_RefreshOwnerMismatch(t *testing.T) {
	store := NewMemoryRefreshTokenStore()
	svc := NewJWTService("access-secret", "refresh-secret", 15*time.Minute, 30*time.Minute, store)
	ctx := context.Background()

	pair, err := svc.GeneratePair(ctx, testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := svc.parseRefresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	// el jti quedó asociado a otro usuario
	if err := store.Save(ctx, claims.ID, "someone-else", time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := svc.ConsumeRefreshToken(ctx, pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid on owner mismatch, got %v", err)
	}
}
