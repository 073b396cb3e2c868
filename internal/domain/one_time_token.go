package domain

import "time"

// TokenPurpose distingue el desafío pendiente de un usuario.
type TokenPurpose string

const (
	PurposeLoginOTP      TokenPurpose = "login_otp"
	PurposePasswordReset TokenPurpose = "password_reset"
)

// OneTimeToken es el único desafío vivo de un usuario (OTP de login o hash de reset).
// Emitir uno nuevo reemplaza al anterior.
type OneTimeToken struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	Purpose   TokenPurpose `json:"purpose"`
	Token     string       `json:"-"`
	ExpiresAt time.Time    `json:"expiresAt"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Expired compara contra now; un token que vence exactamente ahora sigue vigente.
func (t OneTimeToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
