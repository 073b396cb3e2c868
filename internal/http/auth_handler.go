package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"support-desk/internal/domain"
	"support-desk/internal/service"
)

const refreshCookieName = "refreshToken"

// AuthHandler expone signup, login con OTP, reseteo de contraseña y rotación de tokens.
type AuthHandler struct {
	logger       *zap.Logger
	authServ     *service.AuthService
	jwtServ      *service.JWTService
	users        UserResolver
	secureCookie bool
}

func NewAuthHandler(logger *zap.Logger, authServ *service.AuthService, jwtServ *service.JWTService, users UserResolver, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		logger:       logger,
		authServ:     authServ,
		jwtServ:      jwtServ,
		users:        users,
		secureCookie: secureCookie,
	}
}

type loginPayload struct {
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Role        domain.Role `json:"role"`
	Phone       string      `json:"phone"`
	CompanyName string      `json:"companyName"`
	Designation string      `json:"designation"`
}

// Signup maneja POST /api/auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Email       string `json:"email" binding:"required,email"`
		Password    string `json:"password" binding:"required,min=6"`
		Phone       string `json:"phone"`
		Address     string `json:"address"`
		CompanyName string `json:"companyName"`
		Designation string `json:"designation"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("invalid signup request", zap.Error(err))
		_ = c.Error(err)
		return
	}

	user, err := h.authServ.Signup(c.Request.Context(), service.SignupInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Phone:       req.Phone,
		Address:     req.Address,
		CompanyName: req.CompanyName,
		Designation: req.Designation,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusCreated, "Your account has been created successfully. Please log in", user)
}

// Login maneja POST /api/auth/login. Solo envía el OTP; el token llega en verify-otp.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	if _, err := h.authServ.RequestLoginOTP(c.Request.Context(), req.Email, req.Password); err != nil {
		_ = c.Error(emailNotRegistered(err))
		return
	}

	respond(c, http.StatusOK, "OTP sent successfully to your email. Please check your email.", nil)
}

// VerifyOTP maneja POST /api/auth/verify-otp.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		OTP   string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.authServ.VerifyLoginOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		_ = c.Error(emailNotRegistered(err))
		return
	}

	pair, err := h.jwtServ.GeneratePair(c.Request.Context(), user)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		_ = c.Error(err)
		return
	}
	h.setRefreshCookie(c, pair.RefreshToken)

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"statusCode": http.StatusOK,
		"message":    "User logged in successfully",
		"token":      pair.AccessToken,
		"data": loginPayload{
			Name:        user.Name,
			Email:       user.Email,
			Role:        user.Role,
			Phone:       user.Phone,
			CompanyName: user.CompanyName,
			Designation: user.Designation,
		},
	})
}

// ForgotPassword maneja POST /api/auth/forgot-password.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.authServ.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		_ = c.Error(emailNotRegistered(err))
		return
	}

	respond(c, http.StatusOK, "Password reset link sent to email.", nil)
}

// ResetPassword maneja PATCH /api/auth/reset-password/:token.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.authServ.ResetPassword(c.Request.Context(), c.Param("token"), req.Password); err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, "Password reset successfully, Please login.", nil)
}

// RefreshToken maneja POST /api/auth/refresh-token: rota el refresh de la cookie.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	raw, err := c.Cookie(refreshCookieName)
	if err != nil || raw == "" {
		_ = c.Error(newAPIError(http.StatusUnauthorized, "Unauthorize Access"))
		return
	}

	claims, err := h.jwtServ.ConsumeRefreshToken(c.Request.Context(), raw)
	if err != nil {
		_ = c.Error(newAPIError(http.StatusUnauthorized, "Unauthorize Access"))
		return
	}

	// el rol puede haber cambiado desde la emisión: se vuelve a leer el usuario
	user, err := h.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			_ = c.Error(newAPIError(http.StatusUnauthorized, "Unauthorize Access"))
			return
		}
		_ = c.Error(err)
		return
	}

	pair, err := h.jwtServ.GeneratePair(c.Request.Context(), user)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.setRefreshCookie(c, pair.RefreshToken)

	respond(c, http.StatusOK, "Access token refreshed successfully", gin.H{
		"accessToken": pair.AccessToken,
		"expiresIn":   pair.ExpiresIn,
	})
}

// Logout maneja POST /api/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	if raw, err := c.Cookie(refreshCookieName); err == nil && raw != "" {
		if err := h.jwtServ.RevokeRefresh(c.Request.Context(), raw); err != nil {
			h.logger.Debug("revoke refresh on logout", zap.Error(err))
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookieName, "", -1, "/", "", h.secureCookie, true)

	respond(c, http.StatusOK, "User logged out successfully", nil)
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookieName, token, int(h.jwtServ.RefreshTTL().Seconds()), "/", "", h.secureCookie, true)
}

// emailNotRegistered ajusta el mensaje de usuario inexistente en los flujos por email.
func emailNotRegistered(err error) error {
	if errors.Is(err, service.ErrUserNotFound) {
		return &APIError{Status: http.StatusNotFound, Message: "Email not registered", Err: err}
	}
	return err
}
