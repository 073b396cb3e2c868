package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"support-desk/internal/domain"
	"support-desk/internal/service"
)

const authUserKey = "auth_user"

// UserResolver vuelve a cargar el usuario del token desde la base.
type UserResolver interface {
	GetByID(ctx context.Context, id string) (domain.User, error)
}

// JWTAuthMiddleware valida el access token, vuelve a resolver al usuario y
// verifica que su rol actual esté entre los permitidos por la ruta.
func JWTAuthMiddleware(jwtSvc *service.JWTService, users UserResolver, roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSvc == nil || users == nil {
			abortWithError(c, errors.New("auth gate not configured"))
			return
		}

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abortWithError(c, newAPIError(http.StatusUnauthorized, "Unauthorize Access"))
			return
		}

		claims, err := jwtSvc.ParseAccessToken(token)
		if err != nil {
			abortWithError(c, newAPIError(http.StatusUnauthorized, "Unauthorize Access"))
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			// usuario borrado después de emitir el token
			if errors.Is(err, service.ErrUserNotFound) {
				abortWithError(c, newAPIError(http.StatusNotFound, "User not found"))
				return
			}
			abortWithError(c, err)
			return
		}

		if len(roles) > 0 && !hasRole(user.Role, roles) {
			abortWithError(c, newAPIError(http.StatusForbidden, "Forbidden Access"))
			return
		}

		c.Set(authUserKey, user)
		c.Next()
	}
}

// CurrentUser obtiene el usuario resuelto por el middleware.
func CurrentUser(c *gin.Context) (domain.User, bool) {
	val, ok := c.Get(authUserKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := val.(domain.User)
	return user, ok
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}

func hasRole(role domain.Role, allowed []domain.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
