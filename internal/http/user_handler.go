package http

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"support-desk/internal/domain"
	"support-desk/internal/service"
)

// UserHandler expone el perfil del usuario autenticado.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
}

func NewUserHandler(logger *zap.Logger, userServ *service.UserService) *UserHandler {
	return &UserHandler{
		logger:   logger,
		userServ: userServ,
	}
}

type profilePayload struct {
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Role        domain.Role `json:"role"`
	Phone       string      `json:"phone"`
	Address     string      `json:"address"`
	CompanyName string      `json:"companyName"`
	Designation string      `json:"designation"`
	Avatar      string      `json:"avatar"`
}

func toProfile(u domain.User) profilePayload {
	return profilePayload{
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Phone:       u.Phone,
		Address:     u.Address,
		CompanyName: u.CompanyName,
		Designation: u.Designation,
		Avatar:      u.Avatar,
	}
}

// GetProfile maneja GET /api/user.
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		_ = c.Error(newAPIError(http.StatusUnauthorized, "Unauthorize Access"))
		return
	}
	respond(c, http.StatusOK, "User info fetched successfully", toProfile(user))
}

// UpdateProfile maneja PATCH /api/user. Acepta JSON o multipart con un archivo "avatar".
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		_ = c.Error(newAPIError(http.StatusUnauthorized, "Unauthorize Access"))
		return
	}

	var update service.ProfileUpdate
	if isMultipart(c) {
		if err := c.Request.ParseMultipartForm(maxUploadMemory); err != nil {
			_ = c.Error(newAPIError(http.StatusBadRequest, "Invalid multipart form"))
			return
		}
		update = service.ProfileUpdate{
			Name:        optionalForm(c, "name"),
			Phone:       optionalForm(c, "phone"),
			Address:     optionalForm(c, "address"),
			CompanyName: optionalForm(c, "companyName"),
			Designation: optionalForm(c, "designation"),
			AvatarURL:   optionalForm(c, "avatar"),
		}
		if fh, err := c.FormFile("avatar"); err == nil {
			files, closeAll, err := openFiles([]*multipart.FileHeader{fh})
			if err != nil {
				_ = c.Error(err)
				return
			}
			defer closeAll()
			update.Avatar = &files[0]
		}
	} else {
		var req struct {
			Name        *string `json:"name"`
			Phone       *string `json:"phone"`
			Address     *string `json:"address"`
			CompanyName *string `json:"companyName"`
			Designation *string `json:"designation"`
			Avatar      *string `json:"avatar" binding:"omitempty,url"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(err)
			return
		}
		update = service.ProfileUpdate{
			Name:        req.Name,
			Phone:       req.Phone,
			Address:     req.Address,
			CompanyName: req.CompanyName,
			Designation: req.Designation,
			AvatarURL:   req.Avatar,
		}
	}

	updated, err := h.userServ.UpdateProfile(c.Request.Context(), user.ID, update)
	if err != nil {
		h.logger.Warn("update profile failed", zap.Error(err), zap.String("user_id", user.ID))
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, "User updated successfully", toProfile(updated))
}
