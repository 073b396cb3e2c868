package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"support-desk/internal/domain"
	"support-desk/internal/repository"
	"support-desk/internal/storage"
)

const avatarFolder = "avatars"

// UserService resuelve identidades y mantiene el perfil del usuario.
type UserService struct {
	logger   *zap.Logger
	users    repository.UserRepository
	uploader storage.Uploader
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, uploader storage.Uploader) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		logger:   logger,
		users:    users,
		uploader: uploader,
	}
}

// GetByID vuelve a leer el usuario desde la base; no confía en los claims del token.
func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}
	if strings.TrimSpace(id) == "" {
		return domain.User{}, ErrUserNotFound
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// ProfileUpdate lleva solo los campos presentes en la solicitud.
type ProfileUpdate struct {
	Name        *string
	Phone       *string
	Address     *string
	CompanyName *string
	Designation *string
	AvatarURL   *string
	Avatar      *storage.File
}

func (s *UserService) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (domain.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	apply(&user.Name, update.Name)
	apply(&user.Phone, update.Phone)
	apply(&user.Address, update.Address)
	apply(&user.CompanyName, update.CompanyName)
	apply(&user.Designation, update.Designation)
	apply(&user.Avatar, update.AvatarURL)

	if update.Avatar != nil {
		if s.uploader == nil {
			return domain.User{}, storage.ErrDisabled
		}
		url, err := s.uploader.Upload(ctx, avatarFolder, *update.Avatar)
		if err != nil {
			return domain.User{}, err
		}
		user.Avatar = url
	}

	updated, err := s.users.UpdateProfile(ctx, user)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return updated, nil
}
