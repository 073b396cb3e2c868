// Package storage sube los adjuntos de tickets y avatares a un almacenamiento de objetos.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"support-desk/internal/config"
)

// ErrDisabled indica que no hay backend de almacenamiento configurado.
var ErrDisabled = errors.New("file storage is not configured")

// File es un archivo recibido en un formulario multipart.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Uploader guarda un archivo y devuelve su URL pública.
type Uploader interface {
	Upload(ctx context.Context, folder string, file File) (string, error)
}

// New construye el uploader indicado por STORAGE_BACKEND.
func New(ctx context.Context, cfg *config.Config) (Uploader, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.StorageBackend)) {
	case "":
		return disabledUploader{}, nil
	case "cloudinary":
		return NewCloudinaryUploader(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
	case "s3":
		return NewS3Uploader(ctx, S3Options{
			Endpoint:      cfg.S3Endpoint,
			Region:        cfg.S3Region,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			Bucket:        cfg.S3Bucket,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

type disabledUploader struct{}

func (disabledUploader) Upload(context.Context, string, File) (string, error) {
	return "", ErrDisabled
}

// objectName arma un nombre único conservando la extensión original.
func objectName(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	name := uuid.NewString() + ext
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return folder + "/" + name
}
