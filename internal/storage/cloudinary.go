package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type cloudinaryAPI interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
}

// CloudinaryUploader sube archivos a Cloudinary.
type CloudinaryUploader struct {
	api        cloudinaryAPI
	baseFolder string
}

func NewCloudinaryUploader(cloudName, apiKey, apiSecret, baseFolder string) (*CloudinaryUploader, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.New("cloudinary credentials are required")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	return &CloudinaryUploader{api: &cld.Upload, baseFolder: baseFolder}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, folder string, file File) (string, error) {
	if file.Body == nil {
		return "", errors.New("file body is required")
	}
	name := objectName("", file.Name)
	params := uploader.UploadParams{
		PublicID: strings.TrimSuffix(name, path.Ext(name)),
		Folder:   path.Join(u.baseFolder, folder),
	}

	res, err := u.api.Upload(ctx, file.Body, params)
	if err != nil {
		return "", err
	}
	if res == nil {
		return "", errors.New("cloudinary returned no result")
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	return res.SecureURL, nil
}
