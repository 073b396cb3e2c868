package http

import (
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"

	"support-desk/internal/storage"
)

const maxUploadMemory = 10 << 20

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// openFiles abre los archivos del formulario; close libera todos los descriptores.
func openFiles(headers []*multipart.FileHeader) (files []storage.File, closeAll func(), err error) {
	var opened []multipart.File
	closeAll = func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, f)
		files = append(files, storage.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		})
	}
	return files, closeAll, nil
}

// optionalForm devuelve un puntero solo si el campo vino en el formulario.
func optionalForm(c *gin.Context, key string) *string {
	if v, ok := c.GetPostForm(key); ok {
		return &v
	}
	return nil
}
