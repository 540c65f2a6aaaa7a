package upload

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bgpiesa-backend/internal/shared/apperror"
	"bgpiesa-backend/internal/shared/utils"
)

// FileField is the multipart field every upload endpoint reads
const FileField = "file"

var ErrMissingFile = apperror.New(apperror.KindValidation, "FILE_REQUIRED", "Не е избран файл.")

var ErrFileTooLarge = apperror.New(apperror.KindValidation, "FILE_TOO_LARGE", "Файлът е твърде голям.")

var ErrEmptyFile = apperror.New(apperror.KindValidation, "FILE_EMPTY", "Файлът е празен.")

// Open returns the uploaded file. The caller closes it.
func Open(c *gin.Context) (multipart.File, error) {
	header, err := c.FormFile(FileField)
	if err != nil {
		if isTooLarge(err) {
			return nil, ErrFileTooLarge
		}
		return nil, ErrMissingFile.Wrap(err)
	}
	if header.Size == 0 {
		return nil, ErrEmptyFile
	}

	f, err := header.Open()
	if err != nil {
		return nil, ErrMissingFile.Wrap(err)
	}
	return f, nil
}

// Captions reads the optional caption form fields; blanks become nil
func Captions(c *gin.Context) (bg, en *string) {
	return utils.TrimStringToNil(c.PostForm("caption_bg")), utils.TrimStringToNil(c.PostForm("caption_en"))
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
