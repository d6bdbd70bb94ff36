package utils

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ErrNoFile       = errors.New("no file uploaded")
	ErrFileTooLarge = errors.New("file size exceeds limit")
	ErrNotAnImage   = errors.New("uploaded file is not an image")
	ErrInvalidImage = errors.New("invalid base64 image data")
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	ValidateImageFile(file *multipart.FileHeader) error
	ConvertFileToBase64(file multipart.File) (string, error)
	DecodeBase64Image(encoded string) ([]byte, string, error)
	EncodeImageFrame(frame []byte) (string, error)
}

type utils struct {
	maxFileSize int64
}

func New() IUtils {
	return &utils{
		maxFileSize: 5 * 1024 * 1024,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

func (u *utils) ValidateImageFile(file *multipart.FileHeader) error {
	if file == nil {
		return ErrNoFile
	}

	if file.Size > u.maxFileSize {
		return ErrFileTooLarge
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return ErrNotAnImage
	}

	return nil
}

func (u *utils) ConvertFileToBase64(file multipart.File) (string, error) {
	fileBytes, err := io.ReadAll(io.LimitReader(file, u.maxFileSize+1))
	if err != nil {
		return "", err
	}
	if int64(len(fileBytes)) > u.maxFileSize {
		return "", ErrFileTooLarge
	}

	return base64.StdEncoding.EncodeToString(fileBytes), nil
}

// DecodeBase64Image accepts plain base64 or a data URL and returns the image
// bytes with their sniffed content type.
func (u *utils) DecodeBase64Image(encoded string) ([]byte, string, error) {
	if idx := strings.Index(encoded, ";base64,"); strings.HasPrefix(encoded, "data:") && idx >= 0 {
		encoded = encoded[idx+len(";base64,"):]
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil || len(data) == 0 {
		return nil, "", ErrInvalidImage
	}
	if int64(len(data)) > u.maxFileSize {
		return nil, "", ErrFileTooLarge
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", ErrNotAnImage
	}

	return data, contentType, nil
}

func (u *utils) EncodeImageFrame(frame []byte) (string, error) {
	if len(frame) == 0 {
		return "", ErrNoFile
	}
	if int64(len(frame)) > u.maxFileSize {
		return "", ErrFileTooLarge
	}
	if !strings.HasPrefix(http.DetectContentType(frame), "image/") {
		return "", ErrNotAnImage
	}

	return base64.StdEncoding.EncodeToString(frame), nil
}
