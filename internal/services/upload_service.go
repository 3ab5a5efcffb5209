package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"lostfound/pkg/apperror"
	"lostfound/pkg/logger"

	"github.com/google/uuid"
)

// DefaultUploadMaxBytes is the image size limit when none is configured.
const DefaultUploadMaxBytes int64 = 5 << 20

// PublicUploadPrefix is the URL path stored files are served under.
const PublicUploadPrefix = "/uploads"

var allowedImageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// StoredFile describes an accepted upload.
type StoredFile struct {
	FileURL     string `json:"fileUrl"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// UploadService stores item images on local disk.
type UploadService struct {
	dir      string
	maxBytes int64
	logg     *logger.Logger
}

// NewUploadService creates a new UploadService writing into dir.
func NewUploadService(dir string, maxBytes int64, logg *logger.Logger) *UploadService {
	if maxBytes <= 0 {
		maxBytes = DefaultUploadMaxBytes
	}
	return &UploadService{dir: dir, maxBytes: maxBytes, logg: orNop(logg)}
}

// Dir is the directory files are written to.
func (s *UploadService) Dir() string { return s.dir }

func (s *UploadService) tooLarge() error {
	if s.maxBytes >= 1<<20 {
		return apperror.Validation(fmt.Sprintf("File exceeds the %d MB limit", s.maxBytes>>20))
	}
	return apperror.Validation(fmt.Sprintf("File exceeds the %d byte limit", s.maxBytes))
}

// Save validates and stores one PNG, JPEG or WEBP image under a random name.
// Both the extension and the sniffed content must be an allowed image type.
func (s *UploadService) Save(ctx context.Context, fh *multipart.FileHeader) (*StoredFile, error) {
	if fh == nil {
		return nil, apperror.Validation("No file uploaded")
	}
	if fh.Size > s.maxBytes {
		return nil, s.tooLarge()
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	wantType, ok := allowedImageTypes[ext]
	if !ok {
		return nil, apperror.Validation("Only PNG, JPEG, JPG and WEBP images are allowed")
	}

	src, err := fh.Open()
	if err != nil {
		return nil, apperror.Internal(err, "failed to open upload")
	}
	defer src.Close()

	sniff := make([]byte, 512)
	n, err := io.ReadFull(src, sniff)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, apperror.Internal(err, "failed to read upload")
	}
	sniff = sniff[:n]
	if got := http.DetectContentType(sniff); got != wantType {
		return nil, apperror.Validation("File content does not match an allowed image type")
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, apperror.Internal(err, "failed to prepare upload directory")
	}
	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return nil, apperror.Internal(err, "failed to create file")
	}

	limited := io.LimitReader(io.MultiReader(bytes.NewReader(sniff), src), s.maxBytes+1)
	written, copyErr := io.Copy(dst, limited)
	closeErr := dst.Close()
	if copyErr == nil && written > s.maxBytes {
		copyErr = s.tooLarge()
	}
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		if apperror.CodeOf(copyErr) == apperror.CodeValidation {
			return nil, copyErr
		}
		return nil, apperror.Internal(copyErr, "failed to store file")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"file": name, "size": written}), "image uploaded")
	return &StoredFile{
		FileURL:     path.Join(PublicUploadPrefix, name),
		Filename:    name,
		Size:        written,
		ContentType: wantType,
	}, nil
}
