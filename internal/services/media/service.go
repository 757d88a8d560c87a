package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wybmv/backend/internal/services/apperr"
)

const MaxImageBytes = 5 << 20

var (
	ErrValidation    = fmt.Errorf("%w: invalid upload", apperr.ErrInvalidInput)
	ErrNotImage      = fmt.Errorf("%w: only image files are allowed", apperr.ErrInvalidInput)
	ErrImageTooLarge = fmt.Errorf("%w: image exceeds 5MB", apperr.ErrInvalidInput)
	ErrForeignImage  = fmt.Errorf("%w: image does not belong to this match", apperr.ErrInvalidInput)
)

var extPattern = regexp.MustCompile(`^[a-z0-9]{1,8}$`)

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	KeyFromURL(raw string) (string, bool)
}

type Service struct {
	storage ObjectStorage
	now     func() time.Time
}

type Upload struct {
	MatchID     uuid.UUID
	UserID      uuid.UUID
	FileName    string
	ContentType string
	Body        io.Reader
	Size        int64
}

type Image struct {
	URL      string
	Key      string
	FileName string
}

func NewService(storage ObjectStorage) *Service {
	return &Service{
		storage: storage,
		now:     time.Now,
	}
}

func (s *Service) UploadChatImage(ctx context.Context, in Upload) (Image, error) {
	if in.MatchID == uuid.Nil || in.UserID == uuid.Nil || in.Body == nil || in.Size <= 0 {
		return Image{}, ErrValidation
	}
	contentType := strings.ToLower(strings.TrimSpace(in.ContentType))
	if !strings.HasPrefix(contentType, "image/") {
		return Image{}, ErrNotImage
	}
	if in.Size > MaxImageBytes {
		return Image{}, ErrImageTooLarge
	}
	if s.storage == nil {
		return Image{}, fmt.Errorf("media dependencies are not configured")
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return Image{}, fmt.Errorf("ensure bucket: %w", err)
	}

	key := BuildImageKey(in.MatchID, in.UserID, s.now(), in.FileName, contentType)
	url, err := s.storage.Put(ctx, key, in.Body, in.Size, contentType)
	if err != nil {
		return Image{}, fmt.Errorf("put object: %w", err)
	}

	return Image{
		URL:      url,
		Key:      key,
		FileName: path.Base(key),
	}, nil
}

// AttachmentKey checks that rawURL is an uploaded image of matchID and returns its key.
func (s *Service) AttachmentKey(matchID uuid.UUID, rawURL string) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("media dependencies are not configured")
	}
	key, ok := s.storage.KeyFromURL(rawURL)
	if !ok || !strings.HasPrefix(key, matchID.String()+"/") {
		return "", ErrForeignImage
	}
	return key, nil
}

// BuildImageKey lays chat images out as {matchId}/{userId}/{unixMillis}.{ext}.
func BuildImageKey(matchID, userID uuid.UUID, at time.Time, fileName, contentType string) string {
	return fmt.Sprintf("%s/%s/%d.%s", matchID, userID, at.UnixMilli(), imageExt(fileName, contentType))
}

func imageExt(fileName, contentType string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(strings.TrimSpace(fileName))), ".")
	if extPattern.MatchString(ext) {
		return ext
	}

	subtype := strings.TrimPrefix(contentType, "image/")
	if i := strings.IndexAny(subtype, ";+"); i >= 0 {
		subtype = subtype[:i]
	}
	if subtype == "jpeg" {
		return "jpg"
	}
	if extPattern.MatchString(subtype) {
		return subtype
	}
	return "bin"
}
