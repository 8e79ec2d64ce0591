package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/mindmirror/mindmirror-backend/internal/platform/ctxutil"
	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
)

type MediaKind string

const (
	MediaVoice MediaKind = "voice"
	MediaVideo MediaKind = "video"
)

// Upload is one attachment as received from the client. Content type and size
// are passed through unchecked.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// MediaBackend is where attachment bytes end up: local disk or a GCS bucket.
type MediaBackend interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
}

type MediaStore interface {
	Store(ctx context.Context, kind MediaKind, upload Upload) (string, error)
	Remove(ctx context.Context, ref string) error
}

type mediaStore struct {
	log     *logger.Logger
	backend MediaBackend
}

func NewMediaStore(log *logger.Logger, backend MediaBackend) MediaStore {
	return &mediaStore{log: log.With("service", "MediaStore"), backend: backend}
}

func (m *mediaStore) Store(ctx context.Context, kind MediaKind, upload Upload) (string, error) {
	if upload.Body == nil {
		return "", fmt.Errorf("%s upload has no body", kind)
	}
	key, err := mediaKey(kind, upload.Filename, time.Now())
	if err != nil {
		return "", err
	}
	ref, err := m.backend.Upload(ctx, key, upload.Body, upload.ContentType)
	if err != nil {
		return "", fmt.Errorf("store %s: %w", kind, err)
	}
	m.log.Debug("attachment stored", append(ctxutil.LogFields(ctx), "kind", kind, "key", key)...)
	return ref, nil
}

func (m *mediaStore) Remove(ctx context.Context, ref string) error {
	if strings.TrimSpace(ref) == "" {
		return nil
	}
	return m.backend.Delete(ctx, ref)
}

// mediaKey builds <kind>/<unix-nanos>-<16 hex><ext>.
func mediaKey(kind MediaKind, filename string, now time.Time) (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("media key entropy: %w", err)
	}
	return fmt.Sprintf("%s/%d-%s%s", kind, now.UnixNano(), hex.EncodeToString(buf[:]), cleanExt(filename)), nil
}

// cleanExt keeps a short alphanumeric extension and drops anything else.
func cleanExt(filename string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(filename, "\\", "/")))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
