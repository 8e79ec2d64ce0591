package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
)

var ErrMissingBucketName = errors.New("missing env var MEDIA_GCS_BUCKET_NAME")

type MediaBucketConfig struct {
	Name      string
	CDNDomain string
	// PublicBaseURL overrides OBJECT_STORAGE_PUBLIC_BASE_URL when set.
	PublicBaseURL string
}

// MediaBucket holds voice and video attachments in a single GCS bucket.
type MediaBucket struct {
	log           *logger.Logger
	client        *storage.Client
	storageMode   ObjectStorageMode
	emulatorHost  string
	name          string
	cdnDomain     string
	publicBaseURL string
}

func NewMediaBucket(ctx context.Context, log *logger.Logger, storageCfg ObjectStorageConfig, bucketCfg MediaBucketConfig) (*MediaBucket, error) {
	if err := ValidateObjectStorageConfig(storageCfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	if !storageCfg.UsesBucket() {
		return nil, fmt.Errorf("object storage mode %q does not use a bucket", storageCfg.Mode)
	}
	name := strings.TrimSpace(bucketCfg.Name)
	if name == "" {
		return nil, ErrMissingBucketName
	}
	serviceLog := log.With("service", "MediaBucket")

	publicBaseURL, publicBaseSource, err := resolvePublicBaseURL(storageCfg, bucketCfg.PublicBaseURL)
	if err != nil {
		return nil, err
	}

	client, err := newStorageClientForMode(ctx, storageCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	serviceLog.Info(
		"Object storage initialized",
		"mode", storageCfg.Mode,
		"mode_source", storageCfg.ModeSource(),
		"emulator_host", storageCfg.EmulatorHost,
		"public_base_source", publicBaseSource,
		"public_base_url", publicBaseURL,
		"bucket", name,
	)

	return &MediaBucket{
		log:           serviceLog,
		client:        client,
		storageMode:   storageCfg.Mode,
		emulatorHost:  strings.TrimRight(strings.TrimSpace(storageCfg.EmulatorHost), "/"),
		name:          name,
		cdnDomain:     strings.TrimSpace(bucketCfg.CDNDomain),
		publicBaseURL: publicBaseURL,
	}, nil
}

func newStorageClientForMode(ctx context.Context, storageCfg ObjectStorageConfig) (*storage.Client, error) {
	switch storageCfg.Mode {
	case ObjectStorageModeGCS:
		opts := ClientOptionsFromEnv()
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case ObjectStorageModeGCSEmulator:
		endpoint := strings.TrimRight(strings.TrimSpace(storageCfg.EmulatorHost), "/")
		// the storage client only honours the emulator through the env var
		_ = os.Setenv("STORAGE_EMULATOR_HOST", endpoint)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &ObjectStorageConfigError{
			Code: ObjectStorageConfigErrorInvalidMode,
			Mode: string(storageCfg.Mode),
		}
	}
}

func resolvePublicBaseURL(storageCfg ObjectStorageConfig, explicit string) (baseURL string, source string, err error) {
	raw := strings.TrimSpace(explicit)
	source = "config"
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("OBJECT_STORAGE_PUBLIC_BASE_URL"))
		source = "object_storage_public_base_url"
	}
	if raw != "" {
		parsed, parseErr := url.Parse(raw)
		if parseErr != nil || strings.TrimSpace(parsed.Scheme) == "" || strings.TrimSpace(parsed.Host) == "" {
			return "", "", fmt.Errorf(
				"invalid OBJECT_STORAGE_PUBLIC_BASE_URL=%q; expected absolute URL like http://localhost:4443",
				raw,
			)
		}
		return strings.TrimRight(raw, "/"), source, nil
	}

	if storageCfg.IsEmulatorMode() {
		return strings.TrimRight(strings.TrimSpace(storageCfg.EmulatorHost), "/"), "storage_emulator_host", nil
	}
	return "", "gcs_default", nil
}

// Upload writes r to key and returns the public URL of the object.
func (b *MediaBucket) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := b.client.Bucket(b.name).Object(key).NewWriter(ctx)
	if ct := strings.TrimSpace(contentType); ct != "" {
		w.ContentType = ct
	} else if ct := contentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return b.PublicURL(key), nil
}

// Delete removes the object behind a URL produced by Upload. Missing objects are not an error.
func (b *MediaBucket) Delete(ctx context.Context, ref string) error {
	key, ok := b.KeyFromURL(ref)
	if !ok {
		return fmt.Errorf("reference %q does not belong to bucket %q", ref, b.name)
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := b.client.Bucket(b.name).Object(key).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil
		}
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, b.name, err)
	}
	return nil
}

func (b *MediaBucket) Close() error {
	if b == nil || b.client == nil {
		return nil
	}
	return b.client.Close()
}

func (b *MediaBucket) PublicURL(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if b.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", b.cdnDomain, key)
	}
	if b.storageMode == ObjectStorageModeGCSEmulator {
		if base := b.emulatorBase(); base != "" {
			return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", base, url.PathEscape(b.name), url.PathEscape(key))
		}
	}
	if b.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", b.publicBaseURL, b.name, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", b.name, key)
}

// KeyFromURL inverts PublicURL.
func (b *MediaBucket) KeyFromURL(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	if b.cdnDomain != "" {
		return trimNonEmpty(ref, fmt.Sprintf("https://%s/", b.cdnDomain))
	}
	if b.storageMode == ObjectStorageModeGCSEmulator {
		if base := b.emulatorBase(); base != "" {
			rest, ok := trimNonEmpty(ref, fmt.Sprintf("%s/storage/v1/b/%s/o/", base, url.PathEscape(b.name)))
			if !ok {
				return "", false
			}
			rest = strings.TrimSuffix(rest, "?alt=media")
			key, err := url.PathUnescape(rest)
			if err != nil || key == "" {
				return "", false
			}
			return key, true
		}
	}
	if b.publicBaseURL != "" {
		return trimNonEmpty(ref, fmt.Sprintf("%s/%s/", b.publicBaseURL, b.name))
	}
	return trimNonEmpty(ref, fmt.Sprintf("https://storage.googleapis.com/%s/", b.name))
}

func (b *MediaBucket) emulatorBase() string {
	base := strings.TrimRight(strings.TrimSpace(b.publicBaseURL), "/")
	if base == "" {
		base = strings.TrimRight(strings.TrimSpace(b.emulatorHost), "/")
	}
	return base
}

func trimNonEmpty(s, prefix string) (string, bool) {
	if !strings.HasPrefix(s, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(s, prefix)
	return rest, rest != ""
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".mp3"):
		return "audio/mpeg"
	case strings.HasSuffix(s, ".wav"):
		return "audio/wav"
	case strings.HasSuffix(s, ".m4a"):
		return "audio/mp4"
	case strings.HasSuffix(s, ".ogg"), strings.HasSuffix(s, ".oga"):
		return "audio/ogg"
	case strings.HasSuffix(s, ".mp4"), strings.HasSuffix(s, ".m4v"):
		return "video/mp4"
	case strings.HasSuffix(s, ".webm"):
		return "video/webm"
	case strings.HasSuffix(s, ".mov"):
		return "video/quicktime"
	default:
		return ""
	}
}
