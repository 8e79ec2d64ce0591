package app

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/mindmirror/mindmirror-backend/internal/platform/gcp"
	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
)

func TestClassifyStorageProviderBootstrapError(t *testing.T) {
	cases := map[string]struct {
		err  error
		want StorageProviderBootstrapErrorCode
	}{
		"invalid mode": {
			err:  &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorInvalidMode, Mode: "bad-mode"},
			want: StorageProviderBootstrapErrorInvalidMode,
		},
		"missing emulator host": {
			err:  &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorMissingEmulatorHost},
			want: StorageProviderBootstrapErrorMissingEmulatorHost,
		},
		"invalid emulator host": {
			err:  &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorInvalidEmulatorHost, EmulatorHost: "fake-gcs:4443"},
			want: StorageProviderBootstrapErrorInvalidEmulatorHost,
		},
		"missing bucket": {
			err:  gcp.ErrMissingBucketName,
			want: StorageProviderBootstrapErrorMissingBucket,
		},
		"connect failed": {
			err:  errors.New("dial tcp: connection refused"),
			want: StorageProviderBootstrapErrorConnectFailed,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := classifyStorageProviderBootstrapError(gcp.ObjectStorageConfig{Mode: gcp.ObjectStorageModeGCS}, tc.err)
			var got *StorageProviderBootstrapError
			if !errors.As(err, &got) {
				t.Fatalf("expected StorageProviderBootstrapError, got=%T", err)
			}
			if got.Code != tc.want {
				t.Fatalf("code: want=%q got=%q", tc.want, got.Code)
			}
			if !errors.Is(err, tc.err) {
				t.Fatalf("cause not wrapped: %v", err)
			}
		})
	}
}

func TestResolveMediaProviderInvalidMode(t *testing.T) {
	_, err := resolveMediaProvider(context.Background(), logger.NewNop(), Config{ObjectStorageMode: "ftp"})
	if got := storageProviderBootstrapErrorCode(err); got != StorageProviderBootstrapErrorInvalidMode {
		t.Fatalf("code: want=%q got=%q (err=%v)", StorageProviderBootstrapErrorInvalidMode, got, err)
	}
}

func TestResolveMediaProviderEmulatorWithoutHost(t *testing.T) {
	_, err := resolveMediaProvider(context.Background(), logger.NewNop(), Config{ObjectStorageMode: "gcs_emulator"})
	if got := storageProviderBootstrapErrorCode(err); got != StorageProviderBootstrapErrorMissingEmulatorHost {
		t.Fatalf("code: want=%q got=%q (err=%v)", StorageProviderBootstrapErrorMissingEmulatorHost, got, err)
	}
}

func TestResolveMediaProviderLocalDefault(t *testing.T) {
	dir := t.TempDir()
	p, err := resolveMediaProvider(context.Background(), logger.NewNop(), Config{MediaDir: dir})
	if err != nil {
		t.Fatalf("resolveMediaProvider: %v", err)
	}
	defer p.Close()
	if p.Mode != gcp.ObjectStorageModeLocal {
		t.Fatalf("mode: want=%q got=%q", gcp.ObjectStorageModeLocal, p.Mode)
	}
	if p.LocalDir != dir || p.URLPrefix != "/uploads" {
		t.Fatalf("local mount: dir=%q prefix=%q", p.LocalDir, p.URLPrefix)
	}
}

type fakeBucket struct{ closed bool }

func (b *fakeBucket) Upload(context.Context, string, io.Reader, string) (string, error) {
	return "https://cdn.example/voice/x.webm", nil
}
func (b *fakeBucket) Delete(context.Context, string) error { return nil }
func (b *fakeBucket) Close() error                         { b.closed = true; return nil }

func TestResolveMediaProviderGCSMode(t *testing.T) {
	orig := newMediaBucket
	t.Cleanup(func() { newMediaBucket = orig })

	var captured gcp.MediaBucketConfig
	bucket := &fakeBucket{}
	newMediaBucket = func(_ context.Context, _ *logger.Logger, storageCfg gcp.ObjectStorageConfig, bucketCfg gcp.MediaBucketConfig) (closingMediaBackend, error) {
		if storageCfg.Mode != gcp.ObjectStorageModeGCS {
			t.Fatalf("mode: want=%q got=%q", gcp.ObjectStorageModeGCS, storageCfg.Mode)
		}
		captured = bucketCfg
		return bucket, nil
	}

	p, err := resolveMediaProvider(context.Background(), logger.NewNop(), Config{
		ObjectStorageMode:  "GCS",
		MediaGCSBucketName: "mm-media",
		MediaCDNDomain:     "cdn.example",
	})
	if err != nil {
		t.Fatalf("resolveMediaProvider: %v", err)
	}
	if captured.Name != "mm-media" || captured.CDNDomain != "cdn.example" {
		t.Fatalf("bucket config not passed through: %+v", captured)
	}
	if p.LocalDir != "" {
		t.Fatalf("bucket mode must not mount a local dir, got %q", p.LocalDir)
	}
	if err := p.Close(); err != nil || !bucket.closed {
		t.Fatalf("Close: err=%v closed=%v", err, bucket.closed)
	}
}

func TestResolveMediaProviderBucketFailure(t *testing.T) {
	orig := newMediaBucket
	t.Cleanup(func() { newMediaBucket = orig })
	newMediaBucket = func(context.Context, *logger.Logger, gcp.ObjectStorageConfig, gcp.MediaBucketConfig) (closingMediaBackend, error) {
		return nil, gcp.ErrMissingBucketName
	}

	_, err := resolveMediaProvider(context.Background(), logger.NewNop(), Config{ObjectStorageMode: "gcs"})
	if got := storageProviderBootstrapErrorCode(err); got != StorageProviderBootstrapErrorMissingBucket {
		t.Fatalf("code: want=%q got=%q", StorageProviderBootstrapErrorMissingBucket, got)
	}
}
