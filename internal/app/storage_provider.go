package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/mindmirror/mindmirror-backend/internal/platform/gcp"
	"github.com/mindmirror/mindmirror-backend/internal/platform/localmedia"
	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
	"github.com/mindmirror/mindmirror-backend/internal/services"
)

type closingMediaBackend interface {
	services.MediaBackend
	Close() error
}

var newMediaBucket = func(ctx context.Context, log *logger.Logger, storageCfg gcp.ObjectStorageConfig, bucketCfg gcp.MediaBucketConfig) (closingMediaBackend, error) {
	return gcp.NewMediaBucket(ctx, log, storageCfg, bucketCfg)
}

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode         StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorMissingEmulatorHost StorageProviderBootstrapErrorCode = "missing_emulator_host"
	StorageProviderBootstrapErrorInvalidEmulatorHost StorageProviderBootstrapErrorCode = "invalid_emulator_host"
	StorageProviderBootstrapErrorMissingBucket       StorageProviderBootstrapErrorCode = "missing_bucket"
	StorageProviderBootstrapErrorConnectFailed       StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code         StorageProviderBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf(
		"object storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// MediaProvider is the attachment backend picked from OBJECT_STORAGE_MODE.
// LocalDir is set only for disk storage, which the router serves itself.
type MediaProvider struct {
	Backend   services.MediaBackend
	Mode      gcp.ObjectStorageMode
	LocalDir  string
	URLPrefix string
	close     func() error
}

func (p *MediaProvider) Close() error {
	if p == nil || p.close == nil {
		return nil
	}
	return p.close()
}

func resolveMediaProvider(ctx context.Context, log *logger.Logger, cfg Config) (*MediaProvider, error) {
	storageCfg, err := gcp.ResolveObjectStorageConfig(cfg.ObjectStorageMode, cfg.StorageEmulatorHost)
	if err != nil {
		classified := classifyStorageProviderBootstrapError(storageCfg, err)
		log.Error(
			"Object storage provider selection failed",
			"mode", cfg.ObjectStorageMode,
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}

	log.Info(
		"Selecting object storage provider",
		"mode", storageCfg.Mode,
		"mode_source", storageCfg.ModeSource(),
		"emulator_host", storageCfg.EmulatorHost,
	)

	if !storageCfg.UsesBucket() {
		disk, err := localmedia.NewDisk(log, cfg.MediaDir, localmedia.DefaultURLPrefix)
		if err != nil {
			return nil, &StorageProviderBootstrapError{
				Code:  StorageProviderBootstrapErrorConnectFailed,
				Mode:  string(storageCfg.Mode),
				Cause: err,
			}
		}
		return &MediaProvider{
			Backend:   disk,
			Mode:      storageCfg.Mode,
			LocalDir:  disk.Root(),
			URLPrefix: disk.URLPrefix(),
		}, nil
	}

	bucket, err := newMediaBucket(ctx, log, storageCfg, gcp.MediaBucketConfig{
		Name:          cfg.MediaGCSBucketName,
		CDNDomain:     cfg.MediaCDNDomain,
		PublicBaseURL: cfg.ObjectStoragePublicBaseURL,
	})
	if err != nil {
		classified := classifyStorageProviderBootstrapError(storageCfg, err)
		log.Error(
			"Object storage provider bootstrap failed",
			"mode", storageCfg.Mode,
			"mode_source", storageCfg.ModeSource(),
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}
	return &MediaProvider{Backend: bucket, Mode: storageCfg.Mode, close: bucket.Close}, nil
}

func classifyStorageProviderBootstrapError(storageCfg gcp.ObjectStorageConfig, err error) error {
	code := StorageProviderBootstrapErrorConnectFailed
	var cfgErr *gcp.ObjectStorageConfigError
	switch {
	case errors.As(err, &cfgErr):
		switch cfgErr.Code {
		case gcp.ObjectStorageConfigErrorInvalidMode:
			code = StorageProviderBootstrapErrorInvalidMode
		case gcp.ObjectStorageConfigErrorMissingEmulatorHost:
			code = StorageProviderBootstrapErrorMissingEmulatorHost
		case gcp.ObjectStorageConfigErrorInvalidEmulatorHost:
			code = StorageProviderBootstrapErrorInvalidEmulatorHost
		}
	case errors.Is(err, gcp.ErrMissingBucketName):
		code = StorageProviderBootstrapErrorMissingBucket
	}
	mode := string(storageCfg.Mode)
	if cfgErr != nil && cfgErr.Mode != "" {
		mode = cfgErr.Mode
	}
	return &StorageProviderBootstrapError{
		Code:         code,
		Mode:         mode,
		EmulatorHost: storageCfg.EmulatorHost,
		Cause:        err,
	}
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) {
		if bootstrapErr.Code != "" {
			return bootstrapErr.Code
		}
	}
	return StorageProviderBootstrapErrorConnectFailed
}
