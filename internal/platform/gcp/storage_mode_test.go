package gcp

import (
	"errors"
	"testing"
)

func TestResolveObjectStorageConfigFromEnvDefaultLocal(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "")
	t.Setenv("STORAGE_EMULATOR_HOST", "")

	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if cfg.Mode != ObjectStorageModeLocal {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeLocal, cfg.Mode)
	}
	if cfg.UsesBucket() {
		t.Fatalf("local mode should not use a bucket")
	}
}

func TestResolveObjectStorageConfigFromEnvExplicitGCS(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "GCS")
	t.Setenv("STORAGE_EMULATOR_HOST", "http://fake-gcs:4443")

	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if cfg.Mode != ObjectStorageModeGCS {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeGCS, cfg.Mode)
	}
	if cfg.Inferred || cfg.ModeSource() != "explicit_or_default" {
		t.Fatalf("mode source: got=%q", cfg.ModeSource())
	}
}

func TestResolveObjectStorageConfigFromEnvInferredEmulator(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "")
	t.Setenv("STORAGE_EMULATOR_HOST", "http://fake-gcs:4443")

	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if cfg.Mode != ObjectStorageModeGCSEmulator || !cfg.IsEmulatorMode() || !cfg.UsesBucket() {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeGCSEmulator, cfg.Mode)
	}
	if cfg.ModeSource() != "inferred_from_emulator_host" {
		t.Fatalf("mode source: got=%q", cfg.ModeSource())
	}
}

func TestResolveObjectStorageConfigFromEnvErrors(t *testing.T) {
	cases := []struct {
		name string
		mode string
		host string
		code ObjectStorageConfigErrorCode
	}{
		{name: "unknown mode", mode: "s3", code: ObjectStorageConfigErrorInvalidMode},
		{name: "missing emulator host", mode: "gcs_emulator", code: ObjectStorageConfigErrorMissingEmulatorHost},
		{name: "relative emulator host", mode: "gcs_emulator", host: "fake-gcs:4443", code: ObjectStorageConfigErrorInvalidEmulatorHost},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("OBJECT_STORAGE_MODE", tc.mode)
			t.Setenv("STORAGE_EMULATOR_HOST", tc.host)

			_, err := ResolveObjectStorageConfigFromEnv()
			var cfgErr *ObjectStorageConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ObjectStorageConfigError, got %v", err)
			}
			if cfgErr.Code != tc.code {
				t.Fatalf("code: want=%q got=%q", tc.code, cfgErr.Code)
			}
			if cfgErr.Error() == "" {
				t.Fatalf("empty error message")
			}
		})
	}
}
