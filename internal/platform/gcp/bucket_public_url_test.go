package gcp

import "testing"

func TestResolvePublicBaseURL(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_PUBLIC_BASE_URL", "")

	baseURL, source, err := resolvePublicBaseURL(ObjectStorageConfig{Mode: ObjectStorageModeGCS}, "")
	if err != nil || baseURL != "" || source != "gcs_default" {
		t.Fatalf("gcs default: base=%q source=%q err=%v", baseURL, source, err)
	}

	baseURL, source, err = resolvePublicBaseURL(ObjectStorageConfig{
		Mode:         ObjectStorageModeGCSEmulator,
		EmulatorHost: "http://fake-gcs:4443/",
	}, "")
	if err != nil || baseURL != "http://fake-gcs:4443" || source != "storage_emulator_host" {
		t.Fatalf("emulator fallback: base=%q source=%q err=%v", baseURL, source, err)
	}

	t.Setenv("OBJECT_STORAGE_PUBLIC_BASE_URL", "http://localhost:4443/")
	baseURL, source, err = resolvePublicBaseURL(ObjectStorageConfig{Mode: ObjectStorageModeGCS}, "")
	if err != nil || baseURL != "http://localhost:4443" || source != "object_storage_public_base_url" {
		t.Fatalf("env override: base=%q source=%q err=%v", baseURL, source, err)
	}

	if _, _, err := resolvePublicBaseURL(ObjectStorageConfig{Mode: ObjectStorageModeGCS}, "localhost:4443"); err == nil {
		t.Fatalf("relative base url: expected error")
	}
}

func TestMediaBucketPublicURLRoundTrip(t *testing.T) {
	const key = "voice/1700000000000000000-0123456789abcdef.webm"

	cases := []struct {
		name   string
		bucket *MediaBucket
		want   string
	}{
		{
			name:   "gcs default",
			bucket: &MediaBucket{name: "media-bucket", storageMode: ObjectStorageModeGCS},
			want:   "https://storage.googleapis.com/media-bucket/" + key,
		},
		{
			name:   "cdn domain",
			bucket: &MediaBucket{name: "media-bucket", cdnDomain: "cdn.example.com"},
			want:   "https://cdn.example.com/" + key,
		},
		{
			name:   "public base url",
			bucket: &MediaBucket{name: "media-bucket", storageMode: ObjectStorageModeGCS, publicBaseURL: "http://localhost:4443"},
			want:   "http://localhost:4443/media-bucket/" + key,
		},
		{
			name:   "emulator",
			bucket: &MediaBucket{name: "media-bucket", storageMode: ObjectStorageModeGCSEmulator, emulatorHost: "http://fake-gcs:4443"},
			want:   "http://fake-gcs:4443/storage/v1/b/media-bucket/o/voice%2F1700000000000000000-0123456789abcdef.webm?alt=media",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.bucket.PublicURL("/" + key)
			if got != tc.want {
				t.Fatalf("PublicURL: want=%q got=%q", tc.want, got)
			}
			back, ok := tc.bucket.KeyFromURL(got)
			if !ok || back != key {
				t.Fatalf("KeyFromURL: got=%q ok=%v", back, ok)
			}
		})
	}
}

func TestMediaBucketKeyFromForeignURL(t *testing.T) {
	b := &MediaBucket{name: "media-bucket", storageMode: ObjectStorageModeGCS}
	for _, ref := range []string{"", "/uploads/voice/a.webm", "https://storage.googleapis.com/other/voice/a.webm", "https://storage.googleapis.com/media-bucket/"} {
		if key, ok := b.KeyFromURL(ref); ok {
			t.Fatalf("KeyFromURL(%q): unexpected key %q", ref, key)
		}
	}
}

func TestContentTypeForKey(t *testing.T) {
	cases := map[string]string{
		"voice/a.MP3":  "audio/mpeg",
		"voice/a.webm": "video/webm",
		"video/a.mov":  "video/quicktime",
		"voice/a.bin":  "",
	}
	for key, want := range cases {
		if got := contentTypeForKey(key); got != want {
			t.Fatalf("contentTypeForKey(%q): want=%q got=%q", key, want, got)
		}
	}
}
