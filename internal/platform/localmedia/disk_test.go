package localmedia

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
)

func TestDiskUploadDelete(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDisk(logger.NewNop(), dir, "")
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	ctx := context.Background()

	ref, err := d.Upload(ctx, "voice/1-abc.webm", strings.NewReader("clip"), "audio/webm")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if ref != "/uploads/voice/1-abc.webm" {
		t.Fatalf("Upload: got=%q want=%q", ref, "/uploads/voice/1-abc.webm")
	}
	raw, err := os.ReadFile(filepath.Join(dir, "voice", "1-abc.webm"))
	if err != nil || string(raw) != "clip" {
		t.Fatalf("file content: got=%q err=%v", raw, err)
	}

	if _, err := d.Upload(ctx, "voice/1-abc.webm", strings.NewReader("again"), ""); err == nil {
		t.Fatalf("Upload (duplicate): expected error")
	}

	if err := d.Delete(ctx, ref); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "voice", "1-abc.webm")); !os.IsNotExist(err) {
		t.Fatalf("Delete: file still present (err=%v)", err)
	}
	if err := d.Delete(ctx, ref); err != nil {
		t.Fatalf("Delete (missing): %v", err)
	}
}

func TestDiskRejectsEscapingKeys(t *testing.T) {
	d, err := NewDisk(logger.NewNop(), t.TempDir(), "/media/")
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	if d.URLPrefix() != "/media" {
		t.Fatalf("URLPrefix: got=%q", d.URLPrefix())
	}

	// Clean anchors at root so traversal collapses inside it.
	ref, err := d.Upload(context.Background(), "../../etc/passwd", strings.NewReader("x"), "")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if ref != "/media/etc/passwd" {
		t.Fatalf("Upload: got=%q", ref)
	}
	if _, err := d.Upload(context.Background(), "/", strings.NewReader("x"), ""); err == nil {
		t.Fatalf("Upload (empty key): expected error")
	}
	if err := d.Delete(context.Background(), "https://elsewhere/voice/a.webm"); err == nil {
		t.Fatalf("Delete (foreign ref): expected error")
	}
}
