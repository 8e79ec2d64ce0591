package localmedia

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mindmirror/mindmirror-backend/internal/platform/ctxutil"
	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
)

// DefaultURLPrefix is where the router mounts the media directory.
const DefaultURLPrefix = "/uploads"

// Disk keeps attachments in a directory on the local filesystem and hands out
// references of the form <URLPrefix>/<key>.
type Disk struct {
	log       *logger.Logger
	root      string
	urlPrefix string
}

func NewDisk(log *logger.Logger, root, urlPrefix string) (*Disk, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("media dir required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve media dir %q: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir %q: %w", abs, err)
	}
	if urlPrefix == "" {
		urlPrefix = DefaultURLPrefix
	}
	return &Disk{
		log:       log.With("service", "LocalMedia"),
		root:      abs,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
	}, nil
}

func (d *Disk) Root() string      { return d.root }
func (d *Disk) URLPrefix() string { return d.urlPrefix }

// Upload writes r under key. An existing file with the same key is an error.
func (d *Disk) Upload(ctx context.Context, key string, r io.Reader, _ string) (string, error) {
	ctx = ctxutil.Default(ctx)
	full, err := d.pathFor(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %q: %w", key, err)
	}
	if _, err := io.Copy(f, &ctxReader{ctx: ctx, r: r}); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("write %q: %w", key, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("close %q: %w", key, err)
	}
	return d.urlPrefix + "/" + strings.TrimLeft(path.Clean("/"+key), "/"), nil
}

// Delete removes the file behind a reference returned by Upload. Missing files are not an error.
func (d *Disk) Delete(_ context.Context, ref string) error {
	key, ok := d.KeyFromURL(ref)
	if !ok {
		return fmt.Errorf("reference %q is not served from %s", ref, d.urlPrefix)
	}
	full, err := d.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

func (d *Disk) KeyFromURL(ref string) (string, bool) {
	rest, found := strings.CutPrefix(strings.TrimSpace(ref), d.urlPrefix+"/")
	if !found || rest == "" {
		return "", false
	}
	return rest, true
}

// pathFor maps a key to a path inside root, rejecting anything that escapes it.
func (d *Disk) pathFor(key string) (string, error) {
	clean := path.Clean("/" + strings.TrimSpace(key))
	if clean == "/" {
		return "", fmt.Errorf("empty media key")
	}
	full := filepath.Join(d.root, filepath.FromSlash(clean))
	rel, err := filepath.Rel(d.root, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("media key %q escapes media dir", key)
	}
	return full, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
