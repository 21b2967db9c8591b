package host

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/parleychat/parley/internal/errors"
)

// MaxDownloadBytes caps a single download.
const MaxDownloadBytes = 32 << 20

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// DownloadName builds "<alt>_<app>_<stamp>.png" for a saved image. An
// empty alt becomes "image".
func DownloadName(alt, app string, now time.Time) string {
	base := unsafeName.ReplaceAllString(alt, "_")
	if base == "" || base == "_" {
		base = "image"
	}
	return fmt.Sprintf("%s_%s_%d.png", base, app, now.UnixMilli())
}

// Fetch downloads src into dir/name over plain HTTP.
func Fetch(ctx context.Context, client *http.Client, src, dir, name string) (string, error) {
	const op = errors.Op("host.Fetch")

	u, err := url.Parse(src)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", errors.E(op, errors.KindInvalidArgument, fmt.Sprintf("cannot download %q", src))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", errors.E(op, errors.KindInvalidArgument, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", errors.E(op, errors.KindNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", errors.E(op, errors.KindNetwork, fmt.Sprintf("GET %s: %s", src, resp.Status))
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.E(op, errors.KindIO, err)
	}
	path := filepath.Join(dir, filepath.Base(name))
	f, err := os.Create(path)
	if err != nil {
		return "", errors.E(op, errors.KindIO, err)
	}
	n, err := io.Copy(f, io.LimitReader(resp.Body, MaxDownloadBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > MaxDownloadBytes {
		err = fmt.Errorf("larger than %d bytes", MaxDownloadBytes)
	}
	if err != nil {
		os.Remove(path)
		return "", errors.E(op, errors.KindIO, err)
	}
	return path, nil
}
