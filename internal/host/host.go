// Package host is the optional bridge to the desktop the client runs on:
// system clipboard, toasts, downloads and update checks. Without a bridge
// the app falls back to what a bare terminal offers.
package host

import (
	"context"
	"net/http"
	"time"

	"github.com/parleychat/parley/internal/clipboard"
	"github.com/parleychat/parley/internal/logger"
	"github.com/parleychat/parley/internal/notification"
)

// AppName is embedded in downloaded file names.
const AppName = "parley"

// DownloadToast is shown when a bridged download starts.
const DownloadToast = "Look into your notification panel for download progress"

// Bridge is a native host capability set.
type Bridge interface {
	Name() string
	CopyText(text string) error
	Toast(message string) error
	// Download saves src as name and returns the written path.
	Download(ctx context.Context, src, name string) (string, error)
	// CheckUpdate reports the latest release and whether it is newer
	// than current.
	CheckUpdate(ctx context.Context, current string) (Release, bool, error)
}

// Desktop bridges to the local desktop session.
type Desktop struct {
	dir       string
	updateURL string
	client    *http.Client
}

// NewDesktop returns a bridge saving downloads under dir. A nil client
// uses one with a 30 second timeout.
func NewDesktop(dir, updateURL string, client *http.Client) *Desktop {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Desktop{dir: dir, updateURL: updateURL, client: client}
}

// Detect returns the desktop bridge when the session has a usable system
// clipboard, which is the signal that a desktop is present.
func Detect(dir, updateURL string) (Bridge, bool) {
	if !clipboard.Available() {
		logger.Info("Host: no desktop session, using terminal fallbacks")
		return nil, false
	}
	return NewDesktop(dir, updateURL, nil), true
}

func (d *Desktop) Name() string { return "desktop" }

func (d *Desktop) CopyText(text string) error {
	return clipboard.WriteText(text)
}

func (d *Desktop) Toast(message string) error {
	return notification.Toast(message)
}

func (d *Desktop) Download(ctx context.Context, src, name string) (string, error) {
	_ = d.Toast(DownloadToast)
	path, err := Fetch(ctx, d.client, src, d.dir, name)
	if err != nil {
		_ = notification.Send(notification.AppName, "Download failed")
		return "", err
	}
	_ = notification.Send(notification.AppName, "Downloaded "+name)
	return path, nil
}

func (d *Desktop) CheckUpdate(ctx context.Context, current string) (Release, bool, error) {
	if d.updateURL == "" {
		return Release{}, false, nil
	}
	rel, err := FetchRelease(ctx, d.client, d.updateURL)
	if err != nil {
		return Release{}, false, err
	}
	return rel, Newer(current, rel.Version), nil
}
