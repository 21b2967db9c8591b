package host

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/parleychat/parley/internal/errors"
	"github.com/parleychat/parley/internal/logger"
	"github.com/parleychat/parley/internal/notification"
)

func TestMain(m *testing.M) {
	logger.Reset()
	_ = logger.Init(os.DevNull)
	os.Exit(m.Run())
}

func TestDownloadName(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	tests := []struct {
		alt  string
		want string
	}{
		{"", "image_parley_1700000000123.png"},
		{"cat", "cat_parley_1700000000123.png"},
		{"my cat/../x", "my_cat_.._x_parley_1700000000123.png"},
		{"!!", "image_parley_1700000000123.png"},
	}
	for _, tt := range tests {
		if got := DownloadName(tt.alt, AppName, now); got != tt.want {
			t.Errorf("DownloadName(%q) = %q, want %q", tt.alt, got, tt.want)
		}
	}
}

func imageServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cat.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("\x89PNG fake"))
		case "/release":
			w.Write([]byte(`{"version":"1.4.0","url":"https://example.com/parley"}`))
		case "/garbage":
			w.Write([]byte(`{`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	srv := imageServer(t)
	dir := filepath.Join(t.TempDir(), "dl")

	path, err := Fetch(context.Background(), srv.Client(), srv.URL+"/cat.png", dir, "cat.png")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "\x89PNG fake" {
		t.Errorf("downloaded %q", data)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("path = %q, want under %q", path, dir)
	}
}

func TestFetch_Failures(t *testing.T) {
	srv := imageServer(t)
	dir := t.TempDir()

	_, err := Fetch(context.Background(), srv.Client(), srv.URL+"/missing.png", dir, "x.png")
	if !errors.Is(err, errors.KindNetwork) {
		t.Errorf("Fetch(404) = %v, want KindNetwork", err)
	}
	_, err = Fetch(context.Background(), srv.Client(), "javascript:alert(1)", dir, "x.png")
	if !errors.Is(err, errors.KindInvalidArgument) {
		t.Errorf("Fetch(javascript:) = %v, want KindInvalidArgument", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "x.png")); !os.IsNotExist(err) {
		t.Error("failed download should leave no file")
	}
}

func TestFetch_NameCannotEscapeDir(t *testing.T) {
	srv := imageServer(t)
	dir := t.TempDir()
	path, err := Fetch(context.Background(), srv.Client(), srv.URL+"/cat.png", dir, "../../evil.png")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("path = %q escaped %q", path, dir)
	}
}

func TestNewer(t *testing.T) {
	tests := []struct {
		current, latest string
		want            bool
	}{
		{"1.0.0", "1.0.1", true},
		{"v1.2.0", "1.10.0", true},
		{"1.2.0", "1.2.0", false},
		{"2.0.0", "1.9.9", false},
		{"dev", "1.0.0", false},
		{"1.0.0", "", false},
	}
	for _, tt := range tests {
		if got := Newer(tt.current, tt.latest); got != tt.want {
			t.Errorf("Newer(%q, %q) = %v, want %v", tt.current, tt.latest, got, tt.want)
		}
	}
}

func TestDesktop_CheckUpdate(t *testing.T) {
	srv := imageServer(t)

	d := NewDesktop(t.TempDir(), srv.URL+"/release", srv.Client())
	rel, newer, err := d.CheckUpdate(context.Background(), "1.3.2")
	if err != nil {
		t.Fatalf("CheckUpdate() error = %v", err)
	}
	if !newer || rel.Version != "1.4.0" || rel.URL != "https://example.com/parley" {
		t.Errorf("CheckUpdate() = %+v, %v", rel, newer)
	}

	d = NewDesktop(t.TempDir(), srv.URL+"/garbage", srv.Client())
	if _, _, err := d.CheckUpdate(context.Background(), "1.0.0"); err == nil {
		t.Error("CheckUpdate() should fail on a malformed document")
	}

	d = NewDesktop(t.TempDir(), "", srv.Client())
	if _, newer, err := d.CheckUpdate(context.Background(), "1.0.0"); err != nil || newer {
		t.Errorf("CheckUpdate() without URL = %v, %v", newer, err)
	}
}

func TestDesktop_Download(t *testing.T) {
	srv := imageServer(t)
	var messages []string
	notification.SetNotifier(func(title, message string, icon any) error {
		messages = append(messages, message)
		return nil
	})
	defer notification.ResetNotifier()

	d := NewDesktop(t.TempDir(), "", srv.Client())
	if d.Name() != "desktop" {
		t.Errorf("Name() = %q", d.Name())
	}
	if _, err := d.Download(context.Background(), srv.URL+"/cat.png", "cat.png"); err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if len(messages) != 2 || messages[0] != DownloadToast || !strings.HasPrefix(messages[1], "Downloaded") {
		t.Errorf("notifications = %q", messages)
	}

	messages = nil
	if _, err := d.Download(context.Background(), srv.URL+"/nope.png", "nope.png"); err == nil {
		t.Error("Download() should fail")
	}
	if len(messages) != 2 || messages[1] != "Download failed" {
		t.Errorf("notifications = %q", messages)
	}
}
