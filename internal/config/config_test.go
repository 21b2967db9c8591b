package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parleychat/parley/internal/errors"
)

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.AnimationDuration() != 250*time.Millisecond {
		t.Errorf("AnimationDuration() = %v, want 250ms", cfg.AnimationDuration())
	}
	if cfg.GetServerURL() != DefaultServerURL {
		t.Errorf("GetServerURL() = %q", cfg.GetServerURL())
	}
	if cfg.GetRoom() != DefaultRoom {
		t.Errorf("GetRoom() = %q", cfg.GetRoom())
	}
	if cfg.GetRecentRooms() == nil {
		t.Error("RecentRooms should be initialized")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	cfg.SetUserID("alice")
	cfg.SetRoom("a:alice:bob:b")
	cfg.SetNotificationsEnabled(true)
	cfg.SetTheme("nord")
	cfg.SetLastSeenVersion("0.2.0")
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.GetUserID() != "alice" {
		t.Errorf("GetUserID() = %q", loaded.GetUserID())
	}
	if loaded.GetRoom() != "a:alice:bob:b" {
		t.Errorf("GetRoom() = %q", loaded.GetRoom())
	}
	if !loaded.GetNotificationsEnabled() {
		t.Error("notifications should be enabled")
	}
	if loaded.GetTheme() != "nord" {
		t.Errorf("GetTheme() = %q", loaded.GetTheme())
	}
	if loaded.GetLastSeenVersion() != "0.2.0" {
		t.Errorf("GetLastSeenVersion() = %q", loaded.GetLastSeenVersion())
	}
	if rooms := loaded.GetRecentRooms(); len(rooms) != 1 || rooms[0] != "a:alice:bob:b" {
		t.Errorf("GetRecentRooms() = %v", rooms)
	}
	if loaded.Path() != path {
		t.Errorf("Path() = %q, want %q", loaded.Path(), path)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{`},
		{"animation too long", `{"animation_ms": 9000}`},
		{"negative animation", `{"animation_ms": -1}`},
		{"user id with space", `{"user_id": "a b"}`},
		{"bad scheme", `{"server_url": "ftp://x"}`},
		{"duplicate room", `{"recent_rooms": ["x", "x"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFrom(path); err == nil {
				t.Error("LoadFrom() should fail")
			}
		})
	}
}

func TestValidate_Kind(t *testing.T) {
	cfg := &Config{AnimationMs: MaxAnimationMs + 1}
	if err := cfg.Validate(); !errors.Is(err, errors.KindInvalidArgument) {
		t.Errorf("Validate() = %v, want KindInvalidArgument", err)
	}
}

func TestRecentRooms(t *testing.T) {
	cfg := &Config{}
	cfg.SetRoom("one")
	cfg.SetRoom("two")
	cfg.SetRoom("one")

	if rooms := cfg.GetRecentRooms(); len(rooms) != 2 {
		t.Fatalf("GetRecentRooms() = %v, want 2 entries", rooms)
	}
	if !cfg.RemoveRoom("one") {
		t.Error("RemoveRoom should return true for existing room")
	}
	if cfg.RemoveRoom("missing") {
		t.Error("RemoveRoom should return false for unknown room")
	}
	if rooms := cfg.GetRecentRooms(); len(rooms) != 1 || rooms[0] != "two" {
		t.Errorf("GetRecentRooms() = %v", rooms)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvUserID, "carol")
	t.Setenv(EnvServer, "wss://chat.example.com")
	t.Setenv(EnvRoom, "general")

	cfg := &Config{UserID: "alice", ServerURL: DefaultServerURL, Room: DefaultRoom}
	cfg.ApplyEnv()

	if cfg.GetUserID() != "carol" || cfg.GetServerURL() != "wss://chat.example.com" || cfg.GetRoom() != "general" {
		t.Errorf("ApplyEnv() left %+v", cfg)
	}
}

func TestGetDownloadDir(t *testing.T) {
	cfg := &Config{DownloadDir: "/srv/dl"}
	if cfg.GetDownloadDir() != "/srv/dl" {
		t.Errorf("GetDownloadDir() = %q", cfg.GetDownloadDir())
	}
	cfg.DownloadDir = ""
	if cfg.GetDownloadDir() == "" {
		t.Error("GetDownloadDir() should fall back to a default")
	}
}
