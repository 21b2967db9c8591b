package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/parleychat/parley/internal/errors"
)

const (
	// DefaultAnimationMs is the overlay transition time used when the config
	// file does not set one.
	DefaultAnimationMs = 250

	// MaxAnimationMs bounds the animation duration accepted from config.
	MaxAnimationMs = 5000

	// DefaultServerURL is where the bundled relay listens by default.
	DefaultServerURL = "ws://127.0.0.1:7420"

	// DefaultRoom is joined when neither the flag nor the config names one.
	DefaultRoom = "lobby"
)

// Environment variables that override file values.
const (
	EnvUserID = "PARLEY_USER_ID"
	EnvServer = "PARLEY_SERVER"
	EnvRoom   = "PARLEY_ROOM"
)

// Config holds the application configuration
type Config struct {
	UserID               string   `json:"user_id"`
	ServerURL            string   `json:"server_url,omitempty"`
	Room                 string   `json:"room,omitempty"`
	RecentRooms          []string `json:"recent_rooms,omitempty"`
	AnimationMs          int      `json:"animation_ms,omitempty"`          // Overlay transition time
	Theme                string   `json:"theme,omitempty"`                 // UI theme name
	NotificationsEnabled bool     `json:"notifications_enabled,omitempty"` // Desktop toasts for incoming messages
	DownloadDir          string   `json:"download_dir,omitempty"`          // Where image downloads land
	UpdateURL            string   `json:"update_url,omitempty"`            // Latest-version endpoint for update checks
	LastSeenVersion      string   `json:"last_seen_version,omitempty"`     // Last version whose release notes were shown

	mu       sync.RWMutex
	filePath string
}

// configDir returns the path to the config directory
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".parley"), nil
}

// configPath returns the path to the config file
func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or creates a new one if it doesn't exist
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. A missing file yields defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{filePath: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg.ensureInitialized()
		return cfg, nil
	}
	if err != nil {
		return nil, errors.ConfigLoadFailed(path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.ConfigLoadFailed(path, err)
	}

	// Must run before Validate, which only reads.
	cfg.ensureInitialized()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ensureInitialized fills defaults for unset fields. Not thread-safe; only
// called from LoadFrom before the Config is shared.
func (c *Config) ensureInitialized() {
	if c.RecentRooms == nil {
		c.RecentRooms = []string{}
	}
	if c.AnimationMs == 0 {
		c.AnimationMs = DefaultAnimationMs
	}
	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	if c.Room == "" {
		c.Room = DefaultRoom
	}
}

// ApplyEnv overlays PARLEY_* environment variables onto the config.
func (c *Config) ApplyEnv() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v := strings.TrimSpace(os.Getenv(EnvUserID)); v != "" {
		c.UserID = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvServer)); v != "" {
		c.ServerURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRoom)); v != "" {
		c.Room = v
	}
}

// Validate checks that the config is internally consistent.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.AnimationMs < 0 || c.AnimationMs > MaxAnimationMs {
		return errors.ConfigInvalid(fmt.Sprintf("animation_ms must be between 0 and %d, got %d", MaxAnimationMs, c.AnimationMs))
	}
	if strings.ContainsAny(c.UserID, " \t\n/") {
		return errors.ConfigInvalid(fmt.Sprintf("user_id %q must not contain whitespace or '/'", c.UserID))
	}
	if c.ServerURL != "" {
		u, err := url.Parse(c.ServerURL)
		if err != nil {
			return errors.ConfigInvalid(fmt.Sprintf("server_url: %v", err))
		}
		switch u.Scheme {
		case "ws", "wss", "http", "https":
		default:
			return errors.ConfigInvalid(fmt.Sprintf("server_url scheme %q is not supported", u.Scheme))
		}
	}

	seen := make(map[string]bool)
	for _, room := range c.RecentRooms {
		if room == "" {
			return errors.ConfigInvalid("empty room id found")
		}
		if seen[room] {
			return errors.ConfigInvalid(fmt.Sprintf("duplicate room: %s", room))
		}
		seen[room] = true
	}

	return nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.filePath == "" {
		path, err := configPath()
		if err != nil {
			return err
		}
		c.filePath = path
	}

	if err := os.MkdirAll(filepath.Dir(c.filePath), 0755); err != nil {
		return errors.ConfigSaveFailed(c.filePath, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.ConfigSaveFailed(c.filePath, err)
	}

	if err := os.WriteFile(c.filePath, data, 0644); err != nil {
		return errors.ConfigSaveFailed(c.filePath, err)
	}
	return nil
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filePath
}

// GetUserID returns the local user's id
func (c *Config) GetUserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.UserID
}

// SetUserID sets the local user's id
func (c *Config) SetUserID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.UserID = id
}

// GetServerURL returns the relay address
func (c *Config) GetServerURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ServerURL
}

// SetServerURL sets the relay address
func (c *Config) SetServerURL(u string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ServerURL = u
}

// GetRoom returns the room joined at startup
func (c *Config) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Room
}

// SetRoom sets the room joined at startup and records it as recent
func (c *Config) SetRoom(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Room = room
	for _, r := range c.RecentRooms {
		if r == room {
			return
		}
	}
	c.RecentRooms = append(c.RecentRooms, room)
}

// RemoveRoom drops a room from the recent list.
// Returns true if the room was found and removed, false otherwise.
func (c *Config) RemoveRoom(room string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, r := range c.RecentRooms {
		if r == room {
			c.RecentRooms = append(c.RecentRooms[:i], c.RecentRooms[i+1:]...)
			return true
		}
	}
	return false
}

// GetRecentRooms returns a copy of the recent rooms slice
func (c *Config) GetRecentRooms() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rooms := make([]string, len(c.RecentRooms))
	copy(rooms, c.RecentRooms)
	return rooms
}

// AnimationDuration returns the overlay transition time
func (c *Config) AnimationDuration() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.AnimationMs) * time.Millisecond
}

// GetTheme returns the UI theme name
func (c *Config) GetTheme() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Theme
}

// SetTheme sets the UI theme name
func (c *Config) SetTheme(theme string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Theme = theme
}

// GetNotificationsEnabled returns whether desktop notifications are enabled
func (c *Config) GetNotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.NotificationsEnabled
}

// SetNotificationsEnabled sets whether desktop notifications are enabled
func (c *Config) SetNotificationsEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.NotificationsEnabled = enabled
}

// GetDownloadDir returns the download directory, defaulting to ~/Downloads
func (c *Config) GetDownloadDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.DownloadDir != "" {
		return c.DownloadDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(home, "Downloads")
}

// GetUpdateURL returns the latest-version endpoint, or "" when unset
func (c *Config) GetUpdateURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.UpdateURL
}

// GetLastSeenVersion returns the last version the user has seen notes for
func (c *Config) GetLastSeenVersion() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.LastSeenVersion
}

// SetLastSeenVersion sets the last version the user has seen notes for
func (c *Config) SetLastSeenVersion(version string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.LastSeenVersion = version
}
