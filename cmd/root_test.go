package cmd

import (
	"testing"

	"github.com/parleychat/parley/internal/config"
)

func TestDebugFlagDefaultFalse(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("debug")
	if flag == nil {
		t.Fatal("--debug flag not found")
	}
	if flag.DefValue != "false" {
		t.Errorf("--debug default = %q, want %q", flag.DefValue, "false")
	}
}

func TestQuietFlagExists(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("quiet")
	if flag == nil {
		t.Fatal("--quiet flag not found")
	}
	if flag.Shorthand != "q" {
		t.Errorf("--quiet shorthand = %q, want %q", flag.Shorthand, "q")
	}
}

func TestRoomFlags(t *testing.T) {
	for _, name := range []string{"room", "server", "offline"} {
		if rootCmd.Flags().Lookup(name) == nil {
			t.Errorf("--%s flag not found", name)
		}
	}
	if f := rootCmd.Flags().Lookup("room"); f != nil && f.Shorthand != "r" {
		t.Errorf("--room shorthand = %q, want %q", f.Shorthand, "r")
	}
}

func TestSubcommands(t *testing.T) {
	for _, name := range []string{"relay", "setup", "clear"} {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestInitConfig_QuietOverridesDebug(t *testing.T) {
	origDebug, origQuiet := debugMode, quietMode
	defer func() { debugMode, quietMode = origDebug, origQuiet }()

	debugMode = true
	quietMode = true

	// Should not panic - quiet should take precedence
	initConfig()
}

func TestVersionTemplate(t *testing.T) {
	origV, origC, origD := version, commit, date
	defer SetVersionInfo(origV, origC, origD)

	SetVersionInfo("1.0.0", "none", "")
	if got := versionTemplate(); got != "parley 1.0.0\n" {
		t.Errorf("versionTemplate() = %q", got)
	}
	SetVersionInfo("1.0.0", "abc123", "2026-01-01")
	if got := versionTemplate(); got != "parley 1.0.0\n  commit: abc123\n  built:  2026-01-01\n" {
		t.Errorf("versionTemplate() = %q", got)
	}
}

func TestTerminalClipboard(t *testing.T) {
	tests := []struct {
		term string
		want bool
	}{
		{"xterm-256color", true},
		{"screen", true},
		{"dumb", false},
		{"linux", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := terminalClipboard(tt.term); got != tt.want {
			t.Errorf("terminalClipboard(%q) = %v, want %v", tt.term, got, tt.want)
		}
	}
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvRoom, "from-env")
	origRoom, origServer := flagRoom, flagServer
	defer func() { flagRoom, flagServer = origRoom, origServer }()

	flagRoom = ""
	flagServer = "ws://relay.example:7420"
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.GetRoom() != "from-env" {
		t.Errorf("GetRoom() = %q, want env value", cfg.GetRoom())
	}
	if cfg.GetServerURL() != "ws://relay.example:7420" {
		t.Errorf("GetServerURL() = %q", cfg.GetServerURL())
	}

	flagRoom = "from-flag"
	cfg, err = loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.GetRoom() != "from-flag" {
		t.Errorf("GetRoom() = %q, want flag value", cfg.GetRoom())
	}
}
