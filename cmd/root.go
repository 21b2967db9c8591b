package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/parleychat/parley/internal/app"
	"github.com/parleychat/parley/internal/config"
	"github.com/parleychat/parley/internal/host"
	"github.com/parleychat/parley/internal/logger"
	"github.com/parleychat/parley/internal/remote"
)

// dialTimeout bounds the initial connection to the relay.
const dialTimeout = 10 * time.Second

var (
	debugMode             bool
	quietMode             bool
	flagRoom              string
	flagServer            string
	flagOffline           bool
	version, commit, date string
)

// SetVersionInfo sets version information from ldflags
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Terminal chat client for parley rooms",
	Long: `Parley is a terminal chat client. It joins one room on a parley relay,
shows its messages as bubbles and keeps them in sync as people post and
unsend.`,
	RunE:          runTUI,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Reduce logging to info level only")
	rootCmd.Flags().StringVarP(&flagRoom, "room", "r", "", "Room to join (defaults to the last room)")
	rootCmd.Flags().StringVar(&flagServer, "server", "", "Relay websocket URL")
	rootCmd.Flags().BoolVar(&flagOffline, "offline", false, "Use a local in-memory room instead of a relay")
}

func initConfig() {
	// A missing .env is fine; it only supplies PARLEY_* overrides.
	_ = godotenv.Load()

	if quietMode {
		logger.SetDebug(false)
	} else if debugMode {
		logger.SetDebug(true)
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionTemplate())
	return rootCmd.Execute()
}

func versionTemplate() string {
	if commit != "none" && commit != "" {
		return fmt.Sprintf("parley %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	}
	return fmt.Sprintf("parley %s\n", version)
}

// loadConfig reads the config file and applies environment and flag
// overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	cfg.ApplyEnv()
	if flagServer != "" {
		cfg.SetServerURL(flagServer)
	}
	if flagRoom != "" {
		cfg.SetRoom(flagRoom)
	}
	return cfg, cfg.Validate()
}

// terminalClipboard reports whether term is likely to honor OSC 52.
func terminalClipboard(term string) bool {
	switch strings.ToLower(term) {
	case "", "dumb", "linux":
		return false
	}
	return true
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.GetUserID() == "" {
		if err := runSetupForm(cfg); err != nil {
			return err
		}
	}

	defer logger.Close()

	room, uid := cfg.GetRoom(), cfg.GetUserID()
	if err := cfg.Save(); err != nil {
		logger.Warn("CLI: saving config: %v", err)
	}

	opts := app.Options{
		Config:            cfg,
		Version:           version,
		Room:              room,
		UserID:            uid,
		TerminalClipboard: terminalClipboard(os.Getenv("TERM")),
		Offline:           flagOffline,
	}
	if bridge, ok := host.Detect(cfg.GetDownloadDir(), cfg.GetUpdateURL()); ok {
		opts.Bridge = bridge
	}

	if flagOffline {
		opts.Log = remote.NewMemory(nil)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		ws, err := remote.DialWS(ctx, cfg.GetServerURL(), room, uid)
		cancel()
		if err != nil {
			logger.Error("CLI: dial %s: %v", cfg.GetServerURL(), err)
			opts.StartupErr = err
		} else {
			opts.Log = ws
		}
	}

	m := app.New(opts)
	defer m.Close()
	p := tea.NewProgram(m)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}
