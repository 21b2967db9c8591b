package cmd

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/help"
	huh "charm.land/huh/v2"
	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/parleychat/parley/internal/config"
	"github.com/parleychat/parley/internal/remote"
	"github.com/parleychat/parley/internal/ui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Choose your user id, server and default room",
	Long: `Opens a short form for the settings parley needs before it can join a
room. It runs automatically the first time parley starts without a user id.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runSetupForm(cfg)
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

// validateUserID applies the config's user id rules to form input.
func validateUserID(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("a user id is required")
	}
	if strings.ContainsAny(s, " \t\n/") {
		return fmt.Errorf("no spaces or '/' please")
	}
	return nil
}

// validateServer checks the relay URL through the config validator.
func validateServer(s string) error {
	probe := &config.Config{ServerURL: strings.TrimSpace(s)}
	if err := probe.Validate(); err != nil {
		return fmt.Errorf("use a ws:// or wss:// URL")
	}
	return nil
}

func runSetupForm(cfg *config.Config) error {
	uid := cfg.GetUserID()
	server := cfg.GetServerURL()
	room := cfg.GetRoom()
	notify := cfg.GetNotificationsEnabled()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("User id").
				Description("How others see you in a room").
				Value(&uid).
				Validate(validateUserID),
			huh.NewInput().
				Title("Relay").
				Value(&server).
				Validate(validateServer),
			huh.NewInput().
				Title("Room").
				Description("For a private room use <you>" + remote.PrivateSeparator + "<them>").
				Value(&room),
			huh.NewConfirm().
				Title("Desktop notifications for new messages?").
				Value(&notify),
		).Title("Welcome to parley"),
	).WithTheme(setupTheme())

	if err := form.Run(); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}

	cfg.SetUserID(strings.TrimSpace(uid))
	cfg.SetServerURL(strings.TrimSpace(server))
	if r := strings.TrimSpace(room); r != "" {
		cfg.SetRoom(r)
	}
	cfg.SetNotificationsEnabled(notify)
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}
	fmt.Printf("Saved to %s\n", cfg.Path())
	return nil
}

// setupTheme returns a huh theme in the current UI palette.
func setupTheme() huh.Theme {
	return huh.ThemeFunc(func(isDark bool) *huh.Styles {
		t := huh.ThemeBase(isDark)

		t.Focused.Base = lipgloss.NewStyle().
			PaddingLeft(1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(ui.ColorPrimary)
		t.Focused.Card = t.Focused.Base
		t.Focused.Title = lipgloss.NewStyle().Foreground(ui.ColorText).Bold(true)
		t.Focused.Description = lipgloss.NewStyle().Foreground(ui.ColorTextMuted).Italic(true)
		t.Focused.ErrorIndicator = lipgloss.NewStyle().Foreground(ui.ColorWarning).SetString(" *")
		t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(ui.ColorWarning)

		t.Focused.FocusedButton = lipgloss.NewStyle().
			Padding(0, 2).
			MarginRight(1).
			Foreground(ui.ColorTextInverse).
			Background(ui.ColorPrimary)
		t.Focused.BlurredButton = lipgloss.NewStyle().
			Padding(0, 2).
			MarginRight(1).
			Foreground(ui.ColorTextMuted)

		t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(ui.ColorPrimary)
		t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(ui.ColorTextMuted)
		t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(ui.ColorPrimary)
		t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(ui.ColorText)

		t.Blurred = t.Focused
		t.Blurred.Base = lipgloss.NewStyle().PaddingLeft(2)
		t.Blurred.Card = t.Blurred.Base

		t.Group.Title = lipgloss.NewStyle().Foreground(ui.ColorSecondary).Bold(true)
		t.Group.Description = lipgloss.NewStyle().Foreground(ui.ColorTextMuted)

		t.FieldSeparator = lipgloss.NewStyle().SetString("\n")
		t.Help = help.New().Styles

		return t
	})
}
