package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parleychat/parley/internal/config"
	"github.com/parleychat/parley/internal/logger"
)

var (
	skipConfirm bool
	clearRooms  bool
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove log files and, optionally, the recent room list",
	Long: `Removes parley's debug logs from /tmp. With --rooms it also forgets the
recent room list kept in the config file.

It will prompt for confirmation before proceeding unless the --yes flag is used.`,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip confirmation prompt")
	clearCmd.Flags().BoolVar(&clearRooms, "rooms", false, "Also forget recent rooms")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	return runClearWithReader(os.Stdin)
}

// runClearWithReader allows injecting a reader for testing
func runClearWithReader(input io.Reader) error {
	var cfg *config.Config
	var rooms []string
	if clearRooms {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		rooms = cfg.GetRecentRooms()
	}

	fmt.Println("This will clean:")
	fmt.Println("  - All log files in /tmp/parley-*.log")
	if len(rooms) > 0 {
		fmt.Printf("  - %d recent room(s)\n", len(rooms))
	}

	if !skipConfirm {
		if !confirm(input, "Continue?") {
			fmt.Println("Aborted.")
			return nil
		}
	}

	logsCleared, err := logger.ClearLogs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: error clearing logs: %v\n", err)
	}

	forgotten := 0
	for _, room := range rooms {
		if cfg.RemoveRoom(room) {
			forgotten++
		}
	}
	if forgotten > 0 {
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("error saving config: %w", err)
		}
	}

	fmt.Println()
	fmt.Println("Cleaned:")
	fmt.Printf("  - %d log file(s) removed\n", logsCleared)
	if forgotten > 0 {
		fmt.Printf("  - %d recent room(s) forgotten\n", forgotten)
	}
	return nil
}

// confirm prompts the user for y/n confirmation
func confirm(input io.Reader, prompt string) bool {
	reader := bufio.NewReader(input)
	fmt.Printf("%s [y/N]: ", prompt)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
