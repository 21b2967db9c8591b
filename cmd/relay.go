package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/parleychat/parley/internal/relay"
)

var (
	flagRelayAddr     string
	flagRelayDataPath string
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Run a parley relay",
	Long: `Runs the realtime store parley clients connect to. Records are kept in a
Pebble database under --data-path; an empty path keeps them in memory.`,
	RunE: runRelay,
}

func init() {
	relayCmd.Flags().StringVar(&flagRelayAddr, "addr", ":7420", "listen address")
	relayCmd.Flags().StringVar(&flagRelayDataPath, "data-path", "parley-relay/data", "directory for the Pebble db (empty for memory)")
	rootCmd.AddCommand(relayCmd)
}

func runRelay(cmd *cobra.Command, args []string) error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	if debugMode {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	store, err := relay.OpenStore(flagRelayDataPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	srv := relay.New(store)
	httpSrv := &http.Server{
		Addr:              flagRelayAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("[relay] listening on %s", flagRelayAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(sctx); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("[relay] http server shutdown error")
	}
	srv.Shutdown()
	log.Info().Msg("[relay] shutdown complete")
	return nil
}
