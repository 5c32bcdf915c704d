package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/killallgit/castsync/api"
	"github.com/killallgit/castsync/api/types"
	"github.com/killallgit/castsync/internal/services/workers"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local bridge API",
	Long: `Start the castsync bridge: a local HTTP API over your Pocket Casts account
for scripts and other tools.

Set sync.interval (CASTSYNC_SYNC_INTERVAL) to keep the lists named in
sync.lists fresh in the local library while the bridge runs.

Example:
  castsync serve
  castsync serve --port 9090
  castsync serve --host 0.0.0.0 --port 8080`,
	Args: cobra.NoArgs,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "server host (overrides server.host)")
	serveCmd.Flags().Int("port", 0, "server port (overrides server.port)")
}

func runServer(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.config.Server
	host, _ := cmd.Flags().GetString("host")
	if host == "" {
		host = cfg.Host
	}
	port, _ := cmd.Flags().GetInt("port")
	if port == 0 {
		port = cfg.Port
	}
	address := fmt.Sprintf("%s:%d", host, port)

	server := api.NewServer(api.ServerConfig{
		Address:        address,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
		RateLimit:      cfg.RateLimit,
		RateBurst:      cfg.RateBurst,
		ReleaseMode:    a.config.Environment == "production",
	}, &types.Dependencies{
		DB:             a.db,
		EpisodeService: a.episodes,
		Cache:          a.cache,
		Version:        Version,
	})
	if err := server.Initialize(); err != nil {
		return fmt.Errorf("initializing server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if interval := a.config.Sync.Interval; interval > 0 {
		worker, err := workers.NewSyncWorker(a.episodes, a.config.Sync.Lists, interval)
		if err != nil {
			return fmt.Errorf("configuring background sync: %w", err)
		}
		if err := worker.Start(ctx); err != nil {
			return err
		}
		defer worker.Stop()
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	logrus.WithField("address", address).Info("bridge listening")

	select {
	case <-ctx.Done():
		logrus.Info("shutting down bridge")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logrus.Info("bridge stopped")
	return nil
}
