package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pipdeck/pipdeck/calendar"
	"github.com/pipdeck/pipdeck/config"
	"github.com/pipdeck/pipdeck/newsletter"
	"github.com/pipdeck/pipdeck/rates"
	"github.com/pipdeck/pipdeck/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the pipdeck HTTP API",
	Long: `Run the HTTP API behind the site: position sizing, the
economic-calendar feed, and the newsletter relay.

Example:
  pipdeck serve --config pipdeck.yaml`,
	RunE: runServe,
}

var serveConfigPath string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	serveCmd.MarkFlagRequired("config")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := config.LoadFromFile(serveConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Rates.APIKey == "" {
		log.Warn().Msg("rates.api_key is empty; rate lookups will be rejected by the source")
	}

	ratesTimeout, _ := config.ParseDuration(cfg.Rates.Timeout, 10*time.Second)
	resolver := rates.NewResolver(rates.NewClient(cfg.Rates.BaseURL, cfg.Rates.APIKey, ratesTimeout))

	store, err := calendar.NewStore(cfg.Calendar.DBPath)
	if err != nil {
		return fmt.Errorf("open calendar store: %w", err)
	}
	defer store.Close()

	newsTimeout, _ := config.ParseDuration(cfg.Newsletter.Timeout, 10*time.Second)
	news := newsletter.NewClient(cfg.Newsletter.FormURL, cfg.Newsletter.HoneypotField, newsTimeout)

	readTimeout, _ := config.ParseDuration(cfg.Server.ReadTimeout, 10*time.Second)
	writeTimeout, _ := config.ParseDuration(cfg.Server.WriteTimeout, 10*time.Second)
	requestTimeout, _ := config.ParseDuration(cfg.Server.RequestTimeout, 15*time.Second)

	handlers := web.NewHandlers(resolver, store, news, cfg.Newsletter.HoneypotField, log)
	server := web.NewServer(web.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		RequestTimeout: requestTimeout,
		AllowedOrigin:  cfg.Server.AllowedOrigin,
	}, handlers, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}
