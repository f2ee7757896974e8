package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bean-noodles/recon-server/config"
	"github.com/bean-noodles/recon-server/internal/api"
	"github.com/bean-noodles/recon-server/internal/classifier"
	"github.com/bean-noodles/recon-server/internal/recon"
	"github.com/bean-noodles/recon-server/internal/store"
)

// serveCmd is the cobra command that starts the recon API server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the recon api server",
	Run: func(cmd *cobra.Command, _ []string) {
		err := serve(cmd.Context())
		cobra.CheckErr(err)
	},
}

// init registers the serve command and its flags on the root command
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.PersistentFlags().String("config", "./config/.config.yaml", "config file location")
}

// serve initializes dependencies and starts the recon API server
func serve(ctx context.Context) error {
	// a local .env is a development convenience; absence is fine
	_ = godotenv.Load()

	cfgPath := k.String("config")

	cfg, err := config.Load(&cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cfg.Server.Debug = k.Bool("debug")
	cfg.Server.Pretty = k.Bool("pretty")

	db, err := setupStore(cfg)
	if err != nil {
		return fmt.Errorf("setting up store: %w", err)
	}

	defer func() { _ = db.Close() }()

	model, err := setupClassifier(cfg)
	if err != nil {
		return fmt.Errorf("setting up classifier: %w", err)
	}

	service, err := recon.NewService(model, db, db)
	if err != nil {
		return fmt.Errorf("setting up recon service: %w", err)
	}

	handler := api.NewRouter(api.RouterConfig{
		Recon:       service,
		Users:       db,
		MaxBodySize: cfg.Server.MaxBodySize,
		CORSOrigin:  cfg.Server.CORSOrigin,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGracePeriod)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
	}()

	log.Info().Str("listen", cfg.Server.Listen).Str("model", cfg.Classifier.Model).Msg("starting recon service")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}

	return nil
}

// setupStore opens the SQLite store from config
func setupStore(cfg *config.Config) (*store.Store, error) {
	return store.Open(cfg.Storage.Dir, store.DefaultOptions())
}

// setupClassifier builds the long-lived classifier client from config. It is
// constructed once here and injected read-only into the pipeline.
func setupClassifier(cfg *config.Config) (*classifier.OpenAI, error) {
	return classifier.New(
		cfg.Classifier.APIKey,
		classifier.WithBaseURL(cfg.Classifier.BaseURL),
		classifier.WithModel(cfg.Classifier.Model),
		classifier.WithTemperature(cfg.Classifier.Temperature),
		classifier.WithHTTPClient(&http.Client{Timeout: cfg.Classifier.RequestTimeout}),
	)
}
