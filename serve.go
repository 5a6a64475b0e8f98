package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/minios-linux/lokitd/config"
	"github.com/minios-linux/lokitd/i18n"
	"github.com/minios-linux/lokitd/server"
	"github.com/minios-linux/lokitd/translate"
)

// ---------------------------------------------------------------------------
// serve (run the HTTP service)
// ---------------------------------------------------------------------------

type serveArgs struct {
	configPath string
	listen     string
	logLevel   string
	otlpAddr   string
}

func newServeCmd() *cobra.Command {
	var a serveArgs

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Long: `Run the lokitd HTTP service until SIGINT or SIGTERM.

Settings are read from lokitd.yaml in the working directory when present.
Flags override the file.`,
		Example: `  lokitd serve
  lokitd serve --listen 127.0.0.1:9000 --log-level debug
  lokitd serve --config /etc/lokitd.yaml --otlp-grpc localhost:4317`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(a, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&a.configPath, "config", config.FileName, "Path to the configuration file")
	cmd.Flags().StringVar(&a.listen, "listen", "", "Listen address (default from config, \":8080\")")
	cmd.Flags().StringVar(&a.logLevel, "log-level", "", "Log level: DEBUG, INFO, WARN, ERROR")
	cmd.Flags().StringVar(&a.otlpAddr, "otlp-grpc", "", "OTLP/gRPC collector address, disabled when empty. Example: localhost:4317")

	return cmd
}

// loadConfig loads the configuration file and applies flag overrides. A
// missing file is only an error when its path was given explicitly.
func loadConfig(a serveArgs, explicitPath bool) (*config.File, error) {
	if explicitPath {
		if _, err := os.Stat(a.configPath); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}

	if a.listen != "" {
		cfg.Listen = a.listen
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.otlpAddr != "" {
		cfg.OTLPGRPC = a.otlpAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(ctx context.Context, cfg *config.File) error {
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	i18n.Init(cfg.Locale)

	shutdownTracing, err := setupTracing(ctx, cfg.OTLPGRPC, cfg.ServiceName)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("flushing traces", "error", err)
		}
	}()

	translator := &translate.Translator{
		Providers:   translate.NewProviders(cfg.Providers),
		Examples:    translate.NewExamples(cfg.Examples),
		Chat:        &translate.OpenAIClient{},
		Temperature: *cfg.Translation.Temperature,
		Timeout:     cfg.Translation.RequestTimeout,
		Logger:      logger,
	}

	srv := &http.Server{
		Addr: cfg.Listen,
		Handler: server.NewServer(logger, translator, server.Options{
			ServiceName:    cfg.ServiceName,
			MaxUploadBytes: cfg.Merge.MaxUploadBytes,
			Filename:       cfg.Merge.Filename,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("start and listen",
		"address", cfg.Listen,
		"otlp-grpc", cfg.OTLPGRPC,
		"service", cfg.ServiceName,
		"version", version,
	)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen and serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
