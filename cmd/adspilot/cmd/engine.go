package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adspilot/engine/internal/core/api"
	"github.com/adspilot/engine/internal/core/auth"
	"github.com/adspilot/engine/internal/core/config"
	"github.com/adspilot/engine/internal/core/db"
	"github.com/adspilot/engine/internal/core/server"
	"github.com/adspilot/engine/internal/engine"
	"github.com/adspilot/engine/internal/logs"
	"github.com/adspilot/engine/internal/shopee"
	"github.com/adspilot/engine/internal/store"
)

const Version = "0.1.0"

var engineCmd = &cobra.Command{
	Use:   "engine",
	Short: "Start the rule engine scheduler and read API",
	RunE:  runEngine,
}

func init() {
	rootCmd.AddCommand(engineCmd)
	engineCmd.Flags().String("host", "0.0.0.0", "HTTP server host")
	engineCmd.Flags().Int("port", 8080, "HTTP server port")
}

func runEngine(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("host") {
		cfg.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}

	if dbURL == "" {
		return fmt.Errorf("--db-url required")
	}
	database, err := db.Open(dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := db.MigrateUp(database); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	queries, err := db.LoadQueries(database)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	secrets, err := config.HMACSecrets()
	if err != nil {
		return fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	if len(secrets) == 0 {
		return fmt.Errorf("no HMAC secrets configured (set AP_HMAC_SECRET environment variable)")
	}

	logger := slog.Default()

	ruleStore := store.NewRules(queries)
	campaigns := store.NewCampaigns(queries)
	registry := store.NewRegistry(queries)
	logStore := store.NewLogs(queries)

	client := shopee.NewClient(cfg.MarketplaceURL, cfg.ActionTimeout)
	executor := engine.NewExecutor(client)
	notifier := engine.SlogNotifier{Logger: logger}

	orchestrator := engine.NewOrchestrator(
		ruleStore, campaigns, registry, logStore,
		executor, notifier, logger,
		engine.OrchestratorConfig{
			Workers:       cfg.Workers,
			ActionTimeout: cfg.ActionTimeout,
		},
	)
	scheduler := engine.NewScheduler(orchestrator, cfg.RunInterval, logger)

	authenticator := auth.NewAuthenticator(secrets, queries)
	reader := logs.NewReader(logStore, ruleStore, campaigns, registry)

	service, err := api.NewService(reader, logger)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	httpServer, err := server.NewHTTPServer(cfg, service, authenticator)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("starting AdsPilot engine",
		"version", Version,
		"host", cfg.Host,
		"port", cfg.Port,
		"run_interval", cfg.RunInterval)

	errChan := make(chan error, 2)
	go func() {
		if err := httpServer.Start(ctx); err != nil {
			errChan <- err
		}
	}()
	go func() {
		if err := scheduler.Start(ctx); err != nil && err != context.Canceled {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errChan:
		stop()
		logger.Error("fatal error", "error", err)
	}

	if err := httpServer.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}
	return nil
}
