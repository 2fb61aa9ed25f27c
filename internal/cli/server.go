package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"quiz-intake-service/internal/config"
	transport "quiz-intake-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz intake server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	migrated := true
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			// Offline start is allowed; the probe retries once the database answers.
			log.Printf("migrations skipped: %v", err)
			migrated = false
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	runCtx, stopRun := context.WithCancel(ctx)
	defer stopRun()

	services, probe, err := buildServices(runCtx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := services.Close(); err != nil {
			log.Printf("close services: %v", err)
		}
	}()

	// Drain what a previous run left behind.
	if services.Monitor.IsOnline() && migrated {
		go func() {
			if _, err := services.Sync.SyncAll(runCtx); err != nil {
				log.Printf("startup sync: %v", err)
			}
		}()
	}
	if probe != nil && !migrated {
		probe = migratingProbe(probe, func(ctx context.Context) error {
			return runMigrationsWithConfig(ctx, cfg)
		})
	}
	if probe != nil {
		go services.Monitor.Run(runCtx, probe, config.TTLDuration(cfg.Connectivity.ProbeInterval, 5*time.Second))
	}

	handler := transport.NewHandler(services, transport.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: config.TTLDuration(cfg.Server.RequestTimeout, 30*time.Second),
	})
	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("starting quiz intake service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}
	stopRun()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
