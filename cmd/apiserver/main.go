// Command apiserver runs the DealRadar HTTP API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/DealRadar/internal/application/tracker"
	"github.com/turtacn/DealRadar/internal/config"
	"github.com/turtacn/DealRadar/internal/infrastructure/database/postgres"
	"github.com/turtacn/DealRadar/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/DealRadar/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/DealRadar/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DealRadar/internal/infrastructure/monitoring/prometheus"
	httpapi "github.com/turtacn/DealRadar/internal/interfaces/http"
)

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Migrate.Auto {
		if err := postgres.Migrate(db, cfg.Migrate.SourceURL, logger); err != nil {
			return err
		}
	}

	producer := kafka.NewNopProducer()
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Producer, logger)
	}
	defer producer.Close()

	metrics := prometheus.NewMetrics()

	svc := tracker.NewService(tracker.Deps{
		KeyDates:   repositories.NewKeyDateRepo(db, logger),
		Opps:       repositories.NewOpportunityRepo(db, logger),
		Rules:      repositories.NewRuleRepo(db, logger),
		Dismissals: repositories.NewDismissalRepo(db, logger),
		Producer:   producer,
		Metrics:    metrics,
		Logger:     logger,
	})

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Service: svc,
		DB:      db,
		Metrics: metrics,
		Logger:  logger,
	})
	server := httpapi.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if err := server.Shutdown(context.Background()); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
