package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pycnick/apprelay/internal/config"
	"github.com/pycnick/apprelay/internal/database/postgres/connector"
	greeting "github.com/pycnick/apprelay/internal/greeting/delivery"
	"github.com/pycnick/apprelay/internal/relay"
	"github.com/pycnick/apprelay/internal/relay/delivery"
	"github.com/pycnick/apprelay/internal/relay/repository"
	"github.com/pycnick/apprelay/internal/relay/usecase"
	"github.com/pycnick/apprelay/internal/server"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		logrus.Fatal(err)
	}

	if cfg.RejectedPort != "" {
		logger.Warnf("Port %q is not a valid port, using %d", cfg.RejectedPort, config.DefaultPort)
	}
	if cfg.App2 == "" {
		logger.Warn("APP_2 is not set, relay requests will fail")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var relayRepository relay.Repository
	if cfg.Postgres.Enabled() {
		connPool, err := connector.NewPostgresConnector(cfg.Postgres).Connect(ctx)
		if err != nil {
			logger.Fatal(err)
		}
		defer connPool.Close()

		pgRepository := repository.NewRelayRepository(logger, connPool)
		if err := pgRepository.EnsureSchema(ctx); err != nil {
			logger.Fatal(err)
		}
		relayRepository = pgRepository
	} else {
		logger.Debug("No PSQL_HOST env, keeping relay history in memory")
		relayRepository = repository.NewMemoryRepository(repository.DefaultMemoryCapacity)
	}

	app1 := server.New("app1", logger)

	relayUseCase, err := usecase.NewRelayUseCase(logger,
		relayRepository,
		repository.NewHttpClient(logger, nil),
		cfg.TargetURL(),
		app1.Registry)
	if err != nil {
		logger.Fatal(err)
	}

	logger.WithField("target", relayUseCase.Target()).Info("relay target configured")

	greeting.NewHttpDelivery(app1.Echo, config.App1Greeting)
	delivery.NewHttpDelivery(app1.Echo, logger, relayUseCase)

	if err := app1.Run(ctx, cfg.Addr()); err != nil {
		logger.Fatal(err)
	}
}
