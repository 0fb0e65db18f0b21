package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pycnick/apprelay/internal/config"
	greeting "github.com/pycnick/apprelay/internal/greeting/delivery"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app2 := server.New("app2", logger)
	greeting.NewHttpDelivery(app2.Echo, cfg.App2Greeting())

	if err := app2.Run(ctx, cfg.Addr()); err != nil {
		logger.Fatal(err)
	}
}
