package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/pycnick/apprelay/internal/greetcheck"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	opts := greetcheck.Options{}
	var (
		randomQuery bool
		verbose     bool
	)

	root := &cobra.Command{
		Use:          "greetcheck",
		Short:        "Fire concurrent GET / requests and verify the greeting",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				logger.SetLevel(logrus.DebugLevel)
			}
			if randomQuery {
				query, err := greetcheck.BabbleQuery()
				if err != nil {
					return err
				}
				opts.Query = query
			}
			return greetcheck.NewChecker(logger, nil).Check(cmd.Context(), opts)
		},
	}

	flags := root.Flags()
	flags.StringVar(&opts.URL, "url", "http://localhost:8080", "base URL of the service")
	flags.StringVar(&opts.Expect, "expect", "Hello from App1", "exact greeting every response must carry")
	flags.IntVarP(&opts.Requests, "requests", "n", 10, "number of requests")
	flags.IntVarP(&opts.Concurrency, "concurrency", "c", 0, "maximum requests in flight (0 means all at once)")
	flags.BoolVar(&randomQuery, "random-query", false, "attach random dictionary words as query parameters")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log every request")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error(err)
		stop()
		os.Exit(1)
	}
}
