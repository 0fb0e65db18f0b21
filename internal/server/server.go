// Package server assembles the echo instance shared by both services:
// request logging through logrus, panic recovery, Prometheus metrics and
// the /health and /metrics endpoints.
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const shutdownGrace = 10 * time.Second

type Server struct {
	Echo     *echo.Echo
	Registry *prometheus.Registry

	service  string
	requests *prometheus.CounterVec
	log      *logrus.Logger
}

func New(service string, log *logrus.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "apprelay",
		Name:      "http_requests_total",
		Help:      "Served HTTP requests.",
	}, []string{"service", "method", "path", "status"})
	registry.MustRegister(requests)

	s := &Server{
		Echo:     e,
		Registry: registry,
		service:  service,
		requests: requests,
		log:      log,
	}

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:     true,
		LogURI:        true,
		LogStatus:     true,
		LogLatency:    true,
		LogError:      true,
		LogValuesFunc: s.logRequest,
	}))
	e.Use(s.countRequests)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: s.logPanic,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return s
}

func (s *Server) logRequest(c echo.Context, v middleware.RequestLoggerValues) error {
	entry := s.log.WithFields(logrus.Fields{
		"service": s.service,
		"method":  v.Method,
		"uri":     v.URI,
		"status":  v.Status,
		"latency": v.Latency.String(),
	})
	if v.Error != nil {
		entry.WithError(v.Error).Warn("request")
		return nil
	}
	entry.Info("request")
	return nil
}

// logPanic hands err back so Recover still answers 500.
func (s *Server) logPanic(c echo.Context, err error, stack []byte) error {
	s.log.WithError(err).WithFields(logrus.Fields{
		"service": s.service,
		"uri":     c.Request().RequestURI,
		"stack":   string(stack),
	}).Error("panic recovered")
	return err
}

func (s *Server) countRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)

		status := c.Response().Status
		if err != nil {
			status = http.StatusInternalServerError
			var he *echo.HTTPError
			if errors.As(err, &he) {
				status = he.Code
			}
		}

		path := c.Path()
		if path == "" {
			path = "unmatched"
		}
		s.requests.WithLabelValues(s.service, c.Request().Method, path, strconv.Itoa(status)).Inc()
		return err
	}
}

func (s *Server) Start(addr string) error {
	s.log.Infof("Running on port %s", addr)
	if err := s.Echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return errors.Wrapf(err, "%s listen on %s", s.service, addr)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}

// Run serves on addr until ctx is done, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	errc := make(chan error, 1)
	go func() {
		errc <- s.Start(addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.WithField("service", s.service).Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return <-errc
}
