package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pycnick/apprelay/internal/relay"
	"github.com/pycnick/apprelay/internal/relay/models"
	"github.com/sirupsen/logrus"
)

type RelayUseCase struct {
	rR       relay.Repository
	client   relay.Client
	target   string
	attempts *prometheus.CounterVec
	log      *logrus.Logger
}

func NewRelayUseCase(log *logrus.Logger, rR relay.Repository, client relay.Client, target string, reg prometheus.Registerer) (*RelayUseCase, error) {
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "apprelay",
		Name:      "relay_attempts_total",
		Help:      "Outbound relay calls by outcome.",
	}, []string{"outcome"})
	if err := reg.Register(attempts); err != nil {
		return nil, errors.Wrap(err, "register relay metrics")
	}

	return &RelayUseCase{
		rR:       rR,
		client:   client,
		target:   target,
		attempts: attempts,
		log:      log,
	}, nil
}

func (rUC *RelayUseCase) Target() string {
	return rUC.target
}

func (rUC *RelayUseCase) Relay(ctx context.Context) ([]byte, error) {
	request := models.NewRelayRequest(rUC.target)

	started := time.Now()
	response, err := rUC.client.SendHttpRequest(ctx, request)

	record := &models.RelayRecord{
		Id:        uuid.New(),
		Method:    request.Method,
		URL:       request.URL,
		Duration:  time.Since(started),
		CreatedAt: started.UTC(),
	}
	log := rUC.log.WithFields(logrus.Fields{
		"relay_id": record.Id,
		"url":      request.URL,
	})

	if err != nil {
		record.Error = errors.Cause(err).Error()
		rUC.attempts.WithLabelValues("error").Inc()
		log.WithError(err).Warn("relay call failed")
		rUC.journal(ctx, record)
		return nil, err
	}

	log.Info("Calling " + request.URL)
	record.Status = response.Status
	record.Body = string(response.Body)
	rUC.attempts.WithLabelValues("success").Inc()
	rUC.journal(ctx, record)

	return response.Body, nil
}

// journal stores the record even if the inbound request was cancelled
// meanwhile. Failures are only logged.
func (rUC *RelayUseCase) journal(ctx context.Context, record *models.RelayRecord) {
	if err := rUC.rR.Create(context.WithoutCancel(ctx), record); err != nil {
		rUC.log.WithError(err).WithField("relay_id", record.Id).Warn("relay journal write failed")
	}
}

func (rUC *RelayUseCase) GetHistory(ctx context.Context) ([]*models.RelayRecord, error) {
	records, err := rUC.rR.ReadAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "read relay history")
	}

	return records, nil
}
