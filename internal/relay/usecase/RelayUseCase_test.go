package usecase_test

import (
	"context"
	"net/http"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pycnick/apprelay/internal/relay/models"
	"github.com/pycnick/apprelay/internal/relay/repository"
	"github.com/pycnick/apprelay/internal/relay/usecase"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type fakeClient struct {
	requests []*models.HttpRequest
	response *models.HttpResponse
	err      error
}

func (fC *fakeClient) SendHttpRequest(_ context.Context, httpRequest *models.HttpRequest) (*models.HttpResponse, error) {
	fC.requests = append(fC.requests, httpRequest)
	return fC.response, fC.err
}

type failingRepository struct{}

func (failingRepository) Create(context.Context, *models.RelayRecord) error {
	return errors.New("database is gone")
}

func (failingRepository) ReadAll(context.Context) ([]*models.RelayRecord, error) {
	return nil, errors.New("database is gone")
}

var _ = Describe("RelayUseCase", func() {
	const target = "http://app2:8080"

	var (
		client   *fakeClient
		repo     *repository.MemoryRepository
		registry *prometheus.Registry
		hook     *test.Hook
		rUC      *usecase.RelayUseCase
	)

	BeforeEach(func() {
		var logger *logrus.Logger
		logger, hook = test.NewNullLogger()

		client = &fakeClient{}
		repo = repository.NewMemoryRepository(10)
		registry = prometheus.NewRegistry()

		var err error
		rUC, err = usecase.NewRelayUseCase(logger, repo, client, target, registry)
		Expect(err).NotTo(HaveOccurred())
	})

	It("reports its target", func() {
		Expect(rUC.Target()).To(Equal(target))
	})

	Context("when the upstream answers", func() {
		BeforeEach(func() {
			client.response = &models.HttpResponse{Status: http.StatusOK, Body: []byte("Hello from App2")}
		})

		It("sends a no-cache GET to the target", func() {
			_, err := rUC.Relay(context.Background())
			Expect(err).NotTo(HaveOccurred())

			Expect(client.requests).To(HaveLen(1))
			Expect(client.requests[0].Method).To(Equal(http.MethodGet))
			Expect(client.requests[0].URL).To(Equal(target))
			Expect(client.requests[0].Headers.Get("cache-control")).To(Equal("no-cache"))
		})

		It("returns the upstream body", func() {
			body, err := rUC.Relay(context.Background())

			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(Equal("Hello from App2"))
		})

		It("returns the body of non-200 answers too", func() {
			client.response = &models.HttpResponse{Status: http.StatusServiceUnavailable, Body: []byte("down for maintenance")}

			body, err := rUC.Relay(context.Background())

			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(Equal("down for maintenance"))
		})

		It("logs the called url", func() {
			_, _ = rUC.Relay(context.Background())

			Expect(hook.LastEntry()).NotTo(BeNil())
			Expect(hook.LastEntry().Message).To(Equal("Calling " + target))
		})

		It("journals the attempt", func() {
			_, _ = rUC.Relay(context.Background())

			records, err := rUC.GetHistory(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(records[0].URL).To(Equal(target))
			Expect(records[0].Status).To(Equal(http.StatusOK))
			Expect(records[0].Body).To(Equal("Hello from App2"))
			Expect(records[0].Failed()).To(BeFalse())
		})

		It("counts a success", func() {
			_, _ = rUC.Relay(context.Background())

			Expect(relayAttempts(registry, "success")).To(Equal(1.0))
		})
	})

	Context("when the call fails", func() {
		BeforeEach(func() {
			client.err = errors.Wrap(errors.New("dial tcp: lookup undefined: no such host"), "send request")
		})

		It("returns the error", func() {
			body, err := rUC.Relay(context.Background())

			Expect(err).To(HaveOccurred())
			Expect(body).To(BeNil())
			Expect(errors.Cause(err).Error()).To(Equal("dial tcp: lookup undefined: no such host"))
		})

		It("journals the unwrapped error message", func() {
			_, _ = rUC.Relay(context.Background())

			records, _ := rUC.GetHistory(context.Background())
			Expect(records).To(HaveLen(1))
			Expect(records[0].Failed()).To(BeTrue())
			Expect(records[0].Status).To(BeZero())
			Expect(records[0].Error).To(Equal("dial tcp: lookup undefined: no such host"))
		})

		It("does not log the calling notice", func() {
			_, _ = rUC.Relay(context.Background())

			for _, entry := range hook.AllEntries() {
				Expect(entry.Message).NotTo(HavePrefix("Calling"))
			}
		})

		It("counts an error", func() {
			_, _ = rUC.Relay(context.Background())

			Expect(relayAttempts(registry, "error")).To(Equal(1.0))
		})
	})

	Context("when the journal is unavailable", func() {
		BeforeEach(func() {
			logger, _ := test.NewNullLogger()
			var err error
			rUC, err = usecase.NewRelayUseCase(logger, failingRepository{}, client, target, prometheus.NewRegistry())
			Expect(err).NotTo(HaveOccurred())
			client.response = &models.HttpResponse{Status: http.StatusOK, Body: []byte("Hello from App2")}
		})

		It("still relays the body", func() {
			body, err := rUC.Relay(context.Background())

			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(Equal("Hello from App2"))
		})

		It("surfaces history errors", func() {
			_, err := rUC.GetHistory(context.Background())

			Expect(err).To(MatchError(ContainSubstring("database is gone")))
		})
	})

	It("refuses to register its metrics twice", func() {
		logger, _ := test.NewNullLogger()

		_, err := usecase.NewRelayUseCase(logger, repo, client, target, registry)

		Expect(err).To(HaveOccurred())
	})
})

func relayAttempts(registry *prometheus.Registry, outcome string) float64 {
	families, err := registry.Gather()
	Expect(err).NotTo(HaveOccurred())
	for _, family := range families {
		if family.GetName() != "apprelay_relay_attempts_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
