package repository_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/pycnick/apprelay/internal/relay/models"
	"github.com/pycnick/apprelay/internal/relay/repository"
	"github.com/sirupsen/logrus/hooks/test"
)

var _ = Describe("HttpClient", func() {
	var (
		client   *repository.HttpClient
		upstream *httptest.Server
		received *http.Request
	)

	BeforeEach(func() {
		logger, _ := test.NewNullLogger()
		client = repository.NewHttpClient(logger, nil)

		upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			received = r
			w.Header().Set("X-Upstream", "app2")
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("Hello from App2"))
		}))
	})

	AfterEach(func() {
		upstream.Close()
	})

	It("sends the descriptor and returns the upstream response", func() {
		response, err := client.SendHttpRequest(context.Background(), models.NewRelayRequest(upstream.URL))

		Expect(err).NotTo(HaveOccurred())
		Expect(response.Status).To(Equal(http.StatusTeapot))
		Expect(string(response.Body)).To(Equal("Hello from App2"))
		Expect(response.Headers.Get("X-Upstream")).To(Equal("app2"))

		Expect(received.Method).To(Equal(http.MethodGet))
		Expect(received.Header.Get("Cache-Control")).To(Equal("no-cache"))
	})

	It("returns the transport error when the target refuses connections", func() {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		addr := listener.Addr().String()
		Expect(listener.Close()).To(Succeed())

		_, err = client.SendHttpRequest(context.Background(), models.NewRelayRequest("http://"+addr))

		Expect(err).To(HaveOccurred())
		Expect(errors.Cause(err).Error()).To(ContainSubstring(addr))
	})

	It("rejects malformed urls", func() {
		_, err := client.SendHttpRequest(context.Background(), models.NewRelayRequest("http://bad host"))

		Expect(err).To(HaveOccurred())
	})
})
