package repository

import (
	"context"
	"io"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/pkg/errors"
	"github.com/pycnick/apprelay/internal/relay/models"
	"github.com/sirupsen/logrus"
)

type HttpClient struct {
	client *http.Client
	log    *logrus.Logger
}

// NewHttpClient uses a client with its own transport when none is given.
// Timeouts and keep-alive behavior are left at the library defaults.
func NewHttpClient(log *logrus.Logger, client *http.Client) *HttpClient {
	if client == nil {
		client = cleanhttp.DefaultClient()
	}
	return &HttpClient{
		client: client,
		log:    log,
	}
}

func (hC *HttpClient) SendHttpRequest(ctx context.Context, httpRequest *models.HttpRequest) (*models.HttpResponse, error) {
	request, err := http.NewRequestWithContext(ctx, httpRequest.Method, httpRequest.URL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}

	for key, values := range httpRequest.Headers {
		for _, value := range values {
			request.Header.Add(key, value)
		}
	}

	hC.log.WithFields(logrus.Fields{
		"method": httpRequest.Method,
		"url":    httpRequest.URL,
	}).Debug("sending http request")

	response, err := hC.client.Do(request)
	if err != nil {
		return nil, errors.Wrap(err, "send request")
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}

	return &models.HttpResponse{
		Status:  response.StatusCode,
		Headers: response.Header,
		Body:    responseBody,
	}, nil
}
