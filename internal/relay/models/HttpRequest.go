package models

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

type HttpRequest struct {
	Method  string
	URL     string
	Headers http.Header
}

// NewRelayRequest builds the descriptor sent to the relay target.
func NewRelayRequest(url string) *HttpRequest {
	headers := http.Header{}
	headers.Set("cache-control", "no-cache")

	return &HttpRequest{
		Method:  http.MethodGet,
		URL:     url,
		Headers: headers,
	}
}

type HttpResponse struct {
	Status  int
	Headers http.Header
	Body    []byte
}

type RelayRecord struct {
	Id        uuid.UUID     `json:"id"`
	Method    string        `json:"method"`
	URL       string        `json:"url"`
	Status    int           `json:"status"`
	Body      string        `json:"body,omitempty"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

func (rR *RelayRecord) Failed() bool {
	return rR.Error != ""
}
