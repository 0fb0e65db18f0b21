package relay

import (
	"context"

	"github.com/pycnick/apprelay/internal/relay/models"
)

type Repository interface {
	Create(ctx context.Context, record *models.RelayRecord) error
	ReadAll(ctx context.Context) ([]*models.RelayRecord, error)
}

type Client interface {
	SendHttpRequest(ctx context.Context, httpRequest *models.HttpRequest) (*models.HttpResponse, error)
}
