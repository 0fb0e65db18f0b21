package relay

import (
	"context"

	"github.com/pycnick/apprelay/internal/relay/models"
)

type UseCase interface {
	// Relay performs one GET against the target and returns the upstream
	// body regardless of its status code.
	Relay(ctx context.Context) ([]byte, error)
	GetHistory(ctx context.Context) ([]*models.RelayRecord, error)
	Target() string
}
