package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pycnick/apprelay/internal/relay/models"
)

const DefaultMemoryCapacity = 100

// MemoryRepository keeps the most recent relay records when no database
// is configured. Oldest records are dropped once capacity is reached.
type MemoryRepository struct {
	mu       sync.RWMutex
	records  []*models.RelayRecord
	capacity int
}

func NewMemoryRepository(capacity int) *MemoryRepository {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryRepository{
		records:  make([]*models.RelayRecord, 0, capacity),
		capacity: capacity,
	}
}

func (mR *MemoryRepository) Create(_ context.Context, record *models.RelayRecord) error {
	if record.Id == uuid.Nil {
		record.Id = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	stored := *record

	mR.mu.Lock()
	defer mR.mu.Unlock()

	if len(mR.records) == mR.capacity {
		copy(mR.records, mR.records[1:])
		mR.records = mR.records[:len(mR.records)-1]
	}
	mR.records = append(mR.records, &stored)
	return nil
}

// ReadAll returns copies, newest first.
func (mR *MemoryRepository) ReadAll(_ context.Context) ([]*models.RelayRecord, error) {
	mR.mu.RLock()
	defer mR.mu.RUnlock()

	records := make([]*models.RelayRecord, 0, len(mR.records))
	for i := len(mR.records) - 1; i >= 0; i-- {
		record := *mR.records[i]
		records = append(records, &record)
	}
	return records, nil
}
