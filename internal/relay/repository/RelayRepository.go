package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
	"github.com/pycnick/apprelay/internal/relay/models"
	"github.com/sirupsen/logrus"
)

const relaysSchema = `CREATE TABLE IF NOT EXISTS relays (
	id          UUID PRIMARY KEY,
	method      TEXT NOT NULL,
	url         TEXT NOT NULL,
	status      INTEGER NOT NULL,
	body        TEXT NOT NULL,
	error       TEXT NOT NULL,
	duration_ns BIGINT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
)`

type RelayRepository struct {
	pool *pgxpool.Pool
	log  *logrus.Logger
}

func NewRelayRepository(log *logrus.Logger, pool *pgxpool.Pool) *RelayRepository {
	return &RelayRepository{
		pool: pool,
		log:  log,
	}
}

func (rR *RelayRepository) EnsureSchema(ctx context.Context) error {
	if _, err := rR.pool.Exec(ctx, relaysSchema); err != nil {
		return errors.Wrap(err, "create relays table")
	}
	return nil
}

func (rR *RelayRepository) Create(ctx context.Context, record *models.RelayRecord) error {
	if record.Id == uuid.Nil {
		record.Id = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	sqlQuery := `INSERT INTO relays (id, method, url, status, body, error, duration_ns, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := rR.pool.Exec(ctx, sqlQuery,
		record.Id,
		record.Method,
		record.URL,
		record.Status,
		record.Body,
		record.Error,
		int64(record.Duration),
		record.CreatedAt); err != nil {
		return errors.Wrap(err, "insert relay record")
	}

	rR.log.WithField("relay_id", record.Id).Debug("relay record stored")
	return nil
}

func (rR *RelayRepository) ReadAll(ctx context.Context) ([]*models.RelayRecord, error) {
	records := []*models.RelayRecord{}
	sqlQuery := `SELECT id, method, url, status, body, error, duration_ns, created_at
		FROM relays ORDER BY created_at DESC`

	rows, err := rR.pool.Query(ctx, sqlQuery)
	if err != nil {
		return nil, errors.Wrap(err, "query relay records")
	}
	defer rows.Close()

	for rows.Next() {
		record := &models.RelayRecord{}
		var durationNs int64
		if err := rows.Scan(&record.Id,
			&record.Method,
			&record.URL,
			&record.Status,
			&record.Body,
			&record.Error,
			&durationNs,
			&record.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan relay record")
		}
		record.Duration = time.Duration(durationNs)

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate relay records")
	}

	return records, nil
}
