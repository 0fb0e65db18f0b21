package connector

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
	"github.com/pycnick/apprelay/internal/config"
)

type PostgresConnector struct {
	Host       string `json:"host"`
	Port       string `json:"port"`
	User       string `json:"user"`
	Password   string `json:"password"`
	Database   string `json:"database"`
	ConnString string `json:"conn_string"`
}

func NewPostgresConnector(cfg config.PostgresConfig) *PostgresConnector {
	return &PostgresConnector{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		Database: cfg.Database,
		ConnString: fmt.Sprintf("user=%s password=%s host=%s port=%s dbname=%s",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database),
	}
}

func (pC *PostgresConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(pC.ConnString)
	if err != nil {
		return nil, errors.Wrap(err, "parse postgres config")
	}
	poolConfig.MinConns = 5
	poolConfig.MaxConns = 15

	pool, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Wrapf(err, "connect to postgres at %s:%s", pC.Host, pC.Port)
	}

	return pool, nil
}
