package database

import (
	"context"
	"fmt"

	"chat_relay_service/pkg/logger"

	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

// NewDatabaseConnection create a new postgresSQL pool
func NewDatabaseConnection(ctx context.Context, d Connection) (*pgxpool.Pool, error) {
	dbConfig, err := pgxpool.ParseConfig(d.ConnectStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	var pool *pgxpool.Pool
	err = retry(d.RetryCount, d.RetryInterval, func(attempt int) error {
		var connErr error
		pool, connErr = pgxpool.ConnectConfig(ctx, dbConfig)
		if connErr != nil {
			logger.Log.Warn(
				"Failed to connect to postgreSQL database, retrying...",
				zap.Int("attempt", attempt),
				zap.String("host", dbConfig.ConnConfig.Host),
				zap.Error(connErr),
			)
		}
		return connErr
	})
	return pool, err
}
