package database

import (
	"chat_relay_service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewGormConnection opens the chat store on postgres, retrying like NewDatabaseConnection.
func NewGormConnection(d Connection) (*gorm.DB, error) {
	return OpenGorm(postgres.Open(d.ConnectStr), d)
}

// OpenGorm opens any dialector with the service defaults (tests pass sqlite here).
func OpenGorm(dialector gorm.Dialector, d Connection) (*gorm.DB, error) {
	var db *gorm.DB
	err := retry(d.RetryCount, d.RetryInterval, func(attempt int) error {
		var openErr error
		db, openErr = gorm.Open(dialector, &gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if openErr != nil {
			logger.Log.Warn(
				"Failed to open chat store, retrying...",
				zap.Int("attempt", attempt),
				zap.String("dialect", dialector.Name()),
				zap.Error(openErr),
			)
		}
		return openErr
	})
	return db, err
}
