package repository

import (
	"errors"
	"strings"

	"chat_relay_service/internal/chat/domain"

	"gorm.io/gorm"
)

// Migrate creates or updates the chat tables and their unique indexes.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Chat{},
		&domain.Group{},
		&domain.GroupParticipant{},
		&domain.Message{},
	)
}

// IsUniqueViolation reports a unique-constraint failure from either dialect.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

// IsNotFound reports a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
