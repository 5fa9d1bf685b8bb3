package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"chat_relay_service/internal/chat/repository"
)

// Fingerprint digest of "{sender}_{chat}_{text}". Same triple, same fingerprint.
func Fingerprint(senderID, chatID int64, text string) string {
	raw := strconv.FormatInt(senderID, 10) + "_" + strconv.FormatInt(chatID, 10) + "_" + text
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Deduplicator 訊息去重
type Deduplicator struct {
	messages repository.MessageRepository
}

// NewDeduplicator create a Deduplicator
func NewDeduplicator(messages repository.MessageRepository) *Deduplicator {
	return &Deduplicator{messages: messages}
}

// Admit reports whether fingerprint is new. Call it only while holding the chat's gate;
// the caller persists right after an admission.
func (d *Deduplicator) Admit(ctx context.Context, fingerprint string) (bool, error) {
	exists, err := d.messages.ExistsByFingerprint(ctx, fingerprint)
	if err != nil {
		return false, err
	}
	return !exists, nil
}
