package domain

import (
	"time"
)

// NotificationMessageRead tags read-receipt pushes.
const NotificationMessageRead = "message_read"

// Message 訊息; only Read ever changes after insert.
type Message struct {
	ID          int64     `gorm:"primaryKey"`
	ChatID      int64     `gorm:"not null;index:idx_message_chat_time,priority:1"`
	SenderID    int64     `gorm:"not null;index"`
	Text        string    `gorm:"type:text;not null"`
	Timestamp   time.Time `gorm:"not null;index:idx_message_chat_time,priority:2"`
	Read        bool      `gorm:"not null;default:false"`
	Fingerprint string    `gorm:"size:64;not null;uniqueIndex:uq_message_fingerprint"`
}

// MessageOut wire shape of a message, on both the channel and http.
type MessageOut struct {
	ID           int64     `json:"id"`
	ChatID       int64     `json:"chat_id"`
	SenderID     int64     `json:"sender_id"`
	Text         string    `json:"text"`
	Timestamp    time.Time `json:"timestamp"`
	Read         bool      `json:"read"`
	Notification string    `json:"notification,omitempty"`
}

// Out renders the message for clients.
func (m *Message) Out() MessageOut {
	return MessageOut{
		ID:        m.ID,
		ChatID:    m.ChatID,
		SenderID:  m.SenderID,
		Text:      m.Text,
		Timestamp: m.Timestamp.UTC(),
		Read:      m.Read,
	}
}

// ReadNotification is the push the original sender gets when m is read.
func (m *Message) ReadNotification() MessageOut {
	out := m.Out()
	out.Notification = NotificationMessageRead
	return out
}

// Submission 送出訊息請求; ChatID or RecipientID must be set.
type Submission struct {
	SenderID    int64
	ChatID      *int64
	RecipientID *int64
	Text        string
}

// InboundFrame client frame on the persistent channel.
type InboundFrame struct {
	Text string `json:"text"`
}
