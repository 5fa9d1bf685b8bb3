package domain

import (
	"fmt"
	"sort"
	"time"
)

// ChatKind 聊天室類型
type ChatKind string

const (
	// ChatKindPrivate two party chat keyed by its participants
	ChatKindPrivate ChatKind = "private"
	// ChatKindGroup chat backing a Group
	ChatKindGroup ChatKind = "group"
)

// Chat 聊天室
type Chat struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:255" json:"name,omitempty"`
	Kind       ChatKind  `gorm:"column:type;size:16;not null;default:private" json:"type"`
	PrivateKey *string   `gorm:"size:64;uniqueIndex:uq_chat_private_key" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// Group 群組; one per group chat.
type Group struct {
	ID           int64              `gorm:"primaryKey"`
	Name         string             `gorm:"size:255;not null"`
	CreatorID    int64              `gorm:"not null;index"`
	ChatID       int64              `gorm:"not null;uniqueIndex:uq_group_chat"`
	Participants []GroupParticipant `gorm:"foreignKey:GroupID"`
	CreatedAt    time.Time
}

// GroupParticipant user_group row
type GroupParticipant struct {
	GroupID int64 `gorm:"primaryKey;autoIncrement:false"`
	UserID  int64 `gorm:"primaryKey;autoIncrement:false;index"`
}

// ParticipantIDs sorted ids of the group's members.
func (g *Group) ParticipantIDs() []int64 {
	ids := make([]int64, 0, len(g.Participants))
	for _, p := range g.Participants {
		ids = append(ids, p.UserID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// GroupOut group-creation response body
type GroupOut struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	CreatorID      int64   `json:"creator_id"`
	ChatID         int64   `json:"chat_id"`
	ParticipantIDs []int64 `json:"participant_ids"`
}

// Out renders the group for clients.
func (g *Group) Out() GroupOut {
	return GroupOut{
		ID:             g.ID,
		Name:           g.Name,
		CreatorID:      g.CreatorID,
		ChatID:         g.ChatID,
		ParticipantIDs: g.ParticipantIDs(),
	}
}

// PrivateChatKey canonical key of the private chat between a and b; order of arguments is irrelevant.
func PrivateChatKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("private:%d:%d", a, b)
}

// ParsePrivateChatKey returns the two participants encoded in key.
func ParsePrivateChatKey(key string) (int64, int64, bool) {
	var a, b int64
	if _, err := fmt.Sscanf(key, "private:%d:%d", &a, &b); err != nil {
		return 0, 0, false
	}
	if key != PrivateChatKey(a, b) {
		return 0, 0, false
	}
	return a, b, true
}

// NewPrivateChat builds an unsaved private chat for the pair.
func NewPrivateChat(a, b int64) *Chat {
	key := PrivateChatKey(a, b)
	return &Chat{Name: key, Kind: ChatKindPrivate, PrivateKey: &key}
}
