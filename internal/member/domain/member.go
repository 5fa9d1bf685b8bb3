package domain

import (
	"time"

	"chat_relay_service/pkg/encrypt"
	errprocess "chat_relay_service/pkg/err"
)

// Member 使用者
type Member struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	HashedPassword string `json:"-"`
}

// MemberOut registration response body
type MemberOut struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Out renders the member without its password hash.
func (m *Member) Out() MemberOut {
	return MemberOut{ID: m.ID, Name: m.Name, Email: m.Email}
}

// IsPasswordMatch 密碼驗證
func (m *Member) IsPasswordMatch(inputPwd string) error {
	return encrypt.CheckPassword(m.HashedPassword, inputPwd)
}

// MemberSession login session kept in redis
type MemberSession struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiredAt time.Time `json:"expired_at"`
}

// IsExpired 檢查 Session 是否已過期
func (s *MemberSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiredAt)
}

// 錯誤
var (
	ErrEmailExists        = errprocess.New(errprocess.ErrValidation, "Email already registered")
	ErrInvalidCredentials = errprocess.New(errprocess.ErrUnauthorized, "Incorrect email or password")
	ErrSessionExpired     = errprocess.New(errprocess.ErrUnauthorized, "Session expired")
	ErrMemberNotFound     = errprocess.New(errprocess.ErrNotFound, "member not found")
)
