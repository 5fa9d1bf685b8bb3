package app

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"chat_relay_service/internal/member/domain"
	"chat_relay_service/internal/member/repository"
	"chat_relay_service/pkg/database"
	"chat_relay_service/pkg/encrypt"
	errprocess "chat_relay_service/pkg/err"
	"chat_relay_service/pkg/logger"
	"chat_relay_service/pkg/token"

	"go.uber.org/zap"
)

// MemberUseCase 這裡封裝了對外提供的應用服務
type MemberUseCase interface {
	Register(ctx context.Context, name, email, password string) (*domain.Member, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, token string) error
	Verify(ctx context.Context, token string) (int64, error)
}

type memberUseCase struct {
	memberRepo repository.MemberRepository
	tokens     *token.Manager
	sessionTTL time.Duration
	// nil when redis is not configured; tokens are then stateless
	sessions database.RedisRepository[domain.MemberSession]
	now      func() time.Time
}

// NewMemberUseCase 建立一個新的 MemberUseCase
func NewMemberUseCase(
	memberRepo repository.MemberRepository,
	tokens *token.Manager,
	sessionTTL time.Duration,
	sessions database.RedisRepository[domain.MemberSession],
) MemberUseCase {
	return &memberUseCase{
		memberRepo: memberRepo,
		tokens:     tokens,
		sessionTTL: sessionTTL,
		sessions:   sessions,
		now:        time.Now,
	}
}

func sessionKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// Register creates a user; emails are unique.
func (m *memberUseCase) Register(ctx context.Context, name, email, password string) (*domain.Member, error) {
	email = strings.TrimSpace(email)
	if _, err := m.memberRepo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailExists
	} else if !errors.Is(err, domain.ErrMemberNotFound) {
		return nil, errprocess.Wrap(errprocess.ErrPersistence, err, "Failed to register")
	}

	hashed, err := encrypt.HashPassword(password)
	if err != nil {
		return nil, errprocess.New(errprocess.ErrValidation, err.Error())
	}

	member := &domain.Member{Name: strings.TrimSpace(name), Email: email, HashedPassword: hashed}
	if err := m.memberRepo.CreateUser(ctx, member); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, domain.ErrEmailExists
		}
		return nil, errprocess.Wrap(errprocess.ErrPersistence, err, "Failed to register")
	}

	logger.Log.Info("member registered", zap.Int64("user_id", member.ID))
	return member, nil
}

// Login checks the password and hands out a bearer token.
func (m *memberUseCase) Login(ctx context.Context, email, password string) (string, error) {
	member, err := m.memberRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", errprocess.Wrap(errprocess.ErrPersistence, err, "Failed to login")
	}

	if err := member.IsPasswordMatch(password); err != nil {
		logger.Log.Debug("password mismatch", zap.Int64("user_id", member.ID))
		return "", domain.ErrInvalidCredentials
	}

	t, err := m.tokens.GenerateJWT(member.ID)
	if err != nil {
		return "", errprocess.Wrap(errprocess.ErrPersistence, err, "Failed to issue token")
	}

	if m.sessions != nil {
		now := m.now()
		session := domain.MemberSession{
			Token:     t,
			UserID:    member.ID,
			CreatedAt: now,
			ExpiredAt: now.Add(m.sessionTTL),
		}
		if err := m.sessions.Set(ctx, sessionKey(member.ID), session, m.sessionTTL); err != nil {
			return "", errprocess.Wrap(errprocess.ErrPersistence, err, "Failed to store session")
		}
	}

	return t, nil
}

// Logout drops the session so the token stops verifying.
func (m *memberUseCase) Logout(ctx context.Context, t string) error {
	userID, err := m.tokens.UserIDFrom(t)
	if err != nil {
		return errprocess.New(errprocess.ErrUnauthorized, "Invalid token")
	}
	if m.sessions == nil {
		return nil
	}
	if err := m.sessions.Del(ctx, sessionKey(userID)); err != nil {
		return errprocess.Wrap(errprocess.ErrPersistence, err, "Failed to logout")
	}
	logger.Log.Info("member logout", zap.Int64("user_id", userID))
	return nil
}

// Verify implements middlewares.TokenVerifier.
func (m *memberUseCase) Verify(ctx context.Context, t string) (int64, error) {
	userID, err := m.tokens.UserIDFrom(t)
	if err != nil {
		return 0, errprocess.New(errprocess.ErrUnauthorized, "Invalid token")
	}
	if m.sessions == nil {
		return userID, nil
	}

	session, err := m.sessions.Get(ctx, sessionKey(userID))
	if err != nil {
		if !errors.Is(err, database.ErrCacheMiss) {
			logger.Log.Warn("session lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		}
		return 0, domain.ErrSessionExpired
	}
	if session.Token != t || session.IsExpired(m.now()) {
		return 0, domain.ErrSessionExpired
	}
	return userID, nil
}
