package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"chat_relay_service/internal/member/domain"
	"chat_relay_service/pkg/logger"
	"chat_relay_service/pkg/middlewares"
	"chat_relay_service/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuthApp(repo *MockMemberRepo) (*fiber.App, MemberUseCase) {
	uc := NewMemberUseCase(repo, token.NewManager("secret", "chat_service", time.Hour), time.Hour, nil)
	h := NewMemberHandler(uc)

	app := fiber.New()
	auth := app.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Post("/logout", middlewares.JWTMiddleware(uc), h.Logout)
	return app, uc
}

func doJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	out := map[string]interface{}{}
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func TestMemberHandler_Register(t *testing.T) {
	logger.SetNewNop()

	t.Run("ok", func(t *testing.T) {
		repo := new(MockMemberRepo)
		repo.On("FindByEmail", mock.Anything, testEmail).Return(nil, domain.ErrMemberNotFound).Once()
		repo.On("CreateUser", mock.Anything, mock.Anything).Return(nil).Once()
		app, _ := newAuthApp(repo)

		status, body := doJSON(t, app, "/auth/register",
			`{"name":"alice","email":"alice@example.com","password":"!!Securepassword111"}`)

		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, float64(7), body["id"])
		assert.Equal(t, testEmail, body["email"])
		assert.NotContains(t, body, "hashed_password")
	})

	t.Run("bad email", func(t *testing.T) {
		app, _ := newAuthApp(new(MockMemberRepo))
		status, _ := doJSON(t, app, "/auth/register", `{"name":"alice","email":"nope","password":"x"}`)
		assert.Equal(t, fiber.StatusBadRequest, status)
	})

	t.Run("email taken", func(t *testing.T) {
		repo := new(MockMemberRepo)
		repo.On("FindByEmail", mock.Anything, testEmail).Return(&domain.Member{ID: 1}, nil).Once()
		app, _ := newAuthApp(repo)

		status, body := doJSON(t, app, "/auth/register",
			`{"name":"alice","email":"alice@example.com","password":"x"}`)
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "Email already registered", body["error"])
	})
}

func TestMemberHandler_LoginLogout(t *testing.T) {
	logger.SetNewNop()

	repo := new(MockMemberRepo)
	repo.On("FindByEmail", mock.Anything, testEmail).Return(hashedMember(t), nil)
	app, uc := newAuthApp(repo)

	t.Run("form login with username", func(t *testing.T) {
		form := url.Values{"username": {testEmail}, "password": {testPassword}}
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		var out TokenResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "bearer", out.TokenType)

		userID, err := uc.Verify(context.Background(), out.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, int64(7), userID)
	})

	t.Run("wrong password", func(t *testing.T) {
		status, body := doJSON(t, app, "/auth/login", `{"email":"alice@example.com","password":"wrong"}`)
		assert.Equal(t, fiber.StatusUnauthorized, status)
		assert.Equal(t, "Incorrect email or password", body["error"])
	})

	t.Run("logout needs a token", func(t *testing.T) {
		status, _ := doJSON(t, app, "/auth/logout", `{}`)
		assert.Equal(t, fiber.StatusUnauthorized, status)
	})
}
