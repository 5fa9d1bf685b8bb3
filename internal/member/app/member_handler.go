package app

import (
	errprocess "chat_relay_service/pkg/err"
	"chat_relay_service/pkg/middlewares"
	"chat_relay_service/pkg/token"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// MemberHandler 处理用户相关的 HTTP 请求
type MemberHandler struct {
	usecase  MemberUseCase
	validate *validator.Validate
}

// NewMemberHandler 创建新的 MemberHandler
func NewMemberHandler(usecase MemberUseCase) *MemberHandler {
	return &MemberHandler{usecase: usecase, validate: validator.New()}
}

// RegisterRequest body of POST /auth/register
type RegisterRequest struct {
	Name     string `json:"name" form:"name" validate:"required"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// LoginRequest body of POST /auth/login; username is accepted as an alias of email.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// TokenResponse login response
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func respondError(c *fiber.Ctx, err error) error {
	return c.Status(errprocess.Status(err)).JSON(fiber.Map{"error": errprocess.Message(err)})
}

// Register 注册新用户
// @Summary Register a user
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "registration"
// @Success 200 {object} domain.MemberOut
// @Failure 400 {object} map[string]string "invalid body or email taken"
// @Router /auth/register [post]
func (h *MemberHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	member, err := h.usecase.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(member.Out())
}

// Login 用户登录
// @Summary Login
// @Description Accepts JSON or form fields; username is the email
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "credentials"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *MemberHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	email := req.Email
	if email == "" {
		email = req.Username
	}
	if err := h.validate.Struct(req); err != nil || email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username and password required"})
	}

	t, err := h.usecase.Login(c.UserContext(), email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(TokenResponse{AccessToken: t, TokenType: token.TokenType})
}

// Logout 用户登出
// @Summary Logout
// @Tags Auth
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (h *MemberHandler) Logout(c *fiber.Ctx) error {
	raw, _ := c.Locals(middlewares.TokenRaw).(string)
	if err := h.usecase.Logout(c.UserContext(), raw); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "logout success"})
}
