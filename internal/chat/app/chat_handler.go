package app

import (
	"strconv"

	"chat_relay_service/internal/chat/domain"
	errprocess "chat_relay_service/pkg/err"
	"chat_relay_service/pkg/logger"
	"chat_relay_service/pkg/middlewares"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ChatHandler one-shot chat endpoints
type ChatHandler struct {
	messageUC *MessageUseCase
	groupUC   *GroupUseCase
	validate  *validator.Validate
}

// NewChatHandler create ChatHandler
func NewChatHandler(messageUC *MessageUseCase, groupUC *GroupUseCase) *ChatHandler {
	return &ChatHandler{
		messageUC: messageUC,
		groupUC:   groupUC,
		validate:  validator.New(),
	}
}

// SendMessageRequest body of POST /chat/message
type SendMessageRequest struct {
	ChatID      *int64 `json:"chat_id"`
	RecipientID *int64 `json:"recipient_id"`
	Text        string `json:"text" validate:"required"`
}

// CreateGroupRequest body of POST /chat/group
type CreateGroupRequest struct {
	Name           string  `json:"name" validate:"required"`
	ParticipantIDs []int64 `json:"participant_ids"`
}

func respondError(c *fiber.Ctx, err error) error {
	return c.Status(errprocess.Status(err)).JSON(fiber.Map{"error": errprocess.Message(err)})
}

func (h *ChatHandler) parse(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return errprocess.New(domain.ErrValidation, "invalid request")
	}
	if err := h.validate.Struct(out); err != nil {
		return errprocess.New(domain.ErrValidation, err.Error())
	}
	return nil
}

// SendMessage 送出訊息
// @Summary Send a message
// @Description Persist a message to chat_id, or to the private chat with recipient_id, and deliver it live
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SendMessageRequest true "message"
// @Success 200 {object} domain.MessageOut
// @Failure 400 {object} map[string]string "missing target or duplicate"
// @Failure 404 {object} map[string]string "chat not found"
// @Failure 500 {object} map[string]string
// @Router /chat/message [post]
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	userID, _ := middlewares.UserID(c)

	var req SendMessageRequest
	if err := h.parse(c, &req); err != nil {
		return respondError(c, err)
	}

	msg, err := h.messageUC.Submit(c.UserContext(), domain.Submission{
		SenderID:    userID,
		ChatID:      req.ChatID,
		RecipientID: req.RecipientID,
		Text:        req.Text,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(msg.Out())
}

// MarkRead 已讀回條
// @Summary Mark a message read
// @Description Sets read=true and notifies the original sender's live connections
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "message id"
// @Success 200 {object} domain.MessageOut
// @Failure 404 {object} map[string]string
// @Router /chat/message/{id}/read [patch]
func (h *ChatHandler) MarkRead(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondError(c, errprocess.New(domain.ErrValidation, "invalid message id"))
	}

	msg, err := h.messageUC.MarkRead(c.UserContext(), int64(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(msg.Out())
}

// History 歷史訊息
// @Summary Chat history
// @Description Messages of a chat ordered by timestamp ascending
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Param chat_id path int true "chat id"
// @Param limit query int false "page size" default(100)
// @Param offset query int false "offset" default(0)
// @Success 200 {array} domain.MessageOut
// @Failure 400 {object} map[string]string
// @Router /chat/history/{chat_id} [get]
func (h *ChatHandler) History(c *fiber.Ctx) error {
	chatID, err := c.ParamsInt("chat_id")
	if err != nil {
		return respondError(c, errprocess.New(domain.ErrValidation, "invalid chat id"))
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return respondError(c, err)
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return respondError(c, err)
	}

	msgs, err := h.messageUC.History(c.UserContext(), int64(chatID), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(lo.Map(msgs, func(m domain.Message, _ int) domain.MessageOut { return m.Out() }))
}

// CreateGroup 建立群組
// @Summary Create a group chat
// @Description Creates a group chat; the caller is always a participant and unknown ids are dropped
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateGroupRequest true "group"
// @Success 200 {object} domain.GroupOut
// @Failure 400 {object} map[string]string
// @Router /chat/group [post]
func (h *ChatHandler) CreateGroup(c *fiber.Ctx) error {
	userID, _ := middlewares.UserID(c)

	var req CreateGroupRequest
	if err := h.parse(c, &req); err != nil {
		return respondError(c, err)
	}

	group, err := h.groupUC.CreateGroup(c.UserContext(), req.Name, userID, req.ParticipantIDs)
	if err != nil {
		return respondError(c, err)
	}
	logger.Log.Debug("create group", zap.Int64("creator_id", userID), zap.String("name", req.Name))
	return c.JSON(group.Out())
}

func queryInt(c *fiber.Ctx, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errprocess.New(domain.ErrValidation, "invalid "+key)
	}
	return v, nil
}
