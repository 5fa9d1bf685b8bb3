package app

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"chat_relay_service/internal/chat/domain"
	"chat_relay_service/internal/chat/hub"
	"chat_relay_service/pkg/logger"
	"chat_relay_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QueryChatID handshake query parameter naming the channel's chat.
const QueryChatID = "chat_id"

var errConnectionClosed = errors.New("websocket: connection closed")

// ChatWebsocketHandler 持久連線入口
type ChatWebsocketHandler struct {
	messageUC    *MessageUseCase
	registry     *hub.Registry
	verifier     middlewares.TokenVerifier
	pingInterval time.Duration
	writeTimeout time.Duration
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(
	messageUC *MessageUseCase,
	registry *hub.Registry,
	verifier middlewares.TokenVerifier,
	pingInterval, writeTimeout time.Duration,
) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		messageUC:    messageUC,
		registry:     registry,
		verifier:     verifier,
		pingInterval: pingInterval,
		writeTimeout: writeTimeout,
	}
}

// wsConnection serializes writes to one socket; pings and deliveries share it.
type wsConnection struct {
	id           string
	conn         *websocket.Conn
	writeTimeout time.Duration

	mu     sync.Mutex
	closed bool
}

func newWSConnection(conn *websocket.Conn, writeTimeout time.Duration) *wsConnection {
	return &wsConnection{id: uuid.NewString(), conn: conn, writeTimeout: writeTimeout}
}

func (c *wsConnection) ID() string { return c.id }

func (c *wsConnection) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errConnectionClosed
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *wsConnection) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errConnectionClosed
	}
	return c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(c.writeTimeout))
}

func (c *wsConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// HandleConnection 是 WebSocket 連線的進入點
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	userID, chatID, err := h.handshake(ctx, conn)
	if err != nil {
		logger.Log.Warn("websocket handshake rejected", zap.String("remote", conn.RemoteAddr().String()), zap.Error(err))
		closeWebSocketConnection(conn, websocket.ClosePolicyViolation, err.Error())
		return
	}

	handle := newWSConnection(conn, h.writeTimeout)
	log := logger.Log.With(zap.Int64("user_id", userID), zap.Int64("chat_id", chatID), zap.String("conn_id", handle.ID()))
	h.registry.Register(userID, handle)
	log.Info("websocket open")

	pingCtx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		h.registry.Unregister(userID, handle)
		_ = handle.Close()
		log.Info("websocket close")
	}()

	conn.SetCloseHandler(func(code int, text string) error {
		log.Debug("close frame received", zap.Int("code", code), zap.String("text", text))
		return nil
	})

	go h.keepAlive(pingCtx, handle, log)

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				log.Debug("connection closed by peer", zap.Error(err))
			} else {
				log.Warn("websocket read error", zap.Error(err))
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		h.textMessageAction(ctx, log, userID, chatID, message)
	}
}

func (h *ChatWebsocketHandler) handshake(ctx context.Context, conn *websocket.Conn) (int64, int64, error) {
	token := conn.Query(middlewares.QueryToken)
	if token == "" {
		return 0, 0, errors.New("missing token")
	}
	userID, err := h.verifier.Verify(ctx, token)
	if err != nil {
		return 0, 0, errors.New("invalid token")
	}
	chatID, err := strconv.ParseInt(conn.Query(QueryChatID), 10, 64)
	if err != nil {
		return 0, 0, errors.New("invalid chat_id")
	}
	return userID, chatID, nil
}

// textMessageAction submits one {text} frame. Duplicates are dropped silently on this path.
func (h *ChatWebsocketHandler) textMessageAction(ctx context.Context, log *logger.LogInfo, userID, chatID int64, raw []byte) {
	var frame domain.InboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		log.Debug("ignoring malformed frame", zap.Error(err))
		return
	}
	if strings.TrimSpace(frame.Text) == "" {
		return
	}

	_, err := h.messageUC.Submit(ctx, domain.Submission{
		SenderID: userID,
		ChatID:   &chatID,
		Text:     frame.Text,
	})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrDuplicateMessage):
		log.Debug("duplicate frame ignored")
	default:
		log.Warn("frame rejected", zap.Error(err))
	}
}

func (h *ChatWebsocketHandler) keepAlive(ctx context.Context, handle *wsConnection, log *logger.LogInfo) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := handle.ping(); err != nil {
				log.Debug("ping failed", zap.Error(err))
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func closeWebSocketConnection(conn *websocket.Conn, code int, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(time.Second))
	_ = conn.Close()
}
