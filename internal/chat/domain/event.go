package domain

// Event types exported after a state change.
const (
	EventMessageCreated = "message.created"
	EventMessageRead    = "message.read"
)

// MessageEvent 訊息事件
type MessageEvent struct {
	Type    string     `json:"type"`
	Message MessageOut `json:"message"`
}
