package models

import "time"

// Inbound push event types. Frames with any other type are ignored.
const (
	EventNewMessage     = "new_message"
	EventTyping         = "typing"
	EventMessageDeleted = "message_deleted"
	EventReadReceipt    = "read_receipt"
)

// Outbound push action types.
const (
	ActionSendMessage = "send_message"
	ActionTyping      = "typing"
)

// Envelope is one inbound frame from the push channel, discriminated by
// Type. Fields beyond RoomID are populated per type; see the push-channel
// table in the API docs.
type Envelope struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`

	// new_message
	Message *Message `json:"message,omitempty"`

	// message_deleted
	MessageID  string      `json:"message_id,omitempty"`
	DeleteType DeleteScope `json:"delete_type,omitempty"`
	IsDeleted  bool        `json:"is_deleted,omitempty"`

	// typing and read_receipt
	UserID   string    `json:"user_id,omitempty"`
	UserName string    `json:"user_name,omitempty"`
	ReadAt   time.Time `json:"read_at,omitempty"`
}

// Action is one outbound frame, discriminated by Action.
type Action struct {
	Action        string      `json:"action"`
	RoomID        string      `json:"room_id"`
	Content       string      `json:"content,omitempty"`
	MessageType   MessageType `json:"message_type,omitempty"`
	AttachmentURL string      `json:"attachment_url,omitempty"`
}

// NewSendMessageAction builds the outbound envelope for a message send.
func NewSendMessageAction(roomID, content string, msgType MessageType, attachmentURL string) Action {
	return Action{
		Action:        ActionSendMessage,
		RoomID:        roomID,
		Content:       content,
		MessageType:   msgType,
		AttachmentURL: attachmentURL,
	}
}

// NewTypingAction builds the outbound typing notification for a room.
func NewTypingAction(roomID string) Action {
	return Action{Action: ActionTyping, RoomID: roomID}
}
