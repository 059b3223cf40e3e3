package models

import "time"

// MessageType identifies the kind of content a message carries.
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeVideo MessageType = "video"
	MessageTypeAudio MessageType = "audio"
	MessageTypeFile  MessageType = "file"
)

// DeleteScope controls how far a deletion reaches.
type DeleteScope string

const (
	// DeleteScopeMe hides the message locally only.
	DeleteScopeMe DeleteScope = "me"
	// DeleteScopeEveryone tombstones the message for all participants.
	DeleteScopeEveryone DeleteScope = "everyone"
)

// TombstoneContent replaces the content of a message deleted for everyone.
const TombstoneContent = "This message was deleted"

// Message is one entry in a room timeline.
type Message struct {
	ID            string      `json:"id"`
	RoomID        string      `json:"room_id"`
	SenderID      string      `json:"sender_id"`
	Content       string      `json:"content"`
	Type          MessageType `json:"message_type"`
	AttachmentURL string      `json:"attachment_url,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	Deleted       bool        `json:"is_deleted"`
	// Read is meaningful only for messages the local user sent.
	Read bool `json:"is_read"`
}

// Tombstone marks the message deleted for everyone. Content is replaced
// and the message is immutable afterwards; calling it twice is a no-op.
func (m *Message) Tombstone() {
	if m.Deleted {
		return
	}
	m.Deleted = true
	m.Content = TombstoneContent
	m.AttachmentURL = ""
}

// HasAttachment reports whether the message carries a non-text payload.
func (m *Message) HasAttachment() bool {
	return m.Type != MessageTypeText && m.AttachmentURL != ""
}
