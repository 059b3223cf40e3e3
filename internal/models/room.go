package models

import "time"

// RoomKind distinguishes one-on-one rooms from group rooms.
type RoomKind string

const (
	RoomKindDirect RoomKind = "direct"
	RoomKindGroup  RoomKind = "group"
)

// Room is the client's copy of one room directory entry. It is replaced
// wholesale on every directory refresh, never merged field by field.
type Room struct {
	ID              string      `json:"id"`
	Kind            RoomKind    `json:"kind"`
	Name            string      `json:"name"`
	AvatarURL       string      `json:"avatar_url,omitempty"`
	LastMessage     string      `json:"last_message"`
	LastMessageType MessageType `json:"last_message_type"`
	LastActivity    time.Time   `json:"last_activity"`
	UnreadCount     int         `json:"unread_count"`
	// Online is meaningful only for direct rooms.
	Online     bool      `json:"online"`
	LastSeen   time.Time `json:"last_seen"`
	Restricted bool      `json:"restricted"`
}
