package thread

import (
	"encoding/json"
	"time"
)

// EventKind tags every wire event. The set is closed; the validator rejects
// anything outside it.
type EventKind string

const (
	EventNewMessage          EventKind = "NEW_MESSAGE"
	EventMessageDeleted      EventKind = "MESSAGE_DELETED"
	EventUserTyping          EventKind = "USER_TYPING"
	EventUserStoppedTyping   EventKind = "USER_STOPPED_TYPING"
	EventMessageQueued       EventKind = "MESSAGE_QUEUED"
	EventMentionNotification EventKind = "MENTION_NOTIFICATION"
	EventError               EventKind = "ERROR"
)

// Envelope is the outer wire frame: {"type": ..., "payload": {...}}.
type Envelope struct {
	Type    EventKind       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// MessagePayload carries a NEW_MESSAGE event. Content is limited to 1-1000
// characters; SectionID is the owning thread.
type MessagePayload struct {
	ID           string    `json:"id"`
	SectionID    string    `json:"sectionId"`
	Content      string    `json:"content"`
	SenderID     string    `json:"senderId"`
	SenderName   string    `json:"senderName"`
	SenderAvatar string    `json:"senderAvatar,omitempty"`
	ParentID     *string   `json:"parentId,omitempty"`
	Mentions     []string  `json:"mentions,omitempty"`
	Attachments  []string  `json:"attachments,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// DeletePayload carries a MESSAGE_DELETED event.
type DeletePayload struct {
	SectionID string `json:"sectionId"`
	MessageID string `json:"messageId"`
}

// TypingPayload carries USER_TYPING and USER_STOPPED_TYPING events.
type TypingPayload struct {
	SectionID string `json:"sectionId"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
}

// QueuedPayload tells the sender their message was held for review instead of
// broadcast. Server-emitted only.
type QueuedPayload struct {
	SectionID string `json:"sectionId"`
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
}

// MentionPayload carries a MENTION_NOTIFICATION event targeted at one user.
type MentionPayload struct {
	SectionID  string `json:"sectionId"`
	MessageID  string `json:"messageId"`
	UserID     string `json:"userId"` // the mentioned user
	SenderName string `json:"senderName,omitempty"`
}

// ErrorPayload is sent to the originating connection only, never broadcast.
type ErrorPayload struct {
	SectionID string `json:"sectionId,omitempty"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// TypingIndicator is the ephemeral per-(thread, user) presence entry. It is
// never persisted; entries expire after a fixed TTL of inactivity.
type TypingIndicator struct {
	UserID      string `json:"userId"`
	UserName    string `json:"userName"`
	ThreadID    string `json:"threadId"`
	TimestampMs int64  `json:"timestampMs"`
}

// Encode marshals an envelope for the given kind and payload. Marshaling of
// these closed payload shapes cannot fail, so Encode returns bytes only.
func Encode(kind EventKind, payload any) []byte {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	out, err := json.Marshal(Envelope{Type: kind, Payload: raw})
	if err != nil {
		return nil
	}
	return out
}
