package thread

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	minContentLen = 1
	maxContentLen = 1000
)

// FieldError points at the payload field that failed validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates all field errors found in one inbound frame.
// It is returned, never thrown; the caller reports it to the sender only.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "invalid event: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Event is a decoded, validated inbound frame. Exactly one payload pointer is
// set according to Kind.
type Event struct {
	Kind      EventKind
	SectionID string

	Message *MessagePayload
	Delete  *DeletePayload
	Typing  *TypingPayload
	Mention *MentionPayload
}

// DecodeEvent parses raw wire bytes into a validated Event. It is the single
// gate between untrusted input and downstream logic; on any malformed input it
// returns a *ValidationError and nothing else may assume well-formed frames.
func DecodeEvent(raw []byte) (*Event, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		verr := &ValidationError{}
		verr.add("", "payload is not valid JSON")
		return nil, verr
	}

	verr := &ValidationError{}
	evt := &Event{Kind: env.Type}

	switch env.Type {
	case EventNewMessage:
		var p MessagePayload
		decodePayload(env.Payload, &p, verr)
		validateMessage(&p, verr)
		evt.Message = &p
		evt.SectionID = p.SectionID

	case EventMessageDeleted:
		var p DeletePayload
		decodePayload(env.Payload, &p, verr)
		requireField(p.SectionID, "payload.sectionId", verr)
		requireField(p.MessageID, "payload.messageId", verr)
		evt.Delete = &p
		evt.SectionID = p.SectionID

	case EventUserTyping, EventUserStoppedTyping:
		var p TypingPayload
		decodePayload(env.Payload, &p, verr)
		requireField(p.SectionID, "payload.sectionId", verr)
		evt.Typing = &p
		evt.SectionID = p.SectionID

	case EventMentionNotification:
		var p MentionPayload
		decodePayload(env.Payload, &p, verr)
		requireField(p.SectionID, "payload.sectionId", verr)
		requireField(p.MessageID, "payload.messageId", verr)
		requireField(p.UserID, "payload.userId", verr)
		evt.Mention = &p
		evt.SectionID = p.SectionID

	case EventMessageQueued, EventError:
		// Valid wire kinds, but only ever emitted by the server.
		verr.add("type", fmt.Sprintf("%q is a server-emitted event", env.Type))

	case "":
		verr.add("type", "is required")

	default:
		verr.add("type", fmt.Sprintf("unknown event kind %q", env.Type))
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return evt, nil
}

func decodePayload(raw json.RawMessage, dst any, verr *ValidationError) {
	if len(raw) == 0 {
		verr.add("payload", "is required")
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		verr.add("payload", "does not match the event shape")
	}
}

func requireField(v, field string, verr *ValidationError) {
	if strings.TrimSpace(v) == "" {
		verr.add(field, "is required")
	}
}

func validateMessage(p *MessagePayload, verr *ValidationError) {
	requireField(p.ID, "payload.id", verr)
	requireField(p.SectionID, "payload.sectionId", verr)
	requireField(p.SenderID, "payload.senderId", verr)
	requireField(p.SenderName, "payload.senderName", verr)
	if p.CreatedAt.IsZero() {
		verr.add("payload.createdAt", "is required")
	}
	if n := utf8.RuneCountInString(p.Content); n < minContentLen || n > maxContentLen {
		verr.add("payload.content", fmt.Sprintf("must be between %d and %d characters", minContentLen, maxContentLen))
	}
}
