package moderation

import "time"

// Action is the verdict a filter (or the whole pipeline) produces for a message.
type Action string

const (
	ActionAllow  Action = "ALLOW"
	ActionFlag   Action = "FLAG"
	ActionReview Action = "REVIEW"
	ActionBlock  Action = "BLOCK"
)

// rank orders actions by strictness so merge logic can pick the harsher one.
func (a Action) rank() int {
	switch a {
	case ActionBlock:
		return 3
	case ActionReview:
		return 2
	case ActionFlag:
		return 1
	default:
		return 0
	}
}

// StricterThan reports whether a is a harsher verdict than b.
func (a Action) StricterThan(b Action) bool { return a.rank() > b.rank() }

// Severity grades how serious a non-ALLOW verdict is.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

func (s Severity) rank() int {
	switch s {
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// StricterThan reports whether s is a higher severity than o.
func (s Severity) StricterThan(o Severity) bool { return s.rank() > o.rank() }

// Result is the outcome of one pipeline evaluation. It is a pure value;
// a non-ALLOW result drives queue insertion but never drops the message.
type Result struct {
	Allowed    bool
	Action     Action
	Severity   Severity
	Confidence float64 // in [0,1]
	Reason     string
}

// Allow is the neutral verdict filters return when they have no objection.
func Allow(reason string) Result {
	return Result{Allowed: true, Action: ActionAllow, Severity: SeverityLow, Reason: reason}
}

// Stricter merges two results by picking the harsher action; on equal actions
// the higher severity wins, then the higher confidence.
func Stricter(a, b Result) Result {
	if b.Action.StricterThan(a.Action) {
		return b
	}
	if a.Action.StricterThan(b.Action) {
		return a
	}
	if b.Severity.StricterThan(a.Severity) {
		return b
	}
	if a.Severity.StricterThan(b.Severity) {
		return a
	}
	if b.Confidence > a.Confidence {
		return b
	}
	return a
}

// Message is the transient value evaluated by the pipeline. The stored message
// row is created by the persistence collaborator; this type never outlives one
// evaluation.
type Message struct {
	ID        string
	Content   string
	AuthorID  string
	ThreadID  string
	ParentID  *string
	CreatedAt time.Time
}

// Context is a read-only snapshot of recent thread activity supplied to the
// pipeline per evaluation. RecentHistory is ordered most-recent-last and
// bounded by the caller.
type Context struct {
	ThreadID       string
	ParticipantIDs []string
	RecentHistory  []Message
	Metadata       map[string]string
}
