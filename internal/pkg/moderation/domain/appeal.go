package moderation

import "time"

// AppealStatus is the state of an appeal. PENDING transitions exactly once to
// APPROVED or DENIED; both are terminal.
type AppealStatus string

const (
	AppealStatusPending  AppealStatus = "PENDING"
	AppealStatusApproved AppealStatus = "APPROVED"
	AppealStatusDenied   AppealStatus = "DENIED"
)

// Appeal is a user-initiated request to reverse a moderation decision.
// At most one appeal may exist per (MessageID, UserID) regardless of outcome.
type Appeal struct {
	ID          string
	MessageID   string
	UserID      string
	QueueID     *string
	Reason      string
	Status      AppealStatus
	ModeratorID *string
	Response    *string
	CreatedAt   time.Time
	ResolvedAt  *time.Time
}

// Resolved reports whether the appeal has reached a terminal state.
func (a Appeal) Resolved() bool { return a.Status != AppealStatusPending }
