package moderation

import "time"

// QueueStatus is the lifecycle state of a moderation queue item.
// Items are never deleted, only status-transitioned.
type QueueStatus string

const (
	QueueStatusQueued   QueueStatus = "QUEUED"
	QueueStatusFlagged  QueueStatus = "FLAGGED"
	QueueStatusBlocked  QueueStatus = "BLOCKED"
	QueueStatusApproved QueueStatus = "APPROVED"
)

// QueueItem is a durable record of a message awaiting or having received
// moderator review. Created exactly once per non-ALLOW pipeline decision.
type QueueItem struct {
	ID         string
	MessageID  string
	Status     QueueStatus
	Reason     string
	Confidence float64
	CreatedAt  time.Time
	ReviewedAt *time.Time
}

// Resolved reports whether a moderator has already acted on the item.
func (q QueueItem) Resolved() bool { return q.ReviewedAt != nil }

// StatusForAction maps a pipeline action to the initial queue status.
func StatusForAction(a Action) QueueStatus {
	switch a {
	case ActionBlock:
		return QueueStatusBlocked
	case ActionFlag:
		return QueueStatusFlagged
	default:
		return QueueStatusQueued
	}
}

// ResolutionAction is what a moderator chooses when resolving a queue item.
type ResolutionAction string

const (
	ResolutionApprove ResolutionAction = "APPROVE"
	ResolutionBlock   ResolutionAction = "BLOCK"
	ResolutionFlag    ResolutionAction = "FLAG"
)

// StatusForResolution maps a moderator action to the resulting queue status.
func StatusForResolution(a ResolutionAction) (QueueStatus, bool) {
	switch a {
	case ResolutionApprove:
		return QueueStatusApproved, true
	case ResolutionBlock:
		return QueueStatusBlocked, true
	case ResolutionFlag:
		return QueueStatusFlagged, true
	default:
		return "", false
	}
}

// Sanctions reports whether the resolution implies a user sanction that must
// be delegated to the ban/notification collaborators.
func (a ResolutionAction) Sanctions() bool { return a == ResolutionBlock }
