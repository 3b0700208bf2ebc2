package moderation

import "time"

// Audit action names recorded for pipeline, queue, and appeal transitions.
const (
	AuditMessageQueued   = "MESSAGE_QUEUED"
	AuditReportResolved  = "REPORT_RESOLVED"
	AuditAppealSubmitted = "APPEAL_SUBMITTED"
	AuditAppealApproved  = "APPEAL_APPROVED"
	AuditAppealDenied    = "APPEAL_DENIED"
	AuditUserSanctioned  = "USER_SANCTIONED"
)

// Entity types referenced by audit entries.
const (
	EntityMessage   = "message"
	EntityQueueItem = "moderation_queue_item"
	EntityAppeal    = "appeal"
)

// AuditEntry is one append-only record of a moderation or appeal state
// transition. Every transition emits one, including denials, so the trail is
// complete regardless of outcome.
type AuditEntry struct {
	ID          string
	Action      string
	EntityType  string
	EntityID    string
	UserID      *string // subject of the action, when there is one
	PerformedBy *string // moderator or system actor
	Details     string
	CreatedAt   time.Time
}
