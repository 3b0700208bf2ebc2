package repository

import (
	"context"
	"time"

	moderation "go-agora/internal/pkg/moderation/domain"
)

// ModerationRepository is the persistence collaborator consumed by the core.
// The audit log is append-only by construction: the port exposes no update or
// delete for audit entries.
type ModerationRepository interface {
	// Messages. The stored message row is created here; a message is never
	// dropped regardless of the moderation outcome.
	CreateMessage(ctx context.Context, m moderation.Message) (string, error)
	ListRecentMessages(ctx context.Context, threadID string, limit int) ([]moderation.Message, error)

	// Rules, ordered by position.
	ListRules(ctx context.Context) ([]moderation.Rule, error)

	// Queue. CreateQueueItem writes the item and its audit entry in one
	// transaction: together or not at all.
	CreateQueueItem(ctx context.Context, item moderation.QueueItem, audit moderation.AuditEntry) (string, error)
	GetQueueItem(ctx context.Context, id string) (moderation.QueueItem, error)
	ListQueueItems(ctx context.Context, status *moderation.QueueStatus, limit, offset int) ([]moderation.QueueItem, error)
	// ResolveQueueItem transitions an unresolved item, stamping reviewedAt,
	// and writes the audit entry in the same transaction: a resolved item
	// always has its trail. Returns ErrAlreadyResolved when the item was
	// resolved before, and ErrQueueItemNotFound when it does not exist.
	ResolveQueueItem(ctx context.Context, id string, status moderation.QueueStatus, reason string, reviewedAt time.Time, audit moderation.AuditEntry) error

	// Audit log, append-only.
	AppendAudit(ctx context.Context, e moderation.AuditEntry) error
	ListAudit(ctx context.Context, entityID string, limit int) ([]moderation.AuditEntry, error)

	// Appeals. CreateAppeal returns ErrDuplicateAppeal when an appeal already
	// exists for the (messageID, userID) pair. ResolveAppeal returns
	// ErrAlreadyResolved unless the appeal is still PENDING; when
	// approveQueueID is set it also reverses that queue item to APPROVED,
	// and the transition, the reversal, and the audit entry commit in one
	// transaction.
	CreateAppeal(ctx context.Context, a moderation.Appeal) (string, error)
	GetAppeal(ctx context.Context, id string) (moderation.Appeal, error)
	ResolveAppeal(ctx context.Context, id, moderatorID string, status moderation.AppealStatus, response *string, resolvedAt time.Time, approveQueueID *string, audit moderation.AuditEntry) error
}
