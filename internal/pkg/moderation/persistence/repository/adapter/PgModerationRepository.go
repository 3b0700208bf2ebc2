package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	moderation "go-agora/internal/pkg/moderation/domain"
)

const pgUniqueViolation = "23505"

type PgModerationRepository struct {
	pool *pgxpool.Pool
}

func NewPgModerationRepository(pool *pgxpool.Pool) *PgModerationRepository {
	return &PgModerationRepository{pool: pool}
}

func (r *PgModerationRepository) CreateMessage(ctx context.Context, m moderation.Message) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgModerationRepository: nil pool")
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO moderation.message (id, thread_id, author_id, parent_id, content, created_at)
		VALUES (NULLIF($1, '')::uuid, $2::uuid, $3::uuid, $4::uuid, $5, $6)
		RETURNING id::text
	`, m.ID, m.ThreadID, m.AuthorID, m.ParentID, m.Content, m.CreatedAt).Scan(&id)
	return id, err
}

func (r *PgModerationRepository) ListRecentMessages(ctx context.Context, threadID string, limit int) ([]moderation.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgModerationRepository: nil pool")
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, thread_id::text, author_id::text, parent_id::text, content, created_at
		FROM moderation.message
		WHERE thread_id = $1::uuid
		ORDER BY created_at DESC
		LIMIT $2
	`, threadID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []moderation.Message
	for rows.Next() {
		var (
			m        moderation.Message
			parentID *string
		)
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.AuthorID, &parentID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.ParentID = parentID
		msgs = append(msgs, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	// Most-recent-last, the order the pipeline expects.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (r *PgModerationRepository) ListRules(ctx context.Context) ([]moderation.Rule, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgModerationRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, pattern, category, action, severity, position, enabled
		FROM moderation.rule
		WHERE enabled
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []moderation.Rule
	for rows.Next() {
		var rule moderation.Rule
		if err := rows.Scan(&rule.ID, &rule.Pattern, &rule.Category, &rule.Action, &rule.Severity, &rule.Position, &rule.Enabled); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// CreateQueueItem inserts the queue item and its audit entry in one
// transaction: both or neither.
func (r *PgModerationRepository) CreateQueueItem(ctx context.Context, item moderation.QueueItem, audit moderation.AuditEntry) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgModerationRepository: nil pool")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id string
	err = tx.QueryRow(ctx, `
		INSERT INTO moderation.queue_item (message_id, status, reason, confidence, created_at)
		VALUES ($1::uuid, $2, $3, $4, $5)
		RETURNING id::text
	`, item.MessageID, item.Status, item.Reason, item.Confidence, item.CreatedAt).Scan(&id)
	if err != nil {
		return "", err
	}

	audit.EntityID = id
	if err := appendAuditTx(ctx, tx, audit); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (r *PgModerationRepository) GetQueueItem(ctx context.Context, id string) (moderation.QueueItem, error) {
	if r == nil || r.pool == nil {
		return moderation.QueueItem{}, errors.New("PgModerationRepository: nil pool")
	}
	var item moderation.QueueItem
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, message_id::text, status, reason, confidence, created_at, reviewed_at
		FROM moderation.queue_item
		WHERE id = $1::uuid
	`, id).Scan(&item.ID, &item.MessageID, &item.Status, &item.Reason, &item.Confidence, &item.CreatedAt, &item.ReviewedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return moderation.QueueItem{}, moderation.ErrQueueItemNotFound
	}
	return item, err
}

// ListQueueItems surfaces unresolved items first, then by recency.
func (r *PgModerationRepository) ListQueueItems(ctx context.Context, status *moderation.QueueStatus, limit, offset int) ([]moderation.QueueItem, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgModerationRepository: nil pool")
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, message_id::text, status, reason, confidence, created_at, reviewed_at
		FROM moderation.queue_item
		WHERE $1::text IS NULL OR status = $1
		ORDER BY (reviewed_at IS NOT NULL) ASC, created_at DESC
		LIMIT $2 OFFSET $3
	`, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []moderation.QueueItem
	for rows.Next() {
		var item moderation.QueueItem
		if err := rows.Scan(&item.ID, &item.MessageID, &item.Status, &item.Reason, &item.Confidence, &item.CreatedAt, &item.ReviewedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ResolveQueueItem is guarded by reviewed_at IS NULL so a second resolution
// fails instead of silently overwriting the first. The transition and its
// audit entry commit in one transaction: both or neither.
func (r *PgModerationRepository) ResolveQueueItem(ctx context.Context, id string, status moderation.QueueStatus, reason string, reviewedAt time.Time, audit moderation.AuditEntry) error {
	if r == nil || r.pool == nil {
		return errors.New("PgModerationRepository: nil pool")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `
		UPDATE moderation.queue_item
		SET status = $2, reason = $3, reviewed_at = $4
		WHERE id = $1::uuid AND reviewed_at IS NULL
	`, id, status, reason, reviewedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM moderation.queue_item WHERE id = $1::uuid)
		`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return moderation.ErrQueueItemNotFound
		}
		return moderation.ErrAlreadyResolved
	}
	if err := appendAuditTx(ctx, tx, audit); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PgModerationRepository) AppendAudit(ctx context.Context, e moderation.AuditEntry) error {
	if r == nil || r.pool == nil {
		return errors.New("PgModerationRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO moderation.audit_log (action, entity_type, entity_id, user_id, performed_by, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.Action, e.EntityType, e.EntityID, e.UserID, e.PerformedBy, e.Details, e.CreatedAt)
	return err
}

func appendAuditTx(ctx context.Context, tx pgx.Tx, e moderation.AuditEntry) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO moderation.audit_log (action, entity_type, entity_id, user_id, performed_by, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.Action, e.EntityType, e.EntityID, e.UserID, e.PerformedBy, e.Details, e.CreatedAt)
	return err
}

func (r *PgModerationRepository) ListAudit(ctx context.Context, entityID string, limit int) ([]moderation.AuditEntry, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgModerationRepository: nil pool")
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, action, entity_type, entity_id, user_id, performed_by, details, created_at
		FROM moderation.audit_log
		WHERE $1 = '' OR entity_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, entityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []moderation.AuditEntry
	for rows.Next() {
		var e moderation.AuditEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.EntityType, &e.EntityID, &e.UserID, &e.PerformedBy, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PgModerationRepository) CreateAppeal(ctx context.Context, a moderation.Appeal) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgModerationRepository: nil pool")
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO moderation.appeal (message_id, user_id, queue_id, reason, status, created_at)
		VALUES ($1::uuid, $2::uuid, $3::uuid, $4, $5, $6)
		RETURNING id::text
	`, a.MessageID, a.UserID, a.QueueID, a.Reason, a.Status, a.CreatedAt).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return "", moderation.ErrDuplicateAppeal
		}
		return "", err
	}
	return id, nil
}

func (r *PgModerationRepository) GetAppeal(ctx context.Context, id string) (moderation.Appeal, error) {
	if r == nil || r.pool == nil {
		return moderation.Appeal{}, errors.New("PgModerationRepository: nil pool")
	}
	var a moderation.Appeal
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, message_id::text, user_id::text, queue_id::text, reason, status, moderator_id::text, response, created_at, resolved_at
		FROM moderation.appeal
		WHERE id = $1::uuid
	`, id).Scan(&a.ID, &a.MessageID, &a.UserID, &a.QueueID, &a.Reason, &a.Status, &a.ModeratorID, &a.Response, &a.CreatedAt, &a.ResolvedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return moderation.Appeal{}, moderation.ErrAppealNotFound
	}
	return a, err
}

// ResolveAppeal is guarded by status = PENDING so a resolved appeal can never
// be resolved again. The appeal transition, the optional queue-item reversal,
// and the audit entry commit in one transaction.
func (r *PgModerationRepository) ResolveAppeal(ctx context.Context, id, moderatorID string, status moderation.AppealStatus, response *string, resolvedAt time.Time, approveQueueID *string, audit moderation.AuditEntry) error {
	if r == nil || r.pool == nil {
		return errors.New("PgModerationRepository: nil pool")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `
		UPDATE moderation.appeal
		SET status = $2, moderator_id = $3::uuid, response = $4, resolved_at = $5
		WHERE id = $1::uuid AND status = $6
	`, id, status, moderatorID, response, resolvedAt, moderation.AppealStatusPending)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM moderation.appeal WHERE id = $1::uuid)
		`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return moderation.ErrAppealNotFound
		}
		return moderation.ErrAlreadyResolved
	}

	if approveQueueID != nil {
		// Reversal bypasses the resolution guard: the item was resolved
		// before the appeal existed.
		if _, err := tx.Exec(ctx, `
			UPDATE moderation.queue_item SET status = $2 WHERE id = $1::uuid
		`, *approveQueueID, moderation.QueueStatusApproved); err != nil {
			return err
		}
	}

	if err := appendAuditTx(ctx, tx, audit); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
