package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	qport "go-agora/internal/infrastructure/queue/port"
	"go-agora/internal/pkg/moderation/application/usecase"
	moderation "go-agora/internal/pkg/moderation/domain"
	repoAdapter "go-agora/internal/pkg/moderation/persistence/repository/adapter"
)

// RegisterNotifySanctionTask binds the sanction-notification handler to the
// provided server. The handler is the delegation point to the external
// ban/notification collaborators; here it records the sanction in the audit
// trail and logs the dispatch.
func RegisterNotifySanctionTask(srv qport.Server, pool *pgxpool.Pool, log *zap.Logger) {
	srv.Register(usecase.NotifySanctionTaskType, func(ctx context.Context, t qport.Task) error {
		var p usecase.NotifySanctionPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: do not retry indefinitely
			return err
		}

		repo := repoAdapter.NewPgModerationRepository(pool)

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		if err := repo.AppendAudit(ctx, moderation.AuditEntry{
			Action:      moderation.AuditUserSanctioned,
			EntityType:  moderation.EntityQueueItem,
			EntityID:    p.QueueID,
			PerformedBy: &p.ModeratorID,
			Details:     "sanction notification dispatched: " + p.Reason,
			CreatedAt:   time.Now().UTC(),
		}); err != nil {
			// Signal retry; the handler is idempotent per queue item.
			return err
		}

		log.Info("user sanction delegated to notification collaborator",
			zap.String("queue_id", p.QueueID),
			zap.String("message_id", p.MessageID),
			zap.String("moderator_id", p.ModeratorID))
		return nil
	})
}
