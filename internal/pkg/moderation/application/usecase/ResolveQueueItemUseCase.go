package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	qport "go-agora/internal/infrastructure/queue/port"
	moderation "go-agora/internal/pkg/moderation/domain"
	repository "go-agora/internal/pkg/moderation/persistence/repository/port"
)

// NotifySanctionTaskType is the queue task name for delegating a user
// sanction to the notification collaborator.
const NotifySanctionTaskType = "moderation:notify_sanction"

// NotifySanctionPayload is the JSON payload transported via the queue.
type NotifySanctionPayload struct {
	QueueID     string `json:"queueId"`
	MessageID   string `json:"messageId"`
	ModeratorID string `json:"moderatorId"`
	Reason      string `json:"reason"`
}

// ResolveQueueItemInput carries a moderator's decision on one queue item.
type ResolveQueueItemInput struct {
	QueueID     string
	ModeratorID string
	Action      moderation.ResolutionAction
	Reason      string
}

// ResolveQueueItemUseCase transitions a queue item per the moderator's
// action, stamps reviewedAt, records the audit entry, and delegates user
// sanctions to the background notification task. A second resolution of the
// same item is rejected with ErrAlreadyResolved.
type ResolveQueueItemUseCase struct {
	Repo  repository.ModerationRepository
	Tasks qport.Client // nil disables sanction delegation
}

func NewResolveQueueItemUseCase(repo repository.ModerationRepository, tasks qport.Client) *ResolveQueueItemUseCase {
	return &ResolveQueueItemUseCase{Repo: repo, Tasks: tasks}
}

func (uc *ResolveQueueItemUseCase) Execute(ctx context.Context, in ResolveQueueItemInput) (moderation.QueueItem, error) {
	if in.QueueID == "" || in.ModeratorID == "" {
		return moderation.QueueItem{}, fmt.Errorf("queue_id and moderator_id are required")
	}
	status, ok := moderation.StatusForResolution(in.Action)
	if !ok {
		return moderation.QueueItem{}, fmt.Errorf("unknown resolution action %q", in.Action)
	}

	now := time.Now().UTC()
	item, err := uc.Repo.GetQueueItem(ctx, in.QueueID)
	if err != nil {
		if errors.Is(err, moderation.ErrQueueItemNotFound) {
			return moderation.QueueItem{}, err
		}
		return moderation.QueueItem{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// Transition and audit entry commit together, so a resolved item can
	// never lack its trail.
	audit := moderation.AuditEntry{
		Action:      moderation.AuditReportResolved,
		EntityType:  moderation.EntityQueueItem,
		EntityID:    in.QueueID,
		PerformedBy: &in.ModeratorID,
		Details:     fmt.Sprintf("action=%s reason=%s", in.Action, in.Reason),
		CreatedAt:   now,
	}
	if err := uc.Repo.ResolveQueueItem(ctx, in.QueueID, status, in.Reason, now, audit); err != nil {
		if errors.Is(err, moderation.ErrAlreadyResolved) || errors.Is(err, moderation.ErrQueueItemNotFound) {
			return moderation.QueueItem{}, err
		}
		return moderation.QueueItem{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if in.Action.Sanctions() && uc.Tasks != nil {
		payload, err := json.Marshal(NotifySanctionPayload{
			QueueID:     in.QueueID,
			MessageID:   item.MessageID,
			ModeratorID: in.ModeratorID,
			Reason:      in.Reason,
		})
		if err == nil {
			// Best-effort: the resolution stands even if delegation fails.
			_, _ = uc.Tasks.Enqueue(ctx, qport.Task{Type: NotifySanctionTaskType, Payload: payload},
				qport.EnqueueOption{Queue: "moderation", MaxRetry: 10})
		}
	}

	item.Status = status
	item.Reason = in.Reason
	item.ReviewedAt = &now
	return item, nil
}
