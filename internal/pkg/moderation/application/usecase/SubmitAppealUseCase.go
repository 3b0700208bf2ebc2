package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	moderation "go-agora/internal/pkg/moderation/domain"
	repository "go-agora/internal/pkg/moderation/persistence/repository/port"
)

// SubmitAppealInput is the sanctioned user's request to contest a decision.
type SubmitAppealInput struct {
	MessageID string
	UserID    string
	QueueID   *string
	Reason    string
}

// SubmitAppealUseCase creates a PENDING appeal. At most one appeal may exist
// per (message, user) pair; a duplicate submission is rejected with
// ErrDuplicateAppeal and no state change.
type SubmitAppealUseCase struct {
	Repo repository.ModerationRepository
}

func NewSubmitAppealUseCase(repo repository.ModerationRepository) *SubmitAppealUseCase {
	return &SubmitAppealUseCase{Repo: repo}
}

func (uc *SubmitAppealUseCase) Execute(ctx context.Context, in SubmitAppealInput) (*moderation.Appeal, error) {
	if in.MessageID == "" || in.UserID == "" {
		return nil, fmt.Errorf("message_id and user_id are required")
	}
	if in.Reason == "" {
		return nil, fmt.Errorf("reason is required")
	}

	now := time.Now().UTC()
	appeal := moderation.Appeal{
		MessageID: in.MessageID,
		UserID:    in.UserID,
		QueueID:   in.QueueID,
		Reason:    in.Reason,
		Status:    moderation.AppealStatusPending,
		CreatedAt: now,
	}

	id, err := uc.Repo.CreateAppeal(ctx, appeal)
	if err != nil {
		if errors.Is(err, moderation.ErrDuplicateAppeal) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	appeal.ID = id

	if err := uc.Repo.AppendAudit(ctx, moderation.AuditEntry{
		Action:     moderation.AuditAppealSubmitted,
		EntityType: moderation.EntityAppeal,
		EntityID:   id,
		UserID:     &in.UserID,
		Details:    fmt.Sprintf("message=%s reason=%s", in.MessageID, in.Reason),
		CreatedAt:  now,
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return &appeal, nil
}
