package usecase

import (
	"context"
	"fmt"

	moderation "go-agora/internal/pkg/moderation/domain"
	repository "go-agora/internal/pkg/moderation/persistence/repository/port"
)

// ListQueueInput filters the moderation queue. A nil Status lists everything.
type ListQueueInput struct {
	Status *moderation.QueueStatus
	Limit  int
	Offset int
}

// ListQueueUseCase surfaces queue items for moderator review, unresolved
// items first.
type ListQueueUseCase struct {
	Repo repository.ModerationRepository
}

func NewListQueueUseCase(repo repository.ModerationRepository) *ListQueueUseCase {
	return &ListQueueUseCase{Repo: repo}
}

func (uc *ListQueueUseCase) Execute(ctx context.Context, in ListQueueInput) ([]moderation.QueueItem, error) {
	if in.Status != nil {
		if _, ok := map[moderation.QueueStatus]struct{}{
			moderation.QueueStatusQueued:   {},
			moderation.QueueStatusFlagged:  {},
			moderation.QueueStatusBlocked:  {},
			moderation.QueueStatusApproved: {},
		}[*in.Status]; !ok {
			return nil, fmt.Errorf("unknown queue status %q", *in.Status)
		}
	}
	items, err := uc.Repo.ListQueueItems(ctx, in.Status, in.Limit, in.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return items, nil
}
