package usecase

import (
	"context"
	"fmt"

	moderation "go-agora/internal/pkg/moderation/domain"
	repository "go-agora/internal/pkg/moderation/persistence/repository/port"
)

// ListAuditInput filters the audit trail. An empty EntityID lists the most
// recent entries across all entities.
type ListAuditInput struct {
	EntityID string
	Limit    int
}

// ListAuditUseCase reads the append-only action history.
type ListAuditUseCase struct {
	Repo repository.ModerationRepository
}

func NewListAuditUseCase(repo repository.ModerationRepository) *ListAuditUseCase {
	return &ListAuditUseCase{Repo: repo}
}

func (uc *ListAuditUseCase) Execute(ctx context.Context, in ListAuditInput) ([]moderation.AuditEntry, error) {
	entries, err := uc.Repo.ListAudit(ctx, in.EntityID, in.Limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return entries, nil
}
