package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	moderation "go-agora/internal/pkg/moderation/domain"
	repository "go-agora/internal/pkg/moderation/persistence/repository/port"
)

// AppealDecision is the moderator's verdict on an appeal.
type AppealDecision string

const (
	DecisionApprove AppealDecision = "APPROVE"
	DecisionDeny    AppealDecision = "DENY"
)

// ReviewAppealInput carries one moderator decision.
type ReviewAppealInput struct {
	AppealID    string
	ModeratorID string
	Decision    AppealDecision
	Response    *string
}

// ReviewAppealUseCase resolves a PENDING appeal exactly once. A repeated
// review of the same appeal fails with ErrAlreadyResolved; there is no
// silent overwrite. Approval also reverses the linked queue item; denial
// changes nothing beyond the appeal itself. Both outcomes are audited.
type ReviewAppealUseCase struct {
	Repo repository.ModerationRepository
}

func NewReviewAppealUseCase(repo repository.ModerationRepository) *ReviewAppealUseCase {
	return &ReviewAppealUseCase{Repo: repo}
}

func (uc *ReviewAppealUseCase) Execute(ctx context.Context, in ReviewAppealInput) (*moderation.Appeal, error) {
	if in.AppealID == "" || in.ModeratorID == "" {
		return nil, fmt.Errorf("appeal_id and moderator_id are required")
	}

	var status moderation.AppealStatus
	switch in.Decision {
	case DecisionApprove:
		status = moderation.AppealStatusApproved
	case DecisionDeny:
		status = moderation.AppealStatusDenied
	default:
		return nil, fmt.Errorf("unknown appeal decision %q", in.Decision)
	}

	appeal, err := uc.Repo.GetAppeal(ctx, in.AppealID)
	if err != nil {
		if errors.Is(err, moderation.ErrAppealNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	auditAction := moderation.AuditAppealDenied
	var approveQueueID *string
	if status == moderation.AppealStatusApproved {
		auditAction = moderation.AuditAppealApproved
		approveQueueID = appeal.QueueID
	}

	// The appeal transition, the queue-item reversal, and the audit entry
	// commit together, so a resolved appeal can never lack its trail.
	now := time.Now().UTC()
	audit := moderation.AuditEntry{
		Action:      auditAction,
		EntityType:  moderation.EntityAppeal,
		EntityID:    in.AppealID,
		UserID:      &appeal.UserID,
		PerformedBy: &in.ModeratorID,
		Details:     fmt.Sprintf("message=%s", appeal.MessageID),
		CreatedAt:   now,
	}
	if err := uc.Repo.ResolveAppeal(ctx, in.AppealID, in.ModeratorID, status, in.Response, now, approveQueueID, audit); err != nil {
		if errors.Is(err, moderation.ErrAlreadyResolved) || errors.Is(err, moderation.ErrAppealNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	appeal.Status = status
	appeal.ModeratorID = &in.ModeratorID
	appeal.Response = in.Response
	appeal.ResolvedAt = &now
	return &appeal, nil
}
