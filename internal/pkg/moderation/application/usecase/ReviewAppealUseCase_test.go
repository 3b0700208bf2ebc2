package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	moderation "go-agora/internal/pkg/moderation/domain"
)

func seedAppeal(t *testing.T, repo *fakeRepo, queueID *string) string {
	t.Helper()
	id, err := repo.CreateAppeal(context.Background(), moderation.Appeal{
		MessageID: "msg-1",
		UserID:    "u-1",
		QueueID:   queueID,
		Reason:    "context was missing",
		Status:    moderation.AppealStatusPending,
	})
	require.NoError(t, err)
	return id
}

func blockQueueItem(t *testing.T, repo *fakeRepo, queueID string) {
	t.Helper()
	require.NoError(t, repo.ResolveQueueItem(context.Background(), queueID, moderation.QueueStatusBlocked, "toxic", nowStamp(),
		moderation.AuditEntry{Action: moderation.AuditReportResolved, EntityType: moderation.EntityQueueItem, EntityID: queueID}))
}

func TestReviewAppealApproveReversesQueueItem(t *testing.T) {
	repo := newFakeRepo()
	queueID := seedQueueItem(t, repo)
	blockQueueItem(t, repo, queueID)
	appealID := seedAppeal(t, repo, &queueID)

	uc := NewReviewAppealUseCase(repo)
	appeal, err := uc.Execute(context.Background(), ReviewAppealInput{
		AppealID:    appealID,
		ModeratorID: "mod-1",
		Decision:    DecisionApprove,
	})
	require.NoError(t, err)

	assert.Equal(t, moderation.AppealStatusApproved, appeal.Status)
	require.NotNil(t, appeal.ResolvedAt)

	item, err := repo.GetQueueItem(context.Background(), queueID)
	require.NoError(t, err)
	assert.Equal(t, moderation.QueueStatusApproved, item.Status)
	assert.Contains(t, repo.auditActions(), moderation.AuditAppealApproved)
}

func TestReviewAppealDenyLeavesQueueItem(t *testing.T) {
	repo := newFakeRepo()
	queueID := seedQueueItem(t, repo)
	blockQueueItem(t, repo, queueID)
	appealID := seedAppeal(t, repo, &queueID)

	uc := NewReviewAppealUseCase(repo)
	response := "the decision stands"
	appeal, err := uc.Execute(context.Background(), ReviewAppealInput{
		AppealID:    appealID,
		ModeratorID: "mod-1",
		Decision:    DecisionDeny,
		Response:    &response,
	})
	require.NoError(t, err)

	assert.Equal(t, moderation.AppealStatusDenied, appeal.Status)
	require.NotNil(t, appeal.Response)
	assert.Equal(t, response, *appeal.Response)

	item, err := repo.GetQueueItem(context.Background(), queueID)
	require.NoError(t, err)
	assert.Equal(t, moderation.QueueStatusBlocked, item.Status, "denial must not touch the queue item")
	assert.Contains(t, repo.auditActions(), moderation.AuditAppealDenied)
}

func TestReviewAppealSecondReviewConflicts(t *testing.T) {
	repo := newFakeRepo()
	appealID := seedAppeal(t, repo, nil)
	uc := NewReviewAppealUseCase(repo)

	_, err := uc.Execute(context.Background(), ReviewAppealInput{
		AppealID: appealID, ModeratorID: "mod-1", Decision: DecisionDeny,
	})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), ReviewAppealInput{
		AppealID: appealID, ModeratorID: "mod-2", Decision: DecisionApprove,
	})
	assert.ErrorIs(t, err, moderation.ErrAlreadyResolved)
}

func TestReviewAppealConflictLeavesNoAuditEntry(t *testing.T) {
	repo := newFakeRepo()
	appealID := seedAppeal(t, repo, nil)
	uc := NewReviewAppealUseCase(repo)

	_, err := uc.Execute(context.Background(), ReviewAppealInput{
		AppealID: appealID, ModeratorID: "mod-1", Decision: DecisionApprove,
	})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), ReviewAppealInput{
		AppealID: appealID, ModeratorID: "mod-2", Decision: DecisionDeny,
	})
	require.ErrorIs(t, err, moderation.ErrAlreadyResolved)

	actions := repo.auditActions()
	assert.Contains(t, actions, moderation.AuditAppealApproved)
	assert.NotContains(t, actions, moderation.AuditAppealDenied, "a rejected review leaves no trail entry")
}

func TestReviewAppealWithoutQueueLink(t *testing.T) {
	repo := newFakeRepo()
	appealID := seedAppeal(t, repo, nil)
	uc := NewReviewAppealUseCase(repo)

	appeal, err := uc.Execute(context.Background(), ReviewAppealInput{
		AppealID: appealID, ModeratorID: "mod-1", Decision: DecisionApprove,
	})
	require.NoError(t, err)
	assert.Equal(t, moderation.AppealStatusApproved, appeal.Status)
}

func TestReviewAppealUnknownDecision(t *testing.T) {
	repo := newFakeRepo()
	appealID := seedAppeal(t, repo, nil)
	uc := NewReviewAppealUseCase(repo)

	_, err := uc.Execute(context.Background(), ReviewAppealInput{
		AppealID: appealID, ModeratorID: "mod-1", Decision: "SHRUG",
	})
	assert.Error(t, err)
}

func TestReviewAppealNotFound(t *testing.T) {
	uc := NewReviewAppealUseCase(newFakeRepo())

	_, err := uc.Execute(context.Background(), ReviewAppealInput{
		AppealID: "missing", ModeratorID: "mod-1", Decision: DecisionDeny,
	})
	assert.ErrorIs(t, err, moderation.ErrAppealNotFound)
}
