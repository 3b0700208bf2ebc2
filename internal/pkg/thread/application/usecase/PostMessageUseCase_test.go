package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-agora/internal/pkg/moderation/analyzer"
	moderation "go-agora/internal/pkg/moderation/domain"
	"go-agora/internal/pkg/moderation/filter"
	"go-agora/internal/pkg/moderation/pipeline"
)

// postRepo implements the persistence port with just enough behavior for the
// post-message flow.
type postRepo struct {
	messages   []moderation.Message
	queued     []moderation.QueueItem
	audits     []moderation.AuditEntry
	historyErr error
	createErr  error
}

func (r *postRepo) CreateMessage(_ context.Context, m moderation.Message) (string, error) {
	if r.createErr != nil {
		return "", r.createErr
	}
	r.messages = append(r.messages, m)
	return m.ID, nil
}

func (r *postRepo) ListRecentMessages(_ context.Context, threadID string, limit int) ([]moderation.Message, error) {
	if r.historyErr != nil {
		return nil, r.historyErr
	}
	return r.messages, nil
}

func (r *postRepo) ListRules(context.Context) ([]moderation.Rule, error) { return nil, nil }

func (r *postRepo) CreateQueueItem(_ context.Context, item moderation.QueueItem, audit moderation.AuditEntry) (string, error) {
	item.ID = "q-1"
	r.queued = append(r.queued, item)
	r.audits = append(r.audits, audit)
	return item.ID, nil
}

func (r *postRepo) GetQueueItem(context.Context, string) (moderation.QueueItem, error) {
	return moderation.QueueItem{}, moderation.ErrQueueItemNotFound
}

func (r *postRepo) ListQueueItems(context.Context, *moderation.QueueStatus, int, int) ([]moderation.QueueItem, error) {
	return nil, nil
}

func (r *postRepo) ResolveQueueItem(context.Context, string, moderation.QueueStatus, string, time.Time, moderation.AuditEntry) error {
	return nil
}

func (r *postRepo) AppendAudit(_ context.Context, e moderation.AuditEntry) error {
	r.audits = append(r.audits, e)
	return nil
}

func (r *postRepo) ListAudit(context.Context, string, int) ([]moderation.AuditEntry, error) {
	return nil, nil
}

func (r *postRepo) CreateAppeal(context.Context, moderation.Appeal) (string, error) {
	return "", nil
}

func (r *postRepo) GetAppeal(context.Context, string) (moderation.Appeal, error) {
	return moderation.Appeal{}, moderation.ErrAppealNotFound
}

func (r *postRepo) ResolveAppeal(context.Context, string, string, moderation.AppealStatus, *string, time.Time, *string, moderation.AuditEntry) error {
	return nil
}

type fixedAnalyzer struct{ toxicity float64 }

func (a fixedAnalyzer) Analyze(context.Context, string) (analyzer.Summary, error) {
	return analyzer.Summary{Toxicity: a.toxicity}, nil
}

func newPostUseCase(repo *postRepo, toxicity float64) *PostMessageUseCase {
	log := zap.NewNop()
	pipe := pipeline.New(log,
		filter.NewRateLimiter(log, nil, "messages", 10, 10*time.Second),
		filter.NewRuleFilter(log, repo),
		filter.NewClassifier(log, fixedAnalyzer{toxicity: toxicity}, true, 0.7, time.Second),
		filter.NewContextualAnalyzer(),
	)
	return NewPostMessageUseCase(repo, pipe, log)
}

func TestPostMessageAllowedIsNotQueued(t *testing.T) {
	repo := &postRepo{}
	uc := newPostUseCase(repo, 0.1)

	out, err := uc.Execute(context.Background(), PostMessageInput{
		ThreadID: "t-1", AuthorID: "u-1", Content: "good afternoon everyone",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, out.MessageID)
	assert.Equal(t, moderation.ActionAllow, out.Result.Action)
	assert.Empty(t, out.QueueID)
	require.Len(t, repo.messages, 1, "the message row is always written")
	assert.Empty(t, repo.queued)
}

func TestPostMessageReviewVerdictIsQueuedAndAudited(t *testing.T) {
	repo := &postRepo{}
	uc := newPostUseCase(repo, 0.75)

	out, err := uc.Execute(context.Background(), PostMessageInput{
		ThreadID: "t-1", AuthorID: "u-1", Content: "borderline hostility",
	})
	require.NoError(t, err)

	assert.Equal(t, moderation.ActionReview, out.Result.Action)
	assert.Equal(t, "q-1", out.QueueID)

	require.Len(t, repo.queued, 1)
	assert.Equal(t, moderation.QueueStatusQueued, repo.queued[0].Status)
	assert.Equal(t, out.MessageID, repo.queued[0].MessageID)
	assert.Equal(t, out.Result.Confidence, repo.queued[0].Confidence)

	require.Len(t, repo.audits, 1)
	assert.Equal(t, moderation.AuditMessageQueued, repo.audits[0].Action)
	assert.Equal(t, out.MessageID, repo.audits[0].EntityID)
}

func TestPostMessageBlockedVerdictStillPersistsMessage(t *testing.T) {
	repo := &postRepo{}
	uc := newPostUseCase(repo, 0.95)

	out, err := uc.Execute(context.Background(), PostMessageInput{
		ThreadID: "t-1", AuthorID: "u-1", Content: "something vile",
	})
	require.NoError(t, err)

	assert.Equal(t, moderation.ActionBlock, out.Result.Action)
	assert.Len(t, repo.messages, 1, "a blocked message is withheld from broadcast, not from storage")
	require.Len(t, repo.queued, 1)
	assert.Equal(t, moderation.QueueStatusBlocked, repo.queued[0].Status)
}

func TestPostMessageHistoryFailureDegradesGracefully(t *testing.T) {
	repo := &postRepo{historyErr: errors.New("db flake")}
	uc := newPostUseCase(repo, 0.1)

	out, err := uc.Execute(context.Background(), PostMessageInput{
		ThreadID: "t-1", AuthorID: "u-1", Content: "still works",
	})
	require.NoError(t, err)
	assert.Equal(t, moderation.ActionAllow, out.Result.Action)
}

func TestPostMessagePersistFailure(t *testing.T) {
	repo := &postRepo{createErr: errors.New("insert failed")}
	uc := newPostUseCase(repo, 0.1)

	_, err := uc.Execute(context.Background(), PostMessageInput{
		ThreadID: "t-1", AuthorID: "u-1", Content: "doomed",
	})
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestPostMessageValidation(t *testing.T) {
	uc := newPostUseCase(&postRepo{}, 0.1)

	_, err := uc.Execute(context.Background(), PostMessageInput{AuthorID: "u-1", Content: "hi"})
	assert.Error(t, err)

	_, err = uc.Execute(context.Background(), PostMessageInput{ThreadID: "t-1", Content: "hi"})
	assert.Error(t, err)
}
