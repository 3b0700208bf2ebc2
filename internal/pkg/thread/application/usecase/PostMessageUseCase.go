package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	moderation "go-agora/internal/pkg/moderation/domain"
	"go-agora/internal/pkg/moderation/pipeline"
	repository "go-agora/internal/pkg/moderation/persistence/repository/port"
)

const historyWindow = 10

// ErrPersistence wraps repository failures while posting a message.
var ErrPersistence = fmt.Errorf("thread use case persistence error")

// PostMessageInput is one message submitted over a thread connection.
type PostMessageInput struct {
	ThreadID string
	AuthorID string
	Content  string
	ParentID *string
}

// PostMessageOutput reports the stored message and the pipeline verdict.
// QueueID is set only when the verdict sent the message to the review queue.
type PostMessageOutput struct {
	MessageID string
	Result    moderation.Result
	QueueID   string
}

// PostMessageUseCase persists a message, evaluates it through the moderation
// pipeline, and files non-allowed verdicts into the review queue. The message
// row is always written; a BLOCK verdict withholds broadcast, not storage.
type PostMessageUseCase struct {
	Repo     repository.ModerationRepository
	Pipeline *pipeline.Pipeline
	Log      *zap.Logger
}

func NewPostMessageUseCase(repo repository.ModerationRepository, p *pipeline.Pipeline, log *zap.Logger) *PostMessageUseCase {
	return &PostMessageUseCase{Repo: repo, Pipeline: p, Log: log}
}

func (uc *PostMessageUseCase) Execute(ctx context.Context, in PostMessageInput) (PostMessageOutput, error) {
	if in.ThreadID == "" || in.AuthorID == "" {
		return PostMessageOutput{}, fmt.Errorf("thread_id and author_id are required")
	}

	now := time.Now().UTC()
	msg := moderation.Message{
		ID:        uuid.NewString(),
		Content:   in.Content,
		AuthorID:  in.AuthorID,
		ThreadID:  in.ThreadID,
		ParentID:  in.ParentID,
		CreatedAt: now,
	}

	// Snapshot the thread context before the new message lands so it is not
	// part of its own history.
	convCtx := moderation.Context{ThreadID: in.ThreadID}
	history, err := uc.Repo.ListRecentMessages(ctx, in.ThreadID, historyWindow)
	if err != nil {
		// Degrade to a context-free evaluation rather than losing the message.
		uc.Log.Warn("recent history unavailable, evaluating without context",
			zap.String("thread_id", in.ThreadID), zap.Error(err))
	} else {
		convCtx.RecentHistory = history
	}

	id, err := uc.Repo.CreateMessage(ctx, msg)
	if err != nil {
		return PostMessageOutput{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	msg.ID = id

	res := uc.Pipeline.Evaluate(ctx, msg, convCtx)
	out := PostMessageOutput{MessageID: msg.ID, Result: res}
	if res.Action == moderation.ActionAllow {
		return out, nil
	}

	queueID, err := uc.Repo.CreateQueueItem(ctx, moderation.QueueItem{
		MessageID:  msg.ID,
		Status:     moderation.StatusForAction(res.Action),
		Reason:     res.Reason,
		Confidence: res.Confidence,
		CreatedAt:  now,
	}, moderation.AuditEntry{
		Action:     moderation.AuditMessageQueued,
		EntityType: moderation.EntityMessage,
		EntityID:   msg.ID,
		UserID:     &in.AuthorID,
		Details:    fmt.Sprintf("action=%s severity=%s reason=%s", res.Action, res.Severity, res.Reason),
		CreatedAt:  now,
	})
	if err != nil {
		return PostMessageOutput{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	out.QueueID = queueID
	return out, nil
}
