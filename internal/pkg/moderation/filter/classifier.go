package filter

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	moderation "go-agora/internal/pkg/moderation/domain"
	"go-agora/internal/pkg/moderation/analyzer"
)

// contextWindow bounds how much thread history is sent to the analysis
// collaborator along with the new message.
const contextWindow = 10

// Toxicity cutoffs. The review threshold is configurable; block and flag are
// fixed.
const (
	blockThreshold = 0.9
	flagThreshold  = 0.5
)

// Classifier asks the external content-analysis collaborator for a toxicity
// confidence and maps it to a verdict. When moderation is disabled or no
// collaborator is configured it returns ALLOW (advisory-off, not fail-closed).
// A collaborator failure or timeout maps to REVIEW, never silently ALLOW.
type Classifier struct {
	log       *zap.Logger
	analyzer  analyzer.Analyzer // nil when not configured
	enabled   bool
	threshold float64
	timeout   time.Duration
}

// NewClassifier constructs the classifier. threshold is the REVIEW cutoff
// (default policy 0.7); timeout bounds the collaborator call.
func NewClassifier(log *zap.Logger, a analyzer.Analyzer, enabled bool, threshold float64, timeout time.Duration) *Classifier {
	return &Classifier{log: log, analyzer: a, enabled: enabled, threshold: threshold, timeout: timeout}
}

// Check classifies the message within its recent thread context.
func (c *Classifier) Check(ctx context.Context, msg moderation.Message, convCtx moderation.Context) moderation.Result {
	if !c.enabled || c.analyzer == nil {
		return moderation.Result{
			Allowed:    true,
			Action:     moderation.ActionAllow,
			Severity:   moderation.SeverityLow,
			Confidence: 0,
			Reason:     "content analysis disabled",
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	summary, err := c.analyzer.Analyze(callCtx, c.window(msg, convCtx))
	if err != nil {
		c.log.Warn("content analysis unavailable, escalating to review",
			zap.String("message_id", msg.ID), zap.Error(err))
		return moderation.Result{
			Allowed:    false,
			Action:     moderation.ActionReview,
			Severity:   moderation.SeverityLow,
			Confidence: 0,
			Reason:     "content analysis unavailable",
		}
	}

	tox := summary.Toxicity
	switch {
	case tox >= blockThreshold:
		return moderation.Result{Action: moderation.ActionBlock, Severity: moderation.SeverityHigh, Confidence: tox, Reason: "toxic content"}
	case tox >= c.threshold:
		return moderation.Result{Action: moderation.ActionReview, Severity: moderation.SeverityMedium, Confidence: tox, Reason: "likely toxic content"}
	case tox >= flagThreshold:
		return moderation.Result{Action: moderation.ActionFlag, Severity: moderation.SeverityLow, Confidence: tox, Reason: "possibly toxic content"}
	default:
		return moderation.Result{Allowed: true, Action: moderation.ActionAllow, Severity: moderation.SeverityLow, Confidence: tox, Reason: "content analysis passed"}
	}
}

// window joins the last messages of the thread with the new one, oldest
// first, so the collaborator sees the conversation the way readers do.
func (c *Classifier) window(msg moderation.Message, convCtx moderation.Context) string {
	history := convCtx.RecentHistory
	if len(history) > contextWindow {
		history = history[len(history)-contextWindow:]
	}
	parts := make([]string, 0, len(history)+1)
	for _, m := range history {
		parts = append(parts, m.Content)
	}
	parts = append(parts, msg.Content)
	return strings.Join(parts, "\n")
}
