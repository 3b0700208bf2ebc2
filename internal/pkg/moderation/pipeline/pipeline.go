package pipeline

import (
	"context"

	"go.uber.org/zap"

	moderation "go-agora/internal/pkg/moderation/domain"
	"go-agora/internal/pkg/moderation/filter"
)

// Pipeline runs the moderation stages in a fixed order for one message:
// rate limiter, rule filter, ML classifier, contextual analyzer. A hard BLOCK
// short-circuits everything after it; otherwise the strictest verdict wins
// and contextual analysis can only escalate from ALLOW. Stages run
// sequentially per message; independent messages may be evaluated
// concurrently.
type Pipeline struct {
	log        *zap.Logger
	rate       *filter.RateLimiter
	rules      *filter.RuleFilter
	classifier *filter.Classifier
	contextual *filter.ContextualAnalyzer
}

// New wires the four stages.
func New(log *zap.Logger, rate *filter.RateLimiter, rules *filter.RuleFilter, classifier *filter.Classifier, contextual *filter.ContextualAnalyzer) *Pipeline {
	return &Pipeline{log: log, rate: rate, rules: rules, classifier: classifier, contextual: contextual}
}

// Evaluate produces the single ModerationResult for the message. It always
// completes: an in-flight evaluation is never cancelled by connection close,
// so callers should pass a context detached from the connection.
func (p *Pipeline) Evaluate(ctx context.Context, msg moderation.Message, convCtx moderation.Context) moderation.Result {
	// Stage 1: admission. An exceeded limit blocks before any content
	// analysis so downstream stages are protected from load.
	if res := p.rate.Check(ctx, msg.AuthorID); res.Action == moderation.ActionBlock {
		p.logVerdict(msg, res, "rate_limiter")
		return res
	}

	// Stage 2: persisted rules plus the built-in denylist.
	ruleRes := p.rules.Check(ctx, msg.Content)
	if ruleRes.Action == moderation.ActionBlock {
		p.logVerdict(msg, ruleRes, "rule_filter")
		return ruleRes
	}

	// Stage 3: external classification, merged with the rule verdict by
	// strictness.
	mlRes := p.classifier.Check(ctx, msg, convCtx)
	verdict := moderation.Stricter(ruleRes, mlRes)

	// Stage 4: contextual escalation, from ALLOW only.
	if verdict.Action == moderation.ActionAllow {
		if escalates, reason := p.contextual.Escalates(msg, convCtx); escalates {
			verdict = moderation.Result{
				Action:     moderation.ActionReview,
				Severity:   moderation.SeverityMedium,
				Confidence: verdict.Confidence,
				Reason:     reason,
			}
		}
	}

	verdict.Allowed = verdict.Action == moderation.ActionAllow
	if !verdict.Allowed {
		p.logVerdict(msg, verdict, "aggregate")
	}
	return verdict
}

func (p *Pipeline) logVerdict(msg moderation.Message, res moderation.Result, stage string) {
	p.log.Info("moderation verdict",
		zap.String("message_id", msg.ID),
		zap.String("thread_id", msg.ThreadID),
		zap.String("author_id", msg.AuthorID),
		zap.String("stage", stage),
		zap.String("action", string(res.Action)),
		zap.String("severity", string(res.Severity)),
		zap.Float64("confidence", res.Confidence),
		zap.String("reason", res.Reason))
}
