package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-agora/internal/pkg/moderation/analyzer"
	moderation "go-agora/internal/pkg/moderation/domain"
	"go-agora/internal/pkg/moderation/filter"
)

type stubAnalyzer struct {
	toxicity float64
	err      error
	calls    int
}

func (s *stubAnalyzer) Analyze(context.Context, string) (analyzer.Summary, error) {
	s.calls++
	if s.err != nil {
		return analyzer.Summary{}, s.err
	}
	return analyzer.Summary{Toxicity: s.toxicity}, nil
}

type stubRules struct {
	rules []moderation.Rule
}

func (s stubRules) ListRules(context.Context) ([]moderation.Rule, error) { return s.rules, nil }

// alwaysOverCache rejects everything: any increment lands over the limit.
type alwaysOverCache struct{}

func (alwaysOverCache) Get(context.Context, string) (string, error) { return "1000", nil }
func (alwaysOverCache) Set(context.Context, string, string, time.Duration) error {
	return nil
}
func (alwaysOverCache) Incr(context.Context, string, time.Duration) (int64, error) {
	return 1000, nil
}
func (alwaysOverCache) Del(context.Context, ...string) (int64, error) { return 0, nil }
func (alwaysOverCache) Ping(context.Context) error                    { return nil }
func (alwaysOverCache) Close() error                                  { return nil }

func newPipeline(ml analyzer.Analyzer, rules []moderation.Rule) *Pipeline {
	log := zap.NewNop()
	return New(log,
		filter.NewRateLimiter(log, nil, "messages", 10, 10*time.Second),
		filter.NewRuleFilter(log, stubRules{rules: rules}),
		filter.NewClassifier(log, ml, true, 0.7, time.Second),
		filter.NewContextualAnalyzer(),
	)
}

func evaluate(p *Pipeline, content string, history ...moderation.Message) moderation.Result {
	return p.Evaluate(context.Background(),
		moderation.Message{ID: "m-1", AuthorID: "u-1", ThreadID: "t-1", Content: content},
		moderation.Context{ThreadID: "t-1", RecentHistory: history})
}

func TestPipelineAllowsCleanMessage(t *testing.T) {
	p := newPipeline(&stubAnalyzer{toxicity: 0.05}, nil)

	res := evaluate(p, "nice weather for a discussion")
	assert.True(t, res.Allowed)
	assert.Equal(t, moderation.ActionAllow, res.Action)
}

func TestPipelineBlocksHighToxicity(t *testing.T) {
	p := newPipeline(&stubAnalyzer{toxicity: 0.95}, nil)

	res := evaluate(p, "something vile")
	assert.Equal(t, moderation.ActionBlock, res.Action)
	assert.Equal(t, moderation.SeverityHigh, res.Severity)
	assert.Equal(t, 0.95, res.Confidence)
	assert.False(t, res.Allowed)
}

func TestPipelineEscalatesShoutingWhenClassifierIsClean(t *testing.T) {
	p := newPipeline(&stubAnalyzer{toxicity: 0.1}, nil)

	res := evaluate(p, "I SAID STOP POSTING THIS NONSENSE")
	assert.Equal(t, moderation.ActionReview, res.Action)
	assert.Equal(t, moderation.SeverityMedium, res.Severity)
	assert.Contains(t, res.Reason, "shouting")
	assert.False(t, res.Allowed)
}

func TestPipelineContextualNeverDowngrades(t *testing.T) {
	// Classifier flags; the shouting heuristic would say REVIEW, but the
	// contextual stage only acts on ALLOW verdicts.
	p := newPipeline(&stubAnalyzer{toxicity: 0.55}, nil)

	res := evaluate(p, "I SAID STOP POSTING THIS NONSENSE")
	assert.Equal(t, moderation.ActionFlag, res.Action)
	assert.NotContains(t, res.Reason, "shouting")
}

func TestPipelineClassifierOutageEscalatesToReview(t *testing.T) {
	p := newPipeline(&stubAnalyzer{err: errors.New("timeout")}, nil)

	res := evaluate(p, "completely fine message")
	assert.Equal(t, moderation.ActionReview, res.Action)
	assert.Equal(t, moderation.SeverityLow, res.Severity)
	assert.False(t, res.Allowed)
}

func TestPipelineRuleBlockShortCircuitsClassifier(t *testing.T) {
	ml := &stubAnalyzer{toxicity: 0.0}
	p := newPipeline(ml, []moderation.Rule{
		{ID: "r-1", Pattern: "forbidden", Action: moderation.ActionBlock, Severity: moderation.SeverityHigh, Enabled: true},
	})

	res := evaluate(p, "a forbidden topic")
	assert.Equal(t, moderation.ActionBlock, res.Action)
	assert.Zero(t, ml.calls, "the classifier must not run after a hard rule block")
}

func TestPipelineRateLimitShortCircuitsEverything(t *testing.T) {
	ml := &stubAnalyzer{toxicity: 0.0}
	log := zap.NewNop()
	p := New(log,
		filter.NewRateLimiter(log, alwaysOverCache{}, "messages", 10, 10*time.Second),
		filter.NewRuleFilter(log, stubRules{}),
		filter.NewClassifier(log, ml, true, 0.7, time.Second),
		filter.NewContextualAnalyzer(),
	)

	res := evaluate(p, "anything at all")
	assert.Equal(t, moderation.ActionBlock, res.Action)
	assert.Equal(t, moderation.ReasonRateLimited, res.Reason)
	assert.Zero(t, ml.calls)
}

func TestPipelineMergesRuleAndClassifierByStrictness(t *testing.T) {
	p := newPipeline(&stubAnalyzer{toxicity: 0.75}, []moderation.Rule{
		{ID: "r-1", Pattern: "dubious", Action: moderation.ActionFlag, Severity: moderation.SeverityLow, Enabled: true},
	})

	// Rule says FLAG, classifier says REVIEW; REVIEW is stricter.
	res := evaluate(p, "a dubious claim")
	assert.Equal(t, moderation.ActionReview, res.Action)
}

func TestPipelineLengthGrowthEscalation(t *testing.T) {
	p := newPipeline(&stubAnalyzer{toxicity: 0.1}, nil)

	history := []moderation.Message{
		{Content: "ok"}, {Content: "ok"}, {Content: "ok"}, {Content: "ok"}, {Content: "ok"},
	}
	res := evaluate(p, strings.Repeat("a", 40), history...)
	assert.Equal(t, moderation.ActionReview, res.Action)
	assert.Contains(t, res.Reason, "length")
}

func TestPipelineIsDeterministic(t *testing.T) {
	p := newPipeline(&stubAnalyzer{toxicity: 0.55}, nil)

	first := evaluate(p, "the same message")
	for i := 0; i < 10; i++ {
		require.Equal(t, first, evaluate(p, "the same message"))
	}
}
