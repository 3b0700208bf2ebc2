package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	moderation "go-agora/internal/pkg/moderation/domain"
)

type staticRules struct {
	rules []moderation.Rule
	err   error
}

func (s staticRules) ListRules(context.Context) ([]moderation.Rule, error) { return s.rules, s.err }

func TestRuleFilterFirstMatchWins(t *testing.T) {
	f := NewRuleFilter(zap.NewNop(), staticRules{rules: []moderation.Rule{
		{ID: "r-1", Pattern: "spam", Category: "spam", Action: moderation.ActionFlag, Severity: moderation.SeverityLow, Enabled: true},
		{ID: "r-2", Pattern: "spam offer", Category: "spam", Action: moderation.ActionBlock, Severity: moderation.SeverityHigh, Enabled: true},
	}})

	res := f.Check(context.Background(), "great SPAM offer inside")
	assert.Equal(t, moderation.ActionFlag, res.Action)
	assert.Equal(t, float64(1), res.Confidence)
	assert.Contains(t, res.Reason, "r-1")
}

func TestRuleFilterMatchesCaseInsensitively(t *testing.T) {
	f := NewRuleFilter(zap.NewNop(), staticRules{rules: []moderation.Rule{
		{ID: "r-1", Pattern: "buy now", Category: "spam", Action: moderation.ActionBlock, Severity: moderation.SeverityMedium, Enabled: true},
	}})

	res := f.Check(context.Background(), "BUY NOW and save")
	assert.Equal(t, moderation.ActionBlock, res.Action)
}

func TestRuleFilterSkipsDisabledRules(t *testing.T) {
	f := NewRuleFilter(zap.NewNop(), staticRules{rules: []moderation.Rule{
		{ID: "r-1", Pattern: "spam", Category: "spam", Action: moderation.ActionBlock, Severity: moderation.SeverityHigh, Enabled: false},
	}})

	res := f.Check(context.Background(), "pure spam")
	assert.Equal(t, moderation.ActionAllow, res.Action)
}

func TestRuleFilterSkipsMalformedPattern(t *testing.T) {
	f := NewRuleFilter(zap.NewNop(), staticRules{rules: []moderation.Rule{
		{ID: "r-bad", Pattern: "([unclosed", Category: "spam", Action: moderation.ActionBlock, Severity: moderation.SeverityHigh, Enabled: true},
		{ID: "r-ok", Pattern: "scam", Category: "spam", Action: moderation.ActionFlag, Severity: moderation.SeverityLow, Enabled: true},
	}})

	res := f.Check(context.Background(), "obvious scam")
	require.Equal(t, moderation.ActionFlag, res.Action)
	assert.Contains(t, res.Reason, "r-ok")
}

func TestRuleFilterDenylistFallback(t *testing.T) {
	f := NewRuleFilter(zap.NewNop(), staticRules{})

	res := f.Check(context.Background(), "just KYS already")
	assert.Equal(t, moderation.ActionBlock, res.Action)
	assert.Equal(t, moderation.SeverityMedium, res.Severity)
	assert.Equal(t, "prohibited language", res.Reason)
}

func TestRuleFilterAllowsCleanContent(t *testing.T) {
	f := NewRuleFilter(zap.NewNop(), staticRules{rules: []moderation.Rule{
		{ID: "r-1", Pattern: "spam", Category: "spam", Action: moderation.ActionBlock, Severity: moderation.SeverityHigh, Enabled: true},
	}})

	res := f.Check(context.Background(), "what a lovely discussion")
	assert.Equal(t, moderation.ActionAllow, res.Action)
	assert.True(t, res.Allowed)
}

func TestRuleFilterSurvivesProviderError(t *testing.T) {
	f := NewRuleFilter(zap.NewNop(), staticRules{err: errors.New("db down")})

	// Persisted rules are unavailable; the built-in denylist still applies.
	res := f.Check(context.Background(), "go die somewhere")
	assert.Equal(t, moderation.ActionBlock, res.Action)

	res = f.Check(context.Background(), "friendly words")
	assert.Equal(t, moderation.ActionAllow, res.Action)
}
