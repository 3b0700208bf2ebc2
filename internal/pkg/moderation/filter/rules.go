package filter

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	moderation "go-agora/internal/pkg/moderation/domain"
)

// RuleProvider supplies the persisted, ordered rule list.
type RuleProvider interface {
	ListRules(ctx context.Context) ([]moderation.Rule, error)
}

// builtinDenylist is the lexical fallback applied when no persisted rule
// matches. Matches produce BLOCK at MEDIUM severity.
var builtinDenylist = []string{
	"kill yourself",
	"kys",
	"go die",
	"slur",
}

// RuleFilter evaluates lower-cased content against persisted pattern rules in
// order; the first matching rule wins. A malformed rule is skipped, never
// fatal. When nothing matches, the built-in denylist runs before defaulting
// to ALLOW.
type RuleFilter struct {
	log   *zap.Logger
	rules RuleProvider

	mu       sync.Mutex
	compiled map[string]*regexp.Regexp
}

// NewRuleFilter constructs the filter over the given rule source.
func NewRuleFilter(log *zap.Logger, rules RuleProvider) *RuleFilter {
	return &RuleFilter{log: log, rules: rules, compiled: make(map[string]*regexp.Regexp)}
}

// Check evaluates content and returns the first matching rule's verdict.
func (f *RuleFilter) Check(ctx context.Context, content string) moderation.Result {
	lowered := strings.ToLower(content)

	rules, err := f.rules.ListRules(ctx)
	if err != nil {
		f.log.Warn("rule listing failed, continuing with built-in denylist only", zap.Error(err))
		rules = nil
	}

	for _, r := range rules {
		if !r.Enabled {
			continue
		}
		re, err := f.compile(r.Pattern)
		if err != nil {
			f.log.Warn("skipping malformed rule",
				zap.String("rule_id", r.ID), zap.String("pattern", r.Pattern), zap.Error(err))
			continue
		}
		if re.MatchString(lowered) {
			return moderation.Result{
				Allowed:    r.Action == moderation.ActionAllow,
				Action:     r.Action,
				Severity:   r.Severity,
				Confidence: 1,
				Reason:     fmt.Sprintf("matched rule %s (%s)", r.ID, r.Category),
			}
		}
	}

	for _, word := range builtinDenylist {
		if strings.Contains(lowered, word) {
			return moderation.Result{
				Allowed:    false,
				Action:     moderation.ActionBlock,
				Severity:   moderation.SeverityMedium,
				Confidence: 1,
				Reason:     "prohibited language",
			}
		}
	}

	return moderation.Allow("no rule matched")
}

func (f *RuleFilter) compile(pattern string) (*regexp.Regexp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if re, ok := f.compiled[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	f.compiled[pattern] = re
	return re, nil
}
