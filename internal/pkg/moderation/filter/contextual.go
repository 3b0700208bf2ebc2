package filter

import (
	"unicode"

	moderation "go-agora/internal/pkg/moderation/domain"
)

// Escalation heuristics, independent of content rules.
const (
	shoutingRatio    = 0.6
	shoutingMinLen   = 10
	growthFactor     = 1.5
	growthSampleSize = 5
)

// ContextualAnalyzer inspects recent thread history for escalation signals:
// sustained shouting or rapidly growing message length. It can only raise an
// ALLOW verdict to REVIEW; it never touches a stricter verdict.
type ContextualAnalyzer struct{}

func NewContextualAnalyzer() *ContextualAnalyzer { return &ContextualAnalyzer{} }

// Escalates reports whether the message shows an escalation signal, with a
// human-readable reason.
func (a *ContextualAnalyzer) Escalates(msg moderation.Message, convCtx moderation.Context) (bool, string) {
	if isShouting(msg.Content) {
		return true, "escalation: sustained shouting"
	}
	if outgrowsThread(msg.Content, convCtx.RecentHistory) {
		return true, "escalation: rapidly growing message length"
	}
	return false, ""
}

// isShouting is true when more than 60% of the characters are uppercase and
// the message is longer than 10 characters.
func isShouting(content string) bool {
	runes := []rune(content)
	if len(runes) <= shoutingMinLen {
		return false
	}
	upper := 0
	for _, r := range runes {
		if unicode.IsUpper(r) {
			upper++
		}
	}
	return float64(upper)/float64(len(runes)) > shoutingRatio
}

// outgrowsThread is true when the message is more than 1.5x the average
// length of the last five messages in the thread.
func outgrowsThread(content string, history []moderation.Message) bool {
	if len(history) == 0 {
		return false
	}
	sample := history
	if len(sample) > growthSampleSize {
		sample = sample[len(sample)-growthSampleSize:]
	}
	total := 0
	for _, m := range sample {
		total += len([]rune(m.Content))
	}
	avg := float64(total) / float64(len(sample))
	if avg == 0 {
		return false
	}
	return float64(len([]rune(content))) > growthFactor*avg
}
