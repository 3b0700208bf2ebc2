package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	moderation "go-agora/internal/pkg/moderation/domain"
)

func TestContextualShoutingEscalates(t *testing.T) {
	a := NewContextualAnalyzer()

	ok, reason := a.Escalates(moderation.Message{Content: "WHY WOULD YOU SAY THAT"}, moderation.Context{})
	assert.True(t, ok)
	assert.Contains(t, reason, "shouting")
}

func TestContextualShortShoutIsIgnored(t *testing.T) {
	a := NewContextualAnalyzer()

	// At most ten characters never counts as shouting, however loud.
	ok, _ := a.Escalates(moderation.Message{Content: "STOP IT!!"}, moderation.Context{})
	assert.False(t, ok)
}

func TestContextualMixedCaseIsNotShouting(t *testing.T) {
	a := NewContextualAnalyzer()

	ok, _ := a.Escalates(moderation.Message{Content: "Well THAT is surprising news today"}, moderation.Context{})
	assert.False(t, ok)
}

func TestContextualLengthGrowthEscalates(t *testing.T) {
	a := NewContextualAnalyzer()

	history := []moderation.Message{
		{Content: "ten chars!"},
		{Content: "ten chars!"},
		{Content: "ten chars!"},
		{Content: "ten chars!"},
		{Content: "ten chars!"},
	}

	ok, reason := a.Escalates(moderation.Message{Content: strings.Repeat("x", 16)}, moderation.Context{RecentHistory: history})
	assert.True(t, ok)
	assert.Contains(t, reason, "length")

	// 1.5x the average is the boundary; at the boundary nothing escalates.
	ok, _ = a.Escalates(moderation.Message{Content: strings.Repeat("x", 15)}, moderation.Context{RecentHistory: history})
	assert.False(t, ok)
}

func TestContextualGrowthUsesLastFiveOnly(t *testing.T) {
	a := NewContextualAnalyzer()

	// Older long messages must not dilute the recent average.
	history := []moderation.Message{
		{Content: strings.Repeat("y", 200)},
		{Content: "short"},
		{Content: "short"},
		{Content: "short"},
		{Content: "short"},
		{Content: "short"},
	}

	ok, _ := a.Escalates(moderation.Message{Content: strings.Repeat("x", 20)}, moderation.Context{RecentHistory: history})
	assert.True(t, ok)
}

func TestContextualEmptyHistoryNeverEscalatesOnLength(t *testing.T) {
	a := NewContextualAnalyzer()

	ok, _ := a.Escalates(moderation.Message{Content: strings.Repeat("x", 500)}, moderation.Context{})
	assert.False(t, ok)
}
