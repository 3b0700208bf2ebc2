package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionStrictnessOrder(t *testing.T) {
	assert.True(t, ActionBlock.StricterThan(ActionReview))
	assert.True(t, ActionReview.StricterThan(ActionFlag))
	assert.True(t, ActionFlag.StricterThan(ActionAllow))
	assert.False(t, ActionAllow.StricterThan(ActionBlock))
	assert.False(t, ActionReview.StricterThan(ActionReview))
}

func TestStricterPicksHarsherAction(t *testing.T) {
	flag := Result{Action: ActionFlag, Severity: SeverityHigh, Confidence: 1}
	review := Result{Action: ActionReview, Severity: SeverityLow, Confidence: 0.2}

	// Action outranks severity and confidence.
	assert.Equal(t, review, Stricter(flag, review))
	assert.Equal(t, review, Stricter(review, flag))
}

func TestStricterBreaksTiesOnSeverityThenConfidence(t *testing.T) {
	low := Result{Action: ActionReview, Severity: SeverityLow, Confidence: 0.9}
	medium := Result{Action: ActionReview, Severity: SeverityMedium, Confidence: 0.1}
	assert.Equal(t, medium, Stricter(low, medium))

	weaker := Result{Action: ActionFlag, Severity: SeverityLow, Confidence: 0.5}
	stronger := Result{Action: ActionFlag, Severity: SeverityLow, Confidence: 0.8}
	assert.Equal(t, stronger, Stricter(weaker, stronger))
	assert.Equal(t, stronger, Stricter(stronger, weaker))
}

func TestStatusForAction(t *testing.T) {
	assert.Equal(t, QueueStatusBlocked, StatusForAction(ActionBlock))
	assert.Equal(t, QueueStatusFlagged, StatusForAction(ActionFlag))
	assert.Equal(t, QueueStatusQueued, StatusForAction(ActionReview))
}

func TestStatusForResolution(t *testing.T) {
	status, ok := StatusForResolution(ResolutionApprove)
	assert.True(t, ok)
	assert.Equal(t, QueueStatusApproved, status)

	_, ok = StatusForResolution("DELETE")
	assert.False(t, ok)
}

func TestSanctions(t *testing.T) {
	assert.True(t, ResolutionBlock.Sanctions())
	assert.False(t, ResolutionApprove.Sanctions())
	assert.False(t, ResolutionFlag.Sanctions())
}
