package analyzer

import "context"

// Summary is the minimal result every analysis collaborator can produce.
type Summary struct {
	Toxicity float64 // in [0,1]
}

// Analyzer is the basic capability: a single toxicity confidence per text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (Summary, error)
}

// CategoryScores is the structured capability's richer result.
type CategoryScores struct {
	Toxicity  float64 `json:"toxicity"`
	Insult    float64 `json:"insult"`
	Threat    float64 `json:"threat"`
	Profanity float64 `json:"profanity"`
}

// Max returns the highest category score, used to fold structured results back
// into a summary toxicity.
func (s CategoryScores) Max() float64 {
	m := s.Toxicity
	for _, v := range []float64{s.Insult, s.Threat, s.Profanity} {
		if v > m {
			m = v
		}
	}
	return m
}

// StructuredAnalyzer is the extended capability. The concrete implementation
// is chosen at construction time; callers never probe for it at runtime.
type StructuredAnalyzer interface {
	Analyzer
	AnalyzeStructured(ctx context.Context, text string) (CategoryScores, error)
}
