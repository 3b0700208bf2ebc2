package moderation

// Rule is one persisted moderation rule. Rules are evaluated in Position
// order against lower-cased content; the first matching rule wins.
type Rule struct {
	ID       string
	Pattern  string // regular expression
	Category string
	Action   Action
	Severity Severity
	Position int
	Enabled  bool
}
