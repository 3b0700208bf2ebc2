package moderation

import "errors"

// Conflict and lookup errors returned by the queue and appeals subsystems.
// These are rejected with no state change; callers map them at the edge.
var (
	ErrDuplicateAppeal   = errors.New("moderation: an appeal already exists for this message and user")
	ErrAlreadyResolved   = errors.New("moderation: already resolved")
	ErrAppealNotFound    = errors.New("moderation: appeal not found")
	ErrQueueItemNotFound = errors.New("moderation: queue item not found")
)

// ReasonRateLimited tags the rate limiter's BLOCK verdict so the transport
// layer can report it as a transport-level denial.
const ReasonRateLimited = "rate limit exceeded"
