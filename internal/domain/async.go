package domain

import "time"

// AsyncPhase models the lifecycle of a long-running operation attached to a
// draft, such as text generation.
type AsyncPhase string

const (
	AsyncIdle      AsyncPhase = "idle"
	AsyncPending   AsyncPhase = "pending"
	AsyncSucceeded AsyncPhase = "succeeded"
	AsyncFailed    AsyncPhase = "failed"
)

// GenerationState records the current generation attempt. Token identifies
// the attempt so that a late result can be discarded when the draft has
// moved on since the request was issued.
type GenerationState struct {
	Phase     AsyncPhase
	Token     string
	StartedAt time.Time
}

// Pending reports whether a generation attempt is currently in flight.
func (g GenerationState) Pending() bool {
	return g.Phase == AsyncPending
}

// InFlight reports whether a pending attempt is still fresh enough to
// block step changes. A claim older than maxAge is treated as abandoned,
// such as when the process died between the claim and the commit.
func (g GenerationState) InFlight(now time.Time, maxAge time.Duration) bool {
	if g.Phase != AsyncPending {
		return false
	}
	if maxAge > 0 && now.Sub(g.StartedAt) >= maxAge {
		return false
	}
	return true
}

// Matches reports whether the completing attempt is still the current one.
func (g GenerationState) Matches(token string) bool {
	return g.Token != "" && g.Token == token
}
