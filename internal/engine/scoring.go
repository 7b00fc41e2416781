package engine

import "time"

// DefaultBasePoints is the award for an instant correct answer when
// the session config does not override it.
const DefaultBasePoints = 100

// flashcardPoint is the fixed award for a self-assessed correct card.
const flashcardPoint = 1

// score applies the linear decay rule: floor(base * (1 - elapsed/duration)),
// never below 1 for an on-time answer. Untimed phases award full base.
// Callers reject late answers before scoring; elapsed >= duration here
// only happens in the instant the deadline lands and still earns the
// minimum point.
func score(base int, elapsed, duration time.Duration) int {
	if base <= 0 {
		base = DefaultBasePoints
	}
	if duration <= 0 {
		return base
	}
	if elapsed < 0 {
		elapsed = 0
	}
	frac := elapsed.Seconds() / duration.Seconds()
	if frac > 1 {
		frac = 1
	}
	pts := int(float64(base) * (1 - frac))
	if pts < 1 {
		pts = 1
	}
	return pts
}
