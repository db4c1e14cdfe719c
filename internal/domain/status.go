package domain

import "time"

// PublishState is the derived lifecycle state of a page at a given instant.
type PublishState string

const (
	// StateDraft marks a page without a publish date.
	StateDraft PublishState = "draft"
	// StateScheduled marks a page whose publish date is still in the future.
	StateScheduled PublishState = "scheduled"
	// StatePublished marks a page whose publish date has been reached.
	StatePublished PublishState = "published"
)

// PublishStateAt derives the state from a nullable publish date. The result
// changes over time for scheduled pages so callers recompute it when needed.
func PublishStateAt(publishedAt *time.Time, at time.Time) PublishState {
	switch {
	case publishedAt == nil || publishedAt.IsZero():
		return StateDraft
	case publishedAt.After(at):
		return StateScheduled
	default:
		return StatePublished
	}
}
