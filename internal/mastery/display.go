package mastery

import "github.com/kakomon/kakomon/internal/store"

// ResolveState maps a section aggregate to its display state. A nil
// aggregate means the section was never finished or has been reset.
func ResolveState(agg *store.SectionAggregate) SectionState {
	switch {
	case agg == nil:
		return StateNew
	case agg.TotalCount > 0 && agg.CorrectCount == agg.TotalCount:
		return StateCleared
	default:
		return StateInProgress
	}
}
