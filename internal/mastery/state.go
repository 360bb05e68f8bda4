package mastery

// SectionState summarizes where a learner stands in a section.
type SectionState string

const (
	StateNew        SectionState = "new"
	StateInProgress SectionState = "in-progress"
	StateCleared    SectionState = "cleared"
)

// Label is the short text shown next to a section.
func (s SectionState) Label() string {
	switch s {
	case StateInProgress:
		return "in progress"
	case StateCleared:
		return "cleared"
	default:
		return "not started"
	}
}
