package entity

import "strings"

// Answer is the solver's structured output. Immutable once produced;
// ownership passes to the page-operating agent, which alone translates it
// into page actions.
type Answer struct {
	Kind QuestionKind

	// Selected holds option indices for multiple_choice (exactly one unless
	// the originating Question is multi-select).
	Selected []int

	// Bool holds the true_false verdict.
	Bool bool

	// Text holds the verbatim value for fill_in_blank, short_answer and
	// unknown kinds.
	Text string

	// Rationale is the full reasoning trace minus the answer marker. It is
	// never truncated.
	Rationale string
}

// Value renders the answer the way it should be entered on the page.
func (a Answer) Value() string {
	switch a.Kind {
	case KindMultipleChoice:
		labels := make([]string, 0, len(a.Selected))
		for _, idx := range a.Selected {
			labels = append(labels, OptionLabel(idx))
		}
		return strings.Join(labels, ", ")
	case KindTrueFalse:
		if a.Bool {
			return "true"
		}
		return "false"
	default:
		return a.Text
	}
}
