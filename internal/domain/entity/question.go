package entity

import "fmt"

type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "multiple_choice"
	KindFillInBlank    QuestionKind = "fill_in_blank"
	KindTrueFalse      QuestionKind = "true_false"
	KindShortAnswer    QuestionKind = "short_answer"
	KindUnknown        QuestionKind = "unknown"
)

// Question is one unit of work lifted off the page by the page-operating
// agent. It is read-only once handed to the solver and is discarded after
// its answer has been applied.
type Question struct {
	Prompt      string
	Kind        QuestionKind
	Options     []string
	MultiSelect bool
	FormatHint  string
}

func (k QuestionKind) Valid() bool {
	switch k {
	case KindMultipleChoice, KindFillInBlank, KindTrueFalse, KindShortAnswer, KindUnknown:
		return true
	}
	return false
}

// ParseQuestionKind maps free-form kind tokens coming back from the
// page-operating model onto the canonical set. Anything unrecognized is
// KindUnknown rather than an error.
func ParseQuestionKind(s string) QuestionKind {
	switch QuestionKind(s) {
	case KindMultipleChoice, KindFillInBlank, KindTrueFalse, KindShortAnswer:
		return QuestionKind(s)
	}
	switch s {
	case "choice", "single_choice", "multi_choice":
		return KindMultipleChoice
	case "fill", "blank":
		return KindFillInBlank
	case "judge", "boolean":
		return KindTrueFalse
	case "essay", "text":
		return KindShortAnswer
	}
	return KindUnknown
}

// OptionLabel returns the letter identifier for an option index: 0 -> "A".
// Indices beyond "Z" fall back to the numeric form.
func OptionLabel(i int) string {
	if i >= 0 && i < 26 {
		return string(rune('A' + i))
	}
	return fmt.Sprintf("#%d", i)
}
