package parser

import (
	"fmt"
	"strconv"
	"strings"

	"study-agent/internal/domain/entity"
)

// The solver prompt and this parser share a versioned delimiter contract:
// the model ends its response with an "ANSWER:" line, optionally followed by
// a "REASONING:" section. Changing either marker requires changing the
// prompt template in infrastructure/prompts at the same time.
const (
	AnswerMarker    = "ANSWER:"
	ReasoningMarker = "REASONING:"
)

// Parse maps a raw solver response onto an Answer for the question's kind.
// It is a pure function: same input always yields the same Answer or the
// same *entity.ParseError.
func Parse(raw string, q entity.Question) (*entity.Answer, error) {
	idx := strings.LastIndex(raw, AnswerMarker)
	if idx < 0 {
		return nil, &entity.ParseError{
			Reason: entity.ParseMissing,
			Detail: fmt.Sprintf("no %q marker in response", AnswerMarker),
		}
	}

	value := raw[idx+len(AnswerMarker):]
	tail := ""
	if r := strings.Index(value, ReasoningMarker); r >= 0 {
		tail = value[r+len(ReasoningMarker):]
		value = value[:r]
	}
	value = strings.TrimSpace(value)

	answer := &entity.Answer{
		Kind:      q.Kind,
		Rationale: rationale(raw[:idx], tail),
	}

	switch q.Kind {
	case entity.KindMultipleChoice:
		selected, err := parseSelection(value, q)
		if err != nil {
			return nil, err
		}
		answer.Selected = selected
	case entity.KindTrueFalse:
		verdict, err := parseBoolean(value)
		if err != nil {
			return nil, err
		}
		answer.Bool = verdict
	default:
		if value == "" {
			return nil, &entity.ParseError{
				Reason: entity.ParseMissing,
				Detail: "empty value after answer marker",
			}
		}
		answer.Text = value
	}

	return answer, nil
}

// rationale is the full response minus the extracted answer marker,
// preserved for observability even on the happy path.
func rationale(prefix, tail string) string {
	prefix = strings.TrimSpace(prefix)
	tail = strings.TrimSpace(tail)
	switch {
	case prefix == "":
		return tail
	case tail == "":
		return prefix
	default:
		return prefix + "\n" + tail
	}
}

// selectionFiller lists the only words allowed between option identifiers.
var selectionFiller = map[string]bool{"and": true, "or": true, "option": true}

// parseSelection resolves option identifiers (letters "A".."Z" or zero-based
// indices) from the answer value. The value must consist solely of
// identifiers of options that exist on the originating question, optionally
// separated by commas or filler words; any other word is a parse failure,
// never a silent default.
func parseSelection(value string, q entity.Question) ([]int, error) {
	tokens := strings.FieldsFunc(value, func(r rune) bool {
		return !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	})

	n := len(q.Options)
	seen := make(map[int]bool)
	var selected []int

	for _, tok := range tokens {
		if selectionFiller[strings.ToLower(tok)] {
			continue
		}
		idx, ok := optionIndex(tok)
		if !ok {
			return nil, &entity.ParseError{
				Reason: entity.ParseInvalid,
				Detail: fmt.Sprintf("%q is not an option identifier", tok),
			}
		}
		if idx < 0 || idx >= n {
			return nil, &entity.ParseError{
				Reason: entity.ParseInvalid,
				Detail: fmt.Sprintf("selection %q is outside the %d available options", tok, n),
			}
		}
		if !seen[idx] {
			seen[idx] = true
			selected = append(selected, idx)
		}
	}

	if len(selected) == 0 {
		return nil, &entity.ParseError{
			Reason: entity.ParseMissing,
			Detail: "no option identifier in answer value",
		}
	}
	if len(selected) > 1 && !q.MultiSelect {
		return nil, &entity.ParseError{
			Reason: entity.ParseAmbiguous,
			Detail: fmt.Sprintf("%d conflicting selections for a single-choice question", len(selected)),
		}
	}

	return selected, nil
}

func optionIndex(tok string) (int, bool) {
	if len(tok) == 1 {
		r := tok[0]
		if r >= 'A' && r <= 'Z' {
			return int(r - 'A'), true
		}
		if r >= 'a' && r <= 'z' {
			return int(r - 'a'), true
		}
	}
	if i, err := strconv.Atoi(tok); err == nil {
		return i, true
	}
	return 0, false
}

var (
	trueTokens  = map[string]bool{"true": true, "t": true, "yes": true, "correct": true}
	falseTokens = map[string]bool{"false": true, "f": true, "no": true, "incorrect": true, "wrong": true}
)

func parseBoolean(value string) (bool, error) {
	sawTrue := false
	sawFalse := false
	for _, tok := range strings.Fields(strings.ToLower(value)) {
		tok = strings.Trim(tok, ".,;:!")
		if trueTokens[tok] {
			sawTrue = true
		}
		if falseTokens[tok] {
			sawFalse = true
		}
	}

	switch {
	case sawTrue && sawFalse:
		return false, &entity.ParseError{
			Reason: entity.ParseAmbiguous,
			Detail: "both true and false tokens present",
		}
	case sawTrue:
		return true, nil
	case sawFalse:
		return false, nil
	default:
		return false, &entity.ParseError{
			Reason: entity.ParseMissing,
			Detail: "no boolean token in answer value",
		}
	}
}
