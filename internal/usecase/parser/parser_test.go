package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-agent/internal/domain/entity"
)

func mcQuestion(n int) entity.Question {
	opts := make([]string, n)
	for i := range opts {
		opts[i] = entity.OptionLabel(i)
	}
	return entity.Question{Prompt: "pick one", Kind: entity.KindMultipleChoice, Options: opts}
}

func parseReason(t *testing.T, err error) entity.ParseReason {
	t.Helper()
	var pe *entity.ParseError
	require.True(t, errors.As(err, &pe), "expected *entity.ParseError, got %v", err)
	return pe.Reason
}

func TestParse_MultipleChoice_SingleLetter(t *testing.T) {
	raw := "The capital of France is Paris, which is option B.\n\nANSWER: B"

	answer, err := Parse(raw, mcQuestion(4))
	require.NoError(t, err)

	assert.Equal(t, entity.KindMultipleChoice, answer.Kind)
	assert.Equal(t, []int{1}, answer.Selected)
	assert.Equal(t, "B", answer.Value())
}

func TestParse_MultipleChoice_NumericIndex(t *testing.T) {
	answer, err := Parse("reasoning here\nANSWER: 2", mcQuestion(4))
	require.NoError(t, err)
	assert.Equal(t, []int{2}, answer.Selected)
}

func TestParse_MultipleChoice_OutOfRange(t *testing.T) {
	_, err := Parse("hmm\nANSWER: E", mcQuestion(4))
	assert.Equal(t, entity.ParseInvalid, parseReason(t, err))

	_, err = Parse("hmm\nANSWER: 7", mcQuestion(4))
	assert.Equal(t, entity.ParseInvalid, parseReason(t, err))
}

func TestParse_MultipleChoice_Conflicting(t *testing.T) {
	_, err := Parse("could be either\nANSWER: B or C", mcQuestion(4))
	assert.Equal(t, entity.ParseAmbiguous, parseReason(t, err))
}

func TestParse_MultipleChoice_ProseValueRejected(t *testing.T) {
	// Incidental articles must never count as a selection of option A.
	_, err := Parse("Thinking it through.\nANSWER: It is a tie", mcQuestion(3))
	assert.Equal(t, entity.ParseInvalid, parseReason(t, err))

	_, err = Parse("ANSWER: none of the above", mcQuestion(4))
	assert.Equal(t, entity.ParseInvalid, parseReason(t, err))
}

func TestParse_MultipleChoice_FillerWords(t *testing.T) {
	answer, err := Parse("ANSWER: Option B", mcQuestion(4))
	require.NoError(t, err)
	assert.Equal(t, []int{1}, answer.Selected)
}

func TestParse_MultipleChoice_MultiSelect(t *testing.T) {
	q := mcQuestion(5)
	q.MultiSelect = true

	answer, err := Parse("several apply\nANSWER: A, C, D", q)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3}, answer.Selected)
	assert.Equal(t, "A, C, D", answer.Value())
}

func TestParse_MultipleChoice_NoMarker(t *testing.T) {
	_, err := Parse("I think it is B", mcQuestion(4))
	assert.Equal(t, entity.ParseMissing, parseReason(t, err))
}

func TestParse_TrueFalse(t *testing.T) {
	q := entity.Question{Prompt: "water is wet", Kind: entity.KindTrueFalse}

	answer, err := Parse("Obviously so.\nANSWER: true", q)
	require.NoError(t, err)
	assert.True(t, answer.Bool)

	answer, err = Parse("Not the case.\nANSWER: False.", q)
	require.NoError(t, err)
	assert.False(t, answer.Bool)
}

func TestParse_TrueFalse_BothTokens(t *testing.T) {
	q := entity.Question{Kind: entity.KindTrueFalse}
	_, err := Parse("ANSWER: true, no wait, false", q)
	assert.Equal(t, entity.ParseAmbiguous, parseReason(t, err))
}

func TestParse_TrueFalse_NeitherToken(t *testing.T) {
	q := entity.Question{Kind: entity.KindTrueFalse}
	_, err := Parse("ANSWER: maybe", q)
	assert.Equal(t, entity.ParseMissing, parseReason(t, err))
}

func TestParse_FillInBlank_Verbatim(t *testing.T) {
	q := entity.Question{Prompt: "2+2=", Kind: entity.KindFillInBlank}

	answer, err := Parse("Adding the numbers.\nANSWER:   4.00  ", q)
	require.NoError(t, err)
	assert.Equal(t, "4.00", answer.Text)
	assert.Equal(t, "4.00", answer.Value())
}

func TestParse_ShortAnswer_EmptyValue(t *testing.T) {
	q := entity.Question{Kind: entity.KindShortAnswer}
	_, err := Parse("thinking...\nANSWER:   ", q)
	assert.Equal(t, entity.ParseMissing, parseReason(t, err))
}

func TestParse_RationalePreserved(t *testing.T) {
	q := entity.Question{Kind: entity.KindShortAnswer}
	raw := "First I considered X.\nThen Y.\nANSWER: photosynthesis\nREASONING: plants convert light to energy"

	answer, err := Parse(raw, q)
	require.NoError(t, err)

	assert.Equal(t, "photosynthesis", answer.Text)
	assert.Contains(t, answer.Rationale, "First I considered X.")
	assert.Contains(t, answer.Rationale, "plants convert light to energy")
	assert.NotContains(t, answer.Rationale, "photosynthesis")
}

func TestParse_LastMarkerWins(t *testing.T) {
	q := entity.Question{Kind: entity.KindShortAnswer}
	raw := "A draft would be ANSWER: wrong. Let me redo it.\nANSWER: right"

	answer, err := Parse(raw, q)
	require.NoError(t, err)
	assert.Equal(t, "right", answer.Text)
}

// The delimiter convention is a contract with the solver prompt template;
// these literals must not drift independently.
func TestMarkerContract(t *testing.T) {
	assert.Equal(t, "ANSWER:", AnswerMarker)
	assert.Equal(t, "REASONING:", ReasoningMarker)
}

func TestParse_Idempotent(t *testing.T) {
	q := mcQuestion(4)
	raw := "reasoning\nANSWER: C"

	first, err1 := Parse(raw, q)
	second, err2 := Parse(raw, q)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)

	bad := "reasoning\nANSWER: C or D"
	_, errA := Parse(bad, q)
	_, errB := Parse(bad, q)
	assert.Equal(t, errA, errB)
}
