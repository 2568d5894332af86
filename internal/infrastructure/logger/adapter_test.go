package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Plain", "quiz-run", "quiz-run"},
		{"Spaces and slashes", "answer quiz / page 2", "answer_quiz___page_2"},
		{"Empty", "", "task"},
		{"Cyrillic", "реши тест", "_________"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitize(tt.input))
		})
	}
}

func TestSanitize_TruncatesLongNames(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, sanitize(string(long)), 60)
}
