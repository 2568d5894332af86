package rod

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Empty(t, cfg.ControlURL, "by default we launch our own browser")
	assert.False(t, cfg.Headless)
	assert.Equal(t, 500*time.Millisecond, cfg.SlowMotion)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestIsXPathSelector(t *testing.T) {
	tests := []struct {
		name     string
		selector string
		expected bool
	}{
		{"XPath with slash", "//div", true},
		{"XPath with parenthesis", "(//div)[1]", true},
		{"XPath with prefix", "xpath=//div", true},
		{"CSS id", "#test", false},
		{"CSS class", ".test", false},
		{"CSS element", "div", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isXPathSelector(tt.selector))
		})
	}
}
