package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"study-agent/internal/application/port/output"
	"study-agent/internal/domain/entity"
)

type closableLLM struct {
	closed int
}

func (c *closableLLM) Chat(context.Context, output.ChatRequest) (*output.ChatResponse, error) {
	return &output.ChatResponse{Message: entity.Message{Role: entity.RoleAssistant}}, nil
}

func (c *closableLLM) Close() error {
	c.closed++
	return nil
}

type plainLLM struct{}

func (plainLLM) Chat(context.Context, output.ChatRequest) (*output.ChatResponse, error) {
	return &output.ChatResponse{Message: entity.Message{Role: entity.RoleAssistant}}, nil
}

func TestContainerClose_ReleasesProviders(t *testing.T) {
	page := &closableLLM{}
	solve := &closableLLM{}
	c := &Container{PageLLM: page, SolveLLM: solve}

	c.Close()

	assert.Equal(t, 1, page.closed)
	assert.Equal(t, 1, solve.closed)
}

func TestCloseLLM_IgnoresProvidersWithoutCloser(t *testing.T) {
	assert.NotPanics(t, func() {
		closeLLM(plainLLM{})
		closeLLM(nil)
	})
}
