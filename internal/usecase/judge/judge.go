package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"study-agent/internal/application/port/output"
	"study-agent/internal/domain/entity"
)

var _ output.JudgePort = (*UseCase)(nil)

// UseCase asks a model to grade a finished run. Advisory only; the control
// loop never depends on its verdict.
type UseCase struct {
	llm    output.LLMPort
	logger output.LoggerPort
}

func New(llm output.LLMPort, logger output.LoggerPort) *UseCase {
	return &UseCase{
		llm:    llm,
		logger: logger,
	}
}

const systemPrompt = `You are a strict reviewer of an automated question-answering run.
Given the run directive and the outcome summary, assess whether the run can be
trusted.

Respond with valid JSON only:
{
  "success": true/false,
  "confidence": 0.0-1.0,
  "issues": ["issue1", "issue2"],
  "feedback": "specific, actionable feedback"
}

Consider:
- Were all questions in scope answered?
- Did the run actually submit?
- Does the answered count look plausible for the directive?`

func (uc *UseCase) Assess(ctx context.Context, directive string, result entity.RunResult) (*entity.RunAssessment, error) {
	summary := fmt.Sprintf(
		"Directive: %s\nFinal state: %s\nQuestions answered: %d\nPages visited: %d",
		directive, result.FinalState, result.QuestionsAnswered, result.PagesVisited,
	)

	resp, err := uc.llm.Chat(ctx, output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: systemPrompt},
			{Role: entity.RoleUser, Content: summary},
		},
		Temperature: 0.0,
	})
	if err != nil {
		return nil, fmt.Errorf("judge request failed: %w", err)
	}

	assessment, err := parseAssessment(resp.Message.Content)
	if err != nil {
		return nil, err
	}
	return assessment, nil
}

func parseAssessment(response string) (*entity.RunAssessment, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON in judge response")
	}

	var assessment entity.RunAssessment
	if err := json.Unmarshal([]byte(response[start:end+1]), &assessment); err != nil {
		return nil, fmt.Errorf("malformed judge response: %w", err)
	}
	return &assessment, nil
}
