package pageop

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"study-agent/internal/application/port/output"
	"study-agent/internal/domain/entity"
	"study-agent/internal/infrastructure/prompts"
)

const (
	maxToolIterations = 8
	maxObservationLen = 20000
)

var _ output.PageAgentPort = (*Agent)(nil)

// Agent is the page-operating role. Each operation runs a bounded
// tool-calling loop against the browser tool registry and ends in a JSON
// verdict from the model. It holds the solver and is the only component
// that both calls it and touches the page.
type Agent struct {
	llm    output.LLMPort
	tools  output.ToolRegistry
	solver output.SolverPort
	logger output.LoggerPort

	// scope is the optional run directive restricting which questions to
	// attempt.
	scope string

	// answered lists question prompts already handled this session, so
	// perception skips them.
	answered []string

	// nextSelector caches the next-page control found by the most recent
	// HasNextPage call. Cleared on NextPage; never survives a page change.
	nextSelector string
}

func New(
	llm output.LLMPort,
	tools output.ToolRegistry,
	solver output.SolverPort,
	logger output.LoggerPort,
	scope string,
) *Agent {
	return &Agent{
		llm:    llm,
		tools:  tools,
		solver: solver,
		logger: logger,
		scope:  scope,
	}
}

type foundQuestion struct {
	Prompt      string   `json:"prompt"`
	Kind        string   `json:"kind"`
	Options     []string `json:"options"`
	MultiSelect bool     `json:"multi_select"`
	FormatHint  string   `json:"format_hint"`
}

type findVerdict struct {
	Found    bool           `json:"found"`
	Question *foundQuestion `json:"question"`
}

func (a *Agent) FindQuestion(ctx context.Context) (*entity.Question, bool, error) {
	task := a.findTask()

	final, err := a.runLoop(ctx, prompts.FindQuestionPrompt, task, []entity.ToolName{
		entity.ToolPageObserve,
		entity.ToolPageUISummary,
		entity.ToolPageScroll,
		entity.ToolPageScreenshot,
	})
	if err != nil {
		return nil, false, err
	}

	var verdict findVerdict
	if err := decodeVerdict(final, &verdict); err != nil {
		return nil, false, fmt.Errorf("perception verdict: %w", err)
	}

	if !verdict.Found {
		a.logger.Info("No further questions on page")
		return nil, false, nil
	}
	if verdict.Question == nil || strings.TrimSpace(verdict.Question.Prompt) == "" {
		return nil, false, fmt.Errorf("perception reported a question without a prompt")
	}

	q := &entity.Question{
		Prompt:      strings.TrimSpace(verdict.Question.Prompt),
		Kind:        entity.ParseQuestionKind(verdict.Question.Kind),
		Options:     verdict.Question.Options,
		MultiSelect: verdict.Question.MultiSelect,
		FormatHint:  strings.TrimSpace(verdict.Question.FormatHint),
	}

	a.logger.Info("Question identified", "kind", q.Kind, "options", len(q.Options))
	return q, true, nil
}

func (a *Agent) findTask() string {
	var b strings.Builder
	b.WriteString("Find the next unanswered question on the current page.")
	if a.scope != "" {
		b.WriteString("\nScope for this run: ")
		b.WriteString(a.scope)
	}
	if len(a.answered) > 0 {
		b.WriteString("\n\nAlready answered this session (skip these):")
		for _, p := range a.answered {
			b.WriteString("\n- ")
			b.WriteString(clip(p, 160))
		}
	}
	return b.String()
}

type applyVerdict struct {
	Applied bool   `json:"applied"`
	Reason  string `json:"reason"`
}

func (a *Agent) AnswerQuestion(ctx context.Context, q entity.Question) (*entity.Answer, error) {
	answer, err := a.solver.Solve(ctx, q)
	if err != nil {
		return nil, err
	}

	task := applyTask(q, *answer)

	final, err := a.runLoop(ctx, prompts.ApplyAnswerPrompt, task, []entity.ToolName{
		entity.ToolPageClick,
		entity.ToolPageFill,
		entity.ToolPagePressKey,
		entity.ToolPageObserve,
		entity.ToolPageUISummary,
		entity.ToolPageScroll,
	})
	if err != nil {
		return nil, err
	}

	var verdict applyVerdict
	if err := decodeVerdict(final, &verdict); err != nil {
		return nil, fmt.Errorf("apply verdict: %w", err)
	}
	if !verdict.Applied {
		return nil, &entity.AffordanceNotFound{
			Affordance: "answer control",
			Detail:     verdict.Reason,
		}
	}

	a.answered = append(a.answered, q.Prompt)
	a.logger.Info("Answer applied", "value", answer.Value())
	return answer, nil
}

func applyTask(q entity.Question, answer entity.Answer) string {
	var b strings.Builder
	b.WriteString("Enter this answer on the page.\n\nQuestion:\n")
	b.WriteString(q.Prompt)
	b.WriteString("\n\nAnswer to enter: ")
	b.WriteString(answer.Value())
	if q.Kind == entity.KindMultipleChoice {
		for _, idx := range answer.Selected {
			if idx >= 0 && idx < len(q.Options) {
				fmt.Fprintf(&b, "\nOption %s text: %s", entity.OptionLabel(idx), q.Options[idx])
			}
		}
	}
	return b.String()
}

type paginationVerdict struct {
	HasNext  bool   `json:"has_next"`
	Selector string `json:"selector"`
}

// HasNextPage re-derives pagination from the live page on every call.
func (a *Agent) HasNextPage(ctx context.Context) (bool, error) {
	a.nextSelector = ""

	final, err := a.runLoop(ctx, prompts.PaginationPrompt, "Does this page have a next-page control?", []entity.ToolName{
		entity.ToolPageObserve,
		entity.ToolPageUISummary,
		entity.ToolPageScroll,
	})
	if err != nil {
		return false, err
	}

	var verdict paginationVerdict
	if err := decodeVerdict(final, &verdict); err != nil {
		return false, fmt.Errorf("pagination verdict: %w", err)
	}

	if verdict.HasNext {
		a.nextSelector = verdict.Selector
	}
	a.logger.Info("Pagination evaluated", "hasNext", verdict.HasNext)
	return verdict.HasNext, nil
}

func (a *Agent) NextPage(ctx context.Context) error {
	selector := a.nextSelector
	a.nextSelector = ""

	if selector == "" {
		hasNext, err := a.HasNextPage(ctx)
		if err != nil {
			return err
		}
		if !hasNext {
			return &entity.AffordanceNotFound{
				Affordance: "next-page control",
				Detail:     "pagination control disappeared before it could be used",
			}
		}
		selector = a.nextSelector
		a.nextSelector = ""
	}

	if err := a.invokeTool(ctx, entity.ToolPageClick, map[string]string{"selector": selector}); err != nil {
		return &entity.AffordanceNotFound{Affordance: "next-page control", Detail: err.Error()}
	}

	a.logger.Info("Advanced to next page")
	return nil
}

type submitVerdict struct {
	Submitted bool   `json:"submitted"`
	Reason    string `json:"reason"`
}

func (a *Agent) Submit(ctx context.Context) error {
	final, err := a.runLoop(ctx, prompts.SubmitPrompt, "Submit the completed work.", []entity.ToolName{
		entity.ToolPageClick,
		entity.ToolPageObserve,
		entity.ToolPageUISummary,
		entity.ToolPageScroll,
	})
	if err != nil {
		return err
	}

	var verdict submitVerdict
	if err := decodeVerdict(final, &verdict); err != nil {
		return fmt.Errorf("submit verdict: %w", err)
	}
	if !verdict.Submitted {
		return &entity.AffordanceNotFound{
			Affordance: "submit control",
			Detail:     verdict.Reason,
		}
	}

	a.logger.Info("Submission confirmed")
	return nil
}

// runLoop drives one bounded tool-calling conversation and returns the
// model's final text message.
func (a *Agent) runLoop(ctx context.Context, systemPrompt, task string, allowed []entity.ToolName) (string, error) {
	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: systemPrompt},
		{Role: entity.RoleUser, Content: task},
	}

	toolDefs := a.filterTools(allowed)

	for iter := 1; iter <= maxToolIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		a.logger.Debug("Page agent iteration", "iteration", iter)

		resp, err := a.llm.Chat(ctx, output.ChatRequest{
			Messages:    messages,
			Tools:       toolDefs,
			Temperature: 0.0,
		})
		if err != nil {
			return "", fmt.Errorf("page agent llm request failed: %w", err)
		}

		messages = append(messages, resp.Message)

		if len(resp.Message.ToolCalls) == 0 {
			return resp.Message.Content, nil
		}

		for _, tc := range resp.Message.ToolCalls {
			observation := a.executeTool(ctx, tc)

			messages = append(messages, entity.Message{
				Role:       entity.RoleTool,
				ToolCallID: tc.ID,
				Name:       tc.Name,
				Content:    observation,
			})
		}
	}

	return "", fmt.Errorf("page agent exceeded %d tool iterations", maxToolIterations)
}

func (a *Agent) executeTool(ctx context.Context, tc entity.ToolCall) string {
	tool, ok := a.tools.Get(entity.ToolName(tc.Name))
	if !ok {
		a.logger.Warn("Unknown tool called", "name", tc.Name)
		return fmt.Sprintf("Error: unknown tool '%s'", tc.Name)
	}

	a.logger.Info("Executing tool", "name", tc.Name, "args", tc.Arguments)

	result, err := tool.Execute(ctx, tc.Arguments)
	if err != nil {
		a.logger.Error("Tool execution failed", "name", tc.Name, "error", err)
		return "Error: " + err.Error()
	}

	if len(result) > maxObservationLen {
		result = result[:maxObservationLen] + "\n... (truncated)"
	}

	return result
}

func (a *Agent) invokeTool(ctx context.Context, name entity.ToolName, args any) error {
	tool, ok := a.tools.Get(name)
	if !ok {
		return fmt.Errorf("tool %s not registered", name)
	}
	data, err := json.Marshal(args)
	if err != nil {
		return err
	}
	_, err = tool.Execute(ctx, string(data))
	return err
}

func (a *Agent) filterTools(allowed []entity.ToolName) []entity.ToolDefinition {
	all := a.tools.Definitions()
	filtered := make([]entity.ToolDefinition, 0, len(allowed))
	for _, def := range all {
		for _, name := range allowed {
			if def.Name == name {
				filtered = append(filtered, def)
				break
			}
		}
	}
	return filtered
}

// decodeVerdict pulls the JSON object out of a final model message that may
// be wrapped in prose or a code fence.
func decodeVerdict(content string, v any) error {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return fmt.Errorf("no JSON object in model response")
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), v); err != nil {
		return fmt.Errorf("malformed verdict JSON: %w", err)
	}
	return nil
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
