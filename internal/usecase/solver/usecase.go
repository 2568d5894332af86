package solver

import (
	"context"
	"errors"
	"fmt"

	"study-agent/internal/application/port/output"
	"study-agent/internal/domain/entity"
	"study-agent/internal/infrastructure/prompts"
	"study-agent/internal/usecase/parser"
)

var _ output.SolverPort = (*UseCase)(nil)

type Config struct {
	// MaxTransportRetries bounds re-sends after transient transport
	// failures. A well-formed but unconvincing answer is never retried.
	MaxTransportRetries int
	Temperature         float32
}

func DefaultConfig() Config {
	return Config{MaxTransportRetries: 2}
}

// UseCase is the solve tool: it turns one Question into one Answer by
// consulting the reasoning model. The request carries the question text and
// options only; the reasoning context is never polluted with page state.
type UseCase struct {
	llm    output.LLMPort
	logger output.LoggerPort
	cfg    Config
}

func New(llm output.LLMPort, logger output.LoggerPort, cfg Config) *UseCase {
	return &UseCase{
		llm:    llm,
		logger: logger,
		cfg:    cfg,
	}
}

func (uc *UseCase) Solve(ctx context.Context, q entity.Question) (*entity.Answer, error) {
	userText, err := prompts.RenderQuestion(q)
	if err != nil {
		return nil, &entity.SolveError{Question: q.Prompt, Err: err}
	}

	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: prompts.SolverSystemPrompt},
		{Role: entity.RoleUser, Content: userText},
	}

	uc.logger.Info("Solving question", "kind", q.Kind, "prompt", clip(q.Prompt, 120))

	raw, err := uc.complete(ctx, messages)
	if err != nil {
		return nil, &entity.SolveError{Question: q.Prompt, Err: err}
	}

	answer, parseErr := parser.Parse(raw, q)
	if parseErr == nil {
		uc.logger.Info("Question solved", "answer", answer.Value())
		return answer, nil
	}

	// One corrective re-request carrying the parser's failure reason. A
	// second malformed response escalates; the tool never guesses.
	uc.logger.Warn("Solver response unparseable, issuing corrective request", "error", parseErr)

	reformat, err := prompts.RenderReformat(parseReason(parseErr), q)
	if err != nil {
		return nil, &entity.SolveError{Question: q.Prompt, Err: err}
	}
	messages = append(messages,
		entity.Message{Role: entity.RoleAssistant, Content: raw},
		entity.Message{Role: entity.RoleUser, Content: reformat},
	)

	raw, err = uc.complete(ctx, messages)
	if err != nil {
		return nil, &entity.SolveError{Question: q.Prompt, Err: err}
	}

	answer, parseErr = parser.Parse(raw, q)
	if parseErr != nil {
		uc.logger.Error("Corrective response also unparseable", "error", parseErr)
		return nil, &entity.SolveError{Question: q.Prompt, Attempted: raw, Err: parseErr}
	}

	uc.logger.Info("Question solved after corrective request", "answer", answer.Value())
	return answer, nil
}

// complete sends one reasoning request, retrying transient transport
// failures within the configured budget.
func (uc *UseCase) complete(ctx context.Context, messages []entity.Message) (string, error) {
	attempts := uc.cfg.MaxTransportRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := uc.llm.Chat(ctx, output.ChatRequest{
			Messages:    messages,
			Temperature: uc.cfg.Temperature,
		})
		if err == nil {
			if resp.Message.Content == "" {
				return "", fmt.Errorf("empty completion from reasoning model")
			}
			return resp.Message.Content, nil
		}
		lastErr = err
		if !entity.IsTransient(err) || attempt == attempts {
			break
		}
		uc.logger.Warn("Transient reasoning failure, retrying", "attempt", attempt, "error", err)
	}

	return "", lastErr
}

func parseReason(err error) string {
	var pe *entity.ParseError
	if errors.As(err, &pe) {
		return fmt.Sprintf("%s (%s)", pe.Reason, pe.Detail)
	}
	return err.Error()
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
