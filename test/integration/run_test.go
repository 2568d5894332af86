package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"study-agent/internal/adapter/tool"
	"study-agent/internal/application/port/output"
	"study-agent/internal/application/service"
	"study-agent/internal/domain/entity"
	"study-agent/internal/infrastructure/prompts"
	"study-agent/internal/usecase/agents/pageop"
	"study-agent/internal/usecase/orchestrator"
	"study-agent/internal/usecase/session"
	"study-agent/internal/usecase/solver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	question1 = "Which planet is known as the Red Planet?"
	question2 = "The Great Wall of China is visible from space with the naked eye."
	question3 = "What is the chemical symbol for gold?"
	question4 = "How many continents are there on Earth?"
)

// questionCatalog задаёт вердикты поиска для известных вопросов теста.
var questionCatalog = map[string]string{
	question1: fmt.Sprintf(`{"found": true, "question": {"prompt": %q, "kind": "choice", "options": ["Venus", "Mars", "Jupiter"], "multi_select": false}}`, question1),
	question2: fmt.Sprintf(`{"found": true, "question": {"prompt": %q, "kind": "true_false"}}`, question2),
	question3: fmt.Sprintf(`{"found": true, "question": {"prompt": %q, "kind": "choice", "options": ["Au", "Ag", "Gd"], "multi_select": false}}`, question3),
	question4: fmt.Sprintf(`{"found": true, "question": {"prompt": %q, "kind": "choice", "options": ["Five", "Six", "Seven"], "multi_select": false}}`, question4),
}

// fakeBrowser — тест из нескольких страниц. Клик по #next переводит на
// следующую; каждый клик записывается.
type fakeBrowser struct {
	pages  [][]string
	page   int
	clicks []string
	fills  []string
}

func newFakeBrowser(pages ...[]string) *fakeBrowser {
	return &fakeBrowser{pages: pages, page: 1}
}

func (b *fakeBrowser) Navigate(ctx context.Context, url string) error { return nil }

func (b *fakeBrowser) Click(ctx context.Context, selector string) error {
	b.clicks = append(b.clicks, selector)
	if selector == "#next" && b.page < len(b.pages) {
		b.page++
	}
	return nil
}

func (b *fakeBrowser) Fill(ctx context.Context, selector, text string) error {
	b.fills = append(b.fills, selector+"="+text)
	return nil
}

func (b *fakeBrowser) PressEnter(ctx context.Context) error               { return nil }
func (b *fakeBrowser) Scroll(ctx context.Context, direction string) error { return nil }

func (b *fakeBrowser) GetPageContent(ctx context.Context) (*entity.PageContent, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<body><h1>Quiz page %d</h1>", b.page)
	for _, q := range b.pageQuestions() {
		fmt.Fprintf(&sb, "<div class=\"question\">%s</div>", q)
	}
	sb.WriteString("</body>")
	return &entity.PageContent{
		URL:   b.CurrentURL(),
		Title: fmt.Sprintf("Quiz — page %d", b.page),
		HTML:  sb.String(),
	}, nil
}

func (b *fakeBrowser) GetUIElements(ctx context.Context) ([]entity.UIElement, error) {
	return []entity.UIElement{
		{ID: "ui-0000", Type: "button", Text: "Next", Selector: "#next", Visible: true},
	}, nil
}

func (b *fakeBrowser) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	return &entity.Screenshot{Data: []byte{0xff}, Format: "jpeg", Width: 1, Height: 1}, nil
}

func (b *fakeBrowser) CurrentURL() string { return fmt.Sprintf("https://quiz.example/page/%d", b.page) }
func (b *fakeBrowser) Close()             {}

func (b *fakeBrowser) pageQuestions() []string { return b.pages[b.page-1] }

// scriptedLLM plays both model roles. Dispatch is on the system prompt, so
// it exercises the real prompt wiring of each operation.
type scriptedLLM struct {
	browser        *fakeBrowser
	solverRequests []output.ChatRequest
	solverReply    func(userText string) string
}

func (s *scriptedLLM) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	system := req.Messages[0].Content
	last := req.Messages[len(req.Messages)-1]

	switch system {
	case prompts.SolverSystemPrompt:
		s.solverRequests = append(s.solverRequests, req)
		return text(s.solverReply(last.Content)), nil

	case prompts.FindQuestionPrompt:
		if last.Role != entity.RoleTool {
			return toolCall("page_observe", "{}"), nil
		}
		return text(s.findVerdict(req.Messages[1].Content)), nil

	case prompts.ApplyAnswerPrompt:
		if last.Role != entity.RoleTool {
			return toolCall("page_click", `{"selector":"#answer"}`), nil
		}
		return text(`{"applied": true}`), nil

	case prompts.PaginationPrompt:
		if s.browser.page < len(s.browser.pages) {
			return text(`{"has_next": true, "selector": "#next"}`), nil
		}
		return text(`{"has_next": false}`), nil

	case prompts.SubmitPrompt:
		if last.Role != entity.RoleTool {
			return toolCall("page_click", `{"selector":"#submit"}`), nil
		}
		return text(`{"submitted": true}`), nil
	}

	return nil, fmt.Errorf("unexpected system prompt")
}

// findVerdict возвращает первый вопрос текущей страницы, которого ещё нет в
// списке отвеченных, переданном в запросе поиска.
func (s *scriptedLLM) findVerdict(task string) string {
	for _, q := range s.browser.pageQuestions() {
		if !strings.Contains(task, q) {
			return questionCatalog[q]
		}
	}
	return `{"found": false}`
}

func text(content string) *output.ChatResponse {
	return &output.ChatResponse{Message: entity.Message{Role: entity.RoleAssistant, Content: content}}
}

func toolCall(name, args string) *output.ChatResponse {
	return &output.ChatResponse{Message: entity.Message{
		Role:      entity.RoleAssistant,
		ToolCalls: []entity.ToolCall{{ID: "call_1", Name: name, Arguments: args}},
	}}
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any)                      {}
func (noopLogger) Info(string, ...any)                       {}
func (noopLogger) Warn(string, ...any)                       {}
func (noopLogger) Error(string, ...any)                      {}
func (l noopLogger) WithField(string, any) output.LoggerPort { return l }
func (noopLogger) Close() error                              { return nil }

func buildStack(browser *fakeBrowser, llm output.LLMPort, maxIterations int) *orchestrator.UseCase {
	log := noopLogger{}

	registry := service.NewToolRegistry()
	registry.Register(tool.NewObserveTool(browser, log))
	registry.Register(tool.NewUISummaryTool(browser, log))
	registry.Register(tool.NewClickTool(browser, log))
	registry.Register(tool.NewFillTool(browser, log))
	registry.Register(tool.NewPressEnterTool(browser, log))
	registry.Register(tool.NewScrollTool(browser, log))
	registry.Register(tool.NewScreenshotTool(browser, log))

	solveUC := solver.New(llm, log, solver.DefaultConfig())
	agent := pageop.New(llm, registry, solveUC, log, "")

	return orchestrator.New(agent, session.NewMachine(maxIterations), log, nil, nil)
}

func TestRun_SinglePageQuiz(t *testing.T) {
	browser := newFakeBrowser([]string{question1, question3, question4})
	llm := &scriptedLLM{
		browser: browser,
		solverReply: func(userText string) string {
			switch {
			case strings.Contains(userText, "Red Planet"):
				return "Mars is the obvious candidate.\n\nANSWER: B\nREASONING: Mars appears red due to iron oxide."
			case strings.Contains(userText, "gold"):
				return "ANSWER: A\nREASONING: Gold is aurum, hence Au."
			default:
				return "ANSWER: C\nREASONING: The conventional count is seven."
			}
		},
	}

	runner := buildStack(browser, llm, 40)
	result, err := runner.Run(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, entity.PhaseSubmitted, result.FinalState)
	assert.Equal(t, 3, result.QuestionsAnswered)
	assert.Equal(t, 1, result.PagesVisited)

	// единственная страница — никакой пагинации, одна отправка
	assert.Equal(t, 0, countOf(browser.clicks, "#next"))
	assert.Equal(t, 1, countOf(browser.clicks, "#submit"))
}

func TestRun_TwoPageQuiz(t *testing.T) {
	browser := newFakeBrowser([]string{question1}, []string{question2})
	llm := &scriptedLLM{
		browser: browser,
		solverReply: func(userText string) string {
			if strings.Contains(userText, "Red Planet") {
				return "Mars is the obvious candidate.\n\nANSWER: B\nREASONING: Mars appears red due to iron oxide."
			}
			return "ANSWER: false\nREASONING: This is a widespread myth; the wall is too narrow to resolve."
		},
	}

	runner := buildStack(browser, llm, 40)
	result, err := runner.Run(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, entity.PhaseSubmitted, result.FinalState)
	assert.Equal(t, 2, result.QuestionsAnswered)
	assert.Equal(t, 2, result.PagesVisited)
	assert.NoError(t, result.FailureCause)

	// ровно один переход на следующую страницу и одна отправка
	assert.Equal(t, 1, countOf(browser.clicks, "#next"))
	assert.Equal(t, 1, countOf(browser.clicks, "#submit"))
}

func TestRun_SolverSeesNoPageState(t *testing.T) {
	browser := newFakeBrowser([]string{question1}, []string{question2})
	llm := &scriptedLLM{
		browser: browser,
		solverReply: func(userText string) string {
			if strings.Contains(userText, "Red Planet") {
				return "ANSWER: B\nREASONING: iron oxide."
			}
			return "ANSWER: false\nREASONING: myth."
		},
	}

	runner := buildStack(browser, llm, 40)
	_, err := runner.Run(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, llm.solverRequests, 2)
	for _, req := range llm.solverRequests {
		assert.Len(t, req.Messages, 2, "solver conversation is system + one user turn")
		assert.Empty(t, req.Tools, "solver never sees browser tools")

		userText := req.Messages[1].Content
		assert.NotContains(t, userText, "<body")
		assert.NotContains(t, userText, "selector")
		assert.NotContains(t, userText, "Quiz page")
	}
}

func TestRun_CorrectiveRetryRecovers(t *testing.T) {
	browser := newFakeBrowser([]string{question1})
	calls := 0
	llm := &scriptedLLM{
		browser: browser,
		solverReply: func(string) string {
			calls++
			if calls == 1 {
				return "I believe the answer is Mars, the red one."
			}
			return "ANSWER: B\nREASONING: Mars appears red due to iron oxide."
		},
	}

	runner := buildStack(browser, llm, 40)
	result, err := runner.Run(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, entity.PhaseSubmitted, result.FinalState)
	assert.Equal(t, 1, result.QuestionsAnswered)

	// ровно один корректирующий запрос: исходный диалог плюс ответ модели
	// и требование переформатировать
	require.Len(t, llm.solverRequests, 2)
	assert.Len(t, llm.solverRequests[0].Messages, 2)
	assert.Len(t, llm.solverRequests[1].Messages, 4)
	assert.Equal(t, entity.RoleAssistant, llm.solverRequests[1].Messages[2].Role)
	assert.Contains(t, llm.solverRequests[1].Messages[2].Content, "Mars, the red one")
}

func TestRun_UnparseableSolverFailsRun(t *testing.T) {
	browser := newFakeBrowser([]string{question1}, []string{question2})
	llm := &scriptedLLM{
		browser: browser,
		solverReply: func(string) string {
			return "I would rather not commit to an answer."
		},
	}

	runner := buildStack(browser, llm, 40)
	result, err := runner.Run(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, entity.PhaseFailed, result.FinalState)
	assert.Equal(t, 0, result.QuestionsAnswered)

	var solveErr *entity.SolveError
	require.ErrorAs(t, result.FailureCause, &solveErr)
	assert.Equal(t, question1, solveErr.Question)

	// провал решателя не должен приводить к вводу ответа на страницу
	assert.NotContains(t, browser.clicks, "#answer")
	assert.NotContains(t, browser.clicks, "#submit")
}

func countOf(items []string, want string) int {
	n := 0
	for _, item := range items {
		if item == want {
			n++
		}
	}
	return n
}
