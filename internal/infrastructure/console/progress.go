package console

import (
	"study-agent/internal/application/port/output"
	"study-agent/internal/domain/entity"

	"github.com/fatih/color"
)

var _ output.ProgressPort = (*ProgressReporter)(nil)

// ProgressReporter печатает ход прогона в терминал. Чисто косметика:
// управляющий цикл на него не опирается.
type ProgressReporter struct{}

func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{}
}

func (p *ProgressReporter) Banner() {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Println("\n━━━ Study Agent ━━━")
}

func (p *ProgressReporter) ShowPhase(state entity.SessionState) {
	dim := color.New(color.Faint)
	dim.Printf("[стр. %d | отвечено %d | итерация %d] %s\n",
		state.PageIndex, state.TotalAnswered, state.IterationsUsed, phaseDisplay(state.Phase))
}

func (p *ProgressReporter) ShowQuestion(q entity.Question) {
	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Printf("\n❓ Вопрос (%s): %s\n", kindDisplay(q.Kind), truncate(q.Prompt, 120))

	dim := color.New(color.Faint)
	for i, opt := range q.Options {
		dim.Printf("   %s. %s\n", entity.OptionLabel(i), truncate(opt, 80))
	}
}

func (p *ProgressReporter) ShowAnswer(q entity.Question, a entity.Answer) {
	green := color.New(color.FgGreen)
	green.Printf("✓ Ответ: %s\n", a.Value())

	if a.Rationale != "" {
		dim := color.New(color.Faint)
		// обрезаем только вывод; сам ответ хранит обоснование целиком
		dim.Printf("   %s\n", truncate(a.Rationale, rationaleLimit(q.Kind)))
	}
}

// rationaleLimit задаёт длину показываемого обоснования по типу вопроса:
// короткие типы не заслуживают длинной выкладки.
func rationaleLimit(kind entity.QuestionKind) int {
	limits := map[entity.QuestionKind]int{
		entity.KindMultipleChoice: 200,
		entity.KindTrueFalse:      150,
		entity.KindFillInBlank:    300,
		entity.KindShortAnswer:    1500,
	}
	if l, ok := limits[kind]; ok {
		return l
	}
	return 500
}

func (p *ProgressReporter) ShowResult(result entity.RunResult) {
	if result.FinalState == entity.PhaseSubmitted {
		green := color.New(color.FgGreen, color.Bold)
		green.Printf("\n✅ Готово: отвечено %d вопросов на %d страницах\n",
			result.QuestionsAnswered, result.PagesVisited)
		return
	}

	red := color.New(color.FgRed, color.Bold)
	red.Printf("\n❌ Прогон прерван: отвечено %d вопросов на %d страницах\n",
		result.QuestionsAnswered, result.PagesVisited)
	if result.FailureCause != nil {
		dim := color.New(color.Faint)
		dim.Printf("   причина: %v\n", result.FailureCause)
	}
}

func phaseDisplay(phase entity.Phase) string {
	displays := map[entity.Phase]string{
		entity.PhaseAwaitingQuestion: "🔍 поиск вопроса",
		entity.PhaseAnswering:        "💭 решение",
		entity.PhaseApplied:          "✏️ ответ внесён",
		entity.PhasePageComplete:     "📄 страница закрыта",
		entity.PhasePaginating:       "➡️ переход на следующую страницу",
		entity.PhaseAllComplete:      "🏁 все страницы пройдены",
		entity.PhaseSubmitted:        "✅ отправлено",
		entity.PhaseFailed:           "❌ сбой",
	}
	if d, ok := displays[phase]; ok {
		return d
	}
	return string(phase)
}

func kindDisplay(kind entity.QuestionKind) string {
	displays := map[entity.QuestionKind]string{
		entity.KindMultipleChoice: "выбор варианта",
		entity.KindFillInBlank:    "пропуск",
		entity.KindTrueFalse:      "верно/неверно",
		entity.KindShortAnswer:    "свободный ответ",
		entity.KindUnknown:        "неизвестный тип",
	}
	if d, ok := displays[kind]; ok {
		return d
	}
	return string(kind)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
