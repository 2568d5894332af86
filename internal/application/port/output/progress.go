package output

import "study-agent/internal/domain/entity"

// ProgressPort reports run progress to the operator. Purely cosmetic; the
// control loop never depends on it.
type ProgressPort interface {
	Banner()
	ShowPhase(state entity.SessionState)
	ShowQuestion(q entity.Question)
	ShowAnswer(q entity.Question, a entity.Answer)
	ShowResult(result entity.RunResult)
}
