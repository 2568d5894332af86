package output

import (
	"context"

	"study-agent/internal/domain/entity"
)

// SolverPort is the callable surface the page-operating agent uses to obtain
// an answer for one question. Implementations must send the reasoning model
// the question text and options only: no screenshot, no DOM state, no
// operation history.
type SolverPort interface {
	Solve(ctx context.Context, q entity.Question) (*entity.Answer, error)
}
