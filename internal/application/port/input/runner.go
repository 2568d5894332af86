package input

import (
	"context"

	"study-agent/internal/domain/entity"
)

// Runner executes one full question-answering session. The task directive is
// optional free text scoping which questions to attempt; empty means attempt
// everything detected.
type Runner interface {
	Run(ctx context.Context, task string) (*entity.RunResult, error)
}
