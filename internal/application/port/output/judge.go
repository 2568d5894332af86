package output

import (
	"context"

	"study-agent/internal/domain/entity"
)

// JudgePort gives a post-run quality assessment. Advisory only.
type JudgePort interface {
	Assess(ctx context.Context, directive string, result entity.RunResult) (*entity.RunAssessment, error)
}
