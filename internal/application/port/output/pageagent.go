package output

import (
	"context"

	"study-agent/internal/domain/entity"
)

// PageAgentPort is the page-operating role: it perceives on-page state and
// performs UI actions. The orchestrator drives the session machine from the
// outcomes of these calls and never inspects page content itself.
type PageAgentPort interface {
	// FindQuestion perceives the current page and returns the next
	// unanswered question in scope, or found=false when none remain.
	FindQuestion(ctx context.Context) (q *entity.Question, found bool, err error)

	// AnswerQuestion obtains an answer from the solver and applies it to
	// the page. The returned Answer is the solver's verbatim record.
	AnswerQuestion(ctx context.Context, q entity.Question) (*entity.Answer, error)

	// HasNextPage re-derives pagination from the page as it is right now.
	// Results must never be cached across pages.
	HasNextPage(ctx context.Context) (bool, error)

	// NextPage advances to the following page.
	NextPage(ctx context.Context) error

	// Submit issues the final submission action.
	Submit(ctx context.Context) error
}
