package entity

type Phase string

const (
	PhaseAwaitingQuestion Phase = "awaiting_question"
	PhaseAnswering        Phase = "answering"
	PhaseApplied          Phase = "applied"
	PhasePageComplete     Phase = "page_complete"
	PhasePaginating       Phase = "paginating"
	PhaseAllComplete      Phase = "all_complete"
	PhaseSubmitted        Phase = "submitted"
	PhaseFailed           Phase = "failed"
)

func (p Phase) Terminal() bool {
	return p == PhaseSubmitted || p == PhaseFailed
}

// SessionState is the mutable record for one run. It is owned and mutated
// exclusively by the session machine; everyone else sees copies.
type SessionState struct {
	Phase          Phase
	PageIndex      int
	AnsweredOnPage int
	TotalAnswered  int
	HasNextPage    bool
	Submitted      bool
	IterationsUsed int
}
