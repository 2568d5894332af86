package session

import (
	"fmt"

	"study-agent/internal/domain/entity"
)

// Machine owns the SessionState for one run and is the only component
// allowed to mutate it. Every transition is validated; the orchestrator
// reads snapshots and decides when to stop.
type Machine struct {
	state entity.SessionState
	max   int
	cause error
}

func NewMachine(maxIterations int) *Machine {
	if maxIterations < 1 {
		maxIterations = 1
	}
	return &Machine{
		state: entity.SessionState{
			Phase:     entity.PhaseAwaitingQuestion,
			PageIndex: 1,
		},
		max: maxIterations,
	}
}

// State returns a copy; callers can never mutate the machine's record.
func (m *Machine) State() entity.SessionState {
	return m.state
}

func (m *Machine) Phase() entity.Phase {
	return m.state.Phase
}

// Cause returns the failure cause once the machine is in PhaseFailed.
func (m *Machine) Cause() error {
	return m.cause
}

// ConsumeIteration charges one unit of the global budget. When the budget
// is already spent it fails the session instead of allowing another page
// action.
func (m *Machine) ConsumeIteration() error {
	if m.state.Phase.Terminal() {
		return fmt.Errorf("session already terminal in %s", m.state.Phase)
	}
	if m.state.IterationsUsed >= m.max {
		cause := &entity.BudgetExceeded{Max: m.max}
		m.Fail(cause)
		return cause
	}
	m.state.IterationsUsed++
	return nil
}

func (m *Machine) QuestionFound() error {
	return m.transition(entity.PhaseAnswering, entity.PhaseAwaitingQuestion)
}

func (m *Machine) AnswerApplied() error {
	if err := m.transition(entity.PhaseApplied, entity.PhaseAnswering); err != nil {
		return err
	}
	m.state.AnsweredOnPage++
	m.state.TotalAnswered++
	return nil
}

func (m *Machine) MoreQuestions() error {
	return m.transition(entity.PhaseAwaitingQuestion, entity.PhaseApplied)
}

// PageExhausted records that perception found no further questions. Allowed
// straight from AwaitingQuestion as well, for pages that carry none at all.
func (m *Machine) PageExhausted() error {
	return m.transition(entity.PhasePageComplete, entity.PhaseApplied, entity.PhaseAwaitingQuestion)
}

// EvaluatePagination consumes a fresh hasNextPage observation. The flag is
// stored for observability only; the decision is made from the argument,
// never from a prior evaluation.
func (m *Machine) EvaluatePagination(hasNext bool) error {
	next := entity.PhaseAllComplete
	if hasNext {
		next = entity.PhasePaginating
	}
	if err := m.transition(next, entity.PhasePageComplete); err != nil {
		return err
	}
	m.state.HasNextPage = hasNext
	return nil
}

func (m *Machine) PageAdvanced() error {
	if err := m.transition(entity.PhaseAwaitingQuestion, entity.PhasePaginating); err != nil {
		return err
	}
	m.state.PageIndex++
	m.state.AnsweredOnPage = 0
	m.state.HasNextPage = false
	return nil
}

// SubmitIssued marks the single submission. Calling it again once submitted
// is a no-op, not an error.
func (m *Machine) SubmitIssued() error {
	if m.state.Submitted {
		return nil
	}
	if err := m.transition(entity.PhaseSubmitted, entity.PhaseAllComplete); err != nil {
		return err
	}
	m.state.Submitted = true
	return nil
}

// Fail moves any non-terminal state to PhaseFailed and pins the cause.
// Terminal states are left untouched.
func (m *Machine) Fail(cause error) {
	if m.state.Phase.Terminal() {
		return
	}
	m.state.Phase = entity.PhaseFailed
	m.cause = cause
}

func (m *Machine) transition(to entity.Phase, from ...entity.Phase) error {
	for _, f := range from {
		if m.state.Phase == f {
			m.state.Phase = to
			return nil
		}
	}
	return fmt.Errorf("invalid transition %s -> %s", m.state.Phase, to)
}
