package orchestrator

import (
	"context"

	"study-agent/internal/application/port/input"
	"study-agent/internal/application/port/output"
	"study-agent/internal/domain/entity"
	"study-agent/internal/usecase/session"
)

var _ input.Runner = (*UseCase)(nil)

// UseCase is the top-level driver for one run. It relays the page agent's
// perception events and solve outcomes into the session machine and never
// inspects page content itself.
type UseCase struct {
	page     output.PageAgentPort
	machine  *session.Machine
	logger   output.LoggerPort
	progress output.ProgressPort
	judge    output.JudgePort
}

func New(
	page output.PageAgentPort,
	machine *session.Machine,
	logger output.LoggerPort,
	progress output.ProgressPort,
	judge output.JudgePort,
) *UseCase {
	if progress == nil {
		progress = noopProgress{}
	}
	return &UseCase{
		page:     page,
		machine:  machine,
		logger:   logger,
		progress: progress,
		judge:    judge,
	}
}

func (uc *UseCase) Run(ctx context.Context, task string) (*entity.RunResult, error) {
	uc.logger.Info("Run started", "task", task)
	uc.progress.Banner()

	// pending holds a question already perceived during the Applied step,
	// so the next AwaitingQuestion step does not perceive twice.
	var pending *entity.Question
	var current *entity.Question

	for !uc.machine.Phase().Terminal() {
		if err := ctx.Err(); err != nil {
			uc.machine.Fail(err)
			break
		}
		if err := uc.machine.ConsumeIteration(); err != nil {
			break
		}

		switch uc.machine.Phase() {
		case entity.PhaseAwaitingQuestion:
			q := pending
			pending = nil
			if q == nil {
				found := false
				var err error
				q, found, err = uc.page.FindQuestion(ctx)
				if err != nil {
					uc.machine.Fail(err)
					continue
				}
				if !found {
					uc.step(uc.machine.PageExhausted())
					continue
				}
			}
			current = q
			uc.progress.ShowQuestion(*q)
			uc.step(uc.machine.QuestionFound())

		case entity.PhaseAnswering:
			answer, err := uc.page.AnswerQuestion(ctx, *current)
			if err != nil {
				// SolveError and AffordanceNotFound reach the result
				// verbatim; an unanswered question is never skipped.
				uc.machine.Fail(err)
				continue
			}
			uc.progress.ShowAnswer(*current, *answer)
			current = nil
			uc.step(uc.machine.AnswerApplied())

		case entity.PhaseApplied:
			q, found, err := uc.page.FindQuestion(ctx)
			if err != nil {
				uc.machine.Fail(err)
				continue
			}
			if found {
				pending = q
				uc.step(uc.machine.MoreQuestions())
			} else {
				uc.step(uc.machine.PageExhausted())
			}

		case entity.PhasePageComplete:
			hasNext, err := uc.page.HasNextPage(ctx)
			if err != nil {
				uc.machine.Fail(err)
				continue
			}
			uc.step(uc.machine.EvaluatePagination(hasNext))

		case entity.PhasePaginating:
			if err := uc.page.NextPage(ctx); err != nil {
				uc.machine.Fail(err)
				continue
			}
			uc.step(uc.machine.PageAdvanced())

		case entity.PhaseAllComplete:
			uc.finishSubmission(ctx)
		}

		uc.progress.ShowPhase(uc.machine.State())
	}

	result := uc.buildResult()
	uc.progress.ShowResult(*result)

	if uc.judge != nil && result.FinalState == entity.PhaseSubmitted {
		uc.assess(ctx, task, *result)
	}

	if result.FailureCause != nil {
		uc.logger.Error("Run failed", "state", result.FinalState, "cause", result.FailureCause)
	} else {
		uc.logger.Info("Run finished", "state", result.FinalState, "answered", result.QuestionsAnswered)
	}
	return result, nil
}

// finishSubmission issues the submission action at most once; repeated
// triggers after PhaseSubmitted are no-ops.
func (uc *UseCase) finishSubmission(ctx context.Context) {
	if uc.machine.State().Submitted {
		uc.step(uc.machine.SubmitIssued())
		return
	}
	if err := uc.page.Submit(ctx); err != nil {
		uc.machine.Fail(err)
		return
	}
	uc.step(uc.machine.SubmitIssued())
}

// step guards against transitions the machine rejects; that is a driver
// bug, and the run must surface it rather than loop forever.
func (uc *UseCase) step(err error) {
	if err != nil {
		uc.logger.Error("Session transition rejected", "error", err)
		uc.machine.Fail(err)
	}
}

func (uc *UseCase) buildResult() *entity.RunResult {
	state := uc.machine.State()
	return &entity.RunResult{
		FinalState:        state.Phase,
		QuestionsAnswered: state.TotalAnswered,
		PagesVisited:      state.PageIndex,
		FailureCause:      uc.machine.Cause(),
	}
}

func (uc *UseCase) assess(ctx context.Context, task string, result entity.RunResult) {
	assessment, err := uc.judge.Assess(ctx, task, result)
	if err != nil {
		uc.logger.Warn("Run assessment unavailable", "error", err)
		return
	}
	uc.logger.Info("Run assessment",
		"success", assessment.Success,
		"confidence", assessment.Confidence,
		"issues", len(assessment.Issues),
		"feedback", assessment.Feedback,
	)
}

type noopProgress struct{}

func (noopProgress) Banner()                                        {}
func (noopProgress) ShowPhase(entity.SessionState)                  {}
func (noopProgress) ShowQuestion(entity.Question)                   {}
func (noopProgress) ShowAnswer(entity.Question, entity.Answer)      {}
func (noopProgress) ShowResult(entity.RunResult)                    {}
