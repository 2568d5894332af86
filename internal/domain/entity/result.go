package entity

// RunResult is the only externally observed output of a run.
type RunResult struct {
	FinalState        Phase
	QuestionsAnswered int
	PagesVisited      int
	FailureCause      error
}
