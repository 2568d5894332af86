package entity

// RunAssessment is the judge's post-run verdict. Observability only: it
// never feeds back into the control loop.
type RunAssessment struct {
	Success    bool     `json:"success"`
	Confidence float64  `json:"confidence"`
	Issues     []string `json:"issues"`
	Feedback   string   `json:"feedback"`
}
