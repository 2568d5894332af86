package prompts

import (
	_ "embed"
)

//go:embed solver_system.txt
var SolverSystemPrompt string

//go:embed pageop_find.txt
var FindQuestionPrompt string

//go:embed pageop_apply.txt
var ApplyAnswerPrompt string

//go:embed pageop_paginate.txt
var PaginationPrompt string

//go:embed pageop_submit.txt
var SubmitPrompt string

//go:embed default_task.txt
var DefaultTaskDirective string
