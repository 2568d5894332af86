package prompts

import (
	"bytes"
	"text/template"

	"study-agent/internal/domain/entity"
)

var questionTmpl = template.Must(template.New("question").
	Funcs(template.FuncMap{"label": entity.OptionLabel}).
	Parse(
	`Solve the following question.

{{.Prompt}}
{{- if .Options}}

Options:
{{- range $i, $opt := .Options}}
{{label $i}}. {{$opt}}
{{- end}}
{{- end}}
{{- if .KindHint}}

Question type: {{.KindHint}}{{if .MultiSelect}} (multiple answers may apply){{end}}
{{- end}}
{{- if .FormatHint}}

Answer format requirement: {{.FormatHint}}
{{- end}}`))

type questionData struct {
	Prompt      string
	Options     []string
	KindHint    string
	MultiSelect bool
	FormatHint  string
}

// RenderQuestion builds the user message for the reasoning request. It
// contains the question and its options only.
func RenderQuestion(q entity.Question) (string, error) {
	hint := ""
	switch q.Kind {
	case entity.KindMultipleChoice:
		hint = "multiple choice"
	case entity.KindFillInBlank:
		hint = "fill in the blank"
	case entity.KindTrueFalse:
		hint = "true or false"
	case entity.KindShortAnswer:
		hint = "short answer"
	}

	var buf bytes.Buffer
	err := questionTmpl.Execute(&buf, questionData{
		Prompt:      q.Prompt,
		Options:     q.Options,
		KindHint:    hint,
		MultiSelect: q.MultiSelect,
		FormatHint:  q.FormatHint,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

var reformatTmpl = template.Must(template.New("reformat").Parse(
	`Your previous response could not be parsed: {{.Reason}}.

Answer the same question again. This time respond with your reasoning followed
by exactly one line of the form "ANSWER: <value>"{{if .Choice}} where <value> is
a single option letter from the options given{{end}}. No other text after that line.`))

type reformatData struct {
	Reason string
	Choice bool
}

// RenderReformat builds the one corrective re-request issued after a parse
// failure.
func RenderReformat(reason string, q entity.Question) (string, error) {
	var buf bytes.Buffer
	err := reformatTmpl.Execute(&buf, reformatData{
		Reason: reason,
		Choice: q.Kind == entity.KindMultipleChoice && !q.MultiSelect,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
