package render

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/dshills/feedbackform/internal/feedback"
	"github.com/dshills/feedbackform/internal/form"
)

var labels = map[feedback.Field]string{
	feedback.FieldName:     "Your name",
	feedback.FieldEmail:    "Your email",
	feedback.FieldPhone:    "Your phone",
	feedback.FieldBirthday: "Your birthday",
	feedback.FieldMessage:  "Your message",
}

// hints are shown under a marked input.
var hints = map[feedback.Field]string{
	feedback.FieldName:    "Input your first and last name separated by a space",
	feedback.FieldEmail:   `Input your email in format: "test@test.test"`,
	feedback.FieldPhone:   `Input your phone in format: "+7 (000) 123-45-67"`,
	feedback.FieldMessage: "Your message should contain at least 10 and at most 300 characters",
}

// Label returns the caption of f's input.
func Label(f feedback.Field) string { return labels[f] }

// StatusLine is the form-level message shown for s, empty for StatusNone.
func StatusLine(s form.Status) string {
	switch s {
	case form.StatusSuccess:
		return "Your feedback was received"
	case form.StatusError:
		return "Sorry, something went wrong... Please repeat"
	}
	return ""
}

var textTemplate = template.Must(template.New("form").Funcs(template.FuncMap{
	"label":  Label,
	"hint":   func(f feedback.Field) string { return hints[f] },
	"status": StatusLine,
}).Parse(`{{ range .Form.Fields }}{{ printf "%-15s" (print (label .Field) ":") }}{{ .Value }}{{ if .Marked }}  [invalid]{{ end }}
{{ if .Marked }}{{ printf "%15s" "" }}{{ hint .Field }}
{{ end }}{{ end }}{{ if .Form.Submitting }}
Submitting...
{{ else }}{{ with status .Form.Status }}
{{ . }}
{{ end }}{{ end }}`))

type textRenderer struct{}

func (r *textRenderer) Render(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := textTemplate.Execute(&buf, doc); err != nil {
		return nil, fmt.Errorf("rendering text: %w", err)
	}
	return buf.Bytes(), nil
}
