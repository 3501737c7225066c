package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dshills/feedbackform/internal/feedback"
	"github.com/dshills/feedbackform/internal/form"
	"github.com/dshills/feedbackform/internal/phonemask"
	"github.com/dshills/feedbackform/internal/submit"
)

func sampleDoc(status form.Status) *Document {
	return &Document{
		Tool:    "feedbackform",
		Version: "test",
		Form: form.View{
			Fields: []form.FieldView{
				{Field: feedback.FieldName, Value: "JOHN SMITH", Valid: true},
				{Field: feedback.FieldEmail, Value: "bad", Valid: false, Marked: true},
				{Field: feedback.FieldPhone, Value: phonemask.Template, Valid: true},
				{Field: feedback.FieldBirthday, Value: "1990-04-21", Valid: true},
				{Field: feedback.FieldMessage, Value: "Thanks for everything", Valid: true},
			},
			Status: status,
		},
	}
}

func TestNewRenderer_UnknownFormat(t *testing.T) {
	if _, err := NewRenderer("xml"); err == nil {
		t.Error("expected error for unknown format, got nil")
	}
}

func TestTextRenderer_Fields(t *testing.T) {
	r, err := NewRenderer("text")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	out, err := r.Render(sampleDoc(form.StatusNone))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	s := string(out)

	for _, want := range []string{
		"Your name:     JOHN SMITH\n",
		"Your email:    bad  [invalid]\n",
		`Input your email in format: "test@test.test"`,
		"Your phone:    +7 (___) ___-__-__\n",
		"Your birthday: 1990-04-21\n",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("text output missing %q:\n%s", want, s)
		}
	}
	if strings.Contains(s, "Input your phone") {
		t.Errorf("hint shown for an unmarked field:\n%s", s)
	}
	if strings.Contains(s, "received") || strings.Contains(s, "wrong") {
		t.Errorf("status line shown without a status:\n%s", s)
	}
}

func TestTextRenderer_Status(t *testing.T) {
	r, _ := NewRenderer("")
	out, err := r.Render(sampleDoc(form.StatusSuccess))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(out), "Your feedback was received") {
		t.Errorf("missing success message:\n%s", out)
	}

	out, err = r.Render(sampleDoc(form.StatusError))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(out), "Please repeat") {
		t.Errorf("missing error message:\n%s", out)
	}
}

func TestTextRenderer_Submitting(t *testing.T) {
	doc := sampleDoc(form.StatusError)
	doc.Form.Submitting = true
	r, _ := NewRenderer("text")
	out, err := r.Render(doc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(out), "Submitting...") || strings.Contains(string(out), "Please repeat") {
		t.Errorf("submitting view wrong:\n%s", out)
	}
}

func TestJSONRenderer(t *testing.T) {
	doc := sampleDoc(form.StatusError)
	doc.Script = "session.txt"
	doc.Hash = "sha256:abc"
	doc.Form.LastResult = &form.ResultView{Kind: submit.KindRejected, Status: 500, Error: "endpoint responded HTTP 500"}

	r, _ := NewRenderer("json")
	out, err := r.Render(doc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	if got["script_hash"] != "sha256:abc" {
		t.Errorf("script_hash: got %v", got["script_hash"])
	}
	f := got["form"].(map[string]any)
	if f["status"] != "error" {
		t.Errorf("status: got %v", f["status"])
	}
	last := f["last_result"].(map[string]any)
	if last["kind"] != "rejected" {
		t.Errorf("last_result.kind: got %v", last["kind"])
	}
	if n := len(f["fields"].([]any)); n != 5 {
		t.Errorf("expected 5 fields, got %d", n)
	}
}

func TestTrace_Insert(t *testing.T) {
	got := Trace(form.Change{
		Field:  feedback.FieldName,
		Before: form.FieldState{Valid: true},
		After:  form.FieldState{Value: "JOHN SMITH", Valid: true},
	})
	if got != "name: {+JOHN SMITH+}" {
		t.Errorf("Trace: got %q", got)
	}
}

func TestTrace_PhoneSlot(t *testing.T) {
	got := Trace(form.Change{
		Field:  feedback.FieldPhone,
		Before: form.FieldState{Value: phonemask.Template, Valid: true},
		After:  form.FieldState{Value: "+7 (9__) ___-__-__", Valid: false},
	})
	for _, want := range []string{"phone: +7 (", "{+9+}", "[-_-]", "(valid: true -> false)"} {
		if !strings.Contains(got, want) {
			t.Errorf("Trace missing %q: %q", want, got)
		}
	}
}

func TestTrace_Unchanged(t *testing.T) {
	st := form.FieldState{Value: "abc", Valid: false}
	got := Trace(form.Change{Field: feedback.FieldEmail, Before: st, After: st})
	if got != "email: (unchanged)" {
		t.Errorf("Trace: got %q", got)
	}
}

func TestTraceTo(t *testing.T) {
	var buf bytes.Buffer
	TraceTo(&buf)(form.Change{Field: feedback.FieldBirthday, After: form.FieldState{Value: "1990-04-21", Valid: true}, Before: form.FieldState{Valid: true}})
	if buf.String() != "birthday: {+1990-04-21+}\n" {
		t.Errorf("TraceTo: got %q", buf.String())
	}
	// nil writer is a no-op
	TraceTo(nil)(form.Change{})
}
