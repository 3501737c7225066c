package redact

import (
	"strings"
	"testing"

	"github.com/dshills/feedbackform/internal/feedback"
)

func TestRedact_Email(t *testing.T) {
	out := Redact("write to me at john.smith@example.com please")
	if strings.Contains(out, "john.smith") {
		t.Errorf("email not redacted: %q", out)
	}
	if !strings.Contains(out, redacted) {
		t.Errorf("expected %s marker: %q", redacted, out)
	}
}

func TestRedact_Phone(t *testing.T) {
	for _, in := range []string{"call +7 (912) 345-67-89 now", "call 89123456789 now", "call 912-345-6789"} {
		out := Redact(in)
		if strings.ContainsAny(out, "3456") {
			t.Errorf("phone not redacted in %q: %q", in, out)
		}
	}
}

func TestRedact_LeavesOrdinaryNumbers(t *testing.T) {
	in := "I visited 3 times in 2023"
	if got := Redact(in); got != in {
		t.Errorf("Redact(%q) = %q, want unchanged", in, got)
	}
}

func TestMaskEmail(t *testing.T) {
	if got := MaskEmail("johnsmith@example.com"); got != "jo...h@example.com" {
		t.Errorf("MaskEmail: got %q", got)
	}
	if got := MaskEmail("ab@example.com"); got != "**@example.com" {
		t.Errorf("MaskEmail short local part: got %q", got)
	}
	if got := MaskEmail(""); got != "" {
		t.Errorf("MaskEmail empty: got %q", got)
	}
}

func TestMaskPhone(t *testing.T) {
	if got := MaskPhone("+7 (912) 345-67-89"); got != "+7 (***) ***-**-89" {
		t.Errorf("MaskPhone full: got %q", got)
	}
	if got := MaskPhone("+7 (912) 3__-__-__"); got != "+7 (**2) 3__-__-__" {
		t.Errorf("MaskPhone partial: got %q", got)
	}
	if got := MaskPhone("+7 (___) ___-__-__"); got != "+7 (___) ___-__-__" {
		t.Errorf("MaskPhone template: got %q", got)
	}
}

func TestRecord(t *testing.T) {
	r := feedback.Record{
		Name:     "JOHN SMITH",
		Email:    "johnsmith@example.com",
		Phone:    "+7 (912) 345-67-89",
		Birthday: "1990-04-21",
		Message:  "reach me at johnsmith@example.com",
	}
	got := Record(r)
	if got.Name != "J. S." {
		t.Errorf("Name: got %q", got.Name)
	}
	if got.Birthday != r.Birthday {
		t.Errorf("Birthday: got %q", got.Birthday)
	}
	if strings.Contains(got.Message, "johnsmith") {
		t.Errorf("Message not redacted: %q", got.Message)
	}
	if got.Phone == r.Phone || got.Email == r.Email {
		t.Errorf("contact fields not masked: %+v", got)
	}
}
