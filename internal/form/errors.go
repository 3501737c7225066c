package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/feedbackform/internal/feedback"
)

var (
	// ErrInvalid blocks a submit while a field's validity flag is down.
	ErrInvalid = errors.New("form has invalid fields")
	// ErrIncomplete blocks a submit while a required field is still empty.
	ErrIncomplete = errors.New("form has empty required fields")
	// ErrSubmitInProgress is returned while the submit control is disabled.
	ErrSubmitInProgress = errors.New("submission already in progress")
)

// BlockedError names the fields that kept a submit from going out.
// It unwraps to ErrInvalid or ErrIncomplete.
type BlockedError struct {
	Reason error
	Fields []feedback.Field
}

func (e *BlockedError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f)
	}
	return fmt.Sprintf("%s: %s", e.Reason, strings.Join(names, ", "))
}

func (e *BlockedError) Unwrap() error { return e.Reason }
