// Package validate holds the per-field rules of the feedback form. Every rule
// is a pure function of the field's full current text and reports both the
// verdict and the value the form should store.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dshills/feedbackform/internal/feedback"
)

// Message length bounds, inclusive, counted in characters.
const (
	MinMessageLen = 10
	MaxMessageLen = 300
)

var (
	// First and last name separated by whitespace, including Unicode spaces.
	namePattern  = regexp.MustCompile(`^[a-zA-Z]{3,30}[\s\p{Zs}]+[a-zA-Z]{3,30}$`)
	emailPattern = regexp.MustCompile(`^[\w.\-]+@[\w.\-]+\.[a-zA-Z]{2,5}$`)
)

// Func validates a raw field value. derived is what the form stores,
// regardless of valid.
type Func func(value string) (valid bool, derived string)

// Name accepts "first last" and always derives the uppercased input.
func Name(value string) (bool, string) {
	return namePattern.MatchString(value), strings.ToUpper(value)
}

// Email accepts local@domain.tld with a 2 to 5 letter TLD.
func Email(value string) (bool, string) {
	return emailPattern.MatchString(value), value
}

// Message accepts MinMessageLen..MaxMessageLen characters.
func Message(value string) (bool, string) {
	n := utf8.RuneCountInString(value)
	return n >= MinMessageLen && n <= MaxMessageLen, value
}

// Birthday accepts anything; the date input constrains it upstream.
func Birthday(value string) (bool, string) {
	return true, value
}

// For returns the rule for a text field. The phone field has no pure rule,
// its validity comes out of the mask state machine.
func For(f feedback.Field) (Func, bool) {
	switch f {
	case feedback.FieldName:
		return Name, true
	case feedback.FieldEmail:
		return Email, true
	case feedback.FieldBirthday:
		return Birthday, true
	case feedback.FieldMessage:
		return Message, true
	}
	return nil, false
}
