// Package feedback defines the record a feedback form submits.
package feedback

// Record is the payload carried by a single submission. It is assembled from
// the form's stored values at submit time and never mutated afterwards.
type Record struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Birthday string `json:"birthday"` // calendar date as entered, e.g. 1990-04-21
	Message  string `json:"message"`
}

// Field names one of the form's inputs.
type Field string

const (
	FieldName     Field = "name"
	FieldEmail    Field = "email"
	FieldPhone    Field = "phone"
	FieldBirthday Field = "birthday"
	FieldMessage  Field = "message"
)

// Fields lists every input in display order.
func Fields() []Field {
	return []Field{FieldName, FieldEmail, FieldPhone, FieldBirthday, FieldMessage}
}

// ParseField returns the Field for s, or false if s names no input.
func ParseField(s string) (Field, bool) {
	for _, f := range Fields() {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Value returns the record's value for f.
func (r Record) Value(f Field) string {
	switch f {
	case FieldName:
		return r.Name
	case FieldEmail:
		return r.Email
	case FieldPhone:
		return r.Phone
	case FieldBirthday:
		return r.Birthday
	case FieldMessage:
		return r.Message
	}
	return ""
}
