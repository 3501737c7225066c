// Package phonemask formats a phone number into the fixed template
// "+7 (___) ___-__-__" one keystroke at a time.
//
// The mask only ever swaps Blank for a digit or a digit back for Blank, so
// the length and separator positions of the template are preserved.
package phonemask

import (
	"strings"
	"unicode/utf8"
)

const (
	// Template is the mask of an empty phone input.
	Template = "+7 (___) ___-__-__"
	// Blank marks an unfilled slot.
	Blank = '_'
	// FirstSlot is the index of the first slot inside the area code.
	FirstSlot = 4
	// TotalDigits counts the country code plus every slot.
	TotalDigits = 11
	// ReservedDigits is how many of TotalDigits may still be missing before
	// an insertion is considered valid.
	ReservedDigits = 2
)

// Mask is the current masked phone string.
type Mask struct {
	s string
}

// New returns the empty template.
func New() Mask {
	return Mask{s: Template}
}

// String returns the masked phone as displayed.
func (m Mask) String() string {
	if m.s == "" {
		return Template
	}
	return m.s
}

// Digits returns the digits entered into slots, without the country code.
func (m Mask) Digits() string {
	s := m.String()
	var sb strings.Builder
	for i := FirstSlot; i < len(s); i++ {
		if isDigit(rune(s[i])) {
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// Empty reports whether no slot has been filled.
func (m Mask) Empty() bool {
	return strings.IndexRune(m.String(), Blank) == FirstSlot
}

// Full reports whether every slot holds a digit.
func (m Mask) Full() bool {
	return strings.IndexRune(m.String(), Blank) < 0
}

// Type returns the raw input a text field reports after r is typed at the end.
func (m Mask) Type(r rune) string {
	return m.String() + string(r)
}

// Backspace returns the raw input a text field reports after the last
// character is deleted.
func (m Mask) Backspace() string {
	s := m.String()
	return s[:len(s)-1]
}

// Result is the outcome of applying one input event.
type Result struct {
	// Mask is the mask to adopt. Equal to the receiver when nothing changed.
	Mask Mask
	// Valid is the freshly computed validity. Meaningless when Rejected.
	Valid bool
	// Rejected means the event was ignored: neither mask nor validity change.
	Rejected bool
	// Deleted means the event took the deletion path.
	Deleted bool
	// Changed means Mask differs from the receiver.
	Changed bool
}

// Apply runs one input event. raw is the full new text of the input; the
// character typed is its last rune, as a text input reports it.
func (m Mask) Apply(raw string) Result {
	cur := m.String()
	last, _ := utf8.DecodeLastRuneInString(raw)
	if raw == "" {
		last = 0
	}
	if !accepted(last) {
		return Result{Mask: m, Rejected: true}
	}

	if utf8.RuneCountInString(raw) < len(cur) {
		if m.Empty() {
			return Result{Mask: m, Deleted: true}
		}
		i := lastDigit(cur)
		b := []byte(cur)
		b[i] = Blank
		return Result{Mask: Mask{s: string(b)}, Deleted: true, Changed: true}
	}

	if !isDigit(last) {
		return Result{Mask: m, Rejected: true}
	}
	valid := countDigits(cur) >= TotalDigits-ReservedDigits
	if m.Full() {
		return Result{Mask: m, Rejected: true}
	}
	next := strings.Replace(cur, string(Blank), string(last), 1)
	return Result{Mask: Mask{s: next}, Valid: valid, Changed: true}
}

// accepted reports whether r may start an edit: a digit, one of the mask's
// own filler characters, or nothing at all (0) when the input was cleared.
func accepted(r rune) bool {
	switch {
	case isDigit(r):
		return true
	case r == Blank, r == '-', r == 0:
		return true
	}
	return false
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if isDigit(r) {
			n++
		}
	}
	return n
}

// lastDigit returns the byte index of the last digit in s. The template is
// ASCII, so byte and rune indices agree.
func lastDigit(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if isDigit(rune(s[i])) {
			return i
		}
	}
	return -1
}
