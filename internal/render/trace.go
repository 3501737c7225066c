package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/dshills/feedbackform/internal/form"
)

// Trace describes one input event as an inline character diff of the stored
// value, deletions as [-x-] and insertions as {+x+}, followed by any change
// of the validity flag. Events that changed nothing are reported as such.
func Trace(ch form.Change) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: ", ch.Field)

	if ch.Before.Value == ch.After.Value {
		sb.WriteString("(unchanged)")
	} else {
		dmp := diffmatchpatch.New()
		diffs := dmp.DiffMain(ch.Before.Value, ch.After.Value, false)
		diffs = dmp.DiffCleanupSemantic(diffs)
		for _, d := range diffs {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				sb.WriteString(d.Text)
			case diffmatchpatch.DiffDelete:
				sb.WriteString("[-" + d.Text + "-]")
			case diffmatchpatch.DiffInsert:
				sb.WriteString("{+" + d.Text + "+}")
			}
		}
	}

	if ch.Before.Valid != ch.After.Valid {
		fmt.Fprintf(&sb, " (valid: %t -> %t)", ch.Before.Valid, ch.After.Valid)
	}
	return sb.String()
}

// TraceTo returns a change observer writing one Trace line per event to w.
// w may be nil, in which case the observer discards everything.
func TraceTo(w io.Writer) func(form.Change) {
	return func(ch form.Change) {
		if w == nil {
			return
		}
		fmt.Fprintln(w, Trace(ch))
	}
}
