package form

import (
	"github.com/dshills/feedbackform/internal/feedback"
	"github.com/dshills/feedbackform/internal/submit"
)

// FieldView is one input as a renderer draws it.
type FieldView struct {
	Field feedback.Field `json:"field"`
	Value string         `json:"value"`
	Valid bool           `json:"valid"`
	// Marked is the visual invalid marker.
	Marked bool `json:"marked"`
}

// ResultView summarizes the last send.
type ResultView struct {
	Kind      submit.Kind `json:"kind"`
	Status    int         `json:"status,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// View is a snapshot of the whole form.
type View struct {
	Fields     []FieldView `json:"fields"`
	Status     Status      `json:"status,omitempty"`
	Submitting bool        `json:"submitting"`
	LastResult *ResultView `json:"last_result,omitempty"`
}

// Field returns the view of f, or the zero FieldView.
func (v View) Field(f feedback.Field) FieldView {
	for _, fv := range v.Fields {
		if fv.Field == f {
			return fv
		}
	}
	return FieldView{}
}

// View snapshots the form for rendering.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{Status: c.status, Submitting: c.submitting}
	for _, f := range feedback.Fields() {
		fv := FieldView{Field: f}
		if f == feedback.FieldPhone {
			fv.Value = c.phone.String()
			fv.Valid = c.phoneValid
			fv.Marked = c.phoneMarked
		} else {
			st := c.text[f]
			fv.Value, fv.Valid, fv.Marked = st.Value, st.Valid, !st.Valid
		}
		v.Fields = append(v.Fields, fv)
	}
	if c.last != nil {
		rv := &ResultView{Kind: c.last.Kind, Status: c.last.Status, RequestID: c.last.RequestID}
		if c.last.Err != nil {
			rv.Error = c.last.Err.Error()
		}
		v.LastResult = rv
	}
	return v
}

// PhoneMarker reports whether the phone input currently shows the invalid marker.
func (c *Controller) PhoneMarker() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phoneMarked
}
