// Package form implements the feedback form controller: it owns the state of
// the five inputs, validates every change, drives the phone mask and gates
// submission on overall validity.
//
// The controller never touches a screen. A rendering surface feeds it input
// events through the Set methods and draws View snapshots.
package form

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/feedbackform/internal/feedback"
	"github.com/dshills/feedbackform/internal/logger"
	"github.com/dshills/feedbackform/internal/metrics"
	"github.com/dshills/feedbackform/internal/phonemask"
	"github.com/dshills/feedbackform/internal/submit"
	"github.com/dshills/feedbackform/internal/validate"
)

// FieldState is the stored value of one input and its validity flag.
type FieldState struct {
	Value string `json:"value"`
	Valid bool   `json:"valid"`
}

// Status tags the form after a submission attempt reached the network.
type Status string

const (
	StatusNone    Status = ""
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Change describes one input event as seen by the controller.
type Change struct {
	Field  feedback.Field
	Before FieldState
	After  FieldState
}

// Options tunes a Controller. The zero value is ready to use.
type Options struct {
	// StalePhoneMarker makes the phone's visual marker follow the validity
	// computed on the previous phone event instead of the current one.
	StalePhoneMarker bool
	// OnChange, when set, is called after every input event with the lock released.
	OnChange func(Change)
	Metrics  *metrics.Recorder
	Logger   *zap.SugaredLogger
}

// Controller holds the form state. It is safe for concurrent use; Submit
// releases the lock while the request is in flight so View keeps working.
type Controller struct {
	sender submit.Sender
	opts   Options
	log    *zap.SugaredLogger

	mu          sync.Mutex
	text        map[feedback.Field]FieldState
	phone       phonemask.Mask
	phoneValid  bool
	phoneMarked bool
	status      Status
	submitting  bool
	last        *submit.Result
}

// New returns a controller in its initial state that submits through sender.
func New(sender submit.Sender, opts Options) *Controller {
	c := &Controller{sender: sender, opts: opts, log: opts.Logger}
	if c.log == nil {
		c.log = logger.Get()
	}
	c.resetLocked()
	return c
}

func (c *Controller) resetLocked() {
	c.text = map[feedback.Field]FieldState{
		feedback.FieldName:     {Valid: true},
		feedback.FieldEmail:    {Valid: true},
		feedback.FieldBirthday: {Valid: true},
		feedback.FieldMessage:  {Valid: true},
	}
	c.phone = phonemask.New()
	c.phoneValid = true
	c.phoneMarked = false
}

// SetName stores the uppercased input and flags it against the name rule.
func (c *Controller) SetName(v string) FieldState { return c.setText(feedback.FieldName, v) }

// SetEmail stores the input unchanged and flags it against the email rule.
func (c *Controller) SetEmail(v string) FieldState { return c.setText(feedback.FieldEmail, v) }

// SetBirthday stores the input; a birthday is always valid.
func (c *Controller) SetBirthday(v string) FieldState { return c.setText(feedback.FieldBirthday, v) }

// SetMessage stores the input and flags it against the length bounds.
func (c *Controller) SetMessage(v string) FieldState { return c.setText(feedback.FieldMessage, v) }

func (c *Controller) setText(f feedback.Field, v string) FieldState {
	rule, _ := validate.For(f)
	valid, derived := rule(v)

	c.mu.Lock()
	before := c.text[f]
	after := FieldState{Value: derived, Valid: valid}
	c.text[f] = after
	c.mu.Unlock()

	c.log.Debugw("field changed", "field", f, "valid", valid)
	c.notify(Change{Field: f, Before: before, After: after})
	return after
}

// SetPhone runs one phone input event. raw is the input's full new text.
func (c *Controller) SetPhone(raw string) FieldState {
	c.mu.Lock()
	before := c.phoneStateLocked()
	res := c.phone.Apply(raw)

	prevValid := c.phoneValid
	if !res.Rejected {
		c.phone = res.Mask
		c.phoneValid = res.Valid
	}
	if c.opts.StalePhoneMarker {
		c.phoneMarked = !prevValid
	} else {
		c.phoneMarked = !c.phoneValid
	}
	after := c.phoneStateLocked()
	c.mu.Unlock()

	c.log.Debugw("field changed", "field", feedback.FieldPhone, "valid", after.Valid,
		"rejected", res.Rejected, "deleted", res.Deleted)
	c.notify(Change{Field: feedback.FieldPhone, Before: before, After: after})
	return after
}

func (c *Controller) phoneStateLocked() FieldState {
	return FieldState{Value: c.phone.String(), Valid: c.phoneValid}
}

func (c *Controller) notify(ch Change) {
	if c.opts.OnChange != nil {
		c.opts.OnChange(ch)
	}
}

// Set dispatches a change event to the handler of f.
func (c *Controller) Set(f feedback.Field, v string) (FieldState, error) {
	switch f {
	case feedback.FieldName:
		return c.SetName(v), nil
	case feedback.FieldEmail:
		return c.SetEmail(v), nil
	case feedback.FieldPhone:
		return c.SetPhone(v), nil
	case feedback.FieldBirthday:
		return c.SetBirthday(v), nil
	case feedback.FieldMessage:
		return c.SetMessage(v), nil
	}
	return FieldState{}, fmt.Errorf("unknown field %q", f)
}

// Phone returns the current mask, from which keystroke input is built.
func (c *Controller) Phone() phonemask.Mask {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phone
}

// Field returns the state of f.
func (c *Controller) Field(f feedback.Field) FieldState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f == feedback.FieldPhone {
		return c.phoneStateLocked()
	}
	return c.text[f]
}

// Record assembles the payload from the stored values, as displayed.
func (c *Controller) Record() feedback.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recordLocked()
}

func (c *Controller) recordLocked() feedback.Record {
	return feedback.Record{
		Name:     c.text[feedback.FieldName].Value,
		Email:    c.text[feedback.FieldEmail].Value,
		Phone:    c.phone.String(),
		Birthday: c.text[feedback.FieldBirthday].Value,
		Message:  c.text[feedback.FieldMessage].Value,
	}
}

// Submit sends the form when every gated field is valid and filled in. A
// blocked submit returns a *BlockedError or ErrSubmitInProgress and sends
// nothing. Otherwise the send result is returned with a nil error, whatever
// its outcome: success resets the fields, any other outcome keeps them.
func (c *Controller) Submit(ctx context.Context) (submit.Result, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		c.opts.Metrics.ObserveBlocked("in_progress")
		return submit.Result{}, ErrSubmitInProgress
	}
	if err := c.blockedLocked(); err != nil {
		c.mu.Unlock()
		var be *BlockedError
		if errors.As(err, &be) {
			c.opts.Metrics.ObserveBlocked(blockReason(be.Reason))
		}
		c.log.Infow("submit blocked", "error", err)
		return submit.Result{}, err
	}
	rec := c.recordLocked()
	c.submitting = true
	c.mu.Unlock()

	res := c.sender.Send(ctx, rec)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	c.last = &res
	if res.Outcome() == submit.OutcomeSuccess {
		c.status = StatusSuccess
		c.resetLocked()
	} else {
		c.status = StatusError
	}
	return res, nil
}

func (c *Controller) blockedLocked() error {
	var invalid []feedback.Field
	for _, f := range []feedback.Field{feedback.FieldName, feedback.FieldEmail, feedback.FieldPhone, feedback.FieldMessage} {
		valid := c.phoneValid
		if f != feedback.FieldPhone {
			valid = c.text[f].Valid
		}
		if !valid {
			invalid = append(invalid, f)
		}
	}
	if len(invalid) > 0 {
		return &BlockedError{Reason: ErrInvalid, Fields: invalid}
	}

	var empty []feedback.Field
	// The phone input always holds the mask string, so it is never empty.
	for _, f := range []feedback.Field{feedback.FieldName, feedback.FieldEmail, feedback.FieldMessage} {
		if c.text[f].Value == "" {
			empty = append(empty, f)
		}
	}
	if len(empty) > 0 {
		return &BlockedError{Reason: ErrIncomplete, Fields: empty}
	}
	return nil
}

func blockReason(err error) string {
	if errors.Is(err, ErrIncomplete) {
		return "incomplete"
	}
	return "invalid"
}

// Reset returns every field to its initial state and clears the status tag.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	c.status = StatusNone
	c.last = nil
}
