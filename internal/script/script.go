// Package script loads and replays recorded form sessions.
//
// A script is line oriented:
//
//	# comment
//	name John Smith          set a field to the given raw input
//	type 9123456789          type each character into the phone input
//	backspace 2              delete the phone's last character n times
//	submit                   submit the form
//	reset                    reset the form
//
// Blank lines and lines starting with # are ignored.
package script

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dshills/feedbackform/internal/feedback"
	"github.com/dshills/feedbackform/internal/form"
	"github.com/dshills/feedbackform/internal/submit"
)

// Op is the kind of a step.
type Op string

const (
	OpSet       Op = "set"
	OpType      Op = "type"
	OpBackspace Op = "backspace"
	OpSubmit    Op = "submit"
	OpReset     Op = "reset"
)

// Step is one parsed line.
type Step struct {
	Line  int
	Op    Op
	Field feedback.Field // OpSet only
	Value string         // OpSet and OpType
	Count int            // OpBackspace only
}

// Script is a loaded session file.
type Script struct {
	Path  string
	Hash  string // "sha256:<hex>"
	Steps []Step
}

// Load reads a script file, hashes it and parses its steps.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script file: %w", err)
	}
	steps, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &Script{
		Path:  path,
		Hash:  fmt.Sprintf("sha256:%x", sha256.Sum256(data)),
		Steps: steps,
	}, nil
}

// Parse reads steps from r. Errors carry the offending line number.
func Parse(r io.Reader) ([]Step, error) {
	var steps []Step
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		step, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		step.Line = n
		steps = append(steps, step)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return steps, nil
}

func parseLine(line string) (Step, error) {
	word, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch word {
	case string(OpSubmit), string(OpReset):
		if rest != "" {
			return Step{}, fmt.Errorf("%s takes no argument", word)
		}
		return Step{Op: Op(word)}, nil
	case string(OpType):
		if rest == "" {
			return Step{}, fmt.Errorf("type needs the characters to type")
		}
		return Step{Op: OpType, Value: rest}, nil
	case string(OpBackspace):
		count := 1
		if rest != "" {
			n, err := strconv.Atoi(rest)
			if err != nil || n < 1 {
				return Step{}, fmt.Errorf("backspace count must be a positive integer, got %q", rest)
			}
			count = n
		}
		return Step{Op: OpBackspace, Count: count}, nil
	}

	f, ok := feedback.ParseField(word)
	if !ok {
		return Step{}, fmt.Errorf("unknown command %q", word)
	}
	return Step{Op: OpSet, Field: f, Value: rest}, nil
}

// Submission is the result of one submit step.
type Submission struct {
	Line   int
	Result submit.Result
	Err    error // blocked submit
}

// Run replays the steps against c and returns every submit step's result.
// A blocked submit does not stop the replay.
func (s *Script) Run(ctx context.Context, c *form.Controller) []Submission {
	return Run(ctx, c, s.Steps)
}

// Run replays steps against c.
func Run(ctx context.Context, c *form.Controller, steps []Step) []Submission {
	var subs []Submission
	for _, st := range steps {
		switch st.Op {
		case OpSet:
			if _, err := c.Set(st.Field, st.Value); err != nil {
				subs = append(subs, Submission{Line: st.Line, Err: err})
			}
		case OpType:
			for _, r := range st.Value {
				c.SetPhone(c.Phone().Type(r))
			}
		case OpBackspace:
			for i := 0; i < st.Count; i++ {
				c.SetPhone(c.Phone().Backspace())
			}
		case OpSubmit:
			res, err := c.Submit(ctx)
			subs = append(subs, Submission{Line: st.Line, Result: res, Err: err})
		case OpReset:
			c.Reset()
		}
	}
	return subs
}
