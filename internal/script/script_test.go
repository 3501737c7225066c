package script

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dshills/feedbackform/internal/feedback"
	"github.com/dshills/feedbackform/internal/form"
	"github.com/dshills/feedbackform/internal/submit"
)

type stubSender struct {
	result submit.Result
	sent   []feedback.Record
}

func (s *stubSender) Send(_ context.Context, rec feedback.Record) submit.Result {
	s.sent = append(s.sent, rec)
	return s.result
}

const session = `# a complete session
name John Smith
email john@example.com
type 91234567890
backspace
type 9
birthday 1990-04-21
message Thanks for the great service!
submit
`

func TestParse(t *testing.T) {
	steps, err := Parse(strings.NewReader(session))
	require.NoError(t, err)
	require.Len(t, steps, 8)

	assert.Equal(t, Step{Line: 2, Op: OpSet, Field: feedback.FieldName, Value: "John Smith"}, steps[0])
	assert.Equal(t, Step{Line: 4, Op: OpType, Value: "91234567890"}, steps[2])
	assert.Equal(t, Step{Line: 5, Op: OpBackspace, Count: 1}, steps[3])
	assert.Equal(t, Step{Line: 9, Op: OpSubmit}, steps[7])
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown":        "fax 123",
		"type empty":     "type",
		"bad backspace":  "backspace x",
		"zero backspace": "backspace 0",
		"submit arg":     "submit now",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader("# header\n" + in + "\n"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 2:")
		})
	}
}

func TestParse_EmptyFieldValue(t *testing.T) {
	steps, err := Parse(strings.NewReader("birthday\n"))
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "", steps[0].Value)
}

func TestLoad_HashesContent(t *testing.T) {
	p := filepath.Join(t.TempDir(), "session.txt")
	require.NoError(t, os.WriteFile(p, []byte(session), 0o644))

	s, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, p, s.Path)
	assert.True(t, strings.HasPrefix(s.Hash, "sha256:"))
	assert.Len(t, s.Hash, len("sha256:")+64)
	assert.Len(t, s.Steps, 8)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestRun_Session(t *testing.T) {
	steps, err := Parse(strings.NewReader(session))
	require.NoError(t, err)

	sender := &stubSender{result: submit.Result{Kind: submit.KindSuccess, Status: 201}}
	c := form.New(sender, form.Options{Logger: zap.NewNop().Sugar()})

	subs := Run(context.Background(), c, steps)
	require.Len(t, subs, 1)
	assert.Equal(t, 9, subs[0].Line)
	require.NoError(t, subs[0].Err)
	assert.Equal(t, submit.OutcomeSuccess, subs[0].Result.Outcome())

	require.Len(t, sender.sent, 1)
	// The eleventh typed digit is dropped on a full mask, the backspace
	// clears the last slot and the final 9 refills it.
	assert.Equal(t, "+7 (912) 345-67-89", sender.sent[0].Phone)
	assert.Equal(t, "JOHN SMITH", sender.sent[0].Name)
	assert.Equal(t, form.StatusSuccess, c.View().Status)
}

func TestRun_BlockedSubmitContinues(t *testing.T) {
	steps, err := Parse(strings.NewReader("name Bob\nsubmit\nname Bob Marley\nemail bob@example.com\ntype 9123456789\nmessage Long enough message\nsubmit\n"))
	require.NoError(t, err)

	sender := &stubSender{result: submit.Result{Kind: submit.KindRejected, Status: 500}}
	c := form.New(sender, form.Options{Logger: zap.NewNop().Sugar()})

	subs := Run(context.Background(), c, steps)
	require.Len(t, subs, 2)
	assert.ErrorIs(t, subs[0].Err, form.ErrInvalid)
	assert.NoError(t, subs[1].Err)
	assert.Equal(t, submit.OutcomeError, subs[1].Result.Outcome())
	assert.Equal(t, form.StatusError, c.View().Status)
}
