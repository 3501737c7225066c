package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dshills/feedbackform/internal/config"
	"github.com/dshills/feedbackform/internal/feedback"
	"github.com/dshills/feedbackform/internal/form"
	"github.com/dshills/feedbackform/internal/logger"
	"github.com/dshills/feedbackform/internal/metrics"
	"github.com/dshills/feedbackform/internal/phonemask"
	"github.com/dshills/feedbackform/internal/render"
	"github.com/dshills/feedbackform/internal/script"
	"github.com/dshills/feedbackform/internal/submit"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// Exit codes.
const (
	exitGeneric   = 1
	exitSendError = 2
	exitUsage     = 3
	exitBlocked   = 4
)

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

// codeError returns an exitErr for the given code.
func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// globalFlags holds the flags shared by every command. The flags backed by
// configuration (endpoint, timeout, log-level, stale-phone-marker) are read
// through config.Load instead.
type globalFlags struct {
	configFile string
	envFile    string
	format     string
	out        string
	metricsOut string
	verbose    bool
	trace      bool
}

// sendInput holds the field values of the send command.
type sendInput struct {
	name     string
	email    string
	phone    string
	birthday string
	message  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		logger.Sync()
		var ee *exitErr
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(exitGeneric)
	}
	logger.Sync()
}

func newRootCmd() *cobra.Command {
	var flags globalFlags
	root := &cobra.Command{
		Use:           "feedbackform",
		Short:         "Fill in and submit the feedback form from a terminal",
		Long:          "feedbackform collects a name, email, phone, birthday and message, validates each field as it is entered and posts the record to the feedback endpoint.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "Config file (yaml, json or toml)")
	pf.StringVar(&flags.envFile, "env-file", "", "dotenv file to load (default .env when present)")
	pf.StringVar(&flags.format, "format", "text", "Output format: text or json")
	pf.StringVar(&flags.out, "out", "", "Write the rendered form to file instead of stdout")
	pf.StringVar(&flags.metricsOut, "metrics-out", "", "Write submission metrics in Prometheus text format to this file")
	pf.BoolVar(&flags.verbose, "verbose", false, "Log processing steps to stderr")
	pf.BoolVar(&flags.trace, "trace", false, "Print a diff of the stored value for every input event to stderr")
	pf.String("endpoint", "", "Feedback endpoint URL (env FEEDBACK_ENDPOINT)")
	pf.Duration("timeout", 0, "Submission timeout, 0 for none (env FEEDBACK_TIMEOUT)")
	pf.String("log-level", "", "Log level: debug, info, warn or error (env LOG_LEVEL)")
	pf.Bool("stale-phone-marker", false, "Show the phone marker computed on the previous keystroke")

	var in sendInput
	sendCmd := &cobra.Command{
		Use:   "send",
		Short: "Enter every field from flags and submit once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), flags, cmd.Flags(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return a.runSend(in)
		},
	}
	sf := sendCmd.Flags()
	sf.StringVar(&in.name, "name", "", "First and last name")
	sf.StringVar(&in.email, "email", "", "Email address")
	sf.StringVar(&in.phone, "phone", "", "The ten phone digits after +7, typed one by one")
	sf.StringVar(&in.birthday, "birthday", "", "Birthday as YYYY-MM-DD")
	sf.StringVar(&in.message, "message", "", "Message, 10 to 300 characters")

	replayCmd := &cobra.Command{
		Use:   "replay <script-file>",
		Short: "Replay a recorded form session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), flags, cmd.Flags(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return a.runReplay(args[0])
		},
	}

	fillCmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill in the form interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), flags, cmd.Flags(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return a.runFill(cmd.InOrStdin())
		},
	}

	maskCmd := &cobra.Command{
		Use:   "mask <keys>",
		Short: "Show the phone mask after each keystroke ('<' is backspace)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMask(args[0], cmd.OutOrStdout())
		},
	}

	root.AddCommand(sendCmd, replayCmd, fillCmd, maskCmd)
	return root
}

// app wires configuration, logging, metrics, the submission client and the
// form controller for one command run.
type app struct {
	ctx      context.Context
	flags    globalFlags
	cfg      *config.Config
	ctrl     *form.Controller
	client   *submit.Client
	registry *prometheus.Registry
	stdout   io.Writer
	stderr   io.Writer
}

func newApp(ctx context.Context, flags globalFlags, fs *pflag.FlagSet, stdout, stderr io.Writer) (*app, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := validateFlags(flags); err != nil {
		return nil, codeError(exitUsage, "invalid flags: %s", err)
	}

	cfg, err := config.Load(config.Options{File: flags.configFile, EnvFile: flags.envFile, Flags: fs})
	if err != nil {
		return nil, codeError(exitUsage, "loading config: %s", err)
	}

	level := cfg.LogLevel
	if flags.verbose {
		level = "debug"
	}
	if err := logger.Init(logger.Options{Level: level, Environment: cfg.Environment}); err != nil {
		return nil, codeError(exitGeneric, "initializing logger: %s", err)
	}

	reg := prometheus.NewRegistry()
	rec, err := metrics.New(reg)
	if err != nil {
		return nil, codeError(exitGeneric, "creating metrics: %s", err)
	}

	client, err := submit.New(cfg.Endpoint, submit.WithTimeout(cfg.Timeout), submit.WithMetrics(rec))
	if err != nil {
		return nil, codeError(exitUsage, "creating submission client: %s", err)
	}

	opts := form.Options{StalePhoneMarker: cfg.StalePhoneMarker, Metrics: rec}
	if flags.trace {
		opts.OnChange = render.TraceTo(stderr)
	}

	return &app{
		ctx:      ctx,
		flags:    flags,
		cfg:      cfg,
		ctrl:     form.New(client, opts),
		client:   client,
		registry: reg,
		stdout:   stdout,
		stderr:   stderr,
	}, nil
}

func (a *app) runSend(in sendInput) error {
	log := logger.Get()
	log.Debugw("entering fields", "endpoint", a.client.Endpoint())

	a.ctrl.SetName(in.name)
	a.ctrl.SetEmail(in.email)
	typePhone(a.ctrl, in.phone)
	a.ctrl.SetBirthday(in.birthday)
	a.ctrl.SetMessage(in.message)

	res, submitErr := a.ctrl.Submit(a.ctx)
	if err := a.finish(&render.Document{}); err != nil {
		return err
	}
	return submitExit(res, submitErr)
}

func (a *app) runReplay(path string) error {
	log := logger.Get()
	log.Debugw("loading script", "path", path)
	s, err := script.Load(path)
	if err != nil {
		return codeError(exitUsage, "loading script: %s", err)
	}

	subs := s.Run(a.ctx, a.ctrl)
	log.Debugw("script replayed", "steps", len(s.Steps), "submissions", len(subs))

	if err := a.finish(&render.Document{Script: s.Path, Hash: s.Hash}); err != nil {
		return err
	}
	if len(subs) == 0 {
		return nil
	}
	last := subs[len(subs)-1]
	err = submitExit(last.Result, last.Err)
	var ee *exitErr
	if errors.As(err, &ee) {
		return codeError(ee.code, "line %d: %s", last.Line, ee.msg)
	}
	return err
}

// runFill prompts for every field until it is accepted, then submits. After
// a failed submission the user may retry with the same values.
func (a *app) runFill(stdin io.Reader) error {
	sc := bufio.NewScanner(stdin)
	prompt := func(label string) (string, bool) {
		fmt.Fprintf(a.stdout, "%s: ", label)
		if !sc.Scan() {
			return "", false
		}
		return strings.TrimSpace(sc.Text()), true
	}

	for _, f := range feedback.Fields() {
		for {
			line, ok := prompt(fieldLabel(f))
			if !ok {
				return codeError(exitUsage, "input ended before the form was complete")
			}
			var st form.FieldState
			if f == feedback.FieldPhone {
				clearPhone(a.ctrl)
				st = typePhone(a.ctrl, line)
			} else {
				st, _ = a.ctrl.Set(f, line)
			}
			if st.Valid {
				break
			}
			fmt.Fprintln(a.stdout, "  invalid, try again")
		}
	}

	for {
		res, err := a.ctrl.Submit(a.ctx)
		if err != nil || res.Outcome() == submit.OutcomeSuccess {
			if ferr := a.finish(&render.Document{}); ferr != nil {
				return ferr
			}
			return submitExit(res, err)
		}
		fmt.Fprintln(a.stdout, render.StatusLine(form.StatusError))
		answer, ok := prompt("Retry? [y/N]")
		if !ok || !strings.EqualFold(answer, "y") {
			if ferr := a.finish(&render.Document{}); ferr != nil {
				return ferr
			}
			return submitExit(res, nil)
		}
	}
}

// finish renders the form view and writes metrics when requested.
func (a *app) finish(doc *render.Document) error {
	doc.Tool = "feedbackform"
	doc.Version = version
	doc.Form = a.ctrl.View()

	renderer, err := render.NewRenderer(a.flags.format)
	if err != nil {
		return codeError(exitUsage, "invalid format: %s", err)
	}
	outputBytes, err := renderer.Render(doc)
	if err != nil {
		return codeError(exitGeneric, "rendering output: %s", err)
	}

	if a.flags.out != "" {
		if err := os.WriteFile(a.flags.out, outputBytes, 0o644); err != nil {
			return codeError(exitGeneric, "writing output file: %s", err)
		}
	} else {
		if _, err := a.stdout.Write(outputBytes); err != nil {
			return codeError(exitGeneric, "writing output: %s", err)
		}
		// Ensure output ends with a newline for terminal friendliness.
		if len(outputBytes) > 0 && outputBytes[len(outputBytes)-1] != '\n' {
			fmt.Fprintln(a.stdout)
		}
	}

	if a.flags.metricsOut != "" {
		f, err := os.Create(a.flags.metricsOut)
		if err != nil {
			return codeError(exitGeneric, "creating metrics file: %s", err)
		}
		defer f.Close()
		if err := metrics.WriteText(f, a.registry); err != nil {
			return codeError(exitGeneric, "writing metrics: %s", err)
		}
	}
	return nil
}

// runMask prints the mask after every key. No network or config is involved.
func runMask(keys string, w io.Writer) error {
	m := phonemask.New()
	fmt.Fprintf(w, "   %s\n", m)
	for _, r := range keys {
		raw := m.Type(r)
		if r == '<' {
			raw = m.Backspace()
		}
		res := m.Apply(raw)
		m = res.Mask

		note := fmt.Sprintf("valid=%t", res.Valid)
		if res.Rejected {
			note = "rejected"
		}
		fmt.Fprintf(w, "%c  %s  %s\n", r, m, note)
	}
	return nil
}

// submitExit maps a submit outcome to the command's error.
func submitExit(res submit.Result, err error) error {
	switch {
	case errors.Is(err, form.ErrSubmitInProgress):
		return codeError(exitBlocked, "%s", err)
	case isBlocked(err):
		return codeError(exitBlocked, "submit blocked: %s", err)
	case err != nil:
		return codeError(exitGeneric, "%s", err)
	case res.Outcome() != submit.OutcomeSuccess:
		return codeError(exitSendError, "submission failed (%s): %s", res.Kind, res.Err)
	}
	return nil
}

func isBlocked(err error) bool {
	var be *form.BlockedError
	return errors.As(err, &be)
}

func typePhone(c *form.Controller, keys string) form.FieldState {
	st := c.Field(feedback.FieldPhone)
	for _, r := range keys {
		st = c.SetPhone(c.Phone().Type(r))
	}
	return st
}

func clearPhone(c *form.Controller) {
	for !c.Phone().Empty() {
		c.SetPhone(c.Phone().Backspace())
	}
}

func fieldLabel(f feedback.Field) string {
	switch f {
	case feedback.FieldPhone:
		return render.Label(f) + " (digits after +7)"
	case feedback.FieldBirthday:
		return render.Label(f) + " (YYYY-MM-DD)"
	}
	return render.Label(f)
}

// validateFlags returns an error if any flag value is invalid.
func validateFlags(flags globalFlags) error {
	switch flags.format {
	case "text", "json":
	default:
		return fmt.Errorf("--format must be text or json, got %q", flags.format)
	}
	return nil
}
