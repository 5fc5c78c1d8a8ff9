package dispatch

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/razonbilstro/nucleo/internal/journal"
	"github.com/razonbilstro/nucleo/internal/policy"
)

// SessionLauncher creates a detached session hosting a long-running command
// and returns its name. The dispatcher does not own the session afterwards.
type SessionLauncher interface {
	Create(command string) (string, error)
}

// Recorder appends one execution record. Append failures are the recorder's
// concern to describe, the dispatcher's to downgrade.
type Recorder interface {
	Append(rec journal.Record) error
}

// Config holds dispatcher behavior knobs.
type Config struct {
	// TimeoutSecs bounds synchronous execution wall-clock time.
	TimeoutSecs int
	// Shell routes commands through `bash -c`; the dispatcher's whole
	// purpose is operator shell lines, so this defaults on.
	Shell bool
}

// DefaultConfig returns the reference dispatcher configuration.
func DefaultConfig() Config {
	return Config{
		TimeoutSecs: 300,
		Shell:       true,
	}
}

// Dispatcher wires the classifier, confirmation gate, executor, session
// launcher and journal into the classify-confirm-route-execute-log flow.
// All collaborators are injected so tests can substitute fakes.
type Dispatcher struct {
	store     *policy.Store
	confirmer Confirmer
	launcher  SessionLauncher
	recorder  Recorder
	config    Config
	logger    *log.Logger

	// runFn is the execution primitive; replaced in tests.
	runFn func(ctx context.Context, spec *CommandSpec, logPath string, stream io.Writer) (*ExecResult, error)
}

// New creates a dispatcher. A nil confirmer falls back to the terminal
// confirmer; a nil logger discards.
func New(store *policy.Store, confirmer Confirmer, launcher SessionLauncher, recorder Recorder, cfg Config, logger *log.Logger) *Dispatcher {
	if confirmer == nil {
		confirmer = NewTerminalConfirmer()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.TimeoutSecs <= 0 {
		cfg.TimeoutSecs = DefaultConfig().TimeoutSecs
	}
	return &Dispatcher{
		store:     store,
		confirmer: confirmer,
		launcher:  launcher,
		recorder:  recorder,
		config:    cfg,
		logger:    logger,
		runFn:     RunCommand,
	}
}

// Options holds the per-dispatch parameters.
type Options struct {
	// Command is the raw command line (required, non-empty).
	Command string
	// Mode is the execution mode; defaults to ModeNormal when empty.
	Mode Mode
	// Confirm selects the empty-answer default for the confirmation gate.
	Confirm ConfirmPolicy
	// Stream receives live output during synchronous execution (optional).
	Stream io.Writer
	// LogPath mirrors the raw capture to a file (optional).
	LogPath string
}

// Dispatch runs one command through the full flow:
//
//	Received -> Classified -> {Confirmed | AutoApproved} -> Routed
//	         -> {Executed | Sessioned} -> Logged (Executed only) -> Done
//	         -> Declined -> Cancelled (terminal, no record)
//
// Every synchronous execution appends exactly one record; cancelled and
// sessioned dispatches append none.
func (d *Dispatcher) Dispatch(ctx context.Context, opts Options) (*Result, error) {
	mode := opts.Mode
	if mode == "" {
		mode = ModeNormal
	}

	// Step 1: Validate and classify (exactly once).
	req, err := NewRequest(d.store, opts.Command, mode)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("classified", "id", req.ID, "class", req.Class, "mode", req.Mode)

	// Step 2: Confirmation gate.
	if NeedsConfirmation(req.Class, req.Mode) {
		prompt := fmt.Sprintf("Execute %s command %q?", req.Class, req.Command)
		ok, err := d.confirmer.Confirm(prompt, opts.Confirm)
		if err != nil {
			return nil, fmt.Errorf("confirmation: %w", err)
		}
		if !ok {
			d.logger.Info("dispatch declined", "id", req.ID, "command", req.Command)
			return &Result{Outcome: OutcomeCancelled, Class: req.Class}, nil
		}
	}

	// Step 3: Route. Long-running tools and explicit background mode go to
	// a detached session with no timeout, no capture, no record.
	if req.Mode == ModeBackground || d.store.IsBackgroundable(req.Command) {
		if d.launcher == nil {
			return nil, fmt.Errorf("no session launcher configured")
		}
		name, err := d.launcher.Create(req.Command)
		if err != nil {
			return nil, fmt.Errorf("creating session: %w", err)
		}
		d.logger.Info("sessioned", "id", req.ID, "session", name)
		return &Result{Outcome: OutcomeSessioned, SessionName: name, Class: req.Class}, nil
	}

	// Step 4: Synchronous execution under the bounded timeout.
	timeout := time.Duration(d.config.TimeoutSecs) * time.Second
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	spec := &CommandSpec{Raw: req.Command, Shell: d.config.Shell}
	exec, err := d.runFn(runCtx, spec, opts.LogPath, opts.Stream)
	if err != nil {
		return nil, err
	}

	result := &Result{
		ExitCode: exec.ExitCode,
		Output:   exec.Output,
		Duration: exec.Duration,
		Class:    req.Class,
	}
	switch {
	case exec.TimedOut:
		result.Outcome = OutcomeTimedOut
	case exec.ExitCode == 0:
		result.Outcome = OutcomeSuccess
	default:
		result.Outcome = OutcomeFailed
	}

	// Step 5: Append the record. Best-effort relative to the execution,
	// which already happened: a write failure is a warning, not a dispatch
	// failure.
	d.appendRecord(req, result)

	return result, nil
}

func (d *Dispatcher) appendRecord(req *Request, res *Result) {
	if d.recorder == nil {
		return
	}
	rec := journal.Record{
		Timestamp:  time.Now().UTC(),
		DispatchID: req.ID,
		Command:    req.Command,
		Class:      string(req.Class),
		Outcome:    string(res.Outcome),
		ExitCode:   res.ExitCode,
		DurationMs: res.Duration.Milliseconds(),
	}
	// Failure output must be persisted; success output stays out of the
	// journal to keep records small.
	if res.Outcome != OutcomeSuccess {
		rec.Output = res.Output
	}
	if err := d.recorder.Append(rec); err != nil {
		d.logger.Warn("journal append failed", "id", req.ID, "err", err)
	}
}
