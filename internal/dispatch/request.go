// Package dispatch implements the command dispatcher: classify, confirm,
// route, execute, log.
package dispatch

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/razonbilstro/nucleo/internal/policy"
)

// Mode selects how a dispatch is gated and routed.
type Mode string

const (
	// ModeNormal confirms dangerous and unknown commands interactively.
	ModeNormal Mode = "normal"
	// ModeForce bypasses confirmation for every classification.
	ModeForce Mode = "force"
	// ModeBackground routes the command to a detached session.
	ModeBackground Mode = "background"
)

// Outcome is the discriminated result of a dispatch. Callers branch on this,
// never on message text.
type Outcome string

const (
	// OutcomeSuccess means the command ran synchronously and exited zero.
	OutcomeSuccess Outcome = "success"
	// OutcomeFailed means a non-zero, non-timeout exit.
	OutcomeFailed Outcome = "failed"
	// OutcomeTimedOut means the synchronous timeout elapsed (exit 124).
	OutcomeTimedOut Outcome = "timed_out"
	// OutcomeCancelled means the operator declined confirmation.
	OutcomeCancelled Outcome = "cancelled"
	// OutcomeSessioned means the command was handed to a detached session.
	OutcomeSessioned Outcome = "sessioned"
)

// Dispatch errors.
var (
	// ErrInvalidCommand is returned for empty or whitespace-only input,
	// before classification is attempted.
	ErrInvalidCommand = errors.New("invalid command: empty or whitespace-only")
	// ErrInvalidMode is returned for an unrecognized execution mode.
	ErrInvalidMode = errors.New("invalid execution mode")
)

// TimeoutExitCode is the sentinel exit code for a timed-out command,
// matching timeout(1).
const TimeoutExitCode = 124

// Request is one dispatch attempt. It is classified exactly once, before
// any confirmation or execution step, and is immutable afterwards.
type Request struct {
	// ID uniquely identifies the dispatch attempt.
	ID string
	// Command is the raw command line.
	Command string
	// Mode is the requested execution mode.
	Mode Mode
	// Class is the derived policy classification.
	Class policy.Classification
	// CreatedAt is when the request was received.
	CreatedAt time.Time
}

// NewRequest validates the command string, classifies it against the store,
// and returns the immutable request. ErrInvalidCommand is returned before
// classification for empty input.
func NewRequest(store *policy.Store, command string, mode Mode) (*Request, error) {
	switch mode {
	case ModeNormal, ModeForce, ModeBackground:
	default:
		return nil, ErrInvalidMode
	}

	class, err := store.Classify(command)
	if err != nil {
		if errors.Is(err, policy.ErrEmptyCommand) {
			return nil, ErrInvalidCommand
		}
		return nil, err
	}

	return &Request{
		ID:        uuid.NewString(),
		Command:   command,
		Mode:      mode,
		Class:     class,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Result is what a completed dispatch returns to the caller.
type Result struct {
	// Outcome discriminates the five terminal states.
	Outcome Outcome
	// ExitCode is the command's exit code (synchronous outcomes only).
	ExitCode int
	// Output is the combined stdout/stderr capture (synchronous outcomes).
	Output string
	// Duration is the wall-clock execution time (synchronous outcomes).
	Duration time.Duration
	// SessionName identifies the detached session (OutcomeSessioned only).
	SessionName string
	// Class echoes the request's classification for caller display.
	Class policy.Classification
}
