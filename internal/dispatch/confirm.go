package dispatch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/razonbilstro/nucleo/internal/policy"
)

// ConfirmPolicy names the default answer applied to an empty confirmation
// response. The two entry paths deliberately disagree: the brain-suggested
// flow defaults to yes, the raw dangerous-command flow defaults to no.
// They are kept as two distinct policies rather than unified.
type ConfirmPolicy int

const (
	// ConfirmStrict defaults to no on an empty answer (raw command flow).
	ConfirmStrict ConfirmPolicy = iota
	// ConfirmAssistant defaults to yes on an empty answer (suggest flow).
	ConfirmAssistant
)

// Prompt returns the y/n prompt suffix for the policy.
func (p ConfirmPolicy) Prompt() string {
	if p == ConfirmAssistant {
		return "[Y/n]"
	}
	return "[y/N]"
}

// Confirmer blocks for a yes/no answer. Implementations must only block in
// interactive contexts; automated callers get a non-blocking decline.
type Confirmer interface {
	Confirm(prompt string, pol ConfirmPolicy) (bool, error)
}

// NeedsConfirmation is the pure gate decision: given a classification and a
// mode, does this dispatch require an interactive yes before execution?
//
// Rules:
//   - Safe never confirms, regardless of mode.
//   - Force never confirms, regardless of classification.
//   - Background never confirms: a background dispatch always returns a
//     session handle without blocking.
//   - Dangerous and Unknown confirm in Normal mode.
func NeedsConfirmation(class policy.Classification, mode Mode) bool {
	if mode != ModeNormal {
		return false
	}
	return class != policy.ClassSafe
}

// ParseAnswer interprets a confirmation response under the given policy.
// Empty input resolves to the policy default; anything starting with y/Y is
// yes, everything else is no.
func ParseAnswer(answer string, pol ConfirmPolicy) bool {
	answer = strings.TrimSpace(strings.ToLower(answer))
	if answer == "" {
		return pol == ConfirmAssistant
	}
	return answer == "y" || answer == "yes"
}

// TerminalConfirmer prompts on a terminal and reads one line from input.
// When the input is not a TTY the dispatch must never block, so Confirm
// declines immediately without writing a prompt.
type TerminalConfirmer struct {
	In  io.Reader
	Out io.Writer
	// IsTerminal overrides TTY detection in tests.
	IsTerminal func() bool
}

// NewTerminalConfirmer returns a confirmer bound to stdin/stderr.
func NewTerminalConfirmer() *TerminalConfirmer {
	return &TerminalConfirmer{
		In:  os.Stdin,
		Out: os.Stderr,
		IsTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// Confirm writes the prompt and blocks for one line. Non-interactive input
// declines without prompting.
func (c *TerminalConfirmer) Confirm(prompt string, pol ConfirmPolicy) (bool, error) {
	if c.IsTerminal != nil && !c.IsTerminal() {
		return false, nil
	}

	fmt.Fprintf(c.Out, "%s %s ", prompt, pol.Prompt())
	reader := bufio.NewReader(c.In)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		// EOF before any input counts as a decline, not an error.
		return false, nil
	}
	return ParseAnswer(line, pol), nil
}
