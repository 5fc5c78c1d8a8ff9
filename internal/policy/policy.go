// Package policy implements command classification for the dispatcher.
//
// A command line is classified by its leading token (the program name)
// against two immutable name sets: safe and dangerous. Anything found in
// neither set is Unknown. Matching is an exact lookup on the parsed first
// token, never a substring or regex scan of the whole line, so arguments
// and paths that happen to contain a tool name cannot change the verdict.
package policy

import (
	"errors"
	"path/filepath"
	"strings"

	shellwords "github.com/mattn/go-shellwords"
)

// Classification is the trust verdict for a command's leading token.
type Classification string

const (
	// ClassSafe marks commands that execute without confirmation.
	ClassSafe Classification = "safe"
	// ClassDangerous marks commands that require confirmation in normal mode.
	ClassDangerous Classification = "dangerous"
	// ClassUnknown marks commands absent from both policy lists.
	ClassUnknown Classification = "unknown"
)

// ErrEmptyCommand is returned when a command string is empty or whitespace.
var ErrEmptyCommand = errors.New("command is empty")

// Store is a read-only snapshot of the policy lists. It is built once and
// never mutated by the dispatcher; concurrent readers need no locking.
type Store struct {
	safe           map[string]struct{}
	dangerous      map[string]struct{}
	backgroundable map[string]struct{}
}

// NewStore builds a policy snapshot from the three name lists. Names are
// lowercased; duplicates collapse silently. A name present in both lists is
// treated as safe, since the safe set is consulted first during lookup.
func NewStore(safe, dangerous, backgroundable []string) *Store {
	s := &Store{
		safe:           make(map[string]struct{}, len(safe)),
		dangerous:      make(map[string]struct{}, len(dangerous)),
		backgroundable: make(map[string]struct{}, len(backgroundable)),
	}
	for _, name := range safe {
		s.safe[normalizeName(name)] = struct{}{}
	}
	for _, name := range dangerous {
		s.dangerous[normalizeName(name)] = struct{}{}
	}
	for _, name := range backgroundable {
		s.backgroundable[normalizeName(name)] = struct{}{}
	}
	return s
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// LeadingToken extracts the program name from a command line: the first
// whitespace-delimited token, with any directory prefix stripped so that
// /usr/bin/nmap and nmap classify identically. Returns ErrEmptyCommand for
// empty or whitespace-only input.
func LeadingToken(command string) (string, error) {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return "", ErrEmptyCommand
	}

	parser := shellwords.NewParser()
	parser.ParseEnv = false
	parser.ParseBacktick = false
	argv, err := parser.Parse(trimmed)
	if err != nil || len(argv) == 0 {
		// Unbalanced quotes and similar parse failures still have a
		// recognizable first token; fall back to a whitespace split.
		fields := strings.Fields(trimmed)
		if len(fields) == 0 {
			return "", ErrEmptyCommand
		}
		return filepath.Base(fields[0]), nil
	}
	return filepath.Base(argv[0]), nil
}

// Classify maps a command line to its Classification. The safe list is
// consulted before the dangerous list; a token in neither is Unknown.
// Pure over the store snapshot: same input, same result.
func (s *Store) Classify(command string) (Classification, error) {
	token, err := LeadingToken(command)
	if err != nil {
		return "", err
	}
	key := strings.ToLower(token)
	if _, ok := s.safe[key]; ok {
		return ClassSafe, nil
	}
	if _, ok := s.dangerous[key]; ok {
		return ClassDangerous, nil
	}
	return ClassUnknown, nil
}

// IsBackgroundable reports whether the command's leading token is in the
// configured long-running-tool set and should be routed to a detached
// session rather than run synchronously.
func (s *Store) IsBackgroundable(command string) bool {
	token, err := LeadingToken(command)
	if err != nil {
		return false
	}
	_, ok := s.backgroundable[strings.ToLower(token)]
	return ok
}

// SafeCount returns the number of names in the safe set.
func (s *Store) SafeCount() int { return len(s.safe) }

// DangerousCount returns the number of names in the dangerous set.
func (s *Store) DangerousCount() int { return len(s.dangerous) }

// BackgroundableCount returns the number of names in the long-running set.
func (s *Store) BackgroundableCount() int { return len(s.backgroundable) }
