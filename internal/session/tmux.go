// Package session creates and inspects detached tmux sessions for
// long-running tools. The dispatcher only creates sessions; attach, detach
// and kill belong to the operator and external tooling.
package session

import (
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NamePrefix marks sessions created by the dispatcher.
const NamePrefix = "nucleo"

// Launcher starts detached tmux sessions.
type Launcher struct {
	// execCommand is swapped out in tests.
	execCommand func(name string, args ...string) *exec.Cmd
}

// NewLauncher returns a tmux-backed launcher.
func NewLauncher() *Launcher {
	return &Launcher{execCommand: exec.Command}
}

// NewName derives a collision-free session name from the current time and a
// short unique suffix.
func NewName() string {
	return fmt.Sprintf("%s-%s-%s",
		NamePrefix,
		time.Now().UTC().Format("20060102-150405"),
		uuid.NewString()[:8])
}

// Create launches the command inside a new detached session and returns the
// session name immediately. The session outlives the calling process; no
// timeout or output capture applies.
func (l *Launcher) Create(command string) (string, error) {
	if strings.TrimSpace(command) == "" {
		return "", fmt.Errorf("session command is empty")
	}

	name := NewName()
	cmd := l.execCommand("tmux", "new-session", "-d", "-s", name, command)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("tmux new-session: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return name, nil
}

// Info describes one live tmux session.
type Info struct {
	Name    string `json:"name"`
	Created string `json:"created"`
}

// List returns the dispatcher-created sessions currently alive. A missing
// tmux server (no sessions at all) is an empty list, not an error.
func (l *Launcher) List() ([]Info, error) {
	cmd := l.execCommand("tmux", "list-sessions", "-F", "#{session_name}\t#{session_created}")
	out, err := cmd.CombinedOutput()
	if err != nil {
		if strings.Contains(string(out), "no server running") ||
			strings.Contains(string(out), "error connecting") {
			return nil, nil
		}
		return nil, fmt.Errorf("tmux list-sessions: %w: %s", err, strings.TrimSpace(string(out)))
	}

	var sessions []Info
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 2)
		name := fields[0]
		if !strings.HasPrefix(name, NamePrefix+"-") {
			continue
		}
		info := Info{Name: name}
		if len(fields) == 2 {
			info.Created = fields[1]
		}
		sessions = append(sessions, info)
	}
	return sessions, nil
}

// Kill terminates a session by name. Convenience passthrough for operators;
// the dispatcher itself never calls this.
func (l *Launcher) Kill(name string) error {
	if !strings.HasPrefix(name, NamePrefix+"-") {
		return fmt.Errorf("refusing to kill non-dispatcher session %q", name)
	}
	cmd := l.execCommand("tmux", "kill-session", "-t", name)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("tmux kill-session: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
