// Package journal persists the append-only execution log.
//
// Records are JSON lines appended with a single write each; O_APPEND makes
// concurrent appenders safe without a file lock. Records are never rewritten
// or deleted.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Record is one completed synchronous execution.
type Record struct {
	Timestamp  time.Time `json:"timestamp"`
	DispatchID string    `json:"dispatch_id"`
	Command    string    `json:"command"`
	Class      string    `json:"class"`
	Outcome    string    `json:"outcome"`
	ExitCode   int       `json:"exit_code"`
	DurationMs int64     `json:"duration_ms"`
	// Output is only persisted for failed and timed-out executions.
	Output string `json:"output,omitempty"`
}

// Journal appends execution records to a JSONL file.
type Journal struct {
	path string
}

// Open prepares a journal at path, creating parent directories as needed.
// The file itself is created lazily on first append.
func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, fmt.Errorf("journal path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating journal dir: %w", err)
	}
	return &Journal{path: path}, nil
}

// Path returns the journal file path.
func (j *Journal) Path() string { return j.path }

// Append writes one record as a single JSON line. The open-write-close
// per record keeps each append a single O_APPEND write, which the kernel
// serializes across concurrent writers.
func (j *Journal) Append(rec Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	line = append(line, '\n')

	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("appending record: %w", err)
	}
	return nil
}

// ReadAll returns every record in append order. Lines that fail to decode
// are skipped rather than aborting the read; a torn final line from a
// crashed writer must not poison the history.
func (j *Journal) ReadAll() ([]Record, error) {
	f, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("reading journal: %w", err)
	}
	return records, nil
}

// Len returns the current number of decodable records.
func (j *Journal) Len() (int, error) {
	records, err := j.ReadAll()
	if err != nil {
		return 0, err
	}
	return len(records), nil
}
