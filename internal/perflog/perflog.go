// Package perflog persists one structured record per executed task.
package perflog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Record summarizes a single task execution for the performance log.
type Record struct {
	RunID    string                 `json:"run_id"`
	Test     string                 `json:"test"`
	Params   map[string]interface{} `json:"params"`
	Elapsed  float64                `json:"elapsed_seconds"`
	Passed   bool                   `json:"passed"`
	Status   string                 `json:"status"`
	Message  string                 `json:"message,omitempty"`
	ExitCode int                    `json:"exit_code"`
	Results  map[string]interface{} `json:"results,omitempty"`
	Time     time.Time              `json:"time"`
}

// Writer appends records as JSON lines to a per-run file. A nil Writer
// discards records, which keeps call sites free of output-dir checks.
type Writer struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewWriter creates dir if needed and opens perf-<runID>.jsonl inside it.
func NewWriter(dir, runID string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, "perf-"+runID+".jsonl")
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create perf log: %w", err)
	}
	return &Writer{file: file, enc: json.NewEncoder(file)}, nil
}

// Path returns the log file path.
func (w *Writer) Path() string {
	if w == nil {
		return ""
	}
	return w.file.Name()
}

// Write appends one record.
func (w *Writer) Write(rec Record) error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if rec.Time.IsZero() {
		rec.Time = time.Now().UTC()
	}
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to write perf record: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
