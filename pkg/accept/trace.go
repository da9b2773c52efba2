package accept

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// TraceEvent wraps a check outcome for JSONL trace output with extra metadata.
type TraceEvent struct {
	Type      string    `json:"type"` // check_outcome
	Timestamp time.Time `json:"timestamp"`
	Result    string    `json:"result"`
	Outcome   *Outcome  `json:"outcome"`
}

// TraceWriter writes check outcomes to a JSONL trace file.
type TraceWriter struct {
	file   *os.File
	writer *bufio.Writer
	enc    *json.Encoder
}

// NewTraceWriter creates a trace writer that appends to the given file.
func NewTraceWriter(path string) (*TraceWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	w := bufio.NewWriter(f)
	return &TraceWriter{
		file:   f,
		writer: w,
		enc:    json.NewEncoder(w),
	}, nil
}

// Write appends an outcome as a JSONL event and flushes to disk.
func (tw *TraceWriter) Write(resultName string, outcome *Outcome) error {
	event := TraceEvent{
		Type:      "check_outcome",
		Timestamp: time.Now(),
		Result:    resultName,
		Outcome:   outcome,
	}
	if err := tw.enc.Encode(event); err != nil {
		return fmt.Errorf("encode trace event: %w", err)
	}
	// Flush and sync at check boundaries
	if err := tw.writer.Flush(); err != nil {
		return fmt.Errorf("flush trace: %w", err)
	}
	if err := tw.file.Sync(); err != nil {
		return fmt.Errorf("sync trace: %w", err)
	}
	return nil
}

// Close flushes and closes the trace file.
func (tw *TraceWriter) Close() error {
	if err := tw.writer.Flush(); err != nil {
		return err
	}
	return tw.file.Close()
}
