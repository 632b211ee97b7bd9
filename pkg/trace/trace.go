// Package trace implements the append-only JSONL audit trail of a check run.
//
// Every event carries the SHA-256 of the previous line in prev_hash, so a
// trace file can be checked for truncation or tampering with Verify.
package trace

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ormasoftchile/mapcheck/pkg/issue"
)

// EventType enumerates all trace event types.
type EventType string

const (
	EventRunStart      EventType = "run_start"
	EventRunComplete   EventType = "run_complete"
	EventCheckStart    EventType = "check_start"
	EventCheckComplete EventType = "check_complete"
	EventCheckPanic    EventType = "check_panic"
	EventIssue         EventType = "issue"
)

// genesisHash is the prev_hash of the first event of a trace.
var genesisHash = strings.Repeat("0", 64)

// Event is a single trace event written to the JSONL stream.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	RunID     string         `json:"run_id"`
	PrevHash  string         `json:"prev_hash"`
	Data      map[string]any `json:"data,omitempty"`
}

// Writer writes trace events to an append-only JSONL stream. It is safe for
// concurrent use.
type Writer struct {
	mu       sync.Mutex
	w        io.Writer
	closer   io.Closer
	runID    string
	prevHash string
	count    int
	now      func() time.Time
}

// NewWriter creates a trace writer that writes to the given io.Writer.
func NewWriter(w io.Writer, runID string) *Writer {
	return &Writer{
		w:        w,
		runID:    runID,
		prevHash: genesisHash,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// NewFileWriter creates a trace writer that truncates and writes a JSONL
// file. Close the writer to close the file.
func NewFileWriter(path, runID string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	tw := NewWriter(f, runID)
	tw.closer = f
	return tw, nil
}

// Close closes the underlying file, if the writer owns one.
func (tw *Writer) Close() error {
	if tw.closer == nil {
		return nil
	}
	return tw.closer.Close()
}

// ChainHash returns the hash of the last written event.
func (tw *Writer) ChainHash() string {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.prevHash
}

// Count returns the number of events written so far.
func (tw *Writer) Count() int {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.count
}

// Emit writes a single trace event.
func (tw *Writer) Emit(eventType EventType, data map[string]any) error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if eventType == EventRunComplete && data != nil {
		data["chain_hash"] = tw.prevHash
	}
	evt := Event{
		Type:      eventType,
		Timestamp: tw.now(),
		RunID:     tw.runID,
		PrevHash:  tw.prevHash,
		Data:      data,
	}
	line, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}
	sum := sha256.Sum256(line)
	if _, err := tw.w.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write %s event: %w", eventType, err)
	}
	tw.prevHash = hex.EncodeToString(sum[:])
	tw.count++
	return nil
}

// EmitRunStart emits a run_start event.
func (tw *Writer) EmitRunStart(source string, beatmaps, checks int) error {
	return tw.Emit(EventRunStart, map[string]any{
		"source":   source,
		"beatmaps": beatmaps,
		"checks":   checks,
	})
}

// EmitCheckStart emits a check_start event. beatmap is empty for set checks.
func (tw *Writer) EmitCheckStart(checkID, beatmap string) error {
	data := map[string]any{"check": checkID}
	if beatmap != "" {
		data["beatmap"] = beatmap
	}
	return tw.Emit(EventCheckStart, data)
}

// EmitIssue emits an issue event.
func (tw *Writer) EmitIssue(i issue.Issue) error {
	data := map[string]any{
		"check":    i.Check,
		"template": i.Template,
		"severity": i.Severity.String(),
		"message":  i.Message(),
	}
	if i.Beatmap != "" {
		data["beatmap"] = i.Beatmap
	}
	if i.Timestamp != nil {
		data["timestamp_ms"] = i.Timestamp.Millis()
	}
	return tw.Emit(EventIssue, data)
}

// EmitCheckPanic emits a check_panic event for a recovered check failure.
func (tw *Writer) EmitCheckPanic(checkID, beatmap, detail string) error {
	data := map[string]any{
		"check":  checkID,
		"detail": detail,
	}
	if beatmap != "" {
		data["beatmap"] = beatmap
	}
	return tw.Emit(EventCheckPanic, data)
}

// EmitCheckComplete emits a check_complete event.
func (tw *Writer) EmitCheckComplete(checkID, beatmap string, issues int, duration time.Duration) error {
	data := map[string]any{
		"check":    checkID,
		"issues":   issues,
		"duration": duration.String(),
	}
	if beatmap != "" {
		data["beatmap"] = beatmap
	}
	return tw.Emit(EventCheckComplete, data)
}

// EmitRunComplete emits a run_complete event carrying per-severity counts
// and the chain hash of everything written before it.
func (tw *Writer) EmitRunComplete(counts map[issue.Severity]int, duration time.Duration) error {
	bySeverity := make(map[string]any, len(counts))
	for sev, n := range counts {
		bySeverity[sev.String()] = n
	}
	return tw.Emit(EventRunComplete, map[string]any{
		"counts":   bySeverity,
		"duration": duration.String(),
	})
}
