package entity

import (
	"browser-automator/pkg/apperr"
	"fmt"
	"time"
)

type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
	OutcomeWarning Outcome = "warning"
	OutcomeNotice  Outcome = "notice"
	OutcomeError   Outcome = "error"
)

// LogEntry is one line of the execution log. A failed action is an entry with Outcome
// OutcomeFailed and Err set; it never aborts the plan.
type LogEntry struct {
	Step    string
	Outcome Outcome
	Message string
	Err     error
}

func (e LogEntry) String() string {
	return e.Message
}

func Succeeded(step, format string, args ...any) LogEntry {
	return LogEntry{Step: step, Outcome: OutcomeOK, Message: fmt.Sprintf(format, args...)}
}

func Failed(step string, err error) LogEntry {
	return LogEntry{
		Step:    step,
		Outcome: OutcomeFailed,
		Message: fmt.Sprintf("❌ Failed %s: %s", step, apperr.Cause(err).Error()),
		Err:     err,
	}
}

func SystemError(err error) LogEntry {
	return LogEntry{
		Step:    "system",
		Outcome: OutcomeError,
		Message: fmt.Sprintf("❌ System Error: %s", apperr.Cause(err).Error()),
		Err:     err,
	}
}

// ExecutionLog is append-only and keeps wall-clock order.
type ExecutionLog struct {
	entries []LogEntry
}

func (l *ExecutionLog) Append(entry LogEntry) {
	l.entries = append(l.entries, entry)
}

func (l *ExecutionLog) Entries() []LogEntry {
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)

	return out
}

func (l *ExecutionLog) Len() int {
	return len(l.entries)
}

func (l *ExecutionLog) Lines() []string {
	lines := make([]string, len(l.entries))
	for i, e := range l.entries {
		lines[i] = e.String()
	}

	return lines
}

// ScrapedData maps a scrape label to the extracted values. Reusing a label overwrites it.
type ScrapedData map[string][]string

type EvasionProfile struct {
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
}

type AutomateRequest struct {
	Prompt      string `json:"prompt"`
	ForceGoogle bool   `json:"forceGoogle"`
}

type ResultEnvelope struct {
	Success       bool        `json:"success"`
	RequestID     string      `json:"requestId,omitempty"`
	Results       []string    `json:"results"`
	ScrapedData   ScrapedData `json:"scrapedData"`
	Summary       string      `json:"summary"`
	ExecutionTime int64       `json:"executionTime"`
	Error         string      `json:"error,omitempty"`

	// Code is the error code of a failed request, used to pick the response status.
	Code string `json:"-"`
}

func (e *ResultEnvelope) Elapsed() time.Duration {
	return time.Duration(e.ExecutionTime) * time.Millisecond
}

type AIMessage struct {
	Role    string
	Content string
}

type CompletionRequest struct {
	Model    string
	Messages []AIMessage
	// JSONOutput constrains the completion to a JSON object.
	JSONOutput bool
}
