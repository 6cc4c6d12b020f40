package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StepLogs is the wire shape of a step log response from the CI API: either
// one multi-line blob ("Logs") or a list of log fragments emitted by multiple
// sources ("ManyLogs"). Exactly one of the two fields is set.
type StepLogs struct {
	Logs     *string  `json:"Logs,omitempty"`
	ManyLogs []string `json:"ManyLogs,omitempty"`
}

// LogLines is the canonical, flattened form of a step's log output. The two
// wire shapes are resolved into LogLines once at the gateway boundary so
// nothing downstream branches on shape again. Lines are numbered from 1.
type LogLines struct {
	Lines []string `json:"lines"`
}

// ParseStepLogs decodes a raw log response body and flattens it. It returns
// ErrMalformedResponse when the body carries neither shape.
func ParseStepLogs(body []byte) (LogLines, error) {
	var raw StepLogs
	if err := json.Unmarshal(body, &raw); err != nil {
		return LogLines{}, fmt.Errorf("decoding log response: %w", ErrMalformedResponse)
	}
	return raw.Flatten()
}

// Flatten resolves the tagged union into LogLines. Fragments are joined with
// no separator: only newlines embedded in the fragments themselves split
// lines, so a fragment boundary mid-line does not break the line.
func (l StepLogs) Flatten() (LogLines, error) {
	var text string
	switch {
	case l.Logs != nil:
		text = *l.Logs
	case l.ManyLogs != nil:
		text = strings.Join(l.ManyLogs, "")
	default:
		return LogLines{}, fmt.Errorf("log response has neither Logs nor ManyLogs: %w", ErrMalformedResponse)
	}
	return LogLines{Lines: strings.Split(text, "\n")}, nil
}

// NumberOf returns the 1-based line number of index i.
func (l LogLines) NumberOf(i int) int {
	return i + 1
}

// Len returns the number of lines.
func (l LogLines) Len() int {
	return len(l.Lines)
}
