package model

import (
	"fmt"
	"time"
)

type StatusCode string

const (
	UNSET StatusCode = "unset"
	OK    StatusCode = "ok"
	ERROR StatusCode = "error"
)

// ErrorInfo is the structured exception recorded on a span once it ends in
// ERROR status.
type ErrorInfo struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Span is one unit of traced work. A span is only ever mutated by the task
// owning its trace; once ended it is immutable.
type Span struct {
	SpanID       string            `json:"span_id"`
	ParentSpanID string            `json:"parent_span_id,omitempty"`
	TraceID      string            `json:"trace_id"`
	Name         string            `json:"name"`
	ServiceName  string            `json:"service_name"`
	StartTime    time.Time         `json:"start_time"`
	EndTime      time.Time         `json:"end_time,omitempty"`
	Status       StatusCode        `json:"status"`
	ErrorInfo    *ErrorInfo        `json:"error_info,omitempty"`
	Attributes   map[string]string `json:"attributes"`

	ended bool
}

// Ended reports whether the span has reached a terminal state.
func (s *Span) Ended() bool {
	return s.ended
}

// IsRoot reports whether the span has no parent within its trace.
func (s *Span) IsRoot() bool {
	return s.ParentSpanID == ""
}

// SetAttribute records or overwrites an attribute. Attempts after the span
// has ended are silently dropped to keep ended spans immutable.
func (s *Span) SetAttribute(key string, value string) {
	if s.ended {
		return
	}
	if s.Attributes == nil {
		s.Attributes = make(map[string]string)
	}
	s.Attributes[key] = value
}

// EndWith marks the span's terminal state exactly once. A second call is a
// programming error, reported as an error return rather than a panic.
func (s *Span) EndWith(status StatusCode, errorInfo *ErrorInfo, at time.Time) error {
	if s.ended {
		return fmt.Errorf("span %s (%s) already ended", s.SpanID, s.Name)
	}
	s.Status = status
	s.ErrorInfo = errorInfo
	s.EndTime = at
	s.ended = true
	return nil
}

// Trace is the set of spans sharing one root, forming a tree via parent ids.
type Trace struct {
	TraceID string  `json:"trace_id"`
	Spans   []*Span `json:"spans"`
}

// Root returns the trace's root span.
func (t *Trace) Root() *Span {
	for _, span := range t.Spans {
		if span.IsRoot() {
			return span
		}
	}
	return nil
}

// SpanByID looks a span up within the trace.
func (t *Trace) SpanByID(spanID string) *Span {
	for _, span := range t.Spans {
		if span.SpanID == spanID {
			return span
		}
	}
	return nil
}

// Children returns the direct children of the given span.
func (t *Trace) Children(spanID string) []*Span {
	var children []*Span
	for _, span := range t.Spans {
		if span.ParentSpanID == spanID {
			children = append(children, span)
		}
	}
	return children
}

// OpenSpans returns every span that has not yet reached a terminal state.
func (t *Trace) OpenSpans() []*Span {
	var open []*Span
	for _, span := range t.Spans {
		if !span.Ended() {
			open = append(open, span)
		}
	}
	return open
}

// WellFormed reports whether every span has ended with a terminal status and
// every non-root parent edge points inside the trace.
func (t *Trace) WellFormed() bool {
	if t.Root() == nil {
		return false
	}
	for _, span := range t.Spans {
		if !span.Ended() || span.EndTime.IsZero() {
			return false
		}
		if span.Status != OK && span.Status != ERROR {
			return false
		}
		if !span.IsRoot() && t.SpanByID(span.ParentSpanID) == nil {
			return false
		}
	}
	return true
}
