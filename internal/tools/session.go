package tools

import (
	"sync"

	"reservation-agent/internal/model"
)

// Line is one transcript entry of a call.
type Line struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Session is the per-call context threaded through every tool call. Each
// voice session owns exactly one; there is no process-wide current user.
// The voice framework runs one tool call at a time per session, so the
// fields need no locking — only the end signal is touched from outside
// the turn loop.
type Session struct {
	User       *model.User
	Bookings   []model.Appointment // bookings made during this call
	Transcript []Line
	// ClosingNote holds a summary the model supplied via end_conversation;
	// when empty, the summarizer generates one from the transcript.
	ClosingNote string

	endOnce sync.Once
	done    chan struct{}
}

func NewSession() *Session {
	return &Session{done: make(chan struct{})}
}

// UserID returns the identified user's id, or "" before identification.
func (s *Session) UserID() string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}

// UserName returns the caller's display name, or "Guest".
func (s *Session) UserName() string {
	if s.User == nil || s.User.Name == "" || s.User.Name == "Unknown" {
		return "Guest"
	}
	return s.User.Name
}

// AddLine appends a transcript entry.
func (s *Session) AddLine(role, text string) {
	if text == "" {
		return
	}
	s.Transcript = append(s.Transcript, Line{Role: role, Text: text})
}

// End marks the call finished. Safe to call more than once.
func (s *Session) End() {
	s.endOnce.Do(func() { close(s.done) })
}

// Done is closed when end_conversation was called or the call dropped.
func (s *Session) Done() <-chan struct{} { return s.done }
