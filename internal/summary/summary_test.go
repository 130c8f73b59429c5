package summary_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"reservation-agent/internal/booking"
	"reservation-agent/internal/slots"
	"reservation-agent/internal/store"
	"reservation-agent/internal/summary"
	"reservation-agent/internal/tools"
)

type fakeLLM struct {
	out    string
	err    error
	prompt string
}

func (f *fakeLLM) Name() string { return "fake" }

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.out, f.err
}

func setup(t *testing.T, client *fakeLLM) (*summary.Service, *store.Memory, *booking.Service) {
	t.Helper()
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	mem := store.NewMemory()
	mem.SetClock(func() time.Time { return now })
	cal := &slots.Calendar{Now: func() time.Time { return now }}
	svc := booking.New(mem, cal, nil, zap.NewNop())
	if client == nil {
		return summary.New(nil, svc, zap.NewNop()), mem, svc
	}
	return summary.New(client, svc, zap.NewNop()), mem, svc
}

func TestFinalizeSkipsEmptyCall(t *testing.T) {
	s, mem, _ := setup(t, nil)

	sum, err := s.Finalize(context.Background(), tools.NewSession())
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if sum != nil {
		t.Errorf("got summary %+v for an empty call", sum)
	}
	if all, _ := mem.ListSummaries(context.Background()); len(all) != 0 {
		t.Errorf("stored %d summaries, want 0", len(all))
	}
}

func TestFinalizePrefersClosingNote(t *testing.T) {
	client := &fakeLLM{out: "generated"}
	s, _, _ := setup(t, client)

	sess := tools.NewSession()
	sess.AddLine("user", "I'd like a table for two.")
	sess.ClosingNote = "Asha booked dinner for two."

	sum, err := s.Finalize(context.Background(), sess)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if sum.Content != "Asha booked dinner for two." {
		t.Errorf("content = %q", sum.Content)
	}
	if client.prompt != "" {
		t.Error("LLM consulted despite closing note")
	}
	if !strings.HasPrefix(sum.ID, "summary_") {
		t.Errorf("id = %q", sum.ID)
	}
}

func TestFinalizeGeneratesFromTranscript(t *testing.T) {
	client := &fakeLLM{out: "generated summary"}
	s, _, svc := setup(t, client)

	u, err := svc.Identify(context.Background(), "9876543210", "Asha")
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	start := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	apt, err := svc.Book(context.Background(), u.ID, start, 2, "")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	sess := tools.NewSession()
	sess.User = u
	sess.Bookings = append(sess.Bookings, *apt)
	sess.AddLine("user", "table for two tonight please")
	sess.AddLine("assistant", "booked for 7 PM")

	sum, err := s.Finalize(context.Background(), sess)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if sum.Content != "generated summary" {
		t.Errorf("content = %q", sum.Content)
	}
	if !strings.Contains(client.prompt, "Asha") || !strings.Contains(client.prompt, "table for two tonight") {
		t.Errorf("prompt missing call context: %q", client.prompt)
	}
	if len(sum.Bookings) != 1 {
		t.Errorf("snapshot has %d bookings, want 1", len(sum.Bookings))
	}
	if sum.UserID == nil || *sum.UserID != u.ID {
		t.Errorf("user id = %v", sum.UserID)
	}
}

func TestFinalizeSurvivesLLMFailure(t *testing.T) {
	client := &fakeLLM{err: errors.New("both providers down")}
	s, mem, _ := setup(t, client)

	sess := tools.NewSession()
	sess.AddLine("user", "hello?")

	sum, err := s.Finalize(context.Background(), sess)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if sum.Content != "Call ended without bookings." {
		t.Errorf("content = %q", sum.Content)
	}
	if all, _ := mem.ListSummaries(context.Background()); len(all) != 1 {
		t.Errorf("stored %d summaries, want 1", len(all))
	}
}
