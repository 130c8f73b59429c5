package llm_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"reservation-agent/internal/llm"
)

type fake struct {
	name string
	out  string
	err  error

	calls int
}

func (f *fake) Name() string { return f.name }

func (f *fake) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.out, f.err
}

func TestFailoverPrefersPrimary(t *testing.T) {
	primary := &fake{name: "openai", out: "from primary"}
	secondary := &fake{name: "gemini", out: "from secondary"}
	f := llm.NewFailover(primary, secondary, zap.NewNop())

	out, err := f.Complete(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "from primary" {
		t.Errorf("out = %q", out)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary called %d times", secondary.calls)
	}
}

func TestFailoverFallsBack(t *testing.T) {
	primary := &fake{name: "openai", err: errors.New("rate limited")}
	secondary := &fake{name: "gemini", out: "from secondary"}
	f := llm.NewFailover(primary, secondary, zap.NewNop())

	out, err := f.Complete(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "from secondary" {
		t.Errorf("out = %q", out)
	}

	// failover is per request, the primary is tried again
	if _, err := f.Complete(context.Background(), "hi"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if primary.calls != 2 {
		t.Errorf("primary called %d times, want 2", primary.calls)
	}
}

func TestFailoverWithoutSecondary(t *testing.T) {
	primary := &fake{name: "openai", err: errors.New("down")}
	f := llm.NewFailover(primary, nil, zap.NewNop())

	if _, err := f.Complete(context.Background(), "hi"); err == nil {
		t.Error("expected error when both unavailable")
	}
}
