package llm

import (
	"context"

	"go.uber.org/zap"
)

// Failover tries the primary client and falls back to the secondary on
// any error. Failover is per request; the primary is retried on the next
// call.
type Failover struct {
	primary   Client
	secondary Client
	log       *zap.Logger
}

func NewFailover(primary, secondary Client, log *zap.Logger) *Failover {
	return &Failover{primary: primary, secondary: secondary, log: log}
}

func (f *Failover) Name() string { return f.primary.Name() }

func (f *Failover) Complete(ctx context.Context, prompt string) (string, error) {
	out, err := f.primary.Complete(ctx, prompt)
	if err == nil {
		return out, nil
	}
	if f.secondary == nil {
		return "", err
	}
	f.log.Warn("primary llm failed, falling back",
		zap.String("primary", f.primary.Name()),
		zap.String("secondary", f.secondary.Name()),
		zap.Error(err))
	return f.secondary.Complete(ctx, prompt)
}
