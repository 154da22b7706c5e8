package fetch

import (
	"context"
	"time"
)

// Pacer bounds the request rate against the target host. Wait is called
// once before every request and blocks until the next slot is available.
type Pacer interface {
	Wait(ctx context.Context) error
}

// NoopPacer never waits.
type NoopPacer struct{}

func (NoopPacer) Wait(ctx context.Context) error { return ctx.Err() }

// DelayPacer sleeps a fixed delay before every request.
type DelayPacer struct {
	Delay time.Duration
}

// NewPacer returns a DelayPacer, or a NoopPacer when delay is not positive.
func NewPacer(delay time.Duration) Pacer {
	if delay <= 0 {
		return NoopPacer{}
	}
	return &DelayPacer{Delay: delay}
}

func (p *DelayPacer) Wait(ctx context.Context) error {
	t := time.NewTimer(p.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
