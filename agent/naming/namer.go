package naming

import (
	"context"
	"errors"
	"fmt"
	"time"

	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
	logx "github.com/tanpawarit/smart-dfd-agent/pkg/logger"
)

// Namer mints run identities from a persisted counter and the current date.
// The counter never resets; only the date prefix changes.
type Namer struct {
	store contractx.CounterStore
	now   func() time.Time
}

type Option func(*Namer)

// WithClock overrides the wall clock used for the date stamp.
func WithClock(now func() time.Time) Option {
	return func(n *Namer) {
		if now != nil {
			n.now = now
		}
	}
}

func New(store contractx.CounterStore, opts ...Option) (*Namer, error) {
	if store == nil {
		return nil, errors.New("counter store is required")
	}
	n := &Namer{store: store, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n, nil
}

// Next advances the counter and returns the identity for a new run.
func (n *Namer) Next(ctx context.Context) (contractx.RunIdentity, error) {
	seq, err := n.nextSequence(ctx)
	if err != nil {
		return contractx.RunIdentity{}, err
	}

	id := contractx.RunIdentity{
		DateStamp: n.now().Format(contractx.DateStampLayout),
		Sequence:  seq,
	}
	logx.Debug().Str("run", id.BaseName()).Int("sequence", seq).Msg("run identity minted")
	return id, nil
}

func (n *Namer) nextSequence(ctx context.Context) (int, error) {
	if inc, ok := n.store.(contractx.CounterIncrementer); ok {
		seq, err := inc.Increment(ctx)
		if err != nil {
			return 0, fmt.Errorf("increment run counter: %w", err)
		}
		return seq, nil
	}

	current, found, err := n.store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load run counter: %w", err)
	}

	next := 1
	if found {
		next = current + 1
	}
	if err := n.store.Save(ctx, next); err != nil {
		return 0, fmt.Errorf("save run counter: %w", err)
	}
	return next, nil
}
