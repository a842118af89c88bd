// Package lifecycle feeds app foreground/background transitions to the
// access machine in delivery order.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/illarion/pinvault/internal/access"
)

// AppState is the visibility of the app
type AppState int

const (
	Foreground AppState = iota
	Background
	Inactive
)

func (s AppState) String() string {
	switch s {
	case Foreground:
		return "foreground"
	case Background:
		return "background"
	case Inactive:
		return "inactive"
	default:
		return fmt.Sprintf("AppState(%d)", int(s))
	}
}

// Event is a single transition reported by the platform
type Event struct {
	State AppState
	At    time.Time
}

// Target receives the transitions. *access.Machine implements it.
type Target interface {
	Background(at time.Time) error
	Foreground(at time.Time) (access.State, error)
}

// Monitor tracks the last app state and forwards transitions to a Target.
// It is not safe for concurrent use; Run owns it for its lifetime.
type Monitor struct {
	target  Target
	log     *zap.Logger
	onState func(access.State)
	current AppState
}

// Option configures a Monitor
type Option func(*Monitor)

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(m *Monitor) { m.log = log }
}

// WithStateCallback is called with the access state after every return
// to the foreground
func WithStateCallback(fn func(access.State)) Option {
	return func(m *Monitor) { m.onState = fn }
}

// NewMonitor creates a monitor that starts in the foreground
func NewMonitor(target Target, opts ...Option) *Monitor {
	m := &Monitor{
		target:  target,
		log:     zap.NewNop(),
		current: Foreground,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current returns the last recorded app state
func (m *Monitor) Current() AppState {
	return m.current
}

// Handle applies one event.
//   - background records the timestamp
//   - foreground after background or inactive runs the elapsed-time check
//   - inactive is only recorded
func (m *Monitor) Handle(ev Event) error {
	prev := m.current
	m.current = ev.State

	switch ev.State {
	case Background:
		if err := m.target.Background(ev.At); err != nil {
			return fmt.Errorf("failed to handle background: %w", err)
		}
	case Foreground:
		if prev != Background && prev != Inactive {
			return nil
		}
		state, err := m.target.Foreground(ev.At)
		if err != nil {
			return fmt.Errorf("failed to handle foreground: %w", err)
		}
		m.log.Debug("returned to foreground",
			zap.Stringer("from", prev),
			zap.Stringer("access", state),
		)
		if m.onState != nil {
			m.onState(state)
		}
	}
	return nil
}

// Run processes events until the channel closes or ctx is done. Handler
// errors are logged and do not stop the loop.
func (m *Monitor) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := m.Handle(ev); err != nil {
				m.log.Error("lifecycle event failed",
					zap.Stringer("state", ev.State),
					zap.Error(err),
				)
			}
		}
	}
}

// Replay applies events in order and stops at the first error.
func (m *Monitor) Replay(events []Event) error {
	for i, ev := range events {
		if err := m.Handle(ev); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	return nil
}
