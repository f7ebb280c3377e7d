package snapcheck

import (
	"context"
	"time"
)

// Observer is the interface for observing workflow execution events.
// Implementations can emit metrics, logs, or traces to their observability
// backend.
//
// All Observer methods are called synchronously at each state transition,
// so implementations should be fast and non-blocking. Observers are purely
// observational: they never affect control flow or the run's outcome.
type Observer interface {
	// OnRunStart is called when a workflow run begins.
	OnRunStart(ctx context.Context, event *RunStartEvent)

	// OnRunEnd is called when a workflow run completes (success or failure).
	OnRunEnd(ctx context.Context, event *RunEndEvent)

	// OnStageStart is called when a workflow stage begins.
	OnStageStart(ctx context.Context, event *StageStartEvent)

	// OnStageEnd is called when a workflow stage completes (success or failure).
	OnStageEnd(ctx context.Context, event *StageEndEvent)
}

// RunStartEvent is emitted when a workflow run begins.
type RunStartEvent struct {
	RunID     string
	Mode      Mode
	Cache     CacheMode
	StartTime time.Time
}

// RunEndEvent is emitted when a workflow run completes.
type RunEndEvent struct {
	RunID    string
	Mode     Mode
	Duration time.Duration
	Error    error // nil if successful
}

// StageStartEvent is emitted when a workflow stage begins.
type StageStartEvent struct {
	RunID     string
	Stage     Stage
	StartTime time.Time
}

// StageEndEvent is emitted when a workflow stage completes.
type StageEndEvent struct {
	RunID    string
	Stage    Stage
	Duration time.Duration
	Error    error  // nil if successful
	Rows     int    // rows read during verification stages, 0 otherwise
	Target   string // destination path for provision/export stages
}

// NoOpObserver is a no-op implementation of Observer.
// Useful as a base for partial implementations.
type NoOpObserver struct{}

func (NoOpObserver) OnRunStart(ctx context.Context, event *RunStartEvent)     {}
func (NoOpObserver) OnRunEnd(ctx context.Context, event *RunEndEvent)         {}
func (NoOpObserver) OnStageStart(ctx context.Context, event *StageStartEvent) {}
func (NoOpObserver) OnStageEnd(ctx context.Context, event *StageEndEvent)     {}

// MultiObserver combines multiple observers into one.
// Events are sent to all observers in order.
type MultiObserver struct {
	Observers []Observer
}

func (m *MultiObserver) OnRunStart(ctx context.Context, event *RunStartEvent) {
	for _, obs := range m.Observers {
		obs.OnRunStart(ctx, event)
	}
}

func (m *MultiObserver) OnRunEnd(ctx context.Context, event *RunEndEvent) {
	for _, obs := range m.Observers {
		obs.OnRunEnd(ctx, event)
	}
}

func (m *MultiObserver) OnStageStart(ctx context.Context, event *StageStartEvent) {
	for _, obs := range m.Observers {
		obs.OnStageStart(ctx, event)
	}
}

func (m *MultiObserver) OnStageEnd(ctx context.Context, event *StageEndEvent) {
	for _, obs := range m.Observers {
		obs.OnStageEnd(ctx, event)
	}
}
