// Package snapcheck verifies that a live in-memory SQLite store can be
// exported to a standalone file with its data intact.
//
// A workflow run seeds a fixed dataset into an in-memory store, verifies it
// in place, snapshots the store into a freshly provisioned file, releases
// the live handle, and then re-verifies the exported file through an
// independent handle. Two access strategies are supported behind one driver
// interface: a single exclusive connection and a pool capped at one
// connection. The run is a correctness probe, not a resilient pipeline:
// stages execute strictly in order, there are no retries, and the first
// failure aborts the run with the failing stage attached.
package snapcheck

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// Stage identifies one step of the verification workflow.
type Stage string

const (
	StageProvision       Stage = "provision"
	StageSeed            Stage = "seed"
	StageVerifyLive      Stage = "verify_live"
	StageExport          Stage = "export"
	StageRelease         Stage = "release"
	StageVerifyPersisted Stage = "verify_persisted"
)

// Workflow drives one verification run through the state machine
// Start → Provisioned → Seeded → VerifiedLive → Exported → Released →
// VerifiedPersisted → Done.
type Workflow struct {
	cfg config
}

// Report is the outcome of a successful run.
type Report struct {
	RunID  string
	Mode   Mode
	Cache  CacheMode
	Target string

	// LiveRows is the scan of the in-memory store before export.
	LiveRows []Row

	// PersistedRows is the scan of the exported file. Equal to LiveRows on
	// a successful run.
	PersistedRows []Row

	// Catalog is the exported store's table catalog.
	Catalog []string
}

// New builds a Workflow. Defaults: exclusive mode, private cache, system
// temp directory, pool capacity 1, random run ID, no observer.
func New(opts ...Option) *Workflow {
	cfg := config{
		mode:     ModeExclusive,
		cache:    CachePrivate,
		maxConns: 1,
		observer: NoOpObserver{},
	}
	for _, o := range opts {
		o.apply(&cfg)
	}
	if cfg.runID == "" {
		cfg.runID = uuid.NewString()
	}
	return &Workflow{cfg: cfg}
}

// RunID returns the identifier events and errors of this workflow carry.
func (w *Workflow) RunID() string {
	return w.cfg.runID
}

// Run executes the full state machine and returns the report. On failure
// the returned error is a *StageError naming the stage that failed.
func (w *Workflow) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	w.cfg.observer.OnRunStart(ctx, &RunStartEvent{
		RunID:     w.cfg.runID,
		Mode:      w.cfg.mode,
		Cache:     w.cfg.cache,
		StartTime: start,
	})

	report, err := w.run(ctx)

	w.cfg.observer.OnRunEnd(ctx, &RunEndEvent{
		RunID:    w.cfg.runID,
		Mode:     w.cfg.mode,
		Duration: time.Since(start),
		Error:    err,
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (w *Workflow) run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID: w.cfg.runID,
		Mode:  w.cfg.mode,
		Cache: w.cfg.cache,
	}

	if err := w.stage(ctx, StageProvision, func(ev *StageEndEvent) error {
		path, err := ProvisionTarget(w.cfg.targetDir)
		if err != nil {
			return err
		}
		report.Target = path
		ev.Target = path
		return nil
	}); err != nil {
		return nil, err
	}

	target := MemoryTarget()
	if w.cfg.cache == CacheShared {
		name := w.cfg.memoryName
		if name == "" {
			name = "snapcheck-" + w.cfg.runID
		}
		target = SharedMemoryTarget(name)
	}

	var drv Driver
	if err := w.stage(ctx, StageSeed, func(ev *StageEndEvent) error {
		var err error
		drv, err = w.open(ctx, target)
		if err != nil {
			return err
		}
		return drv.ExecBatch(ctx, seedBatch)
	}); err != nil {
		if drv != nil {
			drv.Close()
		}
		return nil, err
	}

	// The live handle must never outlive the run, and must be gone before
	// the post-export verifier opens its independent handle.
	released := false
	defer func() {
		if !released {
			drv.Close()
		}
	}()

	if err := w.stage(ctx, StageVerifyLive, func(ev *StageEndEvent) error {
		rows, err := drv.QueryRows(ctx, selectAll)
		if err != nil {
			return err
		}
		report.LiveRows = rows
		ev.Rows = len(rows)
		return VerifyRows(PhaseLive, rows, SeedRows())
	}); err != nil {
		return nil, err
	}

	if err := w.stage(ctx, StageExport, func(ev *StageEndEvent) error {
		ev.Target = report.Target
		if err := drv.ExportTo(ctx, report.Target); err != nil {
			return err
		}
		if _, err := os.Stat(report.Target); err != nil {
			return fmt.Errorf("exported file missing after export: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := w.stage(ctx, StageRelease, func(ev *StageEndEvent) error {
		released = true
		return drv.Close()
	}); err != nil {
		return nil, err
	}

	if err := w.stage(ctx, StageVerifyPersisted, func(ev *StageEndEvent) error {
		if _, err := os.Stat(report.Target); err != nil {
			return fmt.Errorf("exported file: %w", err)
		}

		fileDrv, err := w.open(ctx, FileTarget(report.Target))
		if err != nil {
			return err
		}
		defer fileDrv.Close()

		tables, err := fileDrv.Catalog(ctx)
		if err != nil {
			return err
		}
		if err := VerifyCatalog(tables); err != nil {
			return err
		}
		report.Catalog = tables

		rows, err := fileDrv.QueryRows(ctx, selectAll)
		if err != nil {
			return err
		}
		report.PersistedRows = rows
		ev.Rows = len(rows)
		ev.Target = report.Target
		return VerifyRows(PhasePersisted, rows, report.LiveRows)
	}); err != nil {
		return nil, err
	}

	return report, nil
}

// open dispatches to the configured access strategy. A nil Driver is
// returned as an untyped nil so callers can test it directly.
func (w *Workflow) open(ctx context.Context, target Target) (Driver, error) {
	if w.cfg.mode == ModePooled {
		drv, err := OpenPool(ctx, target, w.cfg.maxConns)
		if err != nil {
			return nil, err
		}
		return drv, nil
	}
	drv, err := OpenConn(ctx, target)
	if err != nil {
		return nil, err
	}
	return drv, nil
}

// stage runs one state transition under observation, wrapping any failure
// in a StageError.
func (w *Workflow) stage(ctx context.Context, stage Stage, fn func(ev *StageEndEvent) error) error {
	start := time.Now()
	w.cfg.observer.OnStageStart(ctx, &StageStartEvent{
		RunID:     w.cfg.runID,
		Stage:     stage,
		StartTime: start,
	})

	ev := &StageEndEvent{RunID: w.cfg.runID, Stage: stage}
	err := fn(ev)
	ev.Duration = time.Since(start)
	ev.Error = err
	w.cfg.observer.OnStageEnd(ctx, ev)

	if err != nil {
		return &StageError{RunID: w.cfg.runID, Stage: stage, Cause: err}
	}
	return nil
}
