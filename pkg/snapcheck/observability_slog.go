package snapcheck

import (
	"context"
	"log/slog"
)

// SlogObserver implements Observer using Go's structured logging (log/slog).
// This emits structured logs for all workflow events.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	observer := snapcheck.NewSlogObserver(logger, slog.LevelInfo)
//	wf := snapcheck.New(snapcheck.WithObserver(observer))
type SlogObserver struct {
	logger   *slog.Logger
	minLevel slog.Level
}

// NewSlogObserver creates an observer that logs to the given slog.Logger.
// Only events at or above minLevel will be logged.
func NewSlogObserver(logger *slog.Logger, minLevel slog.Level) *SlogObserver {
	return &SlogObserver{
		logger:   logger,
		minLevel: minLevel,
	}
}

func (o *SlogObserver) OnRunStart(ctx context.Context, event *RunStartEvent) {
	if o.minLevel <= slog.LevelInfo {
		o.logger.InfoContext(ctx, "workflow run started",
			slog.String("run_id", event.RunID),
			slog.String("mode", string(event.Mode)),
			slog.String("cache", string(event.Cache)),
		)
	}
}

func (o *SlogObserver) OnRunEnd(ctx context.Context, event *RunEndEvent) {
	if event.Error != nil {
		if o.minLevel <= slog.LevelError {
			o.logger.ErrorContext(ctx, "workflow run failed",
				slog.String("run_id", event.RunID),
				slog.String("mode", string(event.Mode)),
				slog.Duration("duration", event.Duration),
				slog.String("error", event.Error.Error()),
			)
		}
	} else {
		if o.minLevel <= slog.LevelInfo {
			o.logger.InfoContext(ctx, "workflow run completed",
				slog.String("run_id", event.RunID),
				slog.String("mode", string(event.Mode)),
				slog.Duration("duration", event.Duration),
			)
		}
	}
}

func (o *SlogObserver) OnStageStart(ctx context.Context, event *StageStartEvent) {
	if o.minLevel <= slog.LevelDebug {
		o.logger.DebugContext(ctx, "stage started",
			slog.String("run_id", event.RunID),
			slog.String("stage", string(event.Stage)),
		)
	}
}

func (o *SlogObserver) OnStageEnd(ctx context.Context, event *StageEndEvent) {
	if event.Error != nil {
		if o.minLevel <= slog.LevelWarn {
			o.logger.WarnContext(ctx, "stage failed",
				slog.String("run_id", event.RunID),
				slog.String("stage", string(event.Stage)),
				slog.Duration("duration", event.Duration),
				slog.String("error", event.Error.Error()),
			)
		}
	} else {
		if o.minLevel <= slog.LevelDebug {
			attrs := []any{
				slog.String("run_id", event.RunID),
				slog.String("stage", string(event.Stage)),
				slog.Duration("duration", event.Duration),
			}
			if event.Rows > 0 {
				attrs = append(attrs, slog.Int("rows", event.Rows))
			}
			if event.Target != "" {
				attrs = append(attrs, slog.String("target", event.Target))
			}
			o.logger.DebugContext(ctx, "stage completed", attrs...)
		}
	}
}
