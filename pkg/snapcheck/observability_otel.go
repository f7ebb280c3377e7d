package snapcheck

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// OTelObserver implements Observer using OpenTelemetry for traces and
// metrics. This provides automatic integration with OTLP exporters (Jaeger,
// Tempo, Datadog, etc.).
//
// Example:
//
//	tracer := otel.Tracer("snapcheck")
//	meter := otel.Meter("snapcheck")
//	observer, _ := snapcheck.NewOTelObserver(tracer, meter)
//	wf := snapcheck.New(snapcheck.WithObserver(observer))
type OTelObserver struct {
	tracer trace.Tracer

	// Metrics
	runDuration   metric.Float64Histogram
	stageDuration metric.Float64Histogram
	rowsRead      metric.Int64Counter
	stageErrors   metric.Int64Counter
}

// NewOTelObserver creates an OpenTelemetry observer.
func NewOTelObserver(tracer trace.Tracer, meter metric.Meter) (*OTelObserver, error) {
	runDuration, err := meter.Float64Histogram(
		"snapcheck.run.duration",
		metric.WithDescription("Duration of workflow runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run duration histogram: %w", err)
	}

	stageDuration, err := meter.Float64Histogram(
		"snapcheck.stage.duration",
		metric.WithDescription("Duration of workflow stages in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create stage duration histogram: %w", err)
	}

	rowsRead, err := meter.Int64Counter(
		"snapcheck.rows.read",
		metric.WithDescription("Number of rows read during verification stages"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rows read counter: %w", err)
	}

	stageErrors, err := meter.Int64Counter(
		"snapcheck.stage.errors",
		metric.WithDescription("Number of stage failures"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create stage errors counter: %w", err)
	}

	return &OTelObserver{
		tracer:        tracer,
		runDuration:   runDuration,
		stageDuration: stageDuration,
		rowsRead:      rowsRead,
		stageErrors:   stageErrors,
	}, nil
}

func (o *OTelObserver) OnRunStart(ctx context.Context, event *RunStartEvent) {
	// Create a span for the whole run. Users who want full span lifecycle
	// management should start the span themselves and pass the context
	// into Run; here we only annotate the active span.
	_, span := o.tracer.Start(ctx, "workflow.run",
		trace.WithAttributes(
			attribute.String("run_id", event.RunID),
			attribute.String("mode", string(event.Mode)),
			attribute.String("cache", string(event.Cache)),
		),
	)
	_ = span
}

func (o *OTelObserver) OnRunEnd(ctx context.Context, event *RunEndEvent) {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		if event.Error != nil {
			span.SetStatus(codes.Error, event.Error.Error())
			span.RecordError(event.Error)
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}

	attrs := []attribute.KeyValue{
		attribute.String("run_id", event.RunID),
		attribute.String("mode", string(event.Mode)),
		attribute.Bool("success", event.Error == nil),
	}
	o.runDuration.Record(ctx, event.Duration.Seconds(), metric.WithAttributes(attrs...))
}

func (o *OTelObserver) OnStageStart(ctx context.Context, event *StageStartEvent) {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		span.AddEvent("stage_start", trace.WithAttributes(
			attribute.String("stage", string(event.Stage)),
		))
	}
}

func (o *OTelObserver) OnStageEnd(ctx context.Context, event *StageEndEvent) {
	attrs := []attribute.KeyValue{
		attribute.String("stage", string(event.Stage)),
		attribute.Bool("success", event.Error == nil),
	}

	o.stageDuration.Record(ctx, event.Duration.Seconds(), metric.WithAttributes(attrs...))

	if event.Rows > 0 {
		o.rowsRead.Add(ctx, int64(event.Rows), metric.WithAttributes(
			attribute.String("stage", string(event.Stage)),
		))
	}

	if event.Error != nil {
		o.stageErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("stage", string(event.Stage)),
		))
	}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		eventAttrs := []attribute.KeyValue{
			attribute.String("stage", string(event.Stage)),
			attribute.String("duration", event.Duration.String()),
		}
		if event.Error != nil {
			eventAttrs = append(eventAttrs, attribute.String("error", event.Error.Error()))
		}
		span.AddEvent("stage_end", trace.WithAttributes(eventAttrs...))
	}
}
