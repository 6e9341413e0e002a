// internal/common/observability/metrics.go
package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

type Observability struct {
	meterProvider   *metric.MeterProvider
	tracerProvider  *sdktrace.TracerProvider
	meter           otelmetric.Meter
	tracer          trace.Tracer
	submitCounter   otelmetric.Int64Counter
	submitDuration  otelmetric.Float64Histogram
	stepTransitions otelmetric.Int64Counter
}

func New(serviceName string) *Observability {
	res := resource.NewSchemaless(semconv.ServiceName(serviceName))

	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
	otel.SetTracerProvider(tracerProvider)

	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{
			tracerProvider: tracerProvider,
			tracer:         tracerProvider.Tracer(serviceName),
		}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	submitCounter, _ := meter.Int64Counter(
		"applications.submitted",
		otelmetric.WithDescription("Number of application submissions"),
	)

	submitDuration, _ := meter.Float64Histogram(
		"applications.submit.duration",
		otelmetric.WithDescription("Application submission duration"),
		otelmetric.WithUnit("ms"),
	)

	stepTransitions, _ := meter.Int64Counter(
		"wizard.step.transitions",
		otelmetric.WithDescription("Wizard navigation attempts"),
	)

	return &Observability{
		meterProvider:   provider,
		tracerProvider:  tracerProvider,
		meter:           meter,
		tracer:          tracerProvider.Tracer(serviceName),
		submitCounter:   submitCounter,
		submitDuration:  submitDuration,
		stepTransitions: stepTransitions,
	}
}

// StartSpan starts a span on the service tracer, or on the global tracer when
// o was not built with New.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := o.tracer
	if tracer == nil {
		tracer = otel.Tracer("bursary-portal")
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordSubmission(ctx context.Context, status string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(attribute.String("status", status))
	if o.submitCounter != nil {
		o.submitCounter.Add(ctx, 1, attrs)
	}
	if o.submitDuration != nil {
		o.submitDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) RecordStepTransition(ctx context.Context, action, outcome string) {
	if o.stepTransitions != nil {
		o.stepTransitions.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("action", action),
			attribute.String("outcome", outcome),
		))
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
