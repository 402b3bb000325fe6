package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

const version = "1.0.0"

// Shutdown faz flush dos exporters.
type Shutdown func(ctx context.Context) error

// Init liga traces e métricas OTLP/HTTP quando endpoint não é vazio.
// Sem endpoint os providers globais continuam no-op.
func Init(ctx context.Context, endpoint, serviceName string) (Shutdown, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: resource: %w", err)
	}

	traceExp, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	metricExp, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(endpoint),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("telemetry: metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}

// ===============================
// Metrics
// ===============================

type Metrics struct {
	BookingsCreated     metric.Int64Counter
	BookingsCompensated metric.Int64Counter
	PaymentsConfirmed   metric.Int64Counter
}

// NewMetrics registra os contadores no meter informado; em produção,
// otel.Meter depois de Init.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	created, err := meter.Int64Counter("bookings_created",
		metric.WithDescription("Agendamentos criados com cobrança PIX"))
	if err != nil {
		return nil, err
	}

	compensated, err := meter.Int64Counter("bookings_compensated",
		metric.WithDescription("Agendamentos cancelados por falha no gateway"))
	if err != nil {
		return nil, err
	}

	confirmed, err := meter.Int64Counter("payments_confirmed",
		metric.WithDescription("Pagamentos confirmados na reconciliação"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		BookingsCreated:     created,
		BookingsCompensated: compensated,
		PaymentsConfirmed:   confirmed,
	}, nil
}

// Nop é usado em testes.
func Nop() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter("nop"))
	return m
}
