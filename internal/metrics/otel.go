package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const defaultServiceName = "scoreboard-service"

var (
	promReaderFactory = prometheusComponents
	otlpReaderFactory = buildOTLPReader
	instrumentFactory = newOtelInstruments
)

// TelemetryConfig controls how metrics are exported.
type TelemetryConfig struct {
	Enabled      bool
	Port         string
	ServiceName  string
	OtlpEndpoint string
	OtlpInsecure bool
}

// Setup configures OpenTelemetry metrics with a Prometheus exporter and optional OTLP exporter.
// It returns a Recorder, the Prometheus HTTP handler, and a shutdown function.
func Setup(ctx context.Context, cfg TelemetryConfig) (*Recorder, http.Handler, func(context.Context) error, error) {
	if !cfg.Enabled {
		return NewRecorder(), nil, func(context.Context) error { return nil }, nil
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = defaultServiceName
	}

	promReader, promHandler, err := promReaderFactory()
	if err != nil {
		return nil, nil, nil, err
	}

	opts := []sdkmetric.Option{sdkmetric.WithReader(promReader)}

	if cfg.OtlpEndpoint != "" {
		otlpReader, err := otlpReaderFactory(ctx, cfg.OtlpEndpoint, cfg.OtlpInsecure)
		if err != nil {
			return nil, nil, nil, err
		}
		opts = append(opts, sdkmetric.WithReader(otlpReader))
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, nil, nil, err
	}

	opts = append(opts, sdkmetric.WithResource(res))

	provider := sdkmetric.NewMeterProvider(opts...)

	// The gauges read board totals back from the recorder, so the recorder
	// exists before the instruments and is attached afterwards.
	rec := newRecorder(nil)
	otelInst, err := instrumentFactory(provider, rec)
	if err != nil {
		return nil, nil, nil, err
	}
	rec.otel = otelInst

	shutdown := func(c context.Context) error {
		return provider.Shutdown(c)
	}

	return rec, promHandler, shutdown, nil
}

func buildOTLPReader(ctx context.Context, endpoint string, insecure bool) (sdkmetric.Reader, error) {
	otlpOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
	if insecure {
		otlpOpts = append(otlpOpts, otlpmetrichttp.WithInsecure())
	}
	otlpExp, err := otlpmetrichttp.New(ctx, otlpOpts...)
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewPeriodicReader(otlpExp, sdkmetric.WithInterval(15*time.Second)), nil
}

type otelInstruments struct {
	ctx               context.Context
	meter             metric.Meter
	operations        metric.Int64Counter
	operationErrors   metric.Int64Counter
	operationLatency  metric.Float64Histogram
	revokeConflicts   metric.Int64Counter
	reporterCycles    metric.Int64Counter
	reporterLatencyMs metric.Float64Histogram
	activeGames       metric.Int64ObservableGauge
	totalGoals        metric.Int64ObservableGauge
}

func prometheusComponents() (sdkmetric.Reader, http.Handler, error) {
	reg := prometheus.NewRegistry()
	promExp, err := promexporter.New(promexporter.WithRegisterer(reg))
	if err != nil {
		return nil, nil, err
	}
	return promExp, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}

func newOtelInstruments(provider metric.MeterProvider, board *Recorder) (*otelInstruments, error) {
	meter := provider.Meter(defaultServiceName)
	ctx := context.Background()

	operations, err := meter.Int64Counter("scoreboard_operations_total")
	if err != nil {
		return nil, err
	}
	operationErrors, err := meter.Int64Counter("scoreboard_operation_errors_total")
	if err != nil {
		return nil, err
	}
	operationLatency, err := meter.Float64Histogram("scoreboard_operation_duration_ms")
	if err != nil {
		return nil, err
	}
	revokeConflicts, err := meter.Int64Counter("scoreboard_revoke_conflicts_total")
	if err != nil {
		return nil, err
	}
	reporterCycles, err := meter.Int64Counter("reporter_cycles_total")
	if err != nil {
		return nil, err
	}
	reporterLatency, err := meter.Float64Histogram("reporter_cycle_duration_ms")
	if err != nil {
		return nil, err
	}
	activeGames, err := meter.Int64ObservableGauge("scoreboard_active_games",
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			active, _ := board.Board()
			o.Observe(active)
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	totalGoals, err := meter.Int64ObservableGauge("scoreboard_goals",
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			_, goals := board.Board()
			o.Observe(goals)
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	return &otelInstruments{
		ctx:               ctx,
		meter:             meter,
		operations:        operations,
		operationErrors:   operationErrors,
		operationLatency:  operationLatency,
		revokeConflicts:   revokeConflicts,
		reporterCycles:    reporterCycles,
		reporterLatencyMs: reporterLatency,
		activeGames:       activeGames,
		totalGoals:        totalGoals,
	}, nil
}

func (o *otelInstruments) recordOperation(op string, duration time.Duration, err error, kind string, conflict bool) {
	if o == nil {
		return
	}
	outcome := OutcomeOK
	switch {
	case err != nil && conflict:
		outcome = OutcomeConflict
	case err != nil:
		outcome = OutcomeError
	}
	attrs := []attribute.KeyValue{
		attribute.String(AttrOperation, op),
		attribute.String(AttrOutcome, outcome),
	}
	o.recordCounter(o.operations, 1, attrs...)
	o.recordHistogram(o.operationLatency, float64(duration.Milliseconds()), attribute.String(AttrOperation, op))
	if err != nil {
		o.recordCounter(o.operationErrors, 1,
			attribute.String(AttrOperation, op),
			attribute.String(AttrKind, kind),
		)
	}
	if err != nil && conflict {
		o.recordCounter(o.revokeConflicts, 1)
	}
}

func (o *otelInstruments) recordReporter(duration time.Duration) {
	if o == nil {
		return
	}
	o.recordCounter(o.reporterCycles, 1)
	o.recordHistogram(o.reporterLatencyMs, float64(duration.Milliseconds()))
}

func (o *otelInstruments) recordCounter(counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if o == nil {
		return
	}
	counter.Add(o.ctx, value, metric.WithAttributes(attrs...))
}

func (o *otelInstruments) recordHistogram(hist metric.Float64Histogram, value float64, attrs ...attribute.KeyValue) {
	if o == nil {
		return
	}
	hist.Record(o.ctx, value, metric.WithAttributes(attrs...))
}
