package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/wolfeidau/assetpack"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Build metrics
	BuildsTotal       metric.Int64Counter
	BuildErrorsTotal  metric.Int64Counter
	BuildDuration     metric.Float64Histogram
	BuildSkippedEmits metric.Int64Counter

	// Output metrics
	OutputFilesTotal metric.Int64Counter
	OutputBytes      metric.Int64Histogram

	// Loader metrics
	SassCompileDuration metric.Float64Histogram
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(instrumentationName)

	m := &Metrics{}

	m.BuildsTotal, _ = meter.Int64Counter(
		"assetpack.builds.total",
		metric.WithDescription("Total number of builds"),
		metric.WithUnit("{build}"),
	)

	m.BuildErrorsTotal, _ = meter.Int64Counter(
		"assetpack.builds.errors.total",
		metric.WithDescription("Total number of errors reported by builds"),
		metric.WithUnit("{error}"),
	)

	m.BuildDuration, _ = meter.Float64Histogram(
		"assetpack.builds.duration",
		metric.WithDescription("Duration of builds"),
		metric.WithUnit("ms"),
	)

	m.BuildSkippedEmits, _ = meter.Int64Counter(
		"assetpack.builds.skipped_emits.total",
		metric.WithDescription("Total number of failed builds whose output was not emitted"),
		metric.WithUnit("{build}"),
	)

	m.OutputFilesTotal, _ = meter.Int64Counter(
		"assetpack.outputs.files.total",
		metric.WithDescription("Total number of files emitted"),
		metric.WithUnit("{file}"),
	)

	m.OutputBytes, _ = meter.Int64Histogram(
		"assetpack.outputs.bytes",
		metric.WithDescription("Size of emitted files"),
		metric.WithUnit("By"),
	)

	m.SassCompileDuration, _ = meter.Float64Histogram(
		"assetpack.sass.compile.duration",
		metric.WithDescription("Duration of Sass compilation per stylesheet"),
		metric.WithUnit("ms"),
	)

	return m
}

// Tracer returns the tracer for build spans
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}
