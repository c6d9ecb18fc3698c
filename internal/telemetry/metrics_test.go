package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestGetMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
	})

	ctx := context.Background()
	m := GetMetrics()
	require.Same(t, m, GetMetrics())

	m.BuildsTotal.Add(ctx, 2)
	m.BuildDuration.Record(ctx, 12.5)
	m.OutputBytes.Record(ctx, 2048)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			names[metric.Name] = true
		}
	}

	require.True(t, names["assetpack.builds.total"])
	require.True(t, names["assetpack.builds.duration"])
	require.True(t, names["assetpack.outputs.bytes"])
}
