package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	ingestBatches metric.Int64Counter
	rowsPersisted metric.Int64Counter
	rowsRejected  metric.Int64Counter
	reportQueries metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "ledgerline"
	}
	meter := provider.Meter(name)

	ingestBatches, err := meter.Int64Counter("ingest_batches_total",
		metric.WithDescription("CSV ingestion batches processed"))
	if err != nil {
		return nil, err
	}
	rowsPersisted, err := meter.Int64Counter("ingest_rows_persisted_total",
		metric.WithDescription("Transaction rows persisted from uploads"))
	if err != nil {
		return nil, err
	}
	rowsRejected, err := meter.Int64Counter("ingest_rows_rejected_total",
		metric.WithDescription("Transaction rows rejected during validation"))
	if err != nil {
		return nil, err
	}
	reportQueries, err := meter.Int64Counter("report_queries_total",
		metric.WithDescription("Summary report queries served"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		ingestBatches: ingestBatches,
		rowsPersisted: rowsPersisted,
		rowsRejected:  rowsRejected,
		reportQueries: reportQueries,
	}, nil
}

func (m *Metrics) RecordBatch(ctx context.Context, persisted, rejected int) {
	if m == nil {
		return
	}
	m.ingestBatches.Add(ctx, 1)
	m.rowsPersisted.Add(ctx, int64(persisted))
	m.rowsRejected.Add(ctx, int64(rejected))
}

func (m *Metrics) RecordReportQuery(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.reportQueries.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "", "grpc":
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	case "http", "http/protobuf":
		return otlpmetrichttp.New(context.Background(),
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported otlp protocol %q", protocol)
	}
}
