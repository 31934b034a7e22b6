package infra

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tranqh/photokeep/config"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// LoggerClient wraps slog; when an OTLP endpoint is configured the records
// are bridged to the collector, otherwise they go to stdout.
type LoggerClient struct {
	logger   *slog.Logger
	provider *sdklog.LoggerProvider
}

func InitLoggerClient(cfg *config.EnvConfig) *LoggerClient {
	if cfg.Grafana.OTLPEndpoint == "" {
		return &LoggerClient{
			logger: slog.New(slog.NewJSONHandler(os.Stdout, nil)),
		}
	}

	exporter, err := otlploghttp.New(context.Background(),
		otlploghttp.WithEndpoint(cfg.Grafana.OTLPEndpoint),
		otlploghttp.WithInsecure(),
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize OTLP log exporter: %v", err))
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(newTelemetryResource(cfg)),
	)

	return &LoggerClient{
		logger:   otelslog.NewLogger(cfg.Grafana.ServiceName, otelslog.WithLoggerProvider(provider)),
		provider: provider,
	}
}

// NewNopLogger returns a logger that discards everything. Test use only.
func NewNopLogger() *LoggerClient {
	return &LoggerClient{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (l *LoggerClient) InfoWithContextf(ctx context.Context, format string, args ...interface{}) {
	l.logger.InfoContext(ctx, fmt.Sprintf(format, args...))
}

func (l *LoggerClient) WarningWithContextf(ctx context.Context, format string, args ...interface{}) {
	l.logger.WarnContext(ctx, fmt.Sprintf(format, args...))
}

func (l *LoggerClient) ErrorWithContextf(ctx context.Context, err error, format string, args ...interface{}) {
	if err != nil {
		l.logger.ErrorContext(ctx, fmt.Sprintf(format, args...), slog.Any("error", err))
		return
	}
	l.logger.ErrorContext(ctx, fmt.Sprintf(format, args...))
}

func (l *LoggerClient) Shutdown(ctx context.Context) {
	if l.provider != nil {
		_ = l.provider.Shutdown(ctx)
	}
}
