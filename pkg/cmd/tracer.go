package cmd

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/gchahal1982/G3DAI-sub009/pkg/otelhelper"
)

// NewTracer builds an OTLP tracer when tracing is enabled. A nil tracer
// disables span creation in the orchestrator.
//
// nolint:ireturn // Returning interface is intentional for OpenTelemetry tracing
func NewTracer(ctx context.Context, enabled bool, serviceName string) (trace.Tracer, error) {
	if !enabled {
		return nil, nil
	}

	return otelhelper.NewTracer(ctx, serviceName)
}
