package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/FACorreiaa/invoice-converter"

// Tracer returns the application tracer from the global provider. Without an
// SDK provider installed the spans are no-ops.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}
