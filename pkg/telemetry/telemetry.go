// Package telemetry helpers mínimos sobre OpenTelemetry para trazar los casos de uso.
// Sin proveedor configurado el tracer global es no-op.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName nombre del tracer de negocio.
const TracerName = "repuestos-api"

// StartSpan abre un span interno con los atributos dados. El llamador debe cerrar con span.End().
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// RecordError marca el span con el error (no hace nada si err es nil).
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// End cierra el span registrando el error, pensado para usar con defer sobre un error nombrado.
func End(span trace.Span, err *error) {
	if err != nil {
		RecordError(span, *err)
	}
	span.End()
}
