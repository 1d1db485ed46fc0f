package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/Repuestos-api/pkg/telemetry"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestStartSpan_SinProveedorEsNoop(t *testing.T) {
	ctx, span := telemetry.StartSpan(context.Background(), "prueba", attribute.Int64("run_id", 1))
	assert.NotNil(t, ctx)
	assert.False(t, span.SpanContext().IsValid(), "sin proveedor el span no es muestreado")

	err := errors.New("falla")
	assert.NotPanics(t, func() { telemetry.End(span, &err) })
}
