package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of emulator spans
const TracerName = "shopabell-emulator"

// Span attribute keys shared by the emulators
const (
	AttrEmulator   = attribute.Key("emulator.name")
	AttrOperation  = attribute.Key("emulator.operation")
	AttrEvent      = attribute.Key("webhook.event")
	AttrDeliveryID = attribute.Key("webhook.delivery_id")
)

func tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(TracerName)
}

// StartOperation starts an internal span named "{emulator}.{operation}".
// The caller must End the returned span.
func StartOperation(ctx context.Context, emulator, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{AttrEmulator.String(emulator), AttrOperation.String(operation)}, attrs...)
	return tracer().Start(ctx, emulator+"."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// StartDelivery starts a client span for one outbound webhook POST and
// injects the trace context into headers so receivers can join the trace.
func StartDelivery(ctx context.Context, event, deliveryID string, headers http.Header) (context.Context, trace.Span) {
	ctx, span := tracer().Start(ctx, "webhook.deliver",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(AttrEvent.String(event), AttrDeliveryID.String(deliveryID)),
	)
	if headers != nil {
		otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(headers))
	}
	return ctx, span
}

// Annotate adds alternating key/value pairs to a span. Pairs with a
// non-string key are skipped.
func Annotate(span trace.Span, keyValues ...any) {
	if span == nil {
		return
	}
	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		if key, ok := keyValues[i].(string); ok {
			attrs = append(attrs, attributeOf(key, keyValues[i+1]))
		}
	}
	span.SetAttributes(attrs...)
}

// Fail records err on the span and sets its status to error. A nil err is a no-op.
func Fail(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func attributeOf(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}
