package brainapi

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/abhisek/brainkit/internal/brainapi"

type tracingDoer struct {
	inner  Doer
	tracer trace.Tracer
}

// WithTracing wraps a Doer so each request runs in a client span and carries
// the trace context to the backend.
func WithTracing(d Doer) Doer {
	return &tracingDoer{inner: d, tracer: otel.Tracer(tracerName)}
}

func (t *tracingDoer) Do(req *http.Request) (*http.Response, error) {
	ctx, span := t.tracer.Start(req.Context(),
		fmt.Sprintf("%s %s", req.Method, Endpoint(req)),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.URL.Path),
		),
	)
	defer span.End()

	req = req.WithContext(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := t.inner.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= 400 {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	}
	return resp, nil
}
