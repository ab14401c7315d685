package telemetry

import (
	"context"
	"errors"
	"testing"

	"agentmarket/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecordingTrace() (*Trace, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return &Trace{TracerProvider: tp, ServiceName: "agentmarket-test"}, recorder
}

type listingLookup struct{}

func (listingLookup) GetByID(ctx context.Context, tr *Trace) (returnedError error) {
	_, _, end := tr.WithSpan(ctx)
	defer func() { end(returnedError) }()
	return errors.New("listing not found")
}

func TestWithSpanNamesAfterCaller(t *testing.T) {
	tr, recorder := newRecordingTrace()
	require.Error(t, listingLookup{}.GetByID(context.Background(), tr))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "listingLookup.GetByID", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "listing not found", spans[0].Status().Description)
}

func TestApplyTraceAttributesOmitEmpty(t *testing.T) {
	tr, recorder := newRecordingTrace()
	_, span := tr.StartSpanForLayer(context.Background(), core.SpanAuthMiddleware)
	tr.ApplyTraceAttributes(span, core.TraceAuthMiddlewareMeta{Where: "bearer"})
	tr.ApplyTraceAttributes(span, &core.TraceListingMeta{Op: "create", Dimensions: 3})
	span.End()

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range recorder.Ended()[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "bearer", attrs["auth.where"].AsString())
	assert.NotContains(t, attrs, attribute.Key("auth.provider_id"))
	assert.NotContains(t, attrs, attribute.Key("auth.provider_id,omitempty"))
	assert.Equal(t, int64(3), attrs["embedding.dimensions"].AsInt64())
	assert.False(t, attrs["listing.reembedded"].AsBool())
}

func TestNoopTraceIsSafe(t *testing.T) {
	tr := NewNoopTrace()
	ctx, span, end := tr.WithSpan(context.Background(), "noop")
	tr.ApplyTraceAttributes(span, core.TraceSearchMeta{Query: "weather"})
	end(errors.New("ignored"))
	assert.NotNil(t, ctx)
	assert.False(t, span.SpanContext().IsValid())
}

func TestSamplerOf(t *testing.T) {
	assert.Contains(t, samplerOf(0).Description(), "AlwaysOnSampler")
	assert.Contains(t, samplerOf(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestShortFuncName(t *testing.T) {
	cases := map[string]string{
		"agentmarket/internal/service.(*ListingService).Create":       "ListingService.Create",
		"agentmarket/internal/handler.(*SearchHandler).Search-fm":     "SearchHandler.Search",
		"agentmarket/internal/service.(*SearchService).Rebuild.func1": "SearchService.Rebuild",
		"agentmarket/internal/search.(*Index[...]).Upsert":            "Index.Upsert",
		"agentmarket/internal/telemetry.listingLookup.GetByID":        "listingLookup.GetByID",
	}
	for in, want := range cases {
		assert.Equal(t, want, shortFuncName(in), in)
	}
}
