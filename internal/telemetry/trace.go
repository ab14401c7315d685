package telemetry

import (
	"agentmarket/config"
	"agentmarket/internal/core"
	"context"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"time"

	gcppropagator "github.com/GoogleCloudPlatform/opentelemetry-operations-go/propagator"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type Trace struct {
	TracerProvider trace.TracerProvider
	ServiceName    string
}

var noopTracer = noop.NewTracerProvider().Tracer("noop")

func NewTrace(conf *config.Configuration) (*Trace, func(), error) {
	if conf == nil || !conf.Telemetry.Trace.Enabled {
		return NewNoopTrace(), func() {}, nil
	}
	// http:// 端點會自動使用不加密連線
	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpointURL(conf.Telemetry.Trace.EndpointUrl),
		otlptracehttp.WithRetry(otlptracehttp.RetryConfig{
			Enabled:         true,
			InitialInterval: 5 * time.Second,
			MaxInterval:     10 * time.Second,
			MaxElapsedTime:  60 * time.Second,
		}),
		otlptracehttp.WithTimeout(30*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(samplerOf(conf.Telemetry.Trace.SampleRatio)),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(conf.App.Name),
			semconv.ServiceVersion(conf.App.Version),
			semconv.DeploymentEnvironmentName(conf.App.Env),
		)),
	)

	otel.SetTracerProvider(tp)
	propagators := []propagation.TextMapPropagator{
		propagation.TraceContext{},
		propagation.Baggage{},
	}
	if conf.Telemetry.Trace.GCPPropagation {
		// 從 Cloud Load Balancer 的 X-Cloud-Trace-Context 接續 trace（只讀不寫）
		propagators = append(propagators, gcppropagator.CloudTraceOneWayPropagator{})
	}
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagators...))
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}
	return &Trace{
		TracerProvider: tp,
		ServiceName:    conf.App.Name,
	}, cleanup, nil
}

// samplerOf 尊重上游的取樣決定，自己開頭的 trace 才依比例取樣
func samplerOf(ratio float64) sdktrace.Sampler {
	if ratio <= 0 || ratio >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// NewNoopTrace 不輸出任何 span，供測試與 CLI 使用
func NewNoopTrace() *Trace {
	return &Trace{}
}

func (t *Trace) StartSpanForLayer(
	ctx context.Context,
	spanName core.TraceSpanName,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	tracer := noopTracer
	if t.TracerProvider != nil {
		tracer = t.TracerProvider.Tracer(t.ServiceName)
	}
	return tracer.Start(ctx, string(spanName), opts...)
}

// startSpanAny 同時接受 *gin.Context（handler）與 context.Context（service、repository）。
// 未指定名稱時 handler 以 handler 函式命名，其餘以呼叫 WithSpan 的方法命名。
func (t *Trace) startSpanAny(parent any, name ...string) (context.Context, trace.Span) {
	n := ""
	if len(name) > 0 {
		n = strings.TrimSpace(name[0])
	}
	switch p := parent.(type) {
	case *gin.Context:
		if n == "" {
			n = spanNameFromGin(p)
		}
		ctx, span := t.StartSpanForLayer(traceContextOf(p), core.TraceSpanName(n))
		p.Set(core.ContextTraceKey, ctx)
		return ctx, span
	case context.Context:
		if n == "" {
			// 0 callerFuncName, 1 startSpanAny, 2 WithSpan, 3 呼叫者
			n = shortFuncName(callerFuncName(3))
		}
		return t.StartSpanForLayer(p, core.TraceSpanName(n))
	default:
		if n == "" {
			n = "unknown"
		}
		return t.StartSpanForLayer(context.Background(), core.TraceSpanName(n))
	}
}

// 統一結束 span（含錯誤標註）
func (t *Trace) EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// traceContextOf 取得上一層 middleware 或 handler 留下的最新 ctx
func traceContextOf(c *gin.Context) context.Context {
	if ctx, ok := c.Value(core.ContextTraceKey).(context.Context); ok {
		return ctx
	}
	return c.Request.Context()
}

// ApplyTraceAttributes 依 `trace:"name[,omitempty]"` tag 把欄位寫成 span attribute
func (t *Trace) ApplyTraceAttributes(span trace.Span, obj interface{}) {
	if span == nil || obj == nil || !span.IsRecording() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			span.RecordError(fmt.Errorf("ApplyTraceAttributes panic: %v", r))
		}
	}()
	span.SetAttributes(traceAttributes(reflect.ValueOf(obj))...)
}

func traceAttributes(val reflect.Value) []attribute.KeyValue {
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil
	}
	typ := val.Type()

	var attrs []attribute.KeyValue
	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("trace")
		if tag == "" {
			continue
		}
		key, opts, _ := strings.Cut(tag, ",")
		fieldVal := val.Field(i)
		if !fieldVal.IsValid() || !fieldVal.CanInterface() {
			continue
		}
		if opts == "omitempty" && fieldVal.IsZero() {
			continue
		}

		switch fieldVal.Kind() {
		case reflect.String:
			attrs = append(attrs, attribute.String(key, fieldVal.String()))
		case reflect.Bool:
			attrs = append(attrs, attribute.Bool(key, fieldVal.Bool()))
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			attrs = append(attrs, attribute.Int64(key, fieldVal.Int()))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			attrs = append(attrs, attribute.Int64(key, int64(fieldVal.Uint())))
		case reflect.Float32, reflect.Float64:
			attrs = append(attrs, attribute.Float64(key, fieldVal.Float()))
		case reflect.Slice, reflect.Array:
			if fieldVal.Type().Elem().Kind() == reflect.String {
				strs := make([]string, 0, fieldVal.Len())
				for j := 0; j < fieldVal.Len(); j++ {
					strs = append(strs, fieldVal.Index(j).String())
				}
				attrs = append(attrs, attribute.StringSlice(key, strs))
			}
		case reflect.Struct, reflect.Ptr:
			attrs = append(attrs, traceAttributes(fieldVal)...)
		case reflect.Map:
			if fieldVal.Type().Key().Kind() != reflect.String {
				continue
			}
			iter := fieldVal.MapRange()
			for iter.Next() {
				mapKey := key + "." + iter.Key().String()
				switch mapVal := iter.Value(); mapVal.Kind() {
				case reflect.String:
					attrs = append(attrs, attribute.String(mapKey, mapVal.String()))
				case reflect.Int, reflect.Int64:
					attrs = append(attrs, attribute.Int64(mapKey, mapVal.Int()))
				case reflect.Float64, reflect.Float32:
					attrs = append(attrs, attribute.Float64(mapKey, mapVal.Float()))
				case reflect.Bool:
					attrs = append(attrs, attribute.Bool(mapKey, mapVal.Bool()))
				}
			}
		}
	}
	return attrs
}

func (t *Trace) WithSpan(parent interface{}, name ...string) (context.Context, trace.Span, func(error)) {
	ctx, span := t.startSpanAny(parent, name...)
	end := func(err error) {
		t.EndSpan(span, err)
	}
	return ctx, span, end
}

// shortFuncName 把 runtime 函式全名縮成 Type.Method，例如
// agentmarket/internal/service.(*ListingService).Create-fm -> ListingService.Create
func shortFuncName(full string) string {
	if i := strings.LastIndex(full, "/"); i >= 0 {
		full = full[i+1:]
	}
	full = strings.TrimSuffix(full, "-fm")
	if i := strings.Index(full, ".func"); i >= 0 {
		full = full[:i]
	}
	// 去掉 package 名
	if _, rest, ok := strings.Cut(full, "."); ok {
		full = rest
	}
	full = strings.NewReplacer("(*", "", "(", "", ")", "").Replace(full)
	// 泛型型參
	if open := strings.Index(full, "["); open >= 0 {
		if end := strings.Index(full[open:], "]"); end >= 0 {
			full = full[:open] + full[open+end+1:]
		}
	}
	return full
}

func spanNameFromGin(c *gin.Context) string {
	if hn := c.HandlerName(); hn != "" {
		return shortFuncName(hn)
	}
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	return c.Request.Method + " " + route
}

func callerFuncName(skip int) string {
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		return fn.Name()
	}
	return ""
}
