package core

import (
	"context"
	"sort"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Logger, LoggerProvider, and FieldsLogger are aliases onto glog's
// interfaces, exactly as the teacher's core/contracts.go does, so callers
// never need to import glog directly to satisfy a Runtime option.
type Logger = glog.Logger
type LoggerProvider = glog.LoggerProvider
type FieldsLogger = glog.FieldsLogger

// ProgressRecorder is the counter/histogram seam spec.md §2 item 10 and §9
// describe as "pass a callback + opaque context": the resolver records a
// counter tick per fixpoint pass, the download layer an histogram
// observation per byte-count tick.
type ProgressRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// NopProgressRecorder is the default ProgressRecorder, used whenever no
// Option supplies one.
type NopProgressRecorder struct{}

func (NopProgressRecorder) IncCounter(context.Context, string, int64, map[string]string)      {}
func (NopProgressRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

var _ ProgressRecorder = NopProgressRecorder{}

// Tracer wraps structured debug tracing, kept as a distinct seam from
// ProgressRecorder so a caller can enable verbose resolver/download
// tracing without also wiring metrics collection.
type Tracer interface {
	Trace(ctx context.Context, message string, fields map[string]any)
}

// NopTracer discards every trace call.
type NopTracer struct{}

func (NopTracer) Trace(context.Context, string, map[string]any) {}

var _ Tracer = NopTracer{}

// LogTracer routes Trace calls through a Logger, matching the teacher's
// observeOperation field-flattening shape.
type LogTracer struct {
	Logger Logger
}

func (t LogTracer) Trace(ctx context.Context, message string, fields map[string]any) {
	if t.Logger == nil {
		return
	}
	logger := t.Logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fl, ok := logger.(FieldsLogger); ok {
		logger = fl.WithFields(cloneFields(fields))
	}
	logger.Debug(message, flattenFields(fields)...)
}

var _ Tracer = LogTracer{}

// Observe is a pass/operation-boundary helper shared by resolver and
// download: it increments a counter, observes a duration histogram, and
// traces the outcome, mirroring the teacher's Service.observeOperation
// shape but decoupled from any particular struct so both resolver.Resolve
// and download.DownloadIfMissing can call it directly with their own
// ProgressRecorder/Tracer pair.
func Observe(ctx context.Context, recorder ProgressRecorder, tracer Tracer, startedAt time.Time, operation string, err error, fields map[string]string) {
	operation = normalizeOperation(operation)
	if operation == "" {
		operation = "unknown"
	}
	status := "success"
	if err != nil {
		status = "failure"
	}

	tags := cloneTags(fields)
	tags["operation"] = operation
	tags["status"] = status

	if recorder != nil {
		recorder.IncCounter(ctx, "low."+operation+".total", 1, tags)
		recorder.ObserveHistogram(ctx, "low."+operation+".duration_ms", float64(time.Since(startedAt).Milliseconds()), tags)
	}

	if tracer == nil {
		return
	}
	traceFields := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		traceFields[k] = v
	}
	traceFields["status"] = status
	traceFields["duration_ms"] = time.Since(startedAt).Milliseconds()
	if err != nil {
		traceFields["error"] = err.Error()
		enrichErrorFields(traceFields, err)
		tracer.Trace(ctx, operation+" failed", traceFields)
		return
	}
	tracer.Trace(ctx, operation+" succeeded", traceFields)
}

func cloneFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return copied
}

func cloneTags(tags map[string]string) map[string]string {
	if len(tags) == 0 {
		return map[string]string{}
	}
	copied := make(map[string]string, len(tags))
	for k, v := range tags {
		copied[k] = v
	}
	return copied
}

func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	return args
}

func normalizeOperation(operation string) string {
	operation = strings.TrimSpace(strings.ToLower(operation))
	operation = strings.ReplaceAll(operation, " ", "_")
	operation = strings.ReplaceAll(operation, "-", "_")
	return operation
}

func enrichErrorFields(fields map[string]any, err error) {
	if len(fields) == 0 || err == nil {
		return
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr == nil {
		return
	}
	if richErr.Category != "" {
		fields["error_category"] = richErr.Category.String()
	}
	if richErr.Code != 0 {
		fields["error_code"] = richErr.Code
	}
	if strings.TrimSpace(richErr.TextCode) != "" {
		fields["error_text_code"] = strings.TrimSpace(richErr.TextCode)
	}
}
