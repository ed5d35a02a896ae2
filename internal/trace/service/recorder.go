package service

import (
	"fmt"
	"time"

	chaosModel "github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/model"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/random"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/trace/model"
	"go.uber.org/zap"
)

// TraceSink consumes completed traces. Implementations decide the wire
// format and destination; the recorder only guarantees well-formed trees.
type TraceSink interface {
	ConsumeTrace(trace *model.Trace)
}

// TraceRecorder builds the span tree for one logical request. Spans are
// passed explicitly (parent-id discipline), never carried as ambient state.
// A trace is only ever mutated by the task that owns it.
type TraceRecorder interface {
	StartTrace(name string, serviceName string, attributes map[string]string) (*model.Trace, *model.Span)
	StartChild(
		trace *model.Trace,
		parent *model.Span,
		name string,
		serviceName string,
		attributes map[string]string,
	) *model.Span
	End(trace *model.Trace, span *model.Span, status model.StatusCode, workErr error)
	RunWithSpan(
		trace *model.Trace,
		parent *model.Span,
		name string,
		serviceName string,
		attributes map[string]string,
		work func(span *model.Span) error,
	) error
	ForceEndOpen(trace *model.Trace, cause error)
}

const (
	errorSpanMinDelayMs = 2
	errorSpanMaxDelayMs = 8
)

type TraceRecorderImpl struct {
	rand   random.Source
	sink   TraceSink
	logger *zap.Logger
}

func NewTraceRecorderImpl(
	randSource random.Source,
	sink TraceSink,
	logger *zap.Logger,
) *TraceRecorderImpl {
	return &TraceRecorderImpl{
		rand:   randSource,
		sink:   sink,
		logger: logger,
	}
}

func (r *TraceRecorderImpl) StartTrace(
	name string,
	serviceName string,
	attributes map[string]string,
) (*model.Trace, *model.Span) {
	traceID := r.hexID(16)
	root := &model.Span{
		SpanID:      r.hexID(8),
		TraceID:     traceID,
		Name:        name,
		ServiceName: serviceName,
		StartTime:   time.Now().UTC(),
		Status:      model.UNSET,
		Attributes:  copyAttributes(attributes),
	}
	trace := &model.Trace{
		TraceID: traceID,
		Spans:   []*model.Span{root},
	}
	return trace, root
}

func (r *TraceRecorderImpl) StartChild(
	trace *model.Trace,
	parent *model.Span,
	name string,
	serviceName string,
	attributes map[string]string,
) *model.Span {
	span := &model.Span{
		SpanID:       r.hexID(8),
		ParentSpanID: parent.SpanID,
		TraceID:      trace.TraceID,
		Name:         name,
		ServiceName:  serviceName,
		StartTime:    time.Now().UTC(),
		Status:       model.UNSET,
		Attributes:   copyAttributes(attributes),
	}
	trace.Spans = append(trace.Spans, span)
	return span
}

// End terminates span exactly once. Open descendants are force-ended first so
// a parent never outlives its children in the recorded tree. Ending the root
// hands the completed trace to the sink.
func (r *TraceRecorderImpl) End(
	trace *model.Trace,
	span *model.Span,
	status model.StatusCode,
	workErr error,
) {
	r.endOpenDescendants(trace, span, workErr)

	var errorInfo *model.ErrorInfo
	if status == model.ERROR {
		errorInfo = buildErrorInfo(workErr)
	}
	if err := span.EndWith(status, errorInfo, time.Now().UTC()); err != nil {
		r.logger.Error("Span ended more than once", zap.Error(err))
		return
	}

	if span.IsRoot() {
		r.dispatch(trace)
	}
}

// RunWithSpan wraps work in a child span: tags it, runs it, records failure
// (including a synthesized error span) and re-raises, or marks it ok. The
// span is released on every path, panics included.
func (r *TraceRecorderImpl) RunWithSpan(
	trace *model.Trace,
	parent *model.Span,
	name string,
	serviceName string,
	attributes map[string]string,
	work func(span *model.Span) error,
) error {
	span := r.StartChild(trace, parent, name, serviceName, attributes)
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("panic in span %s: %v", name, recovered)
			r.recordFailure(trace, parent, span, panicErr)
			panic(recovered)
		}
	}()

	if workErr := work(span); workErr != nil {
		r.recordFailure(trace, parent, span, workErr)
		return workErr
	}
	r.End(trace, span, model.OK, nil)
	return nil
}

// ForceEndOpen terminates every still-open span with an error status, root
// last. Used when the owning request is canceled so no trace is left with a
// dangling span.
func (r *TraceRecorderImpl) ForceEndOpen(trace *model.Trace, cause error) {
	root := trace.Root()
	for _, span := range trace.OpenSpans() {
		if span == root {
			continue
		}
		r.endForced(span, cause)
	}
	if root != nil && !root.Ended() {
		r.endForced(root, cause)
		r.dispatch(trace)
	}
}

func (r *TraceRecorderImpl) recordFailure(
	trace *model.Trace,
	parent *model.Span,
	span *model.Span,
	workErr error,
) {
	r.End(trace, span, model.ERROR, workErr)
	r.synthesizeErrorSpan(trace, parent, span, workErr)
}

// synthesizeErrorSpan records a dedicated observer span as a sibling of the
// failed one, with its own small simulated processing latency. It observes
// the failure; it never handles it.
func (r *TraceRecorderImpl) synthesizeErrorSpan(
	trace *model.Trace,
	parent *model.Span,
	failed *model.Span,
	workErr error,
) {
	errorSpan := r.StartChild(
		trace,
		parent,
		failed.Name+".error",
		model.ServiceErrorReporter,
		map[string]string{
			"error.source_span": failed.SpanID,
			"error.detail":      fmt.Sprintf("at %s (%s): %v", failed.Name, failed.ServiceName, workErr),
		},
	)

	delayMs := errorSpanMinDelayMs + r.rand.IntN(errorSpanMaxDelayMs-errorSpanMinDelayMs+1)
	time.Sleep(time.Duration(delayMs) * time.Millisecond)
	errorSpan.SetAttribute("error.processing_delay_ms", fmt.Sprintf("%d", delayMs))

	if faultErr, ok := chaosModel.AsFaultError(workErr); ok {
		errorSpan.SetAttribute("error.code", faultErr.Code)
		errorSpan.SetAttribute("error.kind", string(faultErr.Kind))
		if faultErr.Kind == chaosModel.FaultKindTimeout {
			setTimeoutAttributes(errorSpan, faultErr)
		}
	}

	r.End(trace, errorSpan, model.ERROR, workErr)
}

func setTimeoutAttributes(errorSpan *model.Span, faultErr *chaosModel.FaultError) {
	for contextKey, attributeKey := range map[string]string{
		"upstream_service":  "timeout.upstream_service",
		"operation":         "timeout.operation",
		"threshold_ms":      "timeout.threshold_ms",
		"simulated_wait_ms": "timeout.simulated_wait_ms",
	} {
		if value, ok := faultErr.Context[contextKey]; ok {
			errorSpan.SetAttribute(attributeKey, fmt.Sprintf("%v", value))
		}
	}
}

func (r *TraceRecorderImpl) endOpenDescendants(
	trace *model.Trace,
	span *model.Span,
	workErr error,
) {
	for _, child := range trace.Children(span.SpanID) {
		if child.Ended() {
			continue
		}
		r.endOpenDescendants(trace, child, workErr)
		r.endForced(child, workErr)
	}
}

func (r *TraceRecorderImpl) endForced(span *model.Span, cause error) {
	if cause == nil {
		cause = fmt.Errorf("span %s force-ended before completing", span.Name)
	}
	if err := span.EndWith(model.ERROR, buildErrorInfo(cause), time.Now().UTC()); err != nil {
		r.logger.Error("Span ended more than once", zap.Error(err))
	}
}

func (r *TraceRecorderImpl) dispatch(trace *model.Trace) {
	if !trace.WellFormed() {
		r.logger.Error(
			"Refusing to dispatch malformed trace",
			zap.String("trace_id", trace.TraceID),
		)
		return
	}
	if r.sink != nil {
		r.sink.ConsumeTrace(trace)
	}
}

func buildErrorInfo(workErr error) *model.ErrorInfo {
	if workErr == nil {
		return &model.ErrorInfo{Code: "UNKNOWN", Message: "span ended in error without a cause"}
	}
	if faultErr, ok := chaosModel.AsFaultError(workErr); ok {
		return &model.ErrorInfo{
			Code:    faultErr.Code,
			Message: faultErr.Message,
			Context: faultErr.Context,
		}
	}
	return &model.ErrorInfo{
		Code:    "MARKET_INTERNAL_ERROR",
		Message: workErr.Error(),
	}
}

func (r *TraceRecorderImpl) hexID(byteCount int) string {
	const hexDigits = "0123456789abcdef"
	id := make([]byte, byteCount*2)
	for i := range id {
		id[i] = hexDigits[r.rand.IntN(len(hexDigits))]
	}
	return string(id)
}

func copyAttributes(attributes map[string]string) map[string]string {
	copied := make(map[string]string, len(attributes))
	for key, value := range attributes {
		copied[key] = value
	}
	return copied
}
