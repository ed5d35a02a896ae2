package sink

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/trace/model"
	protoTrace "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	commonv1 "go.opentelemetry.io/proto/otlp/common/v1"
	resourcev1 "go.opentelemetry.io/proto/otlp/resource/v1"
	tracev1 "go.opentelemetry.io/proto/otlp/trace/v1"
	"go.uber.org/zap"
)

const exportTimeout = 10 * time.Second

// OTLPTraceSink exports completed traces to an OTLP collector over gRPC.
// Spans are grouped per synthetic service so the collector sees a
// multi-service topology.
type OTLPTraceSink struct {
	client protoTrace.TraceServiceClient
	logger *zap.Logger
}

func NewOTLPTraceSink(client protoTrace.TraceServiceClient, logger *zap.Logger) *OTLPTraceSink {
	return &OTLPTraceSink{
		client: client,
		logger: logger,
	}
}

func (s *OTLPTraceSink) ConsumeTrace(trace *model.Trace) {
	request := &protoTrace.ExportTraceServiceRequest{
		ResourceSpans: toResourceSpans(trace),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()
		if _, err := s.client.Export(ctx, request); err != nil {
			s.logger.Error(
				"Failed to export trace to collector",
				zap.String("trace_id", trace.TraceID),
				zap.Error(err),
			)
		}
	}()
}

func toResourceSpans(trace *model.Trace) []*tracev1.ResourceSpans {
	spansByService := make(map[string][]*tracev1.Span)
	serviceOrder := make([]string, 0)
	for _, span := range trace.Spans {
		if _, seen := spansByService[span.ServiceName]; !seen {
			serviceOrder = append(serviceOrder, span.ServiceName)
		}
		spansByService[span.ServiceName] = append(spansByService[span.ServiceName], toProtoSpan(span))
	}

	resourceSpans := make([]*tracev1.ResourceSpans, 0, len(serviceOrder))
	for _, serviceName := range serviceOrder {
		resourceSpans = append(resourceSpans, &tracev1.ResourceSpans{
			Resource: &resourcev1.Resource{
				Attributes: []*commonv1.KeyValue{stringAttribute("service.name", serviceName)},
			},
			ScopeSpans: []*tracev1.ScopeSpans{
				{Spans: spansByService[serviceName]},
			},
		})
	}
	return resourceSpans
}

func toProtoSpan(span *model.Span) *tracev1.Span {
	attributes := make([]*commonv1.KeyValue, 0, len(span.Attributes))
	for key, value := range span.Attributes {
		attributes = append(attributes, stringAttribute(key, value))
	}

	traceID, _ := hex.DecodeString(span.TraceID)
	spanID, _ := hex.DecodeString(span.SpanID)
	parentSpanID, _ := hex.DecodeString(span.ParentSpanID)

	return &tracev1.Span{
		TraceId:           traceID,
		SpanId:            spanID,
		ParentSpanId:      parentSpanID,
		Name:              span.Name,
		Kind:              tracev1.Span_SPAN_KIND_INTERNAL,
		StartTimeUnixNano: uint64(span.StartTime.UnixNano()),
		EndTimeUnixNano:   uint64(span.EndTime.UnixNano()),
		Attributes:        attributes,
		Status:            toProtoStatus(span),
	}
}

func toProtoStatus(span *model.Span) *tracev1.Status {
	switch span.Status {
	case model.OK:
		return &tracev1.Status{Code: tracev1.Status_STATUS_CODE_OK}
	case model.ERROR:
		message := ""
		if span.ErrorInfo != nil {
			message = span.ErrorInfo.Message
		}
		return &tracev1.Status{Code: tracev1.Status_STATUS_CODE_ERROR, Message: message}
	default:
		return &tracev1.Status{Code: tracev1.Status_STATUS_CODE_UNSET}
	}
}

func stringAttribute(key string, value string) *commonv1.KeyValue {
	return &commonv1.KeyValue{
		Key: key,
		Value: &commonv1.AnyValue{
			Value: &commonv1.AnyValue_StringValue{StringValue: value},
		},
	}
}
