package sink

import (
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/db/write_buffer"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/trace/model"
	"go.uber.org/zap"
)

// ElasticsearchTraceSink hands finished spans to a buffered bulk writer.
type ElasticsearchTraceSink struct {
	writeBuffer write_buffer.DatabaseWriteBuffer[*model.Span]
	logger      *zap.Logger
}

func NewElasticsearchTraceSink(
	writeBuffer write_buffer.DatabaseWriteBuffer[*model.Span],
	logger *zap.Logger,
) *ElasticsearchTraceSink {
	return &ElasticsearchTraceSink{
		writeBuffer: writeBuffer,
		logger:      logger,
	}
}

func (s *ElasticsearchTraceSink) ConsumeTrace(trace *model.Trace) {
	s.writeBuffer.WriteToBuffer(trace.Spans)
	s.logger.Debug(
		"Buffered trace spans for indexing",
		zap.String("trace_id", trace.TraceID),
		zap.Int("spans", len(trace.Spans)),
	)
}
