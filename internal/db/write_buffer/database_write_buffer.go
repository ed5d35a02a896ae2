package write_buffer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/db/elasticsearch/client"
	"go.uber.org/zap"
)

const WriteQueueSize = 30
const flushTimeOut = 10 * time.Second

// DatabaseWriteBuffer batches span documents so each finished trace does not
// cost one bulk request.
type DatabaseWriteBuffer[ValueType any] interface {
	WriteToBuffer(value []ValueType)
	Flush() error
}

type DatabaseWriteBufferImpl[ValueType any] struct {
	writeQueue  []ValueType
	writer      client.SpanDocumentWriter
	esIndexName string
	logger      *zap.Logger
	mu          sync.Mutex
}

func NewDatabaseWriteBufferImpl[ValueType any](
	writer client.SpanDocumentWriter,
	esIndexName string,
	logger *zap.Logger,
) *DatabaseWriteBufferImpl[ValueType] {
	return &DatabaseWriteBufferImpl[ValueType]{
		writeQueue:  []ValueType{},
		writer:      writer,
		esIndexName: esIndexName,
		logger:      logger,
	}
}

func (b *DatabaseWriteBufferImpl[ValueType]) WriteToBuffer(value []ValueType) {
	b.mu.Lock()
	b.writeQueue = append(b.writeQueue, value...)
	shouldFlush := len(b.writeQueue) > WriteQueueSize
	b.mu.Unlock()
	if shouldFlush {
		go func() {
			if err := b.Flush(); err != nil {
				b.logger.Error("Failed to flush to Elasticsearch", zap.Error(err))
			}
		}()
	}
}

func (b *DatabaseWriteBufferImpl[ValueType]) Flush() error {
	b.mu.Lock()
	queued := b.writeQueue
	b.writeQueue = []ValueType{}
	b.mu.Unlock()
	if len(queued) == 0 {
		return nil
	}

	documents, err := toDocuments(queued)
	if err != nil {
		return fmt.Errorf("error converting write queue to documents: %w", err)
	}

	bulkCtx, cancel := context.WithTimeout(context.Background(), flushTimeOut)
	defer cancel()
	if err := b.writer.BulkIndex(bulkCtx, documents, b.esIndexName); err != nil {
		return fmt.Errorf("error bulk indexing write queue: %w", err)
	}
	return nil
}

func toDocuments[ValueType any](values []ValueType) ([]map[string]interface{}, error) {
	documents := make([]map[string]interface{}, len(values))
	for i, value := range values {
		valueJSON, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("error marshaling value: %w", err)
		}
		var document map[string]interface{}
		if err := json.Unmarshal(valueJSON, &document); err != nil {
			return nil, fmt.Errorf("error unmarshaling value to document: %w", err)
		}
		documents[i] = document
	}
	return documents, nil
}
