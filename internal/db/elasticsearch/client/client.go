package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
)

type RefreshRate string

const (
	Immediate RefreshRate = "true"
	Async     RefreshRate = "false"
	Wait      RefreshRate = "wait_for"
)

// SpanDocumentWriter is the thin slice of Elasticsearch the trace sink needs.
type SpanDocumentWriter interface {
	BulkIndex(ctx context.Context, data []map[string]interface{}, index string) error
}

type SpanDocumentWriterImpl struct {
	es          *elasticsearch.Client
	refreshRate string
}

func NewSpanDocumentWriterImpl(es *elasticsearch.Client, refreshRate RefreshRate) *SpanDocumentWriterImpl {
	return &SpanDocumentWriterImpl{es: es, refreshRate: string(refreshRate)}
}

func (w *SpanDocumentWriterImpl) BulkIndex(
	ctx context.Context,
	data []map[string]interface{},
	index string,
) error {
	var buf bytes.Buffer
	for _, document := range data {
		metaJSON, err := json.Marshal(map[string]interface{}{"index": map[string]interface{}{}})
		if err != nil {
			return fmt.Errorf("error marshaling meta to bulk index: %w", err)
		}
		buf.Write(metaJSON)
		buf.WriteByte('\n')

		documentJSON, err := json.Marshal(document)
		if err != nil {
			return fmt.Errorf("error marshaling document to bulk index: %w", err)
		}
		buf.Write(documentJSON)
		buf.WriteByte('\n')
	}

	res, err := w.es.Bulk(
		bytes.NewReader(buf.Bytes()),
		w.es.Bulk.WithIndex(index),
		w.es.Bulk.WithContext(ctx),
		w.es.Bulk.WithRefresh(w.refreshRate),
	)
	if err != nil {
		return fmt.Errorf("failed to bulk index in Elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk index error: %s", res.String())
	}
	return nil
}
