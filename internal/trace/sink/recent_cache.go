package sink

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/ristretto"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/trace/model"
	"go.uber.org/zap"
)

var ErrTraceNotFound = errors.New("trace not found in the recent trace cache")

// RecentTraceCache keeps the most recent completed traces in memory so
// operators can inspect what a chaos run produced without a collector.
// Eviction is left to ristretto's LRU/LFU policies.
type RecentTraceCache struct {
	cache  *ristretto.Cache
	logger *zap.Logger
}

func NewRecentTraceCache(cache *ristretto.Cache, logger *zap.Logger) *RecentTraceCache {
	return &RecentTraceCache{
		cache:  cache,
		logger: logger,
	}
}

func (c *RecentTraceCache) ConsumeTrace(trace *model.Trace) {
	set := c.cache.Set(trace.TraceID, trace, int64(len(trace.Spans)))
	if !set {
		c.logger.Warn("Recent trace cache rejected a trace", zap.String("trace_id", trace.TraceID))
	}
}

func (c *RecentTraceCache) Get(traceID string) (*model.Trace, error) {
	value, found := c.cache.Get(traceID)
	if !found {
		return nil, ErrTraceNotFound
	}
	trace, ok := value.(*model.Trace)
	if !ok {
		return nil, fmt.Errorf("value of unexpected type %T returned from trace cache", value)
	}
	return trace, nil
}

// Wait blocks until pending cache writes are visible. Used in tests.
func (c *RecentTraceCache) Wait() {
	c.cache.Wait()
}
