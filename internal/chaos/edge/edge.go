package edge

import (
	"context"
	"fmt"
	"time"

	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/config"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/model"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/random"
	"go.uber.org/zap"
)

// Config holds the edge tier's fault menu. Probabilities are relative
// weights; the store's fire rate scales them all, and the master switch gates
// the whole tier. The payload ceiling is a deterministic threshold, never
// probabilistic.
type Config struct {
	PayloadCeilingBytes        int64
	BlockedRegions             []string
	OriginRegions              []string
	RateLimitProbability       float64
	GeoBlockProbability        float64
	EdgeTimeoutProbability     float64
	BadGatewayProbability      float64
	ComputeExceededProbability float64
	TLSFailureProbability      float64
	TimeoutWaitMinMs           int
	TimeoutWaitMaxMs           int
	BadGatewayWaitMinMs        int
	BadGatewayWaitMaxMs        int
	TLSWaitMinMs               int
	TLSWaitMaxMs               int
}

func DefaultConfig() Config {
	return Config{
		PayloadCeilingBytes:        1 << 20,
		BlockedRegions:             []string{"KP", "IR"},
		OriginRegions:              []string{"US", "DE", "JP", "BR", "IN", "KP", "IR"},
		RateLimitProbability:       0.10,
		GeoBlockProbability:        0.55,
		EdgeTimeoutProbability:     0.06,
		BadGatewayProbability:      0.08,
		ComputeExceededProbability: 0.04,
		TLSFailureProbability:      0.03,
		TimeoutWaitMinMs:           3000,
		TimeoutWaitMaxMs:           6000,
		BadGatewayWaitMinMs:        300,
		BadGatewayWaitMaxMs:        800,
		TLSWaitMinMs:               100,
		TLSWaitMaxMs:               300,
	}
}

// RequestInfo is what the edge sees of an inbound request.
type RequestInfo struct {
	Route         string
	ContentLength int64
	OriginRegion  string
}

// ForwardingMetadata is attached to requests the edge lets through.
type ForwardingMetadata struct {
	RequestID    string
	OriginRegion string
	EnteredAt    time.Time
}

// EdgeGateway simulates the CDN/edge network hop in front of the gateway.
// Checks run in a fixed order and the first fault to fire short-circuits the
// rest, so at most one edge fault fires per request.
type EdgeGateway interface {
	Inspect(ctx context.Context, requestID string, info RequestInfo) (ForwardingMetadata, error)
}

type EdgeGatewayImpl struct {
	store  config.FaultConfigStore
	rand   random.Source
	config Config
	logger *zap.Logger
}

func NewEdgeGatewayImpl(
	store config.FaultConfigStore,
	randSource random.Source,
	edgeConfig Config,
	logger *zap.Logger,
) *EdgeGatewayImpl {
	return &EdgeGatewayImpl{
		store:  store,
		rand:   randSource,
		config: edgeConfig,
		logger: logger,
	}
}

func (e *EdgeGatewayImpl) Inspect(
	ctx context.Context,
	requestID string,
	info RequestInfo,
) (ForwardingMetadata, error) {
	metadata := ForwardingMetadata{
		RequestID:    requestID,
		OriginRegion: e.resolveRegion(info),
		EnteredAt:    time.Now().UTC(),
	}
	snapshot := e.store.Get()
	faultContext := map[string]interface{}{
		"route":         info.Route,
		"origin_region": metadata.OriginRegion,
		"request_id":    requestID,
	}

	if e.fires(snapshot, model.FaultKindEdgeRateLimited, e.config.RateLimitProbability) {
		return metadata, e.fault(model.FaultKindEdgeRateLimited, faultContext)
	}

	if e.isBlockedRegion(metadata.OriginRegion) &&
		e.fires(snapshot, model.FaultKindGeoBlocked, e.config.GeoBlockProbability) {
		return metadata, e.fault(model.FaultKindGeoBlocked, faultContext)
	}

	// Deterministic threshold check: fires whenever the body exceeds the
	// ceiling, regardless of the fire rate.
	if snapshot.Enabled &&
		snapshot.EnabledKinds[model.FaultKindPayloadTooLarge] &&
		info.ContentLength > e.config.PayloadCeilingBytes {
		faultContext["content_length"] = info.ContentLength
		faultContext["ceiling_bytes"] = e.config.PayloadCeilingBytes
		return metadata, e.fault(model.FaultKindPayloadTooLarge, faultContext)
	}

	if e.fires(snapshot, model.FaultKindEdgeTimeout, e.config.EdgeTimeoutProbability) {
		waited := e.wait(ctx, e.config.TimeoutWaitMinMs, e.config.TimeoutWaitMaxMs)
		faultContext["simulated_wait_ms"] = waited.Milliseconds()
		return metadata, e.fault(model.FaultKindEdgeTimeout, faultContext)
	}

	if e.fires(snapshot, model.FaultKindEdgeBadGateway, e.config.BadGatewayProbability) {
		waited := e.wait(ctx, e.config.BadGatewayWaitMinMs, e.config.BadGatewayWaitMaxMs)
		faultContext["simulated_wait_ms"] = waited.Milliseconds()
		return metadata, e.fault(model.FaultKindEdgeBadGateway, faultContext)
	}

	if e.fires(snapshot, model.FaultKindComputeExceeded, e.config.ComputeExceededProbability) {
		return metadata, e.fault(model.FaultKindComputeExceeded, faultContext)
	}

	if e.fires(snapshot, model.FaultKindTLSHandshakeFailed, e.config.TLSFailureProbability) {
		waited := e.wait(ctx, e.config.TLSWaitMinMs, e.config.TLSWaitMaxMs)
		faultContext["simulated_wait_ms"] = waited.Milliseconds()
		return metadata, e.fault(model.FaultKindTLSHandshakeFailed, faultContext)
	}

	return metadata, nil
}

func (e *EdgeGatewayImpl) fires(
	snapshot config.FaultConfig,
	kind model.FaultKind,
	probability float64,
) bool {
	if !snapshot.Enabled || !snapshot.EnabledKinds[kind] {
		return false
	}
	return e.rand.Float64() < probability*snapshot.FireRate
}

func (e *EdgeGatewayImpl) fault(kind model.FaultKind, faultContext map[string]interface{}) error {
	record, ok := model.RecordForKind(kind)
	if !ok {
		return fmt.Errorf("no taxonomy record for edge fault kind %s", kind)
	}
	faultErr := model.NewFaultError(record, faultContext)
	e.logger.Info(
		"Edge fault fired",
		zap.String("kind", string(kind)),
		zap.String("code", faultErr.Code),
	)
	return faultErr
}

// wait simulates the edge stalling before it answers. The request is never
// abandoned: a well-formed error response still follows.
func (e *EdgeGatewayImpl) wait(ctx context.Context, minMs int, maxMs int) time.Duration {
	ms := minMs
	if spread := maxMs - minMs; spread > 0 {
		ms += e.rand.IntN(spread + 1)
	}
	chosen := time.Duration(ms) * time.Millisecond

	timer := time.NewTimer(chosen)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
	return chosen
}

func (e *EdgeGatewayImpl) resolveRegion(info RequestInfo) string {
	if info.OriginRegion != "" {
		return info.OriginRegion
	}
	if len(e.config.OriginRegions) == 0 {
		return "US"
	}
	return e.config.OriginRegions[e.rand.IntN(len(e.config.OriginRegions))]
}

func (e *EdgeGatewayImpl) isBlockedRegion(region string) bool {
	for _, blocked := range e.config.BlockedRegions {
		if blocked == region {
			return true
		}
	}
	return false
}
