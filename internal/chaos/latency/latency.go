package latency

import (
	"context"
	"fmt"
	"time"

	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/config"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/engine"
	chaosModel "github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/model"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/random"
	traceModel "github.com/thedogwiththedataonit/opensea-demo-sub000/internal/trace/model"
	"go.uber.org/zap"
)

// Amplified range used when the timeout kind fires: the dependency hangs
// instead of rejecting the call.
const (
	AmplifiedMinMs = 3000
	AmplifiedMaxMs = 8000
)

// LatencySimulator injects a randomized delay for every operation. The delay
// suspends only the calling request; concurrent requests are unaffected.
type LatencySimulator interface {
	// Delay blocks for a uniform draw from [minMs, maxMs], or from the
	// amplified range when the timeout fault fires. The chosen delay is
	// recorded on span. Returns the chosen delay and whether it was
	// amplified; the error is non-nil when ctx is done first, or when an
	// amplified wait converts to a gateway-timeout fault under the
	// timeoutAsError setting.
	Delay(ctx context.Context, span *traceModel.Span, minMs int, maxMs int) (time.Duration, bool, error)
}

type LatencySimulatorImpl struct {
	engine         engine.FaultDecisionEngine
	store          config.FaultConfigStore
	rand           random.Source
	amplifiedMinMs int
	amplifiedMaxMs int
	logger         *zap.Logger
}

func NewLatencySimulatorImpl(
	decisionEngine engine.FaultDecisionEngine,
	store config.FaultConfigStore,
	randSource random.Source,
	logger *zap.Logger,
) *LatencySimulatorImpl {
	return &LatencySimulatorImpl{
		engine:         decisionEngine,
		store:          store,
		rand:           randSource,
		amplifiedMinMs: AmplifiedMinMs,
		amplifiedMaxMs: AmplifiedMaxMs,
		logger:         logger,
	}
}

func (l *LatencySimulatorImpl) Delay(
	ctx context.Context,
	span *traceModel.Span,
	minMs int,
	maxMs int,
) (time.Duration, bool, error) {
	thresholdMs := maxMs
	amplified := l.engine.ShouldFire(chaosModel.FaultKindTimeout)
	if amplified {
		minMs, maxMs = l.amplifiedMinMs, l.amplifiedMaxMs
		l.logger.Info("Amplifying latency to simulate a hung dependency")
	}

	chosen := l.drawDelay(minMs, maxMs)
	if span != nil {
		span.SetAttribute("simulated.delay_ms", fmt.Sprintf("%d", chosen.Milliseconds()))
		span.SetAttribute("simulated.timeout_amplified", fmt.Sprintf("%t", amplified))
	}

	timer := time.NewTimer(chosen)
	defer timer.Stop()
	select {
	case <-timer.C:
		if amplified && l.store.Get().TimeoutAsError {
			return chosen, amplified, l.timeoutFault(span, thresholdMs, chosen)
		}
		return chosen, amplified, nil
	case <-ctx.Done():
		return chosen, amplified, ctx.Err()
	}
}

// timeoutFault converts a completed amplified wait into the gateway-timeout
// contract. The wait still happens first; the dependency hangs and then the
// caller gives up on it.
func (l *LatencySimulatorImpl) timeoutFault(
	span *traceModel.Span,
	thresholdMs int,
	waited time.Duration,
) error {
	record, _ := chaosModel.RecordForKind(chaosModel.FaultKindTimeout)
	faultContext := map[string]interface{}{
		"threshold_ms":      thresholdMs,
		"simulated_wait_ms": waited.Milliseconds(),
	}
	if span != nil {
		faultContext["upstream_service"] = span.ServiceName
		faultContext["operation"] = span.Name
	}
	return chaosModel.NewFaultError(record, faultContext)
}

func (l *LatencySimulatorImpl) drawDelay(minMs int, maxMs int) time.Duration {
	if maxMs < minMs {
		maxMs = minMs
	}
	ms := minMs
	if span := maxMs - minMs; span > 0 {
		ms += l.rand.IntN(span + 1)
	}
	return time.Duration(ms) * time.Millisecond
}
