package engine

import (
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/config"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/model"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/random"
	"go.uber.org/zap"
)

// FaultDecisionEngine decides, per call, whether a fault of a given kind
// should fire, and constructs the taxonomy-conforming error when it does.
type FaultDecisionEngine interface {
	// ShouldFire draws once against the current configuration. Each call
	// observes a single consistent config snapshot.
	ShouldFire(kind model.FaultKind) bool
	// InjectIfDue returns a FaultError for kind when the draw fires,
	// otherwise nil. The supplied context is attached to the error.
	InjectIfDue(kind model.FaultKind, context map[string]interface{}) error
}

type FaultDecisionEngineImpl struct {
	store  config.FaultConfigStore
	rand   random.Source
	logger *zap.Logger
}

func NewFaultDecisionEngineImpl(
	store config.FaultConfigStore,
	randSource random.Source,
	logger *zap.Logger,
) *FaultDecisionEngineImpl {
	return &FaultDecisionEngineImpl{
		store:  store,
		rand:   randSource,
		logger: logger,
	}
}

func (e *FaultDecisionEngineImpl) ShouldFire(kind model.FaultKind) bool {
	snapshot := e.store.Get()
	return e.shouldFireWithSnapshot(snapshot, kind)
}

func (e *FaultDecisionEngineImpl) shouldFireWithSnapshot(
	snapshot config.FaultConfig,
	kind model.FaultKind,
) bool {
	if !snapshot.Enabled {
		return false
	}
	if !snapshot.EnabledKinds[kind] {
		return false
	}
	return e.rand.Float64() < snapshot.FireRate
}

func (e *FaultDecisionEngineImpl) InjectIfDue(
	kind model.FaultKind,
	context map[string]interface{},
) error {
	snapshot := e.store.Get()
	if !e.shouldFireWithSnapshot(snapshot, kind) {
		e.logger.Debug("Fault not injected", zap.String("kind", string(kind)))
		return nil
	}
	record, ok := model.RecordForKind(kind)
	if !ok {
		e.logger.Warn("Asked to inject unknown fault kind", zap.String("kind", string(kind)))
		return nil
	}

	enrichedContext := make(map[string]interface{}, len(context)+1)
	for key, value := range context {
		enrichedContext[key] = value
	}
	enrichedContext["fire_rate"] = snapshot.FireRate

	faultErr := model.NewFaultError(record, enrichedContext)
	e.logger.Info(
		"Injecting fault",
		zap.String("kind", string(kind)),
		zap.String("code", faultErr.Code),
		zap.Int("status", faultErr.HTTPStatus),
	)
	return faultErr
}
