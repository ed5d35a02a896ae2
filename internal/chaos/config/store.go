package config

import (
	"sync"

	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/model"
	"go.uber.org/zap"
)

// FaultConfig is the process-wide chaos control plane state. Snapshots
// returned by the store are copies and safe to retain.
type FaultConfig struct {
	Enabled        bool                         `json:"enabled"`
	FireRate       float64                      `json:"fireRate"`
	TimeoutAsError bool                         `json:"timeoutAsError"`
	EnabledKinds   map[model.FaultKind]bool     `json:"enabledKinds"`
}

// PartialFaultConfig is a merge request: only non-nil fields are applied.
// EnabledKinds entries are merged key by key.
type PartialFaultConfig struct {
	Enabled        *bool                         `json:"enabled,omitempty"`
	FireRate       *float64                      `json:"fireRate,omitempty"`
	TimeoutAsError *bool                         `json:"timeoutAsError,omitempty"`
	EnabledKinds   map[model.FaultKind]*bool     `json:"enabledKinds,omitempty"`
}

// FaultConfigStore is the single shared mutable resource of the engine.
// Reads always observe a fully applied configuration.
type FaultConfigStore interface {
	Get() FaultConfig
	Merge(partial PartialFaultConfig) FaultConfig
}

type FaultConfigStoreImpl struct {
	mu       sync.RWMutex
	snapshot FaultConfig
	logger   *zap.Logger
}

// NewFaultConfigStoreImpl creates a store with the safe default: chaos
// disabled, every kind armed, a moderate fire rate once enabled.
func NewFaultConfigStoreImpl(logger *zap.Logger) *FaultConfigStoreImpl {
	return &FaultConfigStoreImpl{
		snapshot: DefaultFaultConfig(),
		logger:   logger,
	}
}

func DefaultFaultConfig() FaultConfig {
	enabledKinds := make(map[model.FaultKind]bool, len(model.AllFaultKinds))
	for _, kind := range model.AllFaultKinds {
		enabledKinds[kind] = true
	}
	return FaultConfig{
		Enabled:      false,
		FireRate:     0.25,
		EnabledKinds: enabledKinds,
	}
}

func (s *FaultConfigStoreImpl) Get() FaultConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyConfig(s.snapshot)
}

// Merge applies only the fields present in partial and returns the resulting
// snapshot. Inputs are sanitized rather than rejected: the control plane must
// always remain reachable.
func (s *FaultConfigStoreImpl) Merge(partial PartialFaultConfig) FaultConfig {
	s.mu.Lock()
	next := copyConfig(s.snapshot)
	if partial.Enabled != nil {
		next.Enabled = *partial.Enabled
	}
	if partial.FireRate != nil {
		next.FireRate = clampRate(*partial.FireRate)
	}
	if partial.TimeoutAsError != nil {
		next.TimeoutAsError = *partial.TimeoutAsError
	}
	for kind, enabled := range partial.EnabledKinds {
		if enabled == nil || !model.IsKnownFaultKind(kind) {
			continue
		}
		next.EnabledKinds[kind] = *enabled
	}
	s.snapshot = next
	s.mu.Unlock()

	s.logger.Info(
		"Fault injection configuration updated",
		zap.Bool("enabled", next.Enabled),
		zap.Float64("fire_rate", next.FireRate),
		zap.Bool("timeout_as_error", next.TimeoutAsError),
	)
	return copyConfig(next)
}

func copyConfig(config FaultConfig) FaultConfig {
	enabledKinds := make(map[model.FaultKind]bool, len(config.EnabledKinds))
	for kind, enabled := range config.EnabledKinds {
		enabledKinds[kind] = enabled
	}
	config.EnabledKinds = enabledKinds
	return config
}

func clampRate(rate float64) float64 {
	if rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}
