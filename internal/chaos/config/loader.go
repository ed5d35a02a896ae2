package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/model"
	"go.uber.org/zap"
)

// fileFaultConfig mirrors the chaos section of the gateway's YAML config.
type fileFaultConfig struct {
	Enabled        *bool            `mapstructure:"enabled"`
	FireRate       *float64         `mapstructure:"fire_rate"`
	TimeoutAsError *bool            `mapstructure:"timeout_as_error"`
	EnabledKinds   map[string]*bool `mapstructure:"enabled_kinds"`
}

// ApplyFaultConfigFile merges the chaos section of an already-read viper
// instance into the store. Missing sections leave the store untouched.
func ApplyFaultConfigFile(v *viper.Viper, store FaultConfigStore, logger *zap.Logger) error {
	if !v.IsSet("chaos") {
		return nil
	}
	var fileConfig fileFaultConfig
	if err := v.UnmarshalKey("chaos", &fileConfig); err != nil {
		return fmt.Errorf("unable to unmarshal chaos configuration: %w", err)
	}
	store.Merge(toPartial(fileConfig, logger))
	return nil
}

// WatchFaultConfigFile re-merges the chaos section whenever the config file
// changes on disk, so operators can toggle chaos mode without restarting.
func WatchFaultConfigFile(v *viper.Viper, store FaultConfigStore, logger *zap.Logger) {
	v.OnConfigChange(func(event fsnotify.Event) {
		logger.Info("Configuration file changed", zap.String("file", event.Name))
		if err := ApplyFaultConfigFile(v, store, logger); err != nil {
			logger.Error("Unable to apply changed configuration file", zap.Error(err))
		}
	})
	v.WatchConfig()
}

func toPartial(fileConfig fileFaultConfig, logger *zap.Logger) PartialFaultConfig {
	partial := PartialFaultConfig{
		Enabled:        fileConfig.Enabled,
		FireRate:       fileConfig.FireRate,
		TimeoutAsError: fileConfig.TimeoutAsError,
	}
	if len(fileConfig.EnabledKinds) > 0 {
		partial.EnabledKinds = make(map[model.FaultKind]*bool, len(fileConfig.EnabledKinds))
		for name, enabled := range fileConfig.EnabledKinds {
			kind := model.FaultKind(name)
			if !model.IsKnownFaultKind(kind) {
				logger.Warn("Ignoring unknown fault kind in configuration", zap.String("kind", name))
				continue
			}
			partial.EnabledKinds[kind] = enabled
		}
	}
	return partial
}
