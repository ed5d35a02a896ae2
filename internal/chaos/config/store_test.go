package config

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/model"
	"go.uber.org/zap"
)

func TestFaultConfigStoreImpl_Get(t *testing.T) {
	t.Run("Starts disabled with every kind armed", func(t *testing.T) {
		store := getNewFaultConfigStoreImpl()
		snapshot := store.Get()
		assert.False(t, snapshot.Enabled)
		assert.Equal(t, len(model.AllFaultKinds), len(snapshot.EnabledKinds))
		for kind, enabled := range snapshot.EnabledKinds {
			assert.True(t, enabled, "kind %s should default to armed", kind)
		}
	})

	t.Run("Returns a copy, not a live reference", func(t *testing.T) {
		store := getNewFaultConfigStoreImpl()
		snapshot := store.Get()
		snapshot.Enabled = true
		snapshot.EnabledKinds[model.FaultKindInternal] = false

		fresh := store.Get()
		assert.False(t, fresh.Enabled)
		assert.True(t, fresh.EnabledKinds[model.FaultKindInternal])
	})
}

func TestFaultConfigStoreImpl_Merge(t *testing.T) {
	t.Run("Applies only the fields present", func(t *testing.T) {
		store := getNewFaultConfigStoreImpl()
		enabled := true
		result := store.Merge(PartialFaultConfig{Enabled: &enabled})
		assert.True(t, result.Enabled)
		assert.Equal(t, DefaultFaultConfig().FireRate, result.FireRate)
	})

	t.Run("Clamps fire rate above one", func(t *testing.T) {
		store := getNewFaultConfigStoreImpl()
		rate := 1.5
		result := store.Merge(PartialFaultConfig{FireRate: &rate})
		assert.Equal(t, 1.0, result.FireRate)
	})

	t.Run("Clamps fire rate below zero", func(t *testing.T) {
		store := getNewFaultConfigStoreImpl()
		rate := -0.2
		result := store.Merge(PartialFaultConfig{FireRate: &rate})
		assert.Equal(t, 0.0, result.FireRate)
	})

	t.Run("Merges enabled kinds key by key", func(t *testing.T) {
		store := getNewFaultConfigStoreImpl()
		disabled := false
		store.Merge(PartialFaultConfig{
			EnabledKinds: map[model.FaultKind]*bool{model.FaultKindInternal: &disabled},
		})
		snapshot := store.Get()
		assert.False(t, snapshot.EnabledKinds[model.FaultKindInternal])
		assert.True(t, snapshot.EnabledKinds[model.FaultKindBadGateway])
	})

	t.Run("Ignores unknown kinds and nil entries", func(t *testing.T) {
		store := getNewFaultConfigStoreImpl()
		disabled := false
		result := store.Merge(PartialFaultConfig{
			EnabledKinds: map[model.FaultKind]*bool{
				"not_a_kind":            &disabled,
				model.FaultKindInternal: nil,
			},
		})
		assert.Equal(t, len(model.AllFaultKinds), len(result.EnabledKinds))
		assert.True(t, result.EnabledKinds[model.FaultKindInternal])
	})

	t.Run("Concurrent merges and reads never observe a torn config", func(t *testing.T) {
		store := getNewFaultConfigStoreImpl()
		enabled := true
		rate := 1.0
		chaosOn := PartialFaultConfig{Enabled: &enabled, FireRate: &rate}

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				for j := 0; j < 200; j++ {
					store.Merge(chaosOn)
				}
			}()
			go func() {
				defer wg.Done()
				for j := 0; j < 200; j++ {
					snapshot := store.Get()
					if snapshot.Enabled {
						assert.Equal(t, 1.0, snapshot.FireRate)
					} else {
						assert.Equal(t, DefaultFaultConfig().FireRate, snapshot.FireRate)
					}
				}
			}()
		}
		wg.Wait()
	})
}

func getNewFaultConfigStoreImpl() *FaultConfigStoreImpl {
	return NewFaultConfigStoreImpl(zap.NewNop())
}
