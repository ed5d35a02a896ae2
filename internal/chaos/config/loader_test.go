package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/model"
	"go.uber.org/zap"
)

func TestApplyFaultConfigFile(t *testing.T) {
	t.Run("Merges the chaos section into the store", func(t *testing.T) {
		store := NewFaultConfigStoreImpl(zap.NewNop())
		v := readConfig(t, `
chaos:
  enabled: true
  fire_rate: 0.4
  timeout_as_error: true
  enabled_kinds:
    internal: true
    bad_gateway: false
`)

		err := ApplyFaultConfigFile(v, store, zap.NewNop())
		require.NoError(t, err)

		snapshot := store.Get()
		assert.True(t, snapshot.Enabled)
		assert.Equal(t, 0.4, snapshot.FireRate)
		assert.True(t, snapshot.TimeoutAsError)
		assert.True(t, snapshot.EnabledKinds[model.FaultKindInternal])
		assert.False(t, snapshot.EnabledKinds[model.FaultKindBadGateway])
		assert.True(t, snapshot.EnabledKinds[model.FaultKindRateLimited])
	})

	t.Run("Leaves the store untouched without a chaos section", func(t *testing.T) {
		store := NewFaultConfigStoreImpl(zap.NewNop())
		v := readConfig(t, "server:\n  listen: \":8080\"\n")

		err := ApplyFaultConfigFile(v, store, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, DefaultFaultConfig(), store.Get())
	})

	t.Run("Ignores unknown kinds in the file", func(t *testing.T) {
		store := NewFaultConfigStoreImpl(zap.NewNop())
		v := readConfig(t, `
chaos:
  enabled_kinds:
    not_a_kind: true
`)

		err := ApplyFaultConfigFile(v, store, zap.NewNop())
		require.NoError(t, err)
		snapshot := store.Get()
		_, present := snapshot.EnabledKinds["not_a_kind"]
		assert.False(t, present)
	})
}

func readConfig(t *testing.T, contents string) *viper.Viper {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	err := os.WriteFile(path, []byte(contents), 0644)
	require.NoError(t, err)
	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	return v
}
