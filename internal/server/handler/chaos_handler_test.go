package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/config"
	"go.uber.org/zap"
)

func TestChaosConfigGetHandler(t *testing.T) {
	t.Run("Returns the default snapshot for a fresh store", func(t *testing.T) {
		store := config.NewFaultConfigStoreImpl(zap.NewNop())
		req := httptest.NewRequest("GET", "/admin/chaos", nil)
		w := httptest.NewRecorder()

		ChaosConfigGetHandler(store, zap.NewNop())(w, req)

		require.Equal(t, 200, w.Code)
		var snapshot config.FaultConfig
		err := json.NewDecoder(w.Result().Body).Decode(&snapshot)
		require.NoError(t, err)
		assert.False(t, snapshot.Enabled)
		assert.Equal(t, 0.25, snapshot.FireRate)
	})
}

func TestChaosConfigMergeHandler(t *testing.T) {
	t.Run("Merges a partial config and returns the result", func(t *testing.T) {
		store := config.NewFaultConfigStoreImpl(zap.NewNop())
		body := []byte(`{"enabled": true, "fireRate": 0.5}`)
		req := httptest.NewRequest("POST", "/admin/chaos", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		ChaosConfigMergeHandler(store, zap.NewNop())(w, req)

		require.Equal(t, 200, w.Code)
		var merged config.FaultConfig
		err := json.NewDecoder(w.Result().Body).Decode(&merged)
		require.NoError(t, err)
		assert.True(t, merged.Enabled)
		assert.Equal(t, 0.5, merged.FireRate)
		assert.True(t, store.Get().Enabled)
	})

	t.Run("Clamps an out of range fire rate", func(t *testing.T) {
		store := config.NewFaultConfigStoreImpl(zap.NewNop())
		body := []byte(`{"fireRate": 3.0}`)
		req := httptest.NewRequest("POST", "/admin/chaos", bytes.NewReader(body))
		w := httptest.NewRecorder()

		ChaosConfigMergeHandler(store, zap.NewNop())(w, req)

		require.Equal(t, 200, w.Code)
		assert.Equal(t, 1.0, store.Get().FireRate)
	})

	t.Run("Rejects a malformed body with a plain 400", func(t *testing.T) {
		store := config.NewFaultConfigStoreImpl(zap.NewNop())
		req := httptest.NewRequest("POST", "/admin/chaos", bytes.NewReader([]byte("{not json")))
		w := httptest.NewRecorder()

		ChaosConfigMergeHandler(store, zap.NewNop())(w, req)

		require.Equal(t, 400, w.Code)
		var response map[string]string
		err := json.NewDecoder(w.Result().Body).Decode(&response)
		require.NoError(t, err)
		assert.Equal(t, "Invalid request payload", response["message"])
		assert.False(t, store.Get().Enabled)
	})
}
