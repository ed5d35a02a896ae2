package edge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/config"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/model"
	"go.uber.org/zap"
)

type scriptedSource struct {
	draws []float64
	index int
}

func (s *scriptedSource) Float64() float64 {
	draw := s.draws[s.index%len(s.draws)]
	s.index++
	return draw
}

func (s *scriptedSource) IntN(n int) int { return 0 }

func TestEdgeGatewayImpl_Inspect(t *testing.T) {
	t.Run("Passes through and attaches forwarding metadata while disabled", func(t *testing.T) {
		gateway := getNewEdgeGatewayImpl(disabledStore(t), &scriptedSource{draws: []float64{0}})
		metadata, err := gateway.Inspect(context.Background(), "req-1", RequestInfo{
			Route:        "/collections",
			OriginRegion: "US",
		})
		require.NoError(t, err)
		assert.Equal(t, "req-1", metadata.RequestID)
		assert.Equal(t, "US", metadata.OriginRegion)
		assert.False(t, metadata.EnteredAt.IsZero())
	})

	t.Run("First fault in order short-circuits the rest", func(t *testing.T) {
		// first draw fires the rate limiter; no further draws happen
		gateway := getNewEdgeGatewayImpl(fullRateStore(t), &scriptedSource{draws: []float64{0.0}})
		_, err := gateway.Inspect(context.Background(), "req-1", RequestInfo{
			Route:        "/collections",
			OriginRegion: "US",
		})
		require.Error(t, err)
		faultErr, ok := model.AsFaultError(err)
		require.True(t, ok)
		assert.Equal(t, model.FaultKindEdgeRateLimited, faultErr.Kind)
		assert.Equal(t, 429, faultErr.HTTPStatus)
		assert.Greater(t, faultErr.RetryAfterSeconds, 0)
	})

	t.Run("Geo block only applies to blocked regions", func(t *testing.T) {
		// rate limit misses (0.9), geo check fires (0.0)
		gateway := getNewEdgeGatewayImpl(fullRateStore(t), &scriptedSource{draws: []float64{0.9, 0.0}})
		_, err := gateway.Inspect(context.Background(), "req-1", RequestInfo{
			Route:        "/collections",
			OriginRegion: "KP",
		})
		require.Error(t, err)
		faultErr, _ := model.AsFaultError(err)
		assert.Equal(t, model.FaultKindGeoBlocked, faultErr.Kind)
		assert.Equal(t, 403, faultErr.HTTPStatus)
		assert.Equal(t, "KP", faultErr.Context["origin_region"])
	})

	t.Run("Payload ceiling is deterministic even at fire rate zero", func(t *testing.T) {
		store := config.NewFaultConfigStoreImpl(zap.NewNop())
		enabled := true
		zeroRate := 0.0
		store.Merge(config.PartialFaultConfig{Enabled: &enabled, FireRate: &zeroRate})
		gateway := getNewEdgeGatewayImpl(store, &scriptedSource{draws: []float64{0.0}})

		for i := 0; i < 50; i++ {
			_, err := gateway.Inspect(context.Background(), "req-1", RequestInfo{
				Route:         "/collections",
				OriginRegion:  "US",
				ContentLength: DefaultConfig().PayloadCeilingBytes + 1,
			})
			require.Error(t, err)
			faultErr, _ := model.AsFaultError(err)
			assert.Equal(t, model.FaultKindPayloadTooLarge, faultErr.Kind)
			assert.Equal(t, 413, faultErr.HTTPStatus)
		}
	})

	t.Run("Payload at the ceiling passes", func(t *testing.T) {
		gateway := getNewEdgeGatewayImpl(disabledStore(t), &scriptedSource{draws: []float64{0.0}})
		_, err := gateway.Inspect(context.Background(), "req-1", RequestInfo{
			Route:         "/collections",
			OriginRegion:  "US",
			ContentLength: DefaultConfig().PayloadCeilingBytes,
		})
		assert.NoError(t, err)
	})

	t.Run("Edge waits still produce a well-formed fault", func(t *testing.T) {
		edgeConfig := DefaultConfig()
		edgeConfig.BadGatewayWaitMinMs = 1
		edgeConfig.BadGatewayWaitMaxMs = 1
		// miss rate limit (0.9), miss timeout (0.9), fire bad gateway (0.0)
		gateway := NewEdgeGatewayImpl(
			fullRateStore(t),
			&scriptedSource{draws: []float64{0.9, 0.9, 0.0}},
			edgeConfig,
			zap.NewNop(),
		)
		_, err := gateway.Inspect(context.Background(), "req-1", RequestInfo{
			Route:        "/collections",
			OriginRegion: "US",
		})
		require.Error(t, err)
		faultErr, _ := model.AsFaultError(err)
		assert.Equal(t, model.FaultKindEdgeBadGateway, faultErr.Kind)
		assert.Equal(t, 502, faultErr.HTTPStatus)
		assert.Contains(t, faultErr.Context, "simulated_wait_ms")
	})

	t.Run("Assigns a synthetic origin region when none is given", func(t *testing.T) {
		gateway := getNewEdgeGatewayImpl(disabledStore(t), &scriptedSource{draws: []float64{0}})
		metadata, err := gateway.Inspect(context.Background(), "req-1", RequestInfo{Route: "/collections"})
		require.NoError(t, err)
		assert.Contains(t, DefaultConfig().OriginRegions, metadata.OriginRegion)
	})
}

func getNewEdgeGatewayImpl(store config.FaultConfigStore, source *scriptedSource) *EdgeGatewayImpl {
	return NewEdgeGatewayImpl(store, source, DefaultConfig(), zap.NewNop())
}

func disabledStore(t *testing.T) config.FaultConfigStore {
	t.Helper()
	return config.NewFaultConfigStoreImpl(zap.NewNop())
}

func fullRateStore(t *testing.T) config.FaultConfigStore {
	t.Helper()
	store := config.NewFaultConfigStoreImpl(zap.NewNop())
	enabled := true
	rate := 1.0
	store.Merge(config.PartialFaultConfig{Enabled: &enabled, FireRate: &rate})
	return store
}
