package router

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/dgraph-io/ristretto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/config"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/edge"
	chaosEngine "github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/engine"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/latency"
	chaosModel "github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/model"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/random"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/ids"
	marketModel "github.com/thedogwiththedataonit/opensea-demo-sub000/internal/market/model"
	marketService "github.com/thedogwiththedataonit/opensea-demo-sub000/internal/market/service"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/server/handler"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/trace/model"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/trace/sink"
	traceService "github.com/thedogwiththedataonit/opensea-demo-sub000/internal/trace/service"
	"go.uber.org/zap"
	"net/http"
)

type routerFixture struct {
	handler http.Handler
	store   config.FaultConfigStore
	cache   *sink.RecentTraceCache
}

func getNewRouterFixture(t *testing.T) routerFixture {
	t.Helper()
	logger := zap.NewNop()
	store := config.NewFaultConfigStoreImpl(logger)
	randSource := random.NewLockedSource(7)
	decisionEngine := chaosEngine.NewFaultDecisionEngineImpl(store, randSource, logger)
	latencySimulator := latency.NewLatencySimulatorImpl(decisionEngine, store, randSource, logger)
	ristrettoCache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: (1 << 20) * 10,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	require.NoError(t, err)
	traceCache := sink.NewRecentTraceCache(ristrettoCache, logger)
	recorder := traceService.NewTraceRecorderImpl(randSource, traceCache, logger)
	collectionService := marketService.NewCollectionServiceImpl(
		decisionEngine,
		latencySimulator,
		recorder,
		randSource,
		logger,
	)
	edgeGateway := edge.NewEdgeGatewayImpl(store, randSource, edge.DefaultConfig(), logger)
	routerHandler := CreateRouter(
		store,
		decisionEngine,
		edgeGateway,
		collectionService,
		recorder,
		traceCache,
		ids.NewGenerator(),
		logger,
	)
	return routerFixture{handler: routerHandler, store: store, cache: traceCache}
}

// armOnly enables chaos at full rate with a single kind armed.
func armOnly(store config.FaultConfigStore, kind chaosModel.FaultKind) {
	enabled := true
	rate := 1.0
	kinds := make(map[chaosModel.FaultKind]*bool, len(chaosModel.AllFaultKinds))
	for _, candidate := range chaosModel.AllFaultKinds {
		armed := candidate == kind
		value := armed
		kinds[candidate] = &value
	}
	store.Merge(config.PartialFaultConfig{Enabled: &enabled, FireRate: &rate, EnabledKinds: kinds})
}

func TestRouterMarketRoutes(t *testing.T) {
	t.Run("Collections pass through when chaos is disabled", func(t *testing.T) {
		fixture := getNewRouterFixture(t)
		req := httptest.NewRequest("GET", "/collections", nil)
		w := httptest.NewRecorder()

		fixture.handler.ServeHTTP(w, req)

		require.Equal(t, 200, w.Code)
		var collections []marketModel.Collection
		err := json.NewDecoder(w.Result().Body).Decode(&collections)
		require.NoError(t, err)
		assert.Equal(t, 4, len(collections))
		assert.NotEmpty(t, w.Header().Get("X-Trace-Id"))
	})

	t.Run("Injected internal fault honors the external contract", func(t *testing.T) {
		fixture := getNewRouterFixture(t)
		armOnly(fixture.store, chaosModel.FaultKindInternal)
		req := httptest.NewRequest("GET", "/collections", nil)
		w := httptest.NewRecorder()

		fixture.handler.ServeHTTP(w, req)

		require.Equal(t, 500, w.Code)
		var response handler.ErrorMessage
		err := json.NewDecoder(w.Result().Body).Decode(&response)
		require.NoError(t, err)
		assert.Equal(t, "MARKET_INTERNAL_ERROR", response.Code)
		assert.Equal(t, 500, response.StatusCode)
		assert.Contains(t, response.RequestId, "req-")
		assert.Equal(t, "/collections", response.Context["route"])
		assert.Equal(t, true, response.Context["busybox"])
	})

	t.Run("Rate limited responses carry Retry-After", func(t *testing.T) {
		fixture := getNewRouterFixture(t)
		armOnly(fixture.store, chaosModel.FaultKindRateLimited)
		req := httptest.NewRequest("GET", "/collections", nil)
		w := httptest.NewRecorder()

		fixture.handler.ServeHTTP(w, req)

		require.Equal(t, 429, w.Code)
		assert.Equal(t, "30", w.Header().Get("Retry-After"))
	})

	t.Run("Unknown slug maps to the generic contract without the marker", func(t *testing.T) {
		fixture := getNewRouterFixture(t)
		req := httptest.NewRequest("GET", "/collections/no-such-slug", nil)
		w := httptest.NewRecorder()

		fixture.handler.ServeHTTP(w, req)

		require.Equal(t, 500, w.Code)
		var response handler.ErrorMessage
		err := json.NewDecoder(w.Result().Body).Decode(&response)
		require.NoError(t, err)
		assert.Equal(t, "MARKET_INTERNAL_ERROR", response.Code)
		assert.Nil(t, response.Context)
	})

	t.Run("Swap quote returns the fee", func(t *testing.T) {
		fixture := getNewRouterFixture(t)
		body, err := json.Marshal(marketModel.SwapRequest{
			FromToken: "ETH",
			ToToken:   "WETH",
			AmountIn:  1.5,
		})
		require.NoError(t, err)
		req := httptest.NewRequest("POST", "/swap/quote", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		fixture.handler.ServeHTTP(w, req)

		require.Equal(t, 200, w.Code)
		var quote marketModel.SwapQuote
		err = json.NewDecoder(w.Result().Body).Decode(&quote)
		require.NoError(t, err)
		assert.Equal(t, 85, quote.FeeBps)
		assert.InDelta(t, 1.5*(1-0.0085), quote.AmountOut, 1e-9)
	})

	t.Run("Malformed swap body is a plain 400", func(t *testing.T) {
		fixture := getNewRouterFixture(t)
		req := httptest.NewRequest("POST", "/swap/quote", bytes.NewReader([]byte("{")))
		w := httptest.NewRecorder()

		fixture.handler.ServeHTTP(w, req)

		require.Equal(t, 400, w.Code)
		var response map[string]string
		err := json.NewDecoder(w.Result().Body).Decode(&response)
		require.NoError(t, err)
		assert.Equal(t, "Invalid request payload", response["message"])
	})
}

func TestRouterEdgeTier(t *testing.T) {
	t.Run("Oversized payloads are rejected at the edge", func(t *testing.T) {
		fixture := getNewRouterFixture(t)
		armOnly(fixture.store, chaosModel.FaultKindPayloadTooLarge)
		body := bytes.Repeat([]byte("x"), (1<<20)+1)
		req := httptest.NewRequest("POST", "/swap/quote", bytes.NewReader(body))
		w := httptest.NewRecorder()

		fixture.handler.ServeHTTP(w, req)

		require.Equal(t, 413, w.Code)
		var response handler.ErrorMessage
		err := json.NewDecoder(w.Result().Body).Decode(&response)
		require.NoError(t, err)
		assert.Equal(t, "EDGE_PAYLOAD_TOO_LARGE", response.Code)
		assert.Contains(t, response.RequestId, "req-")
	})

	t.Run("Admin routes skip the edge tier entirely", func(t *testing.T) {
		fixture := getNewRouterFixture(t)
		enabled := true
		rate := 1.0
		fixture.store.Merge(config.PartialFaultConfig{Enabled: &enabled, FireRate: &rate})
		req := httptest.NewRequest("GET", "/admin/chaos", nil)
		w := httptest.NewRecorder()

		fixture.handler.ServeHTTP(w, req)

		require.Equal(t, 200, w.Code)
		var snapshot config.FaultConfig
		err := json.NewDecoder(w.Result().Body).Decode(&snapshot)
		require.NoError(t, err)
		assert.True(t, snapshot.Enabled)
	})
}

func TestRouterTraceInspection(t *testing.T) {
	t.Run("Finished traces are inspectable by id", func(t *testing.T) {
		fixture := getNewRouterFixture(t)
		req := httptest.NewRequest("GET", "/collections", nil)
		w := httptest.NewRecorder()
		fixture.handler.ServeHTTP(w, req)
		require.Equal(t, 200, w.Code)
		traceId := w.Header().Get("X-Trace-Id")
		require.NotEmpty(t, traceId)
		fixture.cache.Wait()

		inspectReq := httptest.NewRequest("GET", "/traces/"+traceId, nil)
		inspectW := httptest.NewRecorder()
		fixture.handler.ServeHTTP(inspectW, inspectReq)

		require.Equal(t, 200, inspectW.Code)
		var trace model.Trace
		err := json.NewDecoder(inspectW.Result().Body).Decode(&trace)
		require.NoError(t, err)
		assert.Equal(t, traceId, trace.TraceID)
		require.NotEmpty(t, trace.Spans)
		for _, span := range trace.Spans {
			assert.False(t, span.EndTime.IsZero())
		}
	})

	t.Run("Unknown trace id is a 404", func(t *testing.T) {
		fixture := getNewRouterFixture(t)
		req := httptest.NewRequest("GET", "/traces/deadbeef", nil)
		w := httptest.NewRecorder()

		fixture.handler.ServeHTTP(w, req)

		require.Equal(t, 404, w.Code)
	})
}
