package router

import (
	"net/http"

	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/config"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/edge"
	chaosEngine "github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/engine"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/ids"
	marketService "github.com/thedogwiththedataonit/opensea-demo-sub000/internal/market/service"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/server/handler"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/server/middleware"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/trace/sink"
	traceService "github.com/thedogwiththedataonit/opensea-demo-sub000/internal/trace/service"
	"go.uber.org/zap"
)
import "github.com/gorilla/mux"

func CreateRouter(
	store config.FaultConfigStore,
	decisionEngine chaosEngine.FaultDecisionEngine,
	edgeGateway edge.EdgeGateway,
	collectionService marketService.CollectionService,
	recorder traceService.TraceRecorder,
	traceCache *sink.RecentTraceCache,
	idGenerator *ids.Generator,
	logger *zap.Logger,
) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.EdgeMiddleware(edgeGateway, idGenerator, logger))

	r.Handle(
		"/admin/chaos", handler.ChaosConfigGetHandler(
			store,
			logger,
		),
	).Methods("GET")

	r.Handle(
		"/admin/chaos", handler.ChaosConfigMergeHandler(
			store,
			logger,
		),
	).Methods("POST")

	r.Handle(
		"/collections", handler.CollectionsHandler(
			decisionEngine,
			collectionService,
			recorder,
			logger,
		),
	).Methods("GET")

	r.Handle(
		"/collections/{slug}", handler.CollectionHandler(
			decisionEngine,
			collectionService,
			recorder,
			logger,
		),
	).Methods("GET")

	r.Handle(
		"/swap/quote", handler.SwapQuoteHandler(
			decisionEngine,
			collectionService,
			recorder,
			logger,
		),
	).Methods("POST")

	r.Handle(
		"/traces/{traceId}", handler.TraceHandler(
			traceCache,
			logger,
		),
	).Methods("GET")

	return r
}
