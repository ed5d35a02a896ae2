package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/edge"
	chaosEngine "github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/engine"
	chaosModel "github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/model"
	marketModel "github.com/thedogwiththedataonit/opensea-demo-sub000/internal/market/model"
	marketService "github.com/thedogwiththedataonit/opensea-demo-sub000/internal/market/service"
	traceModel "github.com/thedogwiththedataonit/opensea-demo-sub000/internal/trace/model"
	traceService "github.com/thedogwiththedataonit/opensea-demo-sub000/internal/trace/service"
	"go.uber.org/zap"
)

// gatewayFaultKinds is the gateway tier's fault menu, evaluated in order.
// The first kind to fire aborts the operation.
var gatewayFaultKinds = []chaosModel.FaultKind{
	chaosModel.FaultKindInternal,
	chaosModel.FaultKindBadGateway,
	chaosModel.FaultKindServiceUnavailable,
	chaosModel.FaultKindRateLimited,
}

// CollectionsHandler creates a handler listing the demo collections through
// the gateway fault tier.
func CollectionsHandler(
	decisionEngine chaosEngine.FaultDecisionEngine,
	collectionService marketService.CollectionService,
	recorder traceService.TraceRecorder,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestId, trace, root := startGatewayTrace(recorder, r, "/collections")
		w.Header().Set("X-Trace-Id", trace.TraceID)
		if err := injectGatewayFault(decisionEngine, "/collections", requestId); err != nil {
			recorder.End(trace, root, traceModel.ERROR, err)
			WriteFaultError(w, requestId, err, logger)
			return
		}

		collections, err := collectionService.ListCollections(r.Context(), trace, root)
		if err != nil {
			finishWithError(w, recorder, trace, root, requestId, err, logger)
			return
		}

		recorder.End(trace, root, traceModel.OK, nil)
		writeJSON(w, collections, logger)
	}
}

// CollectionHandler creates a handler fetching one collection by slug.
func CollectionHandler(
	decisionEngine chaosEngine.FaultDecisionEngine,
	collectionService marketService.CollectionService,
	recorder traceService.TraceRecorder,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := mux.Vars(r)["slug"]
		requestId, trace, root := startGatewayTrace(recorder, r, "/collections/{slug}")
		root.SetAttribute("collection.slug", slug)
		w.Header().Set("X-Trace-Id", trace.TraceID)
		if err := injectGatewayFault(decisionEngine, "/collections/"+slug, requestId); err != nil {
			recorder.End(trace, root, traceModel.ERROR, err)
			WriteFaultError(w, requestId, err, logger)
			return
		}

		collection, err := collectionService.GetCollection(r.Context(), trace, root, slug)
		if err != nil {
			finishWithError(w, recorder, trace, root, requestId, err, logger)
			return
		}

		recorder.End(trace, root, traceModel.OK, nil)
		writeJSON(w, collection, logger)
	}
}

// SwapQuoteHandler creates a handler quoting a token swap. The swap quote
// operation additionally exposes the unprocessable kind inside the service.
func SwapQuoteHandler(
	decisionEngine chaosEngine.FaultDecisionEngine,
	collectionService marketService.CollectionService,
	recorder traceService.TraceRecorder,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request marketModel.SwapRequest
		err := json.NewDecoder(r.Body).Decode(&request)
		if err != nil {
			logger.Error("Error encountered when decoding request body", zap.Error(err))
			HttpError(w, "Invalid request payload", http.StatusBadRequest, logger)
			return
		}

		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logger.Error("Error encountered when closing request body", zap.Error(err))
			}
		}(r.Body)

		requestId, trace, root := startGatewayTrace(recorder, r, "/swap/quote")
		w.Header().Set("X-Trace-Id", trace.TraceID)
		if err := injectGatewayFault(decisionEngine, "/swap/quote", requestId); err != nil {
			recorder.End(trace, root, traceModel.ERROR, err)
			WriteFaultError(w, requestId, err, logger)
			return
		}

		quote, err := collectionService.QuoteSwap(r.Context(), trace, root, request)
		if err != nil {
			finishWithError(w, recorder, trace, root, requestId, err, logger)
			return
		}

		recorder.End(trace, root, traceModel.OK, nil)
		writeJSON(w, quote, logger)
	}
}

func startGatewayTrace(
	recorder traceService.TraceRecorder,
	r *http.Request,
	route string,
) (string, *traceModel.Trace, *traceModel.Span) {
	requestId := "untracked"
	attributes := map[string]string{
		"http.method": r.Method,
		"http.route":  route,
	}
	if metadata, ok := edge.MetadataFromContext(r.Context()); ok {
		requestId = metadata.RequestID
		attributes["request.id"] = metadata.RequestID
		attributes["origin.region"] = metadata.OriginRegion
	}
	trace, root := recorder.StartTrace("gateway.request", traceModel.ServiceAPIGateway, attributes)
	return requestId, trace, root
}

func injectGatewayFault(
	decisionEngine chaosEngine.FaultDecisionEngine,
	route string,
	requestId string,
) error {
	faultContext := map[string]interface{}{
		"route":      route,
		"request_id": requestId,
	}
	for _, kind := range gatewayFaultKinds {
		if err := decisionEngine.InjectIfDue(kind, faultContext); err != nil {
			return err
		}
	}
	return nil
}

// finishWithError closes the trace for a failed operation. A canceled
// request gets its open spans force-ended; no response can reach the client
// in that case.
func finishWithError(
	w http.ResponseWriter,
	recorder traceService.TraceRecorder,
	trace *traceModel.Trace,
	root *traceModel.Span,
	requestId string,
	err error,
	logger *zap.Logger,
) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		recorder.ForceEndOpen(trace, err)
		return
	}
	recorder.End(trace, root, traceModel.ERROR, err)
	WriteFaultError(w, requestId, err, logger)
}

func writeJSON(w http.ResponseWriter, value interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(value)
	if err != nil {
		logger.Error("Error encountered when encoding response", zap.Error(err))
		HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
		return
	}
}
