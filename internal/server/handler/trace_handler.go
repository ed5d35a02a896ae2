package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/trace/sink"
	"go.uber.org/zap"
)

// TraceHandler creates a handler looking up a recently finished trace by id.
// Trace inspection is a debug surface and never chaos-affected.
func TraceHandler(
	cache *sink.RecentTraceCache,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		traceId := mux.Vars(r)["traceId"]
		trace, err := cache.Get(traceId)
		if err != nil {
			if errors.Is(err, sink.ErrTraceNotFound) {
				HttpError(w, "No trace with the given id", http.StatusNotFound, logger)
				return
			}
			logger.Error("Error encountered when looking up trace", zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(trace)
		if err != nil {
			logger.Error("Error encountered when encoding trace", zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			return
		}
	}
}
