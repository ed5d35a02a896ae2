package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/config"
	"go.uber.org/zap"
)

// ChaosConfigGetHandler creates a handler returning the current fault
// configuration snapshot.
func ChaosConfigGetHandler(
	store config.FaultConfigStore,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := store.Get()
		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(snapshot)
		if err != nil {
			logger.Error("Error encountered when encoding config snapshot", zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			return
		}
	}
}

// ChaosConfigMergeHandler creates a handler merging a partial fault
// configuration into the store. Fields absent from the body are left
// untouched.
func ChaosConfigMergeHandler(
	store config.FaultConfigStore,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var partial config.PartialFaultConfig
		err := json.NewDecoder(r.Body).Decode(&partial)
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

		merged := store.Merge(partial)
		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(merged)
		if err != nil {
			logger.Error("Error encountered when encoding merged config", zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			return
		}
	}
}
