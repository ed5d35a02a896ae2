package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	chaosModel "github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/model"
	"go.uber.org/zap"
)

// ErrorMessage is the external error contract. Injected faults and genuine
// failures share the same shape; only the context distinguishes them.
type ErrorMessage struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"statusCode"`
	Timestamp  string                 `json:"timestamp"`
	RequestId  string                 `json:"requestId"`
	Context    map[string]interface{} `json:"context,omitempty"`
}

// WriteFaultError maps err onto the taxonomy's wire contract. Errors without
// a fault record fall back to the generic internal contract with the raw
// message; those never carry the injected marker.
func WriteFaultError(w http.ResponseWriter, requestId string, err error, logger *zap.Logger) {
	message := ErrorMessage{
		Code:       "MARKET_INTERNAL_ERROR",
		Message:    err.Error(),
		StatusCode: http.StatusInternalServerError,
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		RequestId:  requestId,
	}
	if faultErr, ok := chaosModel.AsFaultError(err); ok {
		message.Code = faultErr.Code
		message.Message = faultErr.Message
		message.StatusCode = faultErr.HTTPStatus
		message.Context = faultErr.Context
		if faultErr.HTTPStatus == http.StatusTooManyRequests {
			w.Header().Set("Retry-After", strconv.Itoa(faultErr.RetryAfterSeconds))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(message.StatusCode)
	encodeErr := json.NewEncoder(w).Encode(message)
	if encodeErr != nil {
		logger.Error("Failed to encode error message", zap.Error(encodeErr))
	}
}

// HttpError writes a plain error body outside the fault taxonomy. Used for
// malformed requests, which are the caller's fault rather than simulated
// chaos.
func HttpError(w http.ResponseWriter, message string, statusCode int, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(map[string]string{"message": message})
	if err != nil {
		logger.Error("Failed to encode error message", zap.Error(err))
	}
}
