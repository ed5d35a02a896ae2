package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/edge"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/ids"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/server/handler"
	"go.uber.org/zap"
)

// EdgeMiddleware runs the edge/CDN fault tier in front of every non-admin
// route. Requests the edge rejects never reach the gateway handlers; requests
// it passes through carry forwarding metadata on the context.
func EdgeMiddleware(
	gateway edge.EdgeGateway,
	idGenerator *ids.Generator,
	logger *zap.Logger,
) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/admin") {
				next.ServeHTTP(w, r)
				return
			}

			requestId := idGenerator.NextRequestID()
			w.Header().Set("X-Request-Id", requestId)
			info := edge.RequestInfo{
				Route:         r.URL.Path,
				ContentLength: r.ContentLength,
				OriginRegion:  r.Header.Get("X-Origin-Region"),
			}
			metadata, err := gateway.Inspect(r.Context(), requestId, info)
			if err != nil {
				logger.Info(
					"Edge tier rejected request",
					zap.String("request_id", requestId),
					zap.String("route", info.Route),
					zap.Error(err),
				)
				handler.WriteFaultError(w, requestId, err, logger)
				return
			}

			ctx := edge.ContextWithMetadata(r.Context(), metadata)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
