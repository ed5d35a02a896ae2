package model

import "net/http"

// Cloudflare-style status for a failed TLS handshake at the edge. Not part of
// net/http's constant set.
const StatusTLSHandshakeFailed = 525

// FaultRecord is one immutable taxonomy entry: the full external contract for
// a fault kind. HTTPStatus and ErrorCode never change at runtime.
type FaultRecord struct {
	Kind            FaultKind
	HTTPStatus      int
	ErrorCode       string
	MessageTemplate string
}

var faultTaxonomy = map[FaultKind]FaultRecord{
	FaultKindInternal: {
		Kind:            FaultKindInternal,
		HTTPStatus:      http.StatusInternalServerError,
		ErrorCode:       "MARKET_INTERNAL_ERROR",
		MessageTemplate: "The marketplace API encountered an unexpected internal error",
	},
	FaultKindBadGateway: {
		Kind:            FaultKindBadGateway,
		HTTPStatus:      http.StatusBadGateway,
		ErrorCode:       "MARKET_BAD_GATEWAY",
		MessageTemplate: "An upstream marketplace service returned an invalid response",
	},
	FaultKindServiceUnavailable: {
		Kind:            FaultKindServiceUnavailable,
		HTTPStatus:      http.StatusServiceUnavailable,
		ErrorCode:       "MARKET_SERVICE_UNAVAILABLE",
		MessageTemplate: "The marketplace API is temporarily unavailable",
	},
	FaultKindRateLimited: {
		Kind:            FaultKindRateLimited,
		HTTPStatus:      http.StatusTooManyRequests,
		ErrorCode:       "MARKET_RATE_LIMITED",
		MessageTemplate: "Too many requests, please slow down",
	},
	FaultKindUnprocessable: {
		Kind:            FaultKindUnprocessable,
		HTTPStatus:      http.StatusUnprocessableEntity,
		ErrorCode:       "MARKET_UNPROCESSABLE",
		MessageTemplate: "The swap quote request could not be processed",
	},
	FaultKindSubfunctionCrash: {
		Kind:            FaultKindSubfunctionCrash,
		HTTPStatus:      http.StatusInternalServerError,
		ErrorCode:       "MARKET_SUBFUNCTION_CRASH",
		MessageTemplate: "A downstream computation crashed while deriving chart data",
	},
	// Only raised as an error when the store's TimeoutAsError flag is set;
	// otherwise the timeout kind amplifies latency without failing.
	FaultKindTimeout: {
		Kind:            FaultKindTimeout,
		HTTPStatus:      http.StatusGatewayTimeout,
		ErrorCode:       "MARKET_GATEWAY_TIMEOUT",
		MessageTemplate: "An upstream marketplace service did not respond in time",
	},
	FaultKindEdgeRateLimited: {
		Kind:            FaultKindEdgeRateLimited,
		HTTPStatus:      http.StatusTooManyRequests,
		ErrorCode:       "EDGE_RATE_LIMITED",
		MessageTemplate: "Request rejected by the edge rate limiter",
	},
	FaultKindGeoBlocked: {
		Kind:            FaultKindGeoBlocked,
		HTTPStatus:      http.StatusForbidden,
		ErrorCode:       "EDGE_GEO_BLOCKED",
		MessageTemplate: "Requests from this region are not permitted",
	},
	FaultKindPayloadTooLarge: {
		Kind:            FaultKindPayloadTooLarge,
		HTTPStatus:      http.StatusRequestEntityTooLarge,
		ErrorCode:       "EDGE_PAYLOAD_TOO_LARGE",
		MessageTemplate: "Request body exceeds the edge payload ceiling",
	},
	FaultKindEdgeTimeout: {
		Kind:            FaultKindEdgeTimeout,
		HTTPStatus:      http.StatusGatewayTimeout,
		ErrorCode:       "EDGE_GATEWAY_TIMEOUT",
		MessageTemplate: "The edge gave up waiting for the origin",
	},
	FaultKindEdgeBadGateway: {
		Kind:            FaultKindEdgeBadGateway,
		HTTPStatus:      http.StatusBadGateway,
		ErrorCode:       "EDGE_BAD_GATEWAY",
		MessageTemplate: "The edge received an invalid response from the origin",
	},
	FaultKindComputeExceeded: {
		Kind:            FaultKindComputeExceeded,
		HTTPStatus:      http.StatusServiceUnavailable,
		ErrorCode:       "EDGE_COMPUTE_EXCEEDED",
		MessageTemplate: "Edge compute resource limits exceeded",
	},
	FaultKindTLSHandshakeFailed: {
		Kind:            FaultKindTLSHandshakeFailed,
		HTTPStatus:      StatusTLSHandshakeFailed,
		ErrorCode:       "EDGE_TLS_HANDSHAKE_FAILED",
		MessageTemplate: "TLS handshake with the origin failed",
	},
}

// RecordForKind returns the taxonomy entry for kind.
func RecordForKind(kind FaultKind) (FaultRecord, bool) {
	record, ok := faultTaxonomy[kind]
	return record, ok
}

// Records returns every taxonomy entry in AllFaultKinds order.
func Records() []FaultRecord {
	records := make([]FaultRecord, len(AllFaultKinds))
	for i, kind := range AllFaultKinds {
		records[i] = faultTaxonomy[kind]
	}
	return records
}
