package model

// FaultKind identifies one simulated failure mode. The set is closed: every
// kind has exactly one FaultRecord in the taxonomy.
type FaultKind string

const (
	FaultKindInternal           FaultKind = "internal"
	FaultKindBadGateway         FaultKind = "bad_gateway"
	FaultKindServiceUnavailable FaultKind = "service_unavailable"
	FaultKindRateLimited        FaultKind = "rate_limited"
	FaultKindUnprocessable      FaultKind = "unprocessable"
	FaultKindSubfunctionCrash   FaultKind = "subfunction_crash"
	FaultKindTimeout            FaultKind = "timeout"
)

// Edge-only kinds, evaluated before any gateway logic runs.
const (
	FaultKindEdgeRateLimited     FaultKind = "edge_rate_limited"
	FaultKindGeoBlocked          FaultKind = "geo_blocked"
	FaultKindPayloadTooLarge     FaultKind = "payload_too_large"
	FaultKindEdgeTimeout         FaultKind = "edge_timeout"
	FaultKindEdgeBadGateway      FaultKind = "edge_bad_gateway"
	FaultKindComputeExceeded     FaultKind = "compute_exceeded"
	FaultKindTLSHandshakeFailed  FaultKind = "tls_handshake_failed"
)

// AllFaultKinds lists every known kind in a stable order.
var AllFaultKinds = []FaultKind{
	FaultKindInternal,
	FaultKindBadGateway,
	FaultKindServiceUnavailable,
	FaultKindRateLimited,
	FaultKindUnprocessable,
	FaultKindSubfunctionCrash,
	FaultKindTimeout,
	FaultKindEdgeRateLimited,
	FaultKindGeoBlocked,
	FaultKindPayloadTooLarge,
	FaultKindEdgeTimeout,
	FaultKindEdgeBadGateway,
	FaultKindComputeExceeded,
	FaultKindTLSHandshakeFailed,
}

func IsKnownFaultKind(kind FaultKind) bool {
	_, ok := faultTaxonomy[kind]
	return ok
}
