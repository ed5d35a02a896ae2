package model

// Synthetic service identities spans are attributed to, so a trace
// visualization draws a multi-service topology. The tag is a pure annotation
// and independent of which layer actually executed the code.
const (
	ServiceEdgeCDN       = "edge-cdn"
	ServiceAPIGateway    = "api-gateway"
	ServiceListing       = "listing-service"
	ServicePricing       = "pricing-service"
	ServiceSearch        = "search-service"
	ServiceErrorReporter = "error-reporter"
)

var SyntheticServices = []string{
	ServiceEdgeCDN,
	ServiceAPIGateway,
	ServiceListing,
	ServicePricing,
	ServiceSearch,
	ServiceErrorReporter,
}
