package edge

import "context"

type contextKey struct{}

var metadataContextKey = contextKey{}

// ContextWithMetadata attaches the edge tier's forwarding metadata to the
// request context so downstream handlers can read the correlation id and
// origin region the edge assigned.
func ContextWithMetadata(ctx context.Context, metadata ForwardingMetadata) context.Context {
	return context.WithValue(ctx, metadataContextKey, metadata)
}

// MetadataFromContext returns the forwarding metadata attached by the edge
// tier, if any.
func MetadataFromContext(ctx context.Context) (ForwardingMetadata, bool) {
	metadata, ok := ctx.Value(metadataContextKey).(ForwardingMetadata)
	return metadata, ok
}
