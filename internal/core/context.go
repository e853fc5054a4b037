package core

import "context"

type contextKey string

const (
	ctxKeyIPAddress contextKey = "client_ip"
	ctxKeyAPIKey    contextKey = "api_key_id"
)

// ContextWithIPAddress adds the client IP to context for job logging.
func ContextWithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyIPAddress, ip)
}

// ContextWithAPIKeyID records which API key started a request.
func ContextWithAPIKeyID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyAPIKey, id)
}

// IPAddressFromContext extracts the client IP from context.
func IPAddressFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyIPAddress).(string); ok {
		return v
	}
	return ""
}

// APIKeyIDFromContext extracts the API key id from context.
func APIKeyIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyAPIKey).(string); ok {
		return v
	}
	return ""
}

// requester returns log attributes describing who started a job.
func requester(ctx context.Context) []any {
	var args []any
	if ip := IPAddressFromContext(ctx); ip != "" {
		args = append(args, "client_ip", ip)
	}
	if id := APIKeyIDFromContext(ctx); id != "" {
		args = append(args, "api_key", id)
	}
	return args
}
