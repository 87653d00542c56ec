package core

import "context"

type contextKey string

const (
	ctxKeyClientID   contextKey = "client_id"
	ctxKeySalesRepID contextKey = "sales_rep_id"
	ctxKeyIPAddress  contextKey = "ip_address"
	ctxKeyUserAgent  contextKey = "user_agent"
)

// AnonymousClient is the client id used when a request carries none.
const AnonymousClient = "anonymous"

// ContextWithClientID tags ctx with the storefront client (tips, quotes and
// history are grouped by it).
func ContextWithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, ctxKeyClientID, clientID)
}

// ClientIDFromContext returns the client id, or AnonymousClient.
func ClientIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyClientID).(string); ok && v != "" {
		return v
	}
	return AnonymousClient
}

// ContextWithSalesRepID tags ctx with the acting sales rep.
func ContextWithSalesRepID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ctxKeySalesRepID, id)
}

// SalesRepIDFromContext returns the sales rep id, or 0 when absent.
func SalesRepIDFromContext(ctx context.Context) int64 {
	if v, ok := ctx.Value(ctxKeySalesRepID).(int64); ok {
		return v
	}
	return 0
}

// ContextWithIPAddress adds the caller's IP for upload history.
func ContextWithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyIPAddress, ip)
}

// ContextWithUserAgent adds the caller's User-Agent.
func ContextWithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, ctxKeyUserAgent, ua)
}

// GetIPAddressFromContext extracts IP address from context.
func GetIPAddressFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyIPAddress).(string); ok {
		return v
	}
	return ""
}

// GetUserAgentFromContext extracts User-Agent from context.
func GetUserAgentFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUserAgent).(string); ok {
		return v
	}
	return ""
}
