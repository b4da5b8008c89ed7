// Package requestctx threads the request id through context so layers below
// transport (stores, jobs, audit) can tag their output without importing the
// middleware.
package requestctx

import "context"

type contextKey struct{}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, requestID)
}

func GetRequestID(ctx context.Context) string {
	value, _ := ctx.Value(contextKey{}).(string)
	return value
}
