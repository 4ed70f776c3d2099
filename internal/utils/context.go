package utils

import "context"

const (
	OwnerIDKey    contextKey = "owner_id"
	OwnerEmailKey contextKey = "email"
	OwnerNameKey  contextKey = "name"
)

type ctxKey string

const internalRequestKey ctxKey = "internal_request"

func WithInternalRequest(ctx context.Context) context.Context {
	return context.WithValue(ctx, internalRequestKey, true)
}

func IsInternalRequest(ctx context.Context) bool {
	v, _ := ctx.Value(internalRequestKey).(bool)
	return v
}
