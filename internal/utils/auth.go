package utils

import "context"

type contextKey string

// SetOwnerContext stores the authenticated buyer on the context (called by middleware).
func SetOwnerContext(ctx context.Context, id uint, email string, name string) context.Context {
	ctx = context.WithValue(ctx, OwnerIDKey, id)
	ctx = context.WithValue(ctx, OwnerEmailKey, email)
	ctx = context.WithValue(ctx, OwnerNameKey, name)
	return ctx
}

// GetOwnerIDFromContext retrieves the owner id safely
func GetOwnerIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(OwnerIDKey).(uint)
	return id, ok
}

func GetOwnerEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(OwnerEmailKey).(string)
	return email
}

func GetOwnerNameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(OwnerNameKey).(string)
	return name
}
