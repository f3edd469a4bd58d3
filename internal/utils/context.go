package utils

import "context"

type contextKey string

const (
	AdminIDKey    contextKey = "adminID"
	AdminEmailKey contextKey = "adminEmail"
	AdminRoleKey  contextKey = "adminRole"
)

// SetAdminContext sets admin identity into context (called by middleware)
func SetAdminContext(ctx context.Context, id uint, email, role string) context.Context {
	ctx = context.WithValue(ctx, AdminIDKey, id)
	ctx = context.WithValue(ctx, AdminEmailKey, email)
	ctx = context.WithValue(ctx, AdminRoleKey, role)
	return ctx
}

// GetAdminIDFromContext retrieves the admin id safely
func GetAdminIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(AdminIDKey).(uint)
	return id, ok
}

func GetAdminEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(AdminEmailKey).(string)
	return email
}

func GetAdminRoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(AdminRoleKey).(string)
	return role
}
