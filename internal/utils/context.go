package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	CallerIDKey        contextKey = "caller_id"
	CallerEmailKey     contextKey = "caller_email"
	CallerRoleKey      contextKey = "caller_role"
	CallerSuspendedKey contextKey = "caller_suspended"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// SetCallerContext sets the authenticated caller into context (called by middleware).
func SetCallerContext(ctx context.Context, id uuid.UUID, email, role string, suspended bool) context.Context {
	ctx = context.WithValue(ctx, CallerIDKey, id)
	ctx = context.WithValue(ctx, CallerEmailKey, email)
	ctx = context.WithValue(ctx, CallerRoleKey, role)
	ctx = context.WithValue(ctx, CallerSuspendedKey, suspended)
	return ctx
}

// GetCallerIDFromContext retrieves the caller's profile id safely.
func GetCallerIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(CallerIDKey).(uuid.UUID)
	return id, ok
}

func GetCallerEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(CallerEmailKey).(string)
	return email
}

func GetCallerRoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(CallerRoleKey).(string)
	return role
}

func IsCallerSuspended(ctx context.Context) bool {
	suspended, _ := ctx.Value(CallerSuspendedKey).(bool)
	return suspended
}

func IsCallerAdmin(ctx context.Context) bool {
	return GetCallerRoleFromContext(ctx) == RoleAdmin
}
