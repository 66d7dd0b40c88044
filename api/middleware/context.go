package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/mateovergara/sitesupply-backend/internal/access"
	"github.com/mateovergara/sitesupply-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxRole     contextKey = "actor_role"
	ctxVendorID contextKey = "vendor_id"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

func VendorIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxVendorID).(string); ok {
		return v
	}
	return ""
}

// ActorFromContext rebuilds the authenticated actor seeded by the auth
// middleware. The zero actor means the request was not authenticated.
func ActorFromContext(ctx context.Context) access.Actor {
	actor := access.Actor{Role: enums.ActorRole(RoleFromContext(ctx))}
	if id, err := uuid.Parse(UserIDFromContext(ctx)); err == nil {
		actor.UserID = id
	}
	if raw := VendorIDFromContext(ctx); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			actor.VendorID = &id
		}
	}
	return actor
}
