package service

import (
	"context"

	"case-portal-be/internal/entity"

	"github.com/google/uuid"
)

// Actor is the authenticated caller with the role read from its profile row.
type Actor struct {
	UserID    uuid.UUID
	SessionID string
	Role      entity.UserRole
}

func (a Actor) Privileged() bool {
	return a.Role == entity.UserRoleAdmin || a.Role == entity.UserRoleStaff
}

type clientIPKey struct{}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func clientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}
