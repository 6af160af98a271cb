package context

import (
	"context"
	"slices"
)

// UserContext contains the authenticated caller identity.
// Populated by the auth middleware from the JWT; used for
// requested_by / approved_by audit fields.
type UserContext struct {
	UserID   string
	Username string
	Roles    []string
}

type userKey struct{}

// WithUser stores the caller identity on the context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// GetUser returns the caller identity, or nil when auth is disabled.
func GetUser(ctx context.Context) *UserContext {
	u, _ := ctx.Value(userKey{}).(*UserContext)
	return u
}

// GetUserID returns the caller's user ID or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// HasRole reports whether the caller holds the given role.
func HasRole(ctx context.Context, role string) bool {
	u := GetUser(ctx)
	return u != nil && slices.Contains(u.Roles, role)
}
