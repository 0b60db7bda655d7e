// Package ctxkeys defines typed context keys shared between middleware and handlers.
// Both import this package; neither imports the other for context key types.
package ctxkeys

import (
	"context"

	"hospital-portal/internal/session"
)

// Key is a typed string used as context key to prevent collisions.
type Key string

// User holds the *session.User admitted by the access guard.
const User Key = "user"

// WithUser stores the signed-in user admitted by the access guard.
func WithUser(ctx context.Context, u *session.User) context.Context {
	return context.WithValue(ctx, User, u)
}

// UserFrom returns the user placed by the access guard, or nil.
func UserFrom(ctx context.Context) *session.User {
	u, _ := ctx.Value(User).(*session.User)
	return u
}
