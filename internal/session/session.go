// Package session carries the authenticated user through request contexts.
package session

import "context"

type contextKey struct{}

type User struct {
	ID    string
	Login string
}

// With returns a copy of ctx carrying u.
func With(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// From returns the user stored in ctx, if any.
func From(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(contextKey{}).(User)
	return u, ok && u.ID != ""
}
