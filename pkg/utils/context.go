package utils

import (
	"context"
)

type contextKey string

const (
	OwnershipTokenKey contextKey = "ownership_token"
)

// GetOwnershipTokenFromContext returns the token captured from the
// X-Ownership-Token header, if any.
func GetOwnershipTokenFromContext(ctx context.Context) (string, bool) {
	tokenVal := ctx.Value(OwnershipTokenKey)
	if tokenVal == nil {
		return "", false
	}

	token, ok := tokenVal.(string)
	return token, ok && token != ""
}

func SetOwnershipTokenContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, OwnershipTokenKey, token)
}
