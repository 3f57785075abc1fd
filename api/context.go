package api

import (
	"context"

	"github.com/burrowblog/burrow/models"
)

type keyType string

const userKey keyType = "user"

// ctxWithUser adds the authenticated account to the context
func ctxWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// ctxGetUser retrieves the authenticated account, or nil
func ctxGetUser(ctx context.Context) *models.User {
	if user, ok := ctx.Value(userKey).(*models.User); ok {
		return user
	}
	return nil
}
