// middleware.go: authentication middleware for endpoints that require a login
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/phibia/phibia-go/internal/datastore"
	"github.com/phibia/phibia-go/internal/errors"
	"github.com/phibia/phibia-go/internal/security"
)

// currentUserKey is the echo context key the resolved user travels under.
const currentUserKey = "current_user"

// RequireAuth rejects requests without a valid token cookie. The resolved
// user is stored in the request context for the handler.
func (c *Controller) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		user, err := c.resolveUser(ctx)
		if err != nil {
			return c.HandleError(ctx, err, "Authentication required", http.StatusUnauthorized)
		}
		ctx.Set(currentUserKey, user)
		return next(ctx)
	}
}

// resolveUser verifies the cookie token and loads the matching user row.
func (c *Controller) resolveUser(ctx echo.Context) (datastore.User, error) {
	cookie, err := ctx.Cookie(security.AccessCookieName)
	if err != nil || cookie.Value == "" {
		return datastore.User{}, security.ErrInvalidToken
	}

	userID, err := c.Tokens.Verify(cookie.Value)
	if err != nil {
		return datastore.User{}, err
	}

	user, err := c.DS.GetUserByID(userID)
	if err != nil {
		// Token subject no longer resolves to an account.
		return datastore.User{}, security.ErrInvalidToken
	}
	return user, nil
}

// currentUser returns the user RequireAuth stored in the context.
func (c *Controller) currentUser(ctx echo.Context) (datastore.User, error) {
	user, ok := ctx.Get(currentUserKey).(datastore.User)
	if !ok {
		return datastore.User{}, errors.Newf("no authenticated user in request context").
			Category(errors.CategoryAuth).
			Component("api").
			Build()
	}
	return user, nil
}

// resolveIdentity maps an optional credential to a user for the predict
// endpoint. Any verification failure degrades to the guest account instead
// of rejecting the request. A missing guest row is a deployment precondition
// failure, not a per-request condition.
func (c *Controller) resolveIdentity(ctx echo.Context) (datastore.User, error) {
	if user, err := c.resolveUser(ctx); err == nil {
		return user, nil
	}

	guest, err := c.DS.GetUserByName(datastore.GuestUserName)
	if err != nil {
		return datastore.User{}, errors.Newf("guest account %q is missing: %w", datastore.GuestUserName, err).
			Category(errors.CategoryConfiguration).
			Component("api").
			Build()
	}
	return guest, nil
}
