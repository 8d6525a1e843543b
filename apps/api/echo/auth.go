package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/auth"
)

const contextPrincipalKey = "principal"

// authMiddleware authenticates requests bearing a token signed by the issuer.
func authMiddleware(issuer *auth.Issuer) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup:  "header:" + echo.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(token string, ctx echo.Context) (bool, error) {
			p, err := issuer.Verify(token)
			if err != nil {
				return false, err
			}
			ctx.Set(contextPrincipalKey, p)
			return true, nil
		},
		ErrorHandler: func(err error, ctx echo.Context) error {
			if isAuthError(err) {
				return errInvalidToken
			}
			return errMissingToken
		},
	})
}

// me returns the authenticated principal.
func me(ctx echo.Context) error {
	p, ok := ctx.Get(contextPrincipalKey).(core.Principal)
	if !ok {
		return errMissingToken
	}
	return ctx.JSON(http.StatusOK, p)
}
