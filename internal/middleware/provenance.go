package middleware

import (
	"context"

	"worksite/internal/common"

	"github.com/labstack/echo/v4"
)

// RequestProvenance stores the client IP and user agent in the request
// context so the audit trail can record where a change came from.
func RequestProvenance() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := context.WithValue(c.Request().Context(), common.IPAddressKey, c.RealIP())
			ctx = context.WithValue(ctx, common.UserAgentKey, c.Request().UserAgent())
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
