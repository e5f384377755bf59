package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Guard is a precondition of a route. It either rejects the request or
// returns the context the rest of the chain runs with.
type Guard func(ctx context.Context, req *http.Request) (context.Context, error)

// Guards runs guards in order before the handler. Each guard sees the
// context returned by the previous one; the handler sees the last.
func Guards(guards ...Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			for _, guard := range guards {
				ctx, err := guard(req.Context(), req)
				if err != nil {
					return err
				}
				req = req.WithContext(ctx)
			}
			c.SetRequest(req)
			return next(c)
		}
	}
}
