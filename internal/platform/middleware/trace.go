package middleware

import (
	"bytes"
	"io"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// maxTracedBody caps how much of a request body is logged when tracing.
const maxTracedBody = 4096

// Trace returns middleware that logs request bodies and query strings for
// record endpoints at debug level. It replaces the older pattern of parallel
// /debug/... routes duplicating production handlers: the same handlers run,
// with verbosity switched on by configuration instead of by URL.
func Trace(logger zerolog.Logger, enabled bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !enabled {
				return next(c)
			}

			req := c.Request()
			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(io.LimitReader(req.Body, maxTracedBody))
				req.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), req.Body))
			}

			rid, _ := c.Get("request_id").(string)
			logger.Debug().
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("query", req.URL.RawQuery).
				Bytes("body", body).
				Msg("trace")

			return next(c)
		}
	}
}
