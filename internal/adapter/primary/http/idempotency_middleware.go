package http

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/payflow/payment-orchestrator/internal/logger"
	"github.com/payflow/payment-orchestrator/internal/port/output"
)

// IdempotencyKeyHeader is the client-supplied deduplication token
const IdempotencyKeyHeader = "Idempotency-Key"

// bodyRecorder tees the response body so a successful response can be cached
// after the handler has written it
type bodyRecorder struct {
	http.ResponseWriter
	body bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Idempotency deduplicates retried POST requests carrying an Idempotency-Key
// header. Cache hits replay the stored response without reaching the handler;
// only 2xx responses are cached, so a client may safely retry a failure.
// Requests without the header pass through undeduplicated.
func Idempotency(cache output.IdempotencyCache) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodPost {
				return next(c)
			}

			token := c.Request().Header.Get(IdempotencyKeyHeader)
			if token == "" {
				return next(c)
			}

			ctx := c.Request().Context()
			cached, ok, err := cache.Get(ctx, token)
			if err != nil {
				// A broken cache must not take payments down; fall through
				// to the handler undeduplicated.
				logger.Error(ctx, "idempotency cache read failed", err, zap.String("token", token))
			} else if ok {
				logger.Info(ctx, "idempotency cache hit", zap.String("token", token))
				return c.Blob(cached.StatusCode, cached.ContentType, cached.Body)
			}

			recorder := &bodyRecorder{ResponseWriter: c.Response().Writer}
			c.Response().Writer = recorder

			if err := next(c); err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			if status >= 200 && status < 300 {
				entry := output.CachedResponse{
					StatusCode:  status,
					ContentType: c.Response().Header().Get(echo.HeaderContentType),
					Body:        recorder.body.Bytes(),
				}
				if err := cache.PutIfAbsent(ctx, token, entry); err != nil {
					logger.Error(ctx, "idempotency cache write failed", err, zap.String("token", token))
				}
			}

			return nil
		}
	}
}
