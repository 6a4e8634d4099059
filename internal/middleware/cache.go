package middleware

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/kindleapp/kindle-api/internal/config"
)

const maxCachedBody = 1 << 20

// captureWriter tees the response so a 200 body can be stored after the
// handler ran.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (w *captureWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	if w.buf.Len()+len(b) <= maxCachedBody {
		w.buf.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

// CacheGET serves successful JSON GET responses from Redis for cfg.TTL,
// keyed by path and query. Only 200s are stored. A nil client disables
// caching; Redis failures fall through to the handler.
func CacheGET(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			key := cfg.Prefix + ":" + c.Request().URL.RequestURI()
			ctx := c.Request().Context()

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				c.Response().Header().Set("X-Cache", "HIT")
				return c.JSONBlob(http.StatusOK, raw)
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer}
			c.Response().Writer = cw
			if err := next(c); err != nil {
				return err
			}
			if cw.status == http.StatusOK && cw.buf.Len() > 0 {
				// Best effort; a failed SET just means a cache miss later.
				_ = rdb.Set(ctx, key, cw.buf.Bytes(), cfg.TTL).Err()
			}
			return nil
		}
	}
}

// InvalidateCache drops a cached path after a mutation so stale profile
// bodies do not outlive an update or delete.
func InvalidateCache(cfg config.CacheConfig, rdb *redis.Client, c echo.Context, path string) {
	if rdb == nil {
		return
	}
	_ = rdb.Del(c.Request().Context(), cfg.Prefix+":"+path).Err()
}
