package response

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/hyperkit/core/handler"
)

// WithCache sets browser caching headers before rendering r. A positive maxAge
// allows public caching for that long; anything else forbids caching.
func WithCache(r handler.Renderer, maxAge time.Duration) handler.Renderer {
	if r == nil {
		return nil
	}
	return handler.Response(func(w http.ResponseWriter, req *http.Request) error {
		h := w.Header()
		if maxAge > 0 {
			h.Set("Cache-Control", "public, max-age="+strconv.FormatInt(int64(maxAge/time.Second), 10))
			h.Set("Expires", time.Now().Add(maxAge).UTC().Format(http.TimeFormat))
		} else {
			h.Set("Cache-Control", "no-store")
			h.Del("Expires")
		}
		return r.Render(w, req)
	})
}
