package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"dukaan/pkg/httperr"
	"dukaan/pkg/logger"
)

// Recovery catches any panic in downstream handlers, logs the stack trace,
// and returns an opaque 500 to the client.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				stack := debug.Stack()
				logger.Error("panic recovered",
					"error", fmt.Sprintf("%v", err),
					"stack", string(stack),
					"method", r.Method,
					"path", r.URL.Path,
				)
				httperr.Write(w, httperr.New(http.StatusInternalServerError, "Internal Server Error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
