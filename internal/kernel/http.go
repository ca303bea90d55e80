// Package kernel assembles the HTTP handler: global middleware stack,
// infrastructure endpoints, and the application route table.
package kernel

import (
	"net/http"
	"time"

	"dukaan/app/routes"
	"dukaan/pkg/metrics"
	"dukaan/pkg/middleware"
	"dukaan/pkg/reqid"
	"dukaan/pkg/response"
	"dukaan/pkg/router"
)

// Build constructs the full HTTP handler from the route dependencies.
func Build(deps routes.Deps) http.Handler {
	r := router.New()

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics: outermost for accurate total latency
	//  2. Recovery:          catches panics before they kill the request
	//  3. Request ID:        inject unique ID before anything logs
	//  4. Logger:            logs request_id from context
	//  5. CORS:              set CORS headers
	//  6. Rate limiter:      coarse global limit; /login gets its own
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(200, time.Minute))

	// Infrastructure endpoints, no auth.
	r.HandleFunc("/metrics", metrics.Handler())
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.OK(w, map[string]string{"status": "ok"})
	})

	routes.RegisterAPI(r, deps)

	return r.Handler()
}
