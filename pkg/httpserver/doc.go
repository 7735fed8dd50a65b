// Package httpserver runs an http.Handler with configured timeouts and shuts
// it down gracefully when the context is cancelled or SIGINT/SIGTERM arrives.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server stopped", logger.Error(err))
//	}
//
// LivenessHandler and ReadinessHandler back the /health/live and
// /health/ready probes; readiness runs named dependency checks such as the
// database and Redis pings.
package httpserver
