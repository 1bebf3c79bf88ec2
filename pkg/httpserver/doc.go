// Package httpserver runs an http.Handler with graceful shutdown.
//
// Run blocks until its context is done, the process receives SIGINT or
// SIGTERM, or Shutdown is called. Shutdown drains in-flight requests and then
// runs the stop hooks within the same deadline; lmskit registers
// Registry.CloseAll there so tenant connections close after the last request:
//
//	srv := httpserver.NewFromConfig(cfg,
//	    httpserver.WithLogger(log),
//	    httpserver.WithStopHook(registry.CloseAll),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server failed", logger.Error(err))
//	}
//
// LivenessHandler and ReadinessHandler back /healthz and /readyz probes.
package httpserver
