// Package httpserver runs the gateway's HTTP listener.
//
// Server applies read, header, write and idle timeouts and shuts down
// gracefully when the Run context is cancelled, giving in-flight requests up
// to the shutdown timeout to complete:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		return err
//	}
//
// LivenessHandler and ReadinessHandler back the /health/live and
// /health/ready probes; readiness runs named dependency checks such as a
// Redis ping.
package httpserver
