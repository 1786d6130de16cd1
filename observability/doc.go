// Package observability provides OpenTelemetry tracing and metrics for
// menustream.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, "menustream", version, env, cfg)
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, "menustream", version, env, cfg)
//	metrics, err := observability.NewMetrics(observability.Meter("menustream"))
//
// Metrics satisfies the session broadcaster's Recorder interface, so
// wiring it in counts pushed and dropped events per session queue.
package observability
