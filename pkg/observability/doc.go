/*
Package observability turns engine lifecycle hooks into Prometheus metrics and
structured log records.

	metrics := observability.NewMetrics()
	engine, err := aidbuddy.New(
		aidbuddy.WithLifecycleHooks(metrics.Hooks().Merge(observability.LoggingHooks(logger))),
	)
*/
package observability
