/*
Package observability turns bpmngen lifecycle hooks into logs and Prometheus metrics.

# Metrics

  - bpmngen_generate_total{outcome}: finished compilation requests by outcome
    ("succeeded", "failed").
  - bpmngen_generate_duration_seconds: compilation latency as seen by the orchestrator.
  - bpmngen_results_discarded_total: responses dropped by the stale-response guard.
  - bpmngen_render_total{status}: render attempts by final sandbox status.

# Usage

	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	if err != nil {
		return err
	}
	hooks := observability.Combine(m.Hooks(), observability.LoggingHooks(logger))
*/
package observability
