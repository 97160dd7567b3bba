package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tasktracker_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tasktracker_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	authAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tasktracker_auth_attempts_total",
		Help: "Registration and login attempts by result",
	}, []string{"operation", "result"})

	gateDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tasktracker_gate_decisions_total",
		Help: "Access gate outcomes for protected routes",
	}, []string{"decision"})

	taskOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tasktracker_task_operations_total",
		Help: "Task store operations by result",
	}, []string{"operation", "result"})

	tasksCleared = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tasktracker_tasks_cleared_total",
		Help: "Completed tasks removed by bulk clear",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveAuth counts a register or login attempt
func ObserveAuth(operation, result string) {
	authAttempts.WithLabelValues(operation, result).Inc()
}

// ObserveGate counts one access gate decision
func ObserveGate(decision string) {
	gateDecisions.WithLabelValues(decision).Inc()
}

// ObserveTaskOperation counts a task operation and its result
func ObserveTaskOperation(operation, result string) {
	taskOperations.WithLabelValues(operation, result).Inc()
}

// AddCleared adds n to the bulk-cleared counter
func AddCleared(n int64) {
	if n > 0 {
		tasksCleared.Add(float64(n))
	}
}
