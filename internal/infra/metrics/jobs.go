package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(scheduledJobsTotal) }

var scheduledJobsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "scheduled_jobs_total",
		Help: "Total number of scheduled job runs, labeled by job and status.",
	},
	[]string{"job", "status"}, // status: 'ok', 'failed'
)

func IncScheduledJob(job, status string) {
	scheduledJobsTotal.WithLabelValues(norm(job), norm(status)).Inc()
}
