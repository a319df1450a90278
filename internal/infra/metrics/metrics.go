package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	EmailsSent = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "outreach_emails_sent_total", Help: "Total outreach emails confirmed sent"},
	)
	SendFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "outreach_send_failures_total", Help: "Total transport failures while sending"},
	)
	AuthFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "outreach_auth_failures_total", Help: "Total credential failures halting an athlete batch"},
	)
	OpensTracked = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "outreach_opens_total", Help: "Total tracking pixel hits recorded"},
	)
	RepliesTracked = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "outreach_replies_total", Help: "Total reply events recorded"},
	)
	FollowupsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "outreach_followups_created_total", Help: "Total follow-up records created by the cadence sweep"},
	)
	BatchesRun = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "outreach_batches_total", Help: "Total send batches executed"},
	)
)

func Register() {
	prometheus.MustRegister(EmailsSent, SendFailures, AuthFailures, OpensTracked, RepliesTracked, FollowupsCreated, BatchesRun)
}
