package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Subscriptions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "opengym", Name: "subscriptions_total", Help: "Subscription changes by target and action",
	}, []string{"target", "action"})
	CapacityRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "opengym", Name: "capacity_rejections_total", Help: "Subscriptions refused because the target was full",
	}, []string{"target"})
	CalendarRenders = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "opengym", Name: "calendar_renders_total", Help: "Rendered calendar grids",
	}, []string{"view"})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "opengym", Name: "handler_errors_total", Help: "Unexpected handler errors",
	})
	RemindersSent = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "opengym", Name: "reminders_sent_total", Help: "Session reminder mails sent",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "opengym", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(Subscriptions, CapacityRejections, CalendarRenders, HandlerErrors, RemindersSent, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
