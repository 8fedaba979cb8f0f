package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RefreshTicks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsboard_refresh_ticks_total",
			Help: "Snapshots applied by view refresh tasks",
		},
		[]string{"view"},
	)
	RefreshPanics = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsboard_refresh_panics_total",
			Help: "Recovered panics inside refresh ticks",
		},
		[]string{"view"},
	)
	ActiveViews = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "opsboard_active_views",
			Help: "Views with a running refresh task",
		},
		[]string{"view"},
	)
	ExportRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsboard_export_runs_total",
			Help: "Export runs by format and result",
		},
		[]string{"format", "result"},
	)
	ExportBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsboard_export_bytes_total",
			Help: "Bytes produced by exports",
		},
		[]string{"format"},
	)
	AlertNotifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsboard_alert_notifications_total",
			Help: "Alert notifications by channel and result",
		},
		[]string{"channel", "result"},
	)
)

func init() {
	prometheus.MustRegister(RefreshTicks, RefreshPanics, ActiveViews, ExportRuns, ExportBytes, AlertNotifications)
}
