package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	UsersCreated        prometheus.Counter
	LoginFailures       prometheus.Counter
	RouteGuardDecisions *prometheus.CounterVec
	AccountItemWrites   *prometheus.CounterVec
}

// New creates the metrics and registers them with reg. Pass
// prometheus.DefaultRegisterer in binaries and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UsersCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "storefront_users_created_total",
			Help: "Total number of users created in the system",
		}),
		LoginFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "storefront_login_failures_total",
			Help: "Total number of rejected login attempts",
		}),
		RouteGuardDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_route_guard_decisions_total",
			Help: "Account route guard outcomes by decision",
		}, []string{"decision"}),
		AccountItemWrites: f.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_account_item_writes_total",
			Help: "Server-side cart and wishlist writes by kind and result",
		}, []string{"kind", "result"}),
	}
}

// IncUsersCreated increments the users created counter by 1
func (m *Metrics) IncUsersCreated() {
	m.UsersCreated.Inc()
}

func (m *Metrics) IncLoginFailures() {
	m.LoginFailures.Inc()
}

func (m *Metrics) ObserveRouteGuardDecision(decision string) {
	m.RouteGuardDecisions.WithLabelValues(decision).Inc()
}

// ObserveAccountWrite records a server-side add. created=false means the
// entry already existed.
func (m *Metrics) ObserveAccountWrite(kind string, created bool) {
	result := "created"
	if !created {
		result = "existing"
	}
	m.AccountItemWrites.WithLabelValues(kind, result).Inc()
}

// Merge holds the merge-on-login metrics. The merge runs in the shopper
// client, so these live on the client's registry, not the API server's.
type Merge struct {
	Runs     *prometheus.CounterVec
	Items    *prometheus.CounterVec
	Duration prometheus.Histogram
}

func NewMerge(reg prometheus.Registerer) *Merge {
	f := promauto.With(reg)
	return &Merge{
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_merge_runs_total",
			Help: "Merge-on-login runs by outcome",
		}, []string{"outcome"}),
		Items: f.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_merge_items_total",
			Help: "Items pushed during merge-on-login by kind and result",
		}, []string{"kind", "result"}),
		Duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_merge_duration_seconds",
			Help:    "Wall time of merge-on-login runs",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Merge) ObserveMergeRun(outcome string, took time.Duration) {
	m.Runs.WithLabelValues(outcome).Inc()
	if outcome != "skipped" {
		m.Duration.Observe(took.Seconds())
	}
}

func (m *Merge) ObserveMergeItem(kind string, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.Items.WithLabelValues(kind, result).Inc()
}
