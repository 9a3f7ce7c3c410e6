package server

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors the API exports on /metrics
type Metrics struct {
	httpRequests *prometheus.CounterVec
	insights     *prometheus.CounterVec
	verdicts     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fitgraph_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "path", "status"}),
		insights: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fitgraph_insights_total",
			Help: "Extracted insights by source and whether they were stored",
		}, []string{"source", "stored"}),
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fitgraph_verdicts_total",
			Help: "Fit-risk verdicts by result",
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{m.httpRequests, m.insights, m.verdicts} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeRequest(method, path string, status int) {
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

func (m *Metrics) observeInsight(source string, stored bool) {
	m.insights.WithLabelValues(source, strconv.FormatBool(stored)).Inc()
}

func (m *Metrics) observeVerdict(blocked bool) {
	result := "pass"
	if blocked {
		result = "blocked"
	}
	m.verdicts.WithLabelValues(result).Inc()
}
