package apiclient

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts upstream API traffic.
type Metrics struct {
	requests *prometheus.CounterVec
	refresh  *prometheus.CounterVec
}

// NewMetrics registers the client collectors on registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vivionix_api_requests_total",
		Help: "Requests sent to the remote API partitioned by method and status.",
	}, []string{"method", "status"})
	refresh := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vivionix_api_token_refresh_total",
		Help: "Access token refresh attempts partitioned by result.",
	}, []string{"result"})
	if registerer != nil {
		registerer.MustRegister(requests, refresh)
	}
	return &Metrics{requests: requests, refresh: refresh}
}

func (m *Metrics) observeRequest(method string, status int) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(method, label).Inc()
}

func (m *Metrics) observeRefresh(ok bool) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.refresh.WithLabelValues(result).Inc()
}
