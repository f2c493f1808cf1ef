// Package metrics holds the Prometheus collectors of the application.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/go-petr/bank-registry/internal/domain"
)

// DefaultBuckets provides a common set of histogram buckets in seconds for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Transfer outcomes.
const (
	OutcomeOK                  = "ok"
	OutcomeInvalidAmount       = "invalid_amount"
	OutcomeInvalidOwner        = "invalid_owner"
	OutcomeAccountNotFound     = "account_not_found"
	OutcomeInsufficientBalance = "insufficient_balance"
	OutcomeError               = "error"
)

// Metrics groups the collectors.
type Metrics struct {
	transfers *prometheus.CounterVec
	amount    prometheus.Counter
	requests  *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bank",
			Name:      "transfers_total",
			Help:      "Number of transfer attempts by outcome.",
		}, []string{"outcome"}),
		amount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bank",
			Name:      "transferred_amount_total",
			Help:      "Sum of amounts moved by successful transfers.",
		}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bank",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status code.",
			Buckets:   DefaultBuckets,
		}, []string{"method", "route", "status"}),
	}

	for _, c := range []prometheus.Collector{m.transfers, m.amount, m.requests} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Outcome maps a transfer error to its outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrNegativeAmount):
		return OutcomeInvalidAmount
	case errors.Is(err, domain.ErrInvalidOwner):
		return OutcomeInvalidOwner
	case errors.Is(err, domain.ErrAccountNotFound):
		return OutcomeAccountNotFound
	case errors.Is(err, domain.ErrInsufficientBalance):
		return OutcomeInsufficientBalance
	}

	return OutcomeError
}

// ObserveTransfer counts a transfer attempt. amount is only added for successful transfers.
func (m *Metrics) ObserveTransfer(amount float64, err error) {
	if m == nil {
		return
	}

	m.transfers.WithLabelValues(Outcome(err)).Inc()

	if err == nil && amount > 0 {
		m.amount.Add(amount)
	}
}

// ObserveRequest records the latency of a handled HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}

	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
