package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/bank-registry/internal/domain"
	"github.com/go-petr/bank-registry/pkg/errorspkg"
)

func TestOutcome(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		err  error
		want string
	}{
		{nil, OutcomeOK},
		{domain.ErrInvalidAmount, OutcomeInvalidAmount},
		{domain.ErrNegativeAmount, OutcomeInvalidAmount},
		{domain.ErrInvalidOwner, OutcomeInvalidOwner},
		{fmt.Errorf("wrapped: %w", domain.ErrAccountNotFound), OutcomeAccountNotFound},
		{domain.ErrInsufficientBalance, OutcomeInsufficientBalance},
		{errorspkg.ErrInternal, OutcomeError},
	}

	for _, tc := range testCases {
		if got := Outcome(tc.err); got != tc.want {
			t.Errorf("Outcome(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestObserveTransfer(t *testing.T) {
	t.Parallel()

	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveTransfer(40, nil)
	m.ObserveTransfer(2.5, nil)
	m.ObserveTransfer(150, domain.ErrInsufficientBalance)

	require.Equal(t, float64(2), testutil.ToFloat64(m.transfers.WithLabelValues(OutcomeOK)))
	require.Equal(t, float64(1), testutil.ToFloat64(m.transfers.WithLabelValues(OutcomeInsufficientBalance)))
	require.Equal(t, 42.5, testutil.ToFloat64(m.amount))
}

func TestObserveRequest(t *testing.T) {
	t.Parallel()

	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveRequest("POST", "/transfers", 200, 10*time.Millisecond)
	m.ObserveRequest("POST", "/transfers", 400, time.Millisecond)

	require.Equal(t, 2, testutil.CollectAndCount(m.requests))
}

func TestNewDuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()

	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)

	var are prometheus.AlreadyRegisteredError
	require.True(t, errors.As(err, &are), "New() returned %v, want AlreadyRegisteredError", err)
}

func TestNilMetrics(t *testing.T) {
	t.Parallel()

	var m *Metrics

	m.ObserveTransfer(1, nil)
	m.ObserveRequest("GET", "/", 200, time.Second)
}
