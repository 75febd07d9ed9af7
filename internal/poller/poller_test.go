package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseforge/caseforge/internal/auth"
	"github.com/caseforge/caseforge/internal/orders"
	"github.com/caseforge/caseforge/pkg/retry"
)

type scriptedSource struct {
	results []func() (*orders.PaymentStatus, error)
	calls   int
}

func (s *scriptedSource) GetPaymentStatus(context.Context, string, *auth.Identity) (*orders.PaymentStatus, error) {
	result := s.results[s.calls]
	s.calls++
	return result()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWaiter_Poll(t *testing.T) {
	identity := &auth.Identity{UserID: uuid.New()}
	errNetwork := errors.New("connection reset")

	paid := func() (*orders.PaymentStatus, error) {
		return &orders.PaymentStatus{Paid: true}, nil
	}
	unpaid := func() (*orders.PaymentStatus, error) {
		return &orders.PaymentStatus{Paid: false}, nil
	}
	transient := func() (*orders.PaymentStatus, error) { return nil, errNetwork }
	notFound := func() (*orders.PaymentStatus, error) { return nil, orders.ErrOrderNotFound }
	missing := func() (*orders.PaymentStatus, error) { return nil, orders.ErrMissingOrderID }

	testCases := map[string]struct {
		results       []func() (*orders.PaymentStatus, error)
		expectedCalls int
		expectedPaid  bool
		expectedError error
	}{

		"should return a paid status directly": {
			results:       []func() (*orders.PaymentStatus, error){paid},
			expectedCalls: 1,
			expectedPaid:  true,
		},

		"should return unpaid without retrying": {
			results:       []func() (*orders.PaymentStatus, error){unpaid},
			expectedCalls: 1,
			expectedPaid:  false,
		},

		"should retry transient failures": {
			results:       []func() (*orders.PaymentStatus, error){transient, transient, paid},
			expectedCalls: 3,
			expectedPaid:  true,
		},

		"should give up after three attempts": {
			results:       []func() (*orders.PaymentStatus, error){transient, transient, transient},
			expectedCalls: 3,
			expectedError: errNetwork,
		},

		"should not retry not-found answers": {
			results:       []func() (*orders.PaymentStatus, error){notFound},
			expectedCalls: 1,
			expectedError: orders.ErrOrderNotFound,
		},

		"should not retry a missing order id": {
			results:       []func() (*orders.PaymentStatus, error){missing},
			expectedCalls: 1,
			expectedError: orders.ErrMissingOrderID,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			source := &scriptedSource{results: tc.results}
			waiter := NewWaiter(source, retry.Policy{MaxAttempts: 3}, discardLogger())

			status, err := waiter.Poll(context.Background(), uuid.NewString(), identity)

			assert.Equal(t, tc.expectedCalls, source.calls)
			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectedPaid, status.Paid)
		})
	}
}
