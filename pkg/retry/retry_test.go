package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func TestPolicy_Do(t *testing.T) {
	errPermanent := errors.New("permanent")

	testCases := map[string]struct {
		policy           Policy
		failures         []error
		expectedAttempts int
		expectedError    error
	}{

		"should succeed without retrying": {
			policy:           Policy{MaxAttempts: 3},
			failures:         nil,
			expectedAttempts: 1,
		},

		"should retry until success": {
			policy:           Policy{MaxAttempts: 3},
			failures:         []error{errTransient, errTransient},
			expectedAttempts: 3,
		},

		"should stop after max attempts": {
			policy:           Policy{MaxAttempts: 3},
			failures:         []error{errTransient, errTransient, errTransient, errTransient},
			expectedAttempts: 3,
			expectedError:    errTransient,
		},

		"should not retry non-retryable errors": {
			policy: Policy{
				MaxAttempts: 3,
				Retryable:   func(err error) bool { return errors.Is(err, errTransient) },
			},
			failures:         []error{errPermanent},
			expectedAttempts: 1,
			expectedError:    errPermanent,
		},

		"should treat zero attempts as one": {
			policy:           Policy{},
			failures:         []error{errTransient},
			expectedAttempts: 1,
			expectedError:    errTransient,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			attempts := 0
			err := tc.policy.Do(context.Background(), func(context.Context) error {
				attempts++
				if attempts <= len(tc.failures) {
					return tc.failures[attempts-1]
				}
				return nil
			})

			assert.Equal(t, tc.expectedAttempts, attempts)
			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPolicy_Do_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := Policy{MaxAttempts: 3}.Do(ctx, func(context.Context) error {
		attempts++
		return errTransient
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, attempts)
}

func TestPolicy_Do_CancelDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	done := make(chan error, 1)
	go func() {
		done <- Policy{MaxAttempts: 3, Delay: time.Minute}.Do(ctx, func(context.Context) error {
			attempts++
			return errTransient
		})
	}()

	// Give the first attempt time to fail and enter the delay.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, attempts)
	case <-time.After(5 * time.Second):
		t.Fatal("retry did not observe cancellation")
	}
}

func TestDoValue(t *testing.T) {
	attempts := 0
	result, err := DoValue(context.Background(), Policy{MaxAttempts: 3}, func(context.Context) (string, error) {
		attempts++
		if attempts < 2 {
			return "", errTransient
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 2, attempts)
}
