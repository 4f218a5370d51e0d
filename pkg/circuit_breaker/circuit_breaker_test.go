package circuit_breaker_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Astemirdum/library-borrowing/pkg/circuit_breaker"
	"github.com/stretchr/testify/require"
)

var errBroker = errors.New("broker down")

func ok() error   { return nil }
func fail() error { return errBroker }

func TestCircuitBreaker_Call(t *testing.T) {
	t.Parallel()
	cb := circuit_breaker.New(10, 50*time.Millisecond, 0.3, 2)

	for i := 0; i < 20; i++ {
		require.NoError(t, cb.Call(ok))
	}
	require.Equal(t, circuit_breaker.Closed, cb.State())

	for i := 0; i < 2; i++ {
		require.ErrorIs(t, cb.Call(fail), errBroker)
	}
	require.Equal(t, circuit_breaker.Closed, cb.State())

	require.ErrorIs(t, cb.Call(fail), errBroker)
	require.Equal(t, circuit_breaker.Open, cb.State())

	called := false
	err := cb.Call(func() error { called = true; return nil })
	require.ErrorIs(t, err, circuit_breaker.ErrOpen)
	require.False(t, called)

	time.Sleep(60 * time.Millisecond)
	require.NoError(t, cb.Call(ok))
	require.Equal(t, circuit_breaker.HalfOpen, cb.State())
	require.NoError(t, cb.Call(ok))
	require.Equal(t, circuit_breaker.Closed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	t.Parallel()
	cb := circuit_breaker.New(2, 20*time.Millisecond, 0.5, 3)

	require.ErrorIs(t, cb.Call(fail), errBroker)
	require.Equal(t, circuit_breaker.Open, cb.State())

	time.Sleep(30 * time.Millisecond)
	require.ErrorIs(t, cb.Call(fail), errBroker)
	require.Equal(t, circuit_breaker.Open, cb.State())
	require.ErrorIs(t, cb.Call(ok), circuit_breaker.ErrOpen)

	cb.Reset()
	require.Equal(t, circuit_breaker.Closed, cb.State())
	require.NoError(t, cb.Call(ok))
}

func TestCircuitBreaker_HalfOpenSingleTrial(t *testing.T) {
	t.Parallel()
	cb := circuit_breaker.New(1, 10*time.Millisecond, 1, 1)

	require.ErrorIs(t, cb.Call(fail), errBroker)
	require.Equal(t, circuit_breaker.Open, cb.State())
	time.Sleep(20 * time.Millisecond)

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- cb.Call(func() error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered
	require.Equal(t, circuit_breaker.HalfOpen, cb.State())

	for i := 0; i < 5; i++ {
		called := false
		err := cb.Call(func() error { called = true; return nil })
		require.ErrorIs(t, err, circuit_breaker.ErrOpen)
		require.False(t, called)
	}

	close(release)
	require.NoError(t, <-done)
	require.Equal(t, circuit_breaker.Closed, cb.State())
	require.NoError(t, cb.Call(ok))
}
