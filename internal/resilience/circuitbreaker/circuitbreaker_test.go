package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("feed host down")

func tight(name string) Settings {
	return Settings{Name: name, HalfOpenRequests: 1, Window: time.Minute, Cooldown: 20 * time.Millisecond, TripRatio: 0.5, MinRequests: 4}
}

func fail(b *Breaker, n int) {
	for i := 0; i < n; i++ {
		_, _ = Call(b, func() (int, error) { return 0, errDown })
	}
}

func TestCall_ReturnsTypedResult(t *testing.T) {
	b := New(tight("t-typed"))

	items, err := Call(b, func() ([]string, error) { return []string{"privet_mir"}, nil })
	require.NoError(t, err)
	assert.Equal(t, []string{"privet_mir"}, items)

	n, err := Call(b, func() (int, error) { return 7, errDown })
	assert.ErrorIs(t, err, errDown)
	assert.Zero(t, n, "result dropped on error")
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestCall_NilInterfaceResult(t *testing.T) {
	b := New(tight("t-nil"))

	var out error
	assert.NotPanics(t, func() {
		out, _ = Call(b, func() (error, error) { return nil, nil })
	})
	assert.Nil(t, out)
}

func TestBreaker_StaysClosedBelowMinRequests(t *testing.T) {
	b := New(tight("t-min"))

	fail(b, 3)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreaker_TripsAndRejects(t *testing.T) {
	b := New(tight("t-trip"))

	fail(b, 4)
	require.Equal(t, gobreaker.StateOpen, b.State())
	assert.Equal(t, 2.0, testutil.ToFloat64(breakerState.WithLabelValues("t-trip")))

	called := false
	_, err := Call(b, func() (int, error) {
		called = true
		return 1, nil
	})
	assert.False(t, called, "open breaker does not reach the dependency")
	assert.True(t, Rejected(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(rejectionsTotal.WithLabelValues("t-trip")))
}

func TestBreaker_TripRatio(t *testing.T) {
	b := New(tight("t-ratio"))

	for i := 0; i < 3; i++ {
		_, _ = Call(b, func() (int, error) { return 1, nil })
	}
	fail(b, 2)
	assert.Equal(t, gobreaker.StateClosed, b.State(), "2 of 5 is under half")

	fail(b, 1)
	assert.Equal(t, gobreaker.StateOpen, b.State(), "3 of 6 reaches half")
}

func TestBreaker_RecoversAfterCooldown(t *testing.T) {
	b := New(tight("t-recover"))
	fail(b, 4)
	require.Equal(t, gobreaker.StateOpen, b.State())

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, gobreaker.StateHalfOpen, b.State())

	_, err := Call(b, func() (int, error) { return 1, nil })
	require.NoError(t, err)
	assert.Equal(t, gobreaker.StateClosed, b.State())
	assert.Equal(t, 0.0, testutil.ToFloat64(breakerState.WithLabelValues("t-recover")))
}

func TestBreaker_IsSuccessful(t *testing.T) {
	notFound := errors.New("index missing")
	s := tight("t-classify")
	s.IsSuccessful = func(err error) bool { return err == nil || errors.Is(err, notFound) }
	b := New(s)

	for i := 0; i < 10; i++ {
		_, err := Call(b, func() (int, error) { return 0, notFound })
		assert.ErrorIs(t, err, notFound, "the error still reaches the caller")
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestFor(t *testing.T) {
	for _, dep := range []Dependency{Feeds, Assets, Articles, Search, Database} {
		t.Run(string(dep), func(t *testing.T) {
			s := For(dep)
			assert.Equal(t, string(dep), s.Name)
			assert.Positive(t, s.HalfOpenRequests)
			assert.Positive(t, s.Cooldown)
			assert.Greater(t, s.TripRatio, 0.0)
			assert.LessOrEqual(t, s.TripRatio, 1.0)
		})
	}

	assert.NotNil(t, For(Database).IsSuccessful)
	assert.Nil(t, For(Feeds).IsSuccessful)

	other := For("thumbnailer")
	assert.Equal(t, "thumbnailer", other.Name)
	assert.Equal(t, uint32(5), other.MinRequests)
}

func TestRejected(t *testing.T) {
	assert.True(t, Rejected(gobreaker.ErrOpenState))
	assert.True(t, Rejected(gobreaker.ErrTooManyRequests))
	assert.False(t, Rejected(errDown))
	assert.False(t, Rejected(nil))
}

func TestStateValue(t *testing.T) {
	assert.Equal(t, 0.0, stateValue(gobreaker.StateClosed))
	assert.Equal(t, 1.0, stateValue(gobreaker.StateHalfOpen))
	assert.Equal(t, 2.0, stateValue(gobreaker.StateOpen))
}
