// Package circuitbreaker stops calling a remote dependency that keeps
// failing, so feed runs and submissions fail fast instead of queueing on
// timeouts. Breakers are github.com/sony/gobreaker instances.
package circuitbreaker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Dependency names a guarded remote. It is also the breaker name in logs
// and metrics.
type Dependency string

const (
	Feeds    Dependency = "feed-fetch"
	Assets   Dependency = "asset-fetch"
	Articles Dependency = "content-fetch"
	Search   Dependency = "search-index"
	Database Dependency = "database"
)

// Settings tune one breaker.
type Settings struct {
	Name string
	// HalfOpenRequests may pass while the breaker tests a recovering remote.
	HalfOpenRequests uint32
	// Window is how long closed-state counts accumulate before a reset.
	Window time.Duration
	// Cooldown is how long the breaker stays open.
	Cooldown time.Duration
	// TripRatio of failed requests opens the breaker once MinRequests
	// have been seen in the window.
	TripRatio   float64
	MinRequests uint32
	// IsSuccessful decides which errors still prove the remote answered.
	// Nil counts only a nil error.
	IsSuccessful func(error) bool
}

var profiles = map[Dependency]Settings{
	// Feed hosts are many and independent; trip only on a sustained outage.
	Feeds:    {HalfOpenRequests: 5, Window: time.Minute, Cooldown: 2 * time.Minute, TripRatio: 0.7, MinRequests: 10},
	Assets:   {HalfOpenRequests: 3, Window: time.Minute, Cooldown: time.Minute, TripRatio: 0.6, MinRequests: 5},
	Articles: {HalfOpenRequests: 5, Window: time.Minute, Cooldown: time.Minute, TripRatio: 0.6, MinRequests: 5},
	Search:   {HalfOpenRequests: 3, Window: 30 * time.Second, Cooldown: 30 * time.Second, TripRatio: 0.8, MinRequests: 5},
	Database: {HalfOpenRequests: 3, Window: time.Minute, Cooldown: 30 * time.Second, TripRatio: 1, MinRequests: 5, IsSuccessful: answered},
}

// For returns the settings for dep. Unknown dependencies get conservative
// defaults under their own name.
func For(dep Dependency) Settings {
	s, ok := profiles[dep]
	if !ok {
		s = Settings{HalfOpenRequests: 3, Window: 30 * time.Second, Cooldown: time.Minute, TripRatio: 0.6, MinRequests: 5}
	}
	s.Name = string(dep)
	return s
}

// Breaker guards calls to one dependency.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// New builds a closed breaker.
func New(s Settings) *Breaker {
	breakerState.WithLabelValues(s.Name).Set(stateValue(gobreaker.StateClosed))
	return &Breaker{cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.HalfOpenRequests,
		Interval:    s.Window,
		Timeout:     s.Cooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.Requests >= s.MinRequests &&
				float64(c.TotalFailures) >= s.TripRatio*float64(c.Requests)
		},
		IsSuccessful: s.IsSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			breakerState.WithLabelValues(name).Set(stateValue(to))
			slog.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})}
}

// Name returns the dependency the breaker guards.
func (b *Breaker) Name() string { return b.cb.Name() }

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State { return b.cb.State() }

// Call runs fn through b. While b is open fn is not called and the error
// satisfies Rejected.
func Call[T any](b *Breaker, fn func() (T, error)) (T, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		if Rejected(err) {
			rejectionsTotal.WithLabelValues(b.Name()).Inc()
		}
		var zero T
		return zero, err
	}
	v, _ := out.(T)
	return v, nil
}

// Rejected reports whether err came from a breaker refusing the call
// rather than from the dependency.
func Rejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
