// Package retry re-runs operations that failed for transient reasons,
// waiting a capped exponential delay with jitter between attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net"
	"net/http"
	"syscall"
	"time"

	"newsdesk/internal/observability/logging"
)

// Policy bounds how often and how patiently an operation is retried.
type Policy struct {
	// Name labels log lines and the calls metric.
	Name string
	// Attempts is the total number of calls, the first included.
	Attempts int
	// Base is the wait after the first failure.
	Base time.Duration
	// Cap limits any single wait.
	Cap time.Duration
	// Factor multiplies the wait after every failure.
	Factor float64
	// Jitter adds up to this fraction of the wait at random.
	Jitter float64
}

// FeedPolicy covers syndication feed downloads. Feed hosts flap, and the
// cron run has minutes to spare, so it is the most patient policy.
func FeedPolicy() Policy {
	return Policy{Name: "feed", Attempts: 5, Base: time.Second, Cap: 30 * time.Second, Factor: 2, Jitter: 0.1}
}

// AssetPolicy covers remote image downloads made while an entry is ingested.
func AssetPolicy() Policy {
	return Policy{Name: "asset", Attempts: 3, Base: 500 * time.Millisecond, Cap: 5 * time.Second, Factor: 2, Jitter: 0.1}
}

// IndexPolicy covers search index writes. A write that still fails lands in
// the reindex outbox, so it gives up quickly.
func IndexPolicy() Policy {
	return Policy{Name: "index", Attempts: 3, Base: 200 * time.Millisecond, Cap: 2 * time.Second, Factor: 2, Jitter: 0.1}
}

// DBPolicy covers connecting to Postgres at startup.
func DBPolicy() Policy {
	return Policy{Name: "db", Attempts: 3, Base: 100 * time.Millisecond, Cap: time.Second, Factor: 2, Jitter: 0.1}
}

// Wait returns the pause before attempt n+1, given that attempt n failed.
// Jitter is not included.
func (p Policy) Wait(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	factor := p.Factor
	if factor < 1 {
		factor = 1
	}
	d := float64(p.Base) * math.Pow(factor, float64(n-1))
	if p.Cap > 0 && d > float64(p.Cap) {
		return p.Cap
	}
	return time.Duration(d)
}

// Do calls fn until it succeeds, fails with an error Retryable rejects, the
// attempts run out or ctx is done. The error of the last call is wrapped.
func Do(ctx context.Context, p Policy, fn func() error) error {
	log := logging.FromContext(ctx).With(slog.String("policy", p.Name))
	attempts := max(p.Attempts, 1)

	var err error
	for n := 1; ; n++ {
		if err = fn(); err == nil {
			if n > 1 {
				log.Info("succeeded after retry", slog.Int("attempt", n))
				record(p.Name, "recovered")
			} else {
				record(p.Name, "success")
			}
			return nil
		}
		if !Retryable(err) {
			record(p.Name, "permanent")
			return err
		}
		if n == attempts {
			break
		}

		wait := jitter(p.Wait(n), p.Jitter)
		log.Warn("attempt failed, retrying",
			slog.Int("attempt", n),
			slog.Int("attempts", attempts),
			slog.Duration("wait", wait),
			slog.Any("error", err))

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			record(p.Name, "canceled")
			return fmt.Errorf("%s: retry canceled: %w", p.Name, errors.Join(ctx.Err(), err))
		}
	}

	record(p.Name, "exhausted")
	return fmt.Errorf("%s: gave up after %d attempts: %w", p.Name, attempts, err)
}

// Retryable reports whether err is likely to go away on its own: network
// timeouts, refused or reset connections, 5xx, 408 and 429 responses, and
// anything marked with Transient. Context cancellation never is.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var t *transient
	if errors.As(err, &t) {
		return true
	}

	var status *StatusError
	if errors.As(err, &status) {
		switch {
		case status.Code >= 500 && status.Code < 600:
			return true
		case status.Code == http.StatusTooManyRequests, status.Code == http.StatusRequestTimeout:
			return true
		}
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	for _, errno := range []syscall.Errno{syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ETIMEDOUT, syscall.ENETUNREACH} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

// StatusError is a non-2xx HTTP response from a remote host.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Status)
}

// Transient marks err as retryable whatever its type. Adapters use it for
// failures whose cause is not in the error chain, such as an unavailable
// search cluster reported in a response body.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transient{err: err}
}

type transient struct{ err error }

func (t *transient) Error() string { return t.err.Error() }
func (t *transient) Unwrap() error { return t.err }

func jitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 || d <= 0 {
		return d
	}
	fraction = min(fraction, 1)
	// #nosec G404 -- backoff jitter needs no cryptographic randomness.
	return d + time.Duration(rand.Float64()*fraction*float64(d))
}
