package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// BreakerOptions tune the circuit breaker around a Dispatcher.
type BreakerOptions struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

// Breaker stops calling a failing Dispatcher until it recovers.
type Breaker struct {
	next Dispatcher
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker wraps next in a circuit breaker.
func NewBreaker(next Dispatcher, opts BreakerOptions) *Breaker {
	if opts.MaxFailures == 0 {
		opts.MaxFailures = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 30 * time.Second
	}

	st := gobreaker.Settings{
		Name:        "emailjs",
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxFailures
		},
		// Misconfiguration is not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotConfigured)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
		},
	}
	return &Breaker{next: next, cb: gobreaker.NewCircuitBreaker(st)}
}

// SendPINRecovery forwards to the wrapped Dispatcher unless the breaker is open.
func (b *Breaker) SendPINRecovery(ctx context.Context, msg PINRecovery) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.SendPINRecovery(ctx, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return err
}

// State returns the breaker state name.
func (b *Breaker) State() string {
	return b.cb.State().String()
}
