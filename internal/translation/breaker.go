package translation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/transquery/internal/language"
)

// ErrProviderUnavailable is returned while the breaker is open
var ErrProviderUnavailable = errors.New("translation provider unavailable")

// Breaker stops calling a provider after too many consecutive failures.
// Once open, calls fail immediately until the cool down has passed and a
// single trial call succeeds again.
type Breaker struct {
	next Translator
	cb   *gobreaker.CircuitBreaker

	// OnStateChange is called on every breaker transition, if set
	OnStateChange func(from, to string)
}

// NewBreaker wraps next in a breaker that trips after threshold
// consecutive failures. A threshold of 0 or less returns next unchanged.
func NewBreaker(next Translator, threshold int, coolDown time.Duration) Translator {
	if threshold <= 0 {
		return next
	}

	b := &Breaker{next: next}
	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: 1,
		Timeout:     coolDown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(threshold)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			if b.OnStateChange != nil {
				b.OnStateChange(from.String(), to.String())
			}
		},
	})
	return b
}

// Name returns the wrapped provider name
func (b *Breaker) Name() string {
	return b.next.Name()
}

// State returns the breaker state: closed, open or half-open
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// Translate calls the wrapped provider unless the breaker is open
func (b *Breaker) Translate(ctx context.Context, text string, from, to language.Language) (string, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Translate(ctx, text, from, to)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %s: %v", ErrProviderUnavailable, b.next.Name(), err)
	}
	if err != nil {
		return "", err
	}

	return result.(string), nil
}
