package bookings

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	numberPrefix    = "BK"
	shortSuffixLen  = 4
	longSuffixLen   = 8
	defaultAttempts = 10
)

// NumberExistsFunc reports whether a booking number is already taken.
type NumberExistsFunc func(ctx context.Context, number string) (bool, error)

// NumberGenerator produces BK+YYMMDD+random numbers. After the configured
// attempts with a 4 digit suffix collide it switches to an 8 digit suffix for
// the same number of attempts, then gives up.
type NumberGenerator struct {
	exists   NumberExistsFunc
	attempts int
	now      func() time.Time
	random   func(digits int) (string, error)
}

func NewNumberGenerator(exists NumberExistsFunc, attempts int) *NumberGenerator {
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	return &NumberGenerator{
		exists:   exists,
		attempts: attempts,
		now:      time.Now,
		random:   randomDigits,
	}
}

func (g *NumberGenerator) Generate(ctx context.Context) (string, error) {
	date := g.now().UTC().Format("060102")

	for _, digits := range []int{shortSuffixLen, longSuffixLen} {
		for attempt := 0; attempt < g.attempts; attempt++ {
			suffix, err := g.random(digits)
			if err != nil {
				return "", fmt.Errorf("failed to generate booking number: %w", err)
			}
			candidate := numberPrefix + date + suffix

			taken, err := g.exists(ctx, candidate)
			if err != nil {
				return "", fmt.Errorf("failed to check booking number: %w", err)
			}
			if !taken {
				return candidate, nil
			}
		}
	}

	return "", ErrBookingNumberExhausted
}

func randomDigits(digits int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
