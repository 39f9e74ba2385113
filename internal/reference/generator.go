// Package reference issues the six-character public booking codes.
package reference

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const (
	Length          = 6
	alphabet        = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	DefaultAttempts = 5
)

// ErrExhausted is returned when every attempt collided with an existing reference.
var ErrExhausted = errors.New("booking reference space exhausted")

// ExistsFunc reports whether a reference is already taken.
type ExistsFunc func(ctx context.Context, ref string) (bool, error)

type Generator struct {
	exists   ExistsFunc
	attempts int
	random   func() (string, error)
}

func NewGenerator(exists ExistsFunc, attempts int) *Generator {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	return &Generator{exists: exists, attempts: attempts, random: Random}
}

// Attempts is the collision budget shared by generation and commit retries.
func (g *Generator) Attempts() int {
	return g.attempts
}

// Next draws references until one is free or the attempt budget runs out.
func (g *Generator) Next(ctx context.Context) (string, error) {
	for i := 0; i < g.attempts; i++ {
		ref, err := g.random()
		if err != nil {
			return "", fmt.Errorf("generate reference: %w", err)
		}
		if g.exists == nil {
			return ref, nil
		}
		taken, err := g.exists(ctx, ref)
		if err != nil {
			return "", fmt.Errorf("check reference %s: %w", ref, err)
		}
		if !taken {
			return ref, nil
		}
	}
	return "", ErrExhausted
}

// Random returns a uniformly drawn uppercase alphanumeric code.
func Random() (string, error) {
	buf := make([]byte, Length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}
