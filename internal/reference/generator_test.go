package reference

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refPattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func sequence(refs ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		ref := refs[i%len(refs)]
		i++
		return ref, nil
	}
}

func TestRandom_Format(t *testing.T) {
	for i := 0; i < 200; i++ {
		ref, err := Random()
		require.NoError(t, err)
		assert.Regexp(t, refPattern, ref)
	}
}

func TestGenerator_RetriesPastCollisions(t *testing.T) {
	taken := map[string]bool{"AAAAAA": true, "BBBBBB": true}
	var checked []string
	g := NewGenerator(func(_ context.Context, ref string) (bool, error) {
		checked = append(checked, ref)
		return taken[ref], nil
	}, 5)
	g.random = sequence("AAAAAA", "BBBBBB", "CCCCCC")

	ref, err := g.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "CCCCCC", ref)
	assert.Equal(t, []string{"AAAAAA", "BBBBBB", "CCCCCC"}, checked)
}

func TestGenerator_Exhausted(t *testing.T) {
	calls := 0
	g := NewGenerator(func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	}, 3)
	g.random = sequence("AAAAAA")

	_, err := g.Next(context.Background())
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 3, calls)
}

func TestGenerator_LookupError(t *testing.T) {
	boom := errors.New("db down")
	g := NewGenerator(func(context.Context, string) (bool, error) { return false, boom }, 3)

	_, err := g.Next(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestGenerator_DefaultAttempts(t *testing.T) {
	assert.Equal(t, DefaultAttempts, NewGenerator(nil, 0).Attempts())
}

func TestGenerator_UniqueAcrossDraws(t *testing.T) {
	issued := make(map[string]bool)
	g := NewGenerator(func(_ context.Context, ref string) (bool, error) { return issued[ref], nil }, 5)
	for i := 0; i < 1000; i++ {
		ref, err := g.Next(context.Background())
		require.NoError(t, err)
		require.False(t, issued[ref])
		issued[ref] = true
	}
}
