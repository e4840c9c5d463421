package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertErrorContains checks that err contains the expected substring.
func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	assert.Error(t, err)
	if err != nil {
		assert.Contains(t, err.Error(), expected)
	}
}

// AssertProbability checks that p is a finite value in [0, 1].
func AssertProbability(t *testing.T, p float64) {
	t.Helper()
	assert.False(t, math.IsNaN(p), "probability is NaN")
	assert.GreaterOrEqual(t, p, 0.0)
	assert.LessOrEqual(t, p, 1.0)
}
