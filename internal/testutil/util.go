// Package testutil provides shared numeric assertion helpers for tests.
// Pricing outputs are floating-point approximations, so every comparison
// carries an explicit tolerance.
package testutil

import (
	"math"
	"testing"
)

// WithinTol reports whether a and b differ by less than tol.
func WithinTol(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

// AssertClose fails the test when got is NaN or not within tol of want.
func AssertClose(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.IsNaN(got) {
		t.Fatalf("%s: got NaN, want %v", name, want)
	}
	if !WithinTol(got, want, tol) {
		t.Fatalf("%s: got %v, want %v (tol %v)", name, got, want, tol)
	}
}
