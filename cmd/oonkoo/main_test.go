package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/oonkoo/oonkoo-registry/internal/cliauth"
	"github.com/oonkoo/oonkoo-registry/internal/registry"
	"github.com/oonkoo/oonkoo-registry/internal/resolver"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"generic", errors.New("boom"), exitGeneric},
		{"cycle", &resolver.CycleError{Chain: []string{"a", "b", "a"}}, exitResolution},
		{"missing", &resolver.MissingError{Slug: "x", RequestedBy: "y"}, exitResolution},
		{"too many", fmt.Errorf("resolve: %w", resolver.ErrTooManyComponents), exitResolution},
		{"unavailable", fmt.Errorf("fetch: %w", registry.ErrRegistryUnavailable), exitUnavailable},
		{"auth timeout", cliauth.ErrAuthTimeout, exitAuthTimeout},
		{"wrapped unavailable", fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", registry.ErrRegistryUnavailable)), exitUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := exitCode(tc.err); got != tc.want {
				t.Errorf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}
