// Package resolver turns requested component slugs into an ordered install
// plan. Registry dependencies are walked depth-first and emitted post-order,
// so every component appears after everything it depends on. Resolution is
// all-or-nothing: a cycle or a missing slug fails the whole plan before a
// single file is written.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/oonkoo/oonkoo-registry/internal/db/models"
)

// DefaultMaxComponents bounds a single resolution. Published registries stay
// far below this; the cap guarantees termination on pathological data.
const DefaultMaxComponents = 500

// Fetcher retrieves full component descriptors by slug. (nil, nil) means the
// slug does not exist. *registry.Client satisfies this.
type Fetcher interface {
	FetchComponent(ctx context.Context, slug string) (*models.Component, error)
}

// InstallPlan is the resolved, ordered set of components to install plus the
// merged npm dependency sets across all of them.
type InstallPlan struct {
	// Components in install order: dependencies before dependents.
	Components []*models.Component
	// NPMDependencies and NPMDevDependencies are deduplicated and sorted.
	NPMDependencies    []string
	NPMDevDependencies []string
}

// Slugs returns the plan's component slugs in install order.
func (p *InstallPlan) Slugs() []string {
	slugs := make([]string, len(p.Components))
	for i, c := range p.Components {
		slugs[i] = c.Slug
	}
	return slugs
}

// CycleError reports a dependency cycle. Chain is the slug path from the
// first revisited component back to itself.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return "dependency cycle: " + strings.Join(e.Chain, " -> ")
}

// MissingError reports a registry dependency that does not exist.
type MissingError struct {
	Slug        string
	RequestedBy string // empty when the user asked for the slug directly
}

func (e *MissingError) Error() string {
	if e.RequestedBy == "" {
		return fmt.Sprintf("component not found: %s", e.Slug)
	}
	return fmt.Sprintf("component not found: %s (required by %s)", e.Slug, e.RequestedBy)
}

// ErrTooManyComponents is returned when a resolution exceeds the node cap.
var ErrTooManyComponents = errors.New("dependency graph too large")

type visitState int

const (
	unvisited visitState = iota
	inProgress
	done
)

// Resolver builds install plans from requested slugs.
type Resolver struct {
	fetcher Fetcher
	maxSize int
}

// New creates a resolver with the default component cap.
func New(fetcher Fetcher) *Resolver {
	return &Resolver{fetcher: fetcher, maxSize: DefaultMaxComponents}
}

// Resolve fetches the requested slugs and their transitive registry
// dependencies and returns them in install order. Each component is fetched
// exactly once regardless of how many components depend on it.
func (r *Resolver) Resolve(ctx context.Context, slugs []string) (*InstallPlan, error) {
	w := &walker{
		fetcher: r.fetcher,
		maxSize: r.maxSize,
		states:  make(map[string]visitState),
		plan:    &InstallPlan{},
		npm:     make(map[string]struct{}),
		npmDev:  make(map[string]struct{}),
	}

	for _, slug := range slugs {
		if err := w.visit(ctx, slug, ""); err != nil {
			return nil, err
		}
	}

	w.plan.NPMDependencies = sortedKeys(w.npm)
	w.plan.NPMDevDependencies = sortedKeys(w.npmDev)
	return w.plan, nil
}

type walker struct {
	fetcher Fetcher
	maxSize int
	states  map[string]visitState
	stack   []string // current DFS path, for cycle reporting
	plan    *InstallPlan
	npm     map[string]struct{}
	npmDev  map[string]struct{}
}

func (w *walker) visit(ctx context.Context, slug, requestedBy string) error {
	switch w.states[slug] {
	case done:
		return nil
	case inProgress:
		return &CycleError{Chain: cycleChain(w.stack, slug)}
	}

	if len(w.states) >= w.maxSize {
		return fmt.Errorf("%w: more than %d components", ErrTooManyComponents, w.maxSize)
	}

	w.states[slug] = inProgress
	w.stack = append(w.stack, slug)

	component, err := w.fetcher.FetchComponent(ctx, slug)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", slug, err)
	}
	if component == nil {
		return &MissingError{Slug: slug, RequestedBy: requestedBy}
	}

	for _, dep := range component.RegistryDependencies {
		if err := w.visit(ctx, dep, slug); err != nil {
			return err
		}
	}

	w.stack = w.stack[:len(w.stack)-1]
	w.states[slug] = done

	// Post-order append: all dependencies are already in the plan.
	w.plan.Components = append(w.plan.Components, component)
	for _, dep := range component.NPMDependencies {
		w.npm[dep] = struct{}{}
	}
	for _, dep := range component.NPMDevDependencies {
		w.npmDev[dep] = struct{}{}
	}
	return nil
}

// cycleChain trims the DFS stack to the loop itself: from the first
// occurrence of the revisited slug through the current path, closing back on
// the revisited slug.
func cycleChain(stack []string, revisited string) []string {
	start := 0
	for i, s := range stack {
		if s == revisited {
			start = i
			break
		}
	}
	chain := append([]string{}, stack[start:]...)
	return append(chain, revisited)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
