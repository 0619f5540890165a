package checks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ancients-collective/bastion/internal/catalog"
	"github.com/ancients-collective/bastion/internal/logging"
	"github.com/ancients-collective/bastion/internal/probe"
	"github.com/ancients-collective/bastion/internal/types"
)

// ErrUnknownCheck is returned for IDs that are not in the registry.
var ErrUnknownCheck = errors.New("unknown check")

// slot guards one check; all calls into a check go through its mutex.
type slot struct {
	mu    sync.Mutex
	check SecurityCheck
}

// Registry is the ordered collection of security checks. It owns every
// check and serializes access to each one.
type Registry struct {
	slots []*slot
	byID  map[string]*slot
	log   *logrus.Entry
}

// NewRegistry builds one check per catalog entry, in catalog order, using the
// built-in definitions. An entry without a built-in definition is an error.
func NewRegistry(runner probe.Runner, entries []catalog.Entry, logger *logging.Logger) (*Registry, error) {
	return newRegistry(runner, entries, Builtins(), logger)
}

func newRegistry(runner probe.Runner, entries []catalog.Entry, defs []Definition, logger *logging.Logger) (*Registry, error) {
	if runner == nil {
		return nil, errors.New("registry requires a probe runner")
	}
	if logger == nil {
		logger = logging.Discard()
	}
	log := logger.WithComponent("checks")

	byDef := make(map[string]Definition, len(defs))
	for _, d := range defs {
		byDef[d.ID] = d
	}

	r := &Registry{
		byID: make(map[string]*slot, len(entries)),
		log:  log,
	}
	for _, e := range entries {
		def, ok := byDef[e.ID]
		if !ok {
			return nil, fmt.Errorf("catalog entry %q: %w", e.ID, ErrUnknownCheck)
		}
		if _, dup := r.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog entry %q", e.ID)
		}
		s := &slot{check: newProbeCheck(def, e, runner, log)}
		r.slots = append(r.slots, s)
		r.byID[e.ID] = s
	}
	return r, nil
}

// Len returns the number of checks.
func (r *Registry) Len() int {
	return len(r.slots)
}

// IDs returns the check IDs in registry order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.slots))
	for i, s := range r.slots {
		ids[i] = s.check.ID()
	}
	return ids
}

// All returns the checks in registry order. Callers use them for metadata;
// Check, Fix and Verify go through the registry.
func (r *Registry) All() []SecurityCheck {
	all := make([]SecurityCheck, len(r.slots))
	for i, s := range r.slots {
		all[i] = s.check
	}
	return all
}

// Lookup returns the check with the given ID.
func (r *Registry) Lookup(id string) (SecurityCheck, error) {
	s, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	return s.check, nil
}

func (r *Registry) lookup(id string) (*slot, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCheck, id)
	}
	return s, nil
}

// Contains reports whether id is registered.
func (r *Registry) Contains(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// RunAll runs every check in order and returns the results.
func (r *Registry) RunAll(ctx context.Context) []types.CheckResult {
	results := make([]types.CheckResult, 0, len(r.slots))
	for _, s := range r.slots {
		results = append(results, r.runSlot(ctx, s))
	}
	return results
}

// Run runs a single check.
func (r *Registry) Run(ctx context.Context, id string) (types.CheckResult, error) {
	s, err := r.lookup(id)
	if err != nil {
		return types.CheckResult{}, err
	}
	return r.runSlot(ctx, s), nil
}

func (r *Registry) runSlot(ctx context.Context, s *slot) types.CheckResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.check.Check(ctx)
	return s.check.Result()
}

// Fix runs the remediation for one check. The boolean is the remediation
// outcome; the error is only set for unknown IDs.
func (r *Registry) Fix(ctx context.Context, id string) (bool, error) {
	s, err := r.lookup(id)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r.log.WithField("check", id).Info("applying remediation")
	return s.check.Fix(ctx), nil
}

// Verify re-checks one check and reports whether it now passes.
func (r *Registry) Verify(ctx context.Context, id string) (bool, types.CheckResult, error) {
	s, err := r.lookup(id)
	if err != nil {
		return false, types.CheckResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.check.Verify(ctx)
	return ok, s.check.Result(), nil
}

// Result returns the current snapshot of one check without running it.
func (r *Registry) Result(id string) (types.CheckResult, error) {
	s, err := r.lookup(id)
	if err != nil {
		return types.CheckResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.check.Result(), nil
}

// Results returns the current snapshot of every check, in order.
func (r *Registry) Results() []types.CheckResult {
	results := make([]types.CheckResult, 0, len(r.slots))
	for _, s := range r.slots {
		s.mu.Lock()
		results = append(results, s.check.Result())
		s.mu.Unlock()
	}
	return results
}

// Summary tallies the current statuses.
func (r *Registry) Summary() types.AuditSummary {
	return types.Summarize(r.Results())
}

// Suggest returns registered IDs close to the given one.
func (r *Registry) Suggest(id string) []string {
	return suggestIDs(id, r.IDs())
}
