// Package sweep implements the background filesystem sweep: a cancellable
// depth-first walk over the user, temp and optional system locations that
// records files matching extension, size and modification filters.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ancients-collective/bastion/internal/logging"
)

// ErrAlreadyRunning is returned by Start while a sweep is active.
var ErrAlreadyRunning = errors.New("a sweep is already running")

// Scanner starts sweeps over its locations. At most one sweep per Scanner
// runs at a time.
type Scanner struct {
	locations Locations
	log       *logrus.Entry

	mu     sync.Mutex
	active *Sweep

	// visitHook runs before each directory is listed.
	visitHook func(dir string)
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLocations replaces the default locations.
func WithLocations(l Locations) Option {
	return func(s *Scanner) {
		s.locations = l
	}
}

// WithLogger sets the logger for sweep progress.
func WithLogger(l *logging.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.log = l.WithComponent("sweep")
		}
	}
}

// NewScanner creates a Scanner over DefaultLocations.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		locations: DefaultLocations(),
		log:       logging.Discard().WithComponent("sweep"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Locations returns the candidate roots.
func (s *Scanner) Locations() Locations {
	return s.locations
}

// Start validates cfg and launches the walk on its own goroutine. It returns
// immediately. Invalid configuration is rejected before anything is
// scanned. Cancelling ctx or calling Sweep.Cancel stops the walk.
func (s *Scanner) Start(ctx context.Context, cfg Config) (*Sweep, error) {
	cfg, err := cfg.Normalize()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil && s.active.State() == StateRunning {
		return nil, ErrAlreadyRunning
	}

	roots := s.locations.Roots(cfg.IncludeSystem)
	sw := newSweep(ctx, cfg, roots, s.log)
	s.active = sw

	s.log.WithFields(logrus.Fields{
		"roots":      roots,
		"extensions": cfg.Extensions,
		"min_size":   cfg.MinSize,
	}).Info("sweep started")

	go sw.run(s.visitHook)
	return sw, nil
}

// Active returns the most recently started sweep, or nil.
func (s *Scanner) Active() *Sweep {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// errRootNotDir marks a root that cannot be walked.
type errRootNotDir struct{ path string }

func (e errRootNotDir) Error() string {
	return fmt.Sprintf("sweep root %q is not a directory", e.path)
}
