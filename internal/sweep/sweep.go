package sweep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultInterval is the batch cadence used by Stream when none is given.
const DefaultInterval = 200 * time.Millisecond

// State is the lifecycle state of a sweep.
type State int

const (
	StateRunning State = iota
	StateCompleted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the sweep has ended.
func (s State) Terminal() bool {
	return s != StateRunning
}

var errCancelled = errors.New("sweep cancelled")

// Stats counts the work a sweep has done so far.
type Stats struct {
	Directories int64
	Files       int64
	Matches     int
	Elapsed     time.Duration
}

// Sweep is the handle to one sweep. The walk appends matches in the
// background; callers read them with Drain, Stream or Results.
type Sweep struct {
	cfg   Config
	roots []string
	exts  map[string]struct{}
	log   *logrus.Entry

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	dirs  atomic.Int64
	files atomic.Int64

	mu       sync.Mutex
	matches  []Match
	pending  []Match
	state    State
	err      error
	started  time.Time
	finished time.Time
}

func newSweep(parent context.Context, cfg Config, roots []string, log *logrus.Entry) *Sweep {
	ctx, cancel := context.WithCancel(parent)
	exts := make(map[string]struct{}, len(cfg.Extensions))
	for _, e := range cfg.Extensions {
		exts[e] = struct{}{}
	}
	return &Sweep{
		cfg:     cfg,
		roots:   roots,
		exts:    exts,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		state:   StateRunning,
		started: time.Now(),
	}
}

// Config returns the normalized configuration.
func (s *Sweep) Config() Config {
	return s.cfg
}

// Roots returns the directories being swept, in order.
func (s *Sweep) Roots() []string {
	return append([]string(nil), s.roots...)
}

// Cancel asks the walk to stop. The walk notices at the next directory or
// file boundary.
func (s *Sweep) Cancel() {
	s.cancel()
}

// Done is closed when the sweep reaches a terminal state.
func (s *Sweep) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the sweep ends and returns its terminal state.
func (s *Sweep) Wait() State {
	<-s.done
	return s.State()
}

// State returns the current state.
func (s *Sweep) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the failure cause when the state is StateFailed.
func (s *Sweep) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Stats returns progress counters.
func (s *Sweep) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	end := s.finished
	if end.IsZero() {
		end = time.Now()
	}
	return Stats{
		Directories: s.dirs.Load(),
		Files:       s.files.Load(),
		Matches:     len(s.matches),
		Elapsed:     end.Sub(s.started),
	}
}

// Drain returns the matches found since the previous Drain and clears the
// pending batch.
func (s *Sweep) Drain() []Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := s.pending
	s.pending = nil
	return batch
}

// Stream delivers pending matches to fn every interval on the calling
// goroutine until the sweep ends, then flushes what is left and returns the
// terminal state. Each match is delivered exactly once across Stream and
// Drain. If ctx is cancelled first, the sweep is cancelled and Stream still
// flushes before returning.
func (s *Sweep) Stream(ctx context.Context, interval time.Duration, fn func([]Match)) State {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	flush := func() {
		if batch := s.Drain(); len(batch) > 0 {
			fn(batch)
		}
	}

	for {
		select {
		case <-s.done:
			flush()
			return s.State()
		case <-ctx.Done():
			s.Cancel()
			<-s.done
			flush()
			return s.State()
		case <-ticker.C:
			flush()
		}
	}
}

// Results returns a snapshot of every match so far, in discovery order.
func (s *Sweep) Results() []Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Match(nil), s.matches...)
}

// MarkReviewed flags the i-th match (discovery order) as reviewed.
func (s *Sweep) MarkReviewed(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.matches) {
		return fmt.Errorf("match index %d out of range [0,%d)", i, len(s.matches))
	}
	s.matches[i].Reviewed = true
	return nil
}

// ReviewedCount returns how many matches are flagged as reviewed.
func (s *Sweep) ReviewedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.matches {
		if m.Reviewed {
			n++
		}
	}
	return n
}

func (s *Sweep) run(visitHook func(string)) {
	defer close(s.done)
	defer s.cancel()

	state, err := s.walkRoots(visitHook)

	s.mu.Lock()
	s.state = state
	s.err = err
	s.finished = time.Now()
	matches := len(s.matches)
	elapsed := s.finished.Sub(s.started)
	s.mu.Unlock()

	log := s.log.WithFields(logrus.Fields{
		"state":       state.String(),
		"matches":     matches,
		"directories": s.dirs.Load(),
		"files":       s.files.Load(),
		"elapsed":     elapsed.Round(time.Millisecond),
	})
	if err != nil {
		log.WithError(err).Warn("sweep failed")
		return
	}
	log.Info("sweep finished")
}

func (s *Sweep) walkRoots(visitHook func(string)) (state State, err error) {
	defer func() {
		if r := recover(); r != nil {
			state, err = StateFailed, fmt.Errorf("sweep aborted: %v", r)
		}
	}()

	for _, root := range s.roots {
		info, statErr := os.Stat(root)
		if statErr != nil {
			return StateFailed, fmt.Errorf("sweep root: %w", statErr)
		}
		if !info.IsDir() {
			return StateFailed, errRootNotDir{path: root}
		}
		if walkErr := s.walkDir(root, visitHook); walkErr != nil {
			if errors.Is(walkErr, errCancelled) {
				return StateCancelled, nil
			}
			return StateFailed, walkErr
		}
	}
	return StateCompleted, nil
}

// walkDir tests the files of dir, then recurses into its subdirectories.
// Entries that cannot be read are skipped. Symbolic links and other
// non-regular entries are neither matched nor followed.
func (s *Sweep) walkDir(dir string, visitHook func(string)) error {
	if s.ctx.Err() != nil {
		return errCancelled
	}
	if visitHook != nil {
		visitHook(dir)
	}
	s.dirs.Add(1)

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.log.WithError(err).WithField("dir", dir).Debug("skipping unreadable directory")
		return nil
	}

	var subdirs []string
	for _, e := range entries {
		if s.ctx.Err() != nil {
			return errCancelled
		}
		path := filepath.Join(dir, e.Name())
		switch {
		case e.IsDir():
			subdirs = append(subdirs, path)
		case e.Type().IsRegular():
			s.visitFile(path, e)
		}
	}

	for _, sub := range subdirs {
		if err := s.walkDir(sub, visitHook); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sweep) visitFile(path string, e os.DirEntry) {
	s.files.Add(1)

	if _, ok := s.exts[strings.ToLower(filepath.Ext(e.Name()))]; !ok {
		return
	}
	info, err := e.Info()
	if err != nil {
		return
	}
	if info.Size() < s.cfg.MinSize {
		return
	}
	if !s.cfg.ModifiedSince.IsZero() && info.ModTime().Before(s.cfg.ModifiedSince) {
		return
	}

	m := NewMatch(path, info)
	s.mu.Lock()
	s.matches = append(s.matches, m)
	s.pending = append(s.pending, m)
	s.mu.Unlock()
}
