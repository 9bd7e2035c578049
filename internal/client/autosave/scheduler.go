// Package autosave debounces edits into persistence calls.
//
// A Scheduler keeps one pending payload and one timer. Every Schedule applies
// the edit locally right away, folds it into the pending payload and restarts
// the timer, so a burst of edits within the delay window results in a single
// persistence call carrying the last value of every field. At most one
// persistence call runs at a time.
package autosave

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/syncdraft/internal/client/models"
	"github.com/dmitrijs2005/syncdraft/internal/clock"
	"github.com/dmitrijs2005/syncdraft/internal/logging"
	"github.com/dmitrijs2005/syncdraft/internal/metrics"
)

const DefaultDelay = 1200 * time.Millisecond

// Target receives the scheduler's effects. *store.Store implements it.
type Target interface {
	UpdatePostLocal(id string, upd models.PostUpdate)
	UpdatePost(ctx context.Context, id string, upd models.PostUpdate) error
	SetSaveStatus(st models.SaveStatus)
}

// Payload is one edit of one post.
type Payload struct {
	PostID string
	Update models.PostUpdate
}

type Scheduler struct {
	target  Target
	delay   time.Duration
	timeout time.Duration
	clock   clock.Clock
	log     logging.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	pending *Payload
	timer   clock.Timer
	// gen identifies the live timer; a superseded timer that fires anyway
	// sees a different gen and does nothing.
	gen uint64

	persistMu sync.Mutex
}

type Option func(*Scheduler)

func WithDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithSaveTimeout bounds each persistence call started by the timer or Flush.
func WithSaveTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.timeout = d }
}

func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

func New(target Target, opts ...Option) *Scheduler {
	s := &Scheduler{
		target: target,
		delay:  DefaultDelay,
		clock:  clock.Real{},
		log:    logging.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Schedule applies p locally, marks the state as saving and (re)starts the
// delay window. A pending payload of the same post is merged with p, fields
// of p winning; a pending payload of another post is replaced.
func (s *Scheduler) Schedule(p Payload) {
	s.target.UpdatePostLocal(p.PostID, p.Update)
	s.target.SetSaveStatus(models.SaveStatusSaving)

	s.mu.Lock()
	coalesced := s.pending != nil
	if coalesced && s.pending.PostID == p.PostID {
		p.Update = s.pending.Update.Merge(p.Update)
	}
	s.pending = &p
	s.stopLocked()
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.delay, func() { s.fire(gen) })
	s.mu.Unlock()

	s.metrics.EditScheduled(coalesced)
}

// Flush stops the timer and persists the pending payload now. Without a
// pending payload it waits for an in-flight persistence call to finish.
func (s *Scheduler) Flush(ctx context.Context) error {
	p := s.take()
	if p == nil {
		s.persistMu.Lock()
		s.persistMu.Unlock()
		return nil
	}
	return s.persist(ctx, *p)
}

// Cancel drops the pending payload without persisting it.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.gen++
	s.pending = nil
}

func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	p := s.pending
	s.pending = nil
	s.timer = nil
	s.mu.Unlock()

	if p != nil {
		_ = s.persist(context.Background(), *p)
	}
}

func (s *Scheduler) take() *Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.gen++
	p := s.pending
	s.pending = nil
	return p
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) persist(ctx context.Context, p Payload) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	err := s.target.UpdatePost(ctx, p.PostID, p.Update)
	s.metrics.Persisted(err)
	if err != nil {
		s.log.Warn(ctx, "autosave failed", "post_id", p.PostID, "error", err)
	} else {
		s.log.Debug(ctx, "autosaved", "post_id", p.PostID)
	}

	// A newer edit arrived while saving; it is still on its way.
	if s.Pending() {
		s.target.SetSaveStatus(models.SaveStatusSaving)
	}
	return err
}
