// Package store holds the authoritative client state: the user's posts, the
// public listing, the active selection, the save indicator and the AI panel.
//
// Store is the only mutator of posts. It serializes mutations with a mutex
// that is never held across a network call, mirrors the post list into the
// local cache after every change and notifies subscribers with an immutable
// snapshot outside the lock. Subscriber callbacks may run concurrently.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/syncdraft/internal/client/models"
	"github.com/dmitrijs2005/syncdraft/internal/clock"
	"github.com/dmitrijs2005/syncdraft/internal/logging"
	"github.com/dmitrijs2005/syncdraft/internal/metrics"
)

const (
	DefaultSavedResetAfter   = 1800 * time.Millisecond
	DefaultCreatedResetAfter = 1600 * time.Millisecond
	DefaultErrorResetAfter   = 2400 * time.Millisecond
)

// PostsAPI is the remote API used by the store.
type PostsAPI interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, id string) (models.Post, error)
	CreatePost(ctx context.Context, title, content string) (models.Post, error)
	UpdatePost(ctx context.Context, id, title, content string) error
	DeletePost(ctx context.Context, id string) error
	PublishPost(ctx context.Context, id string) error
	UnpublishPost(ctx context.Context, id string) error
	ListPublicPosts(ctx context.Context) ([]models.Post, error)
}

// Cache is the durable mirror of the post list.
type Cache interface {
	Mirror(ctx context.Context, posts []models.Post)
	Restore(ctx context.Context) []models.Post
}

type nopCache struct{}

func (nopCache) Mirror(context.Context, []models.Post) {}

func (nopCache) Restore(context.Context) []models.Post { return nil }

type Store struct {
	api     PostsAPI
	cache   Cache
	clock   clock.Clock
	log     logging.Logger
	metrics *metrics.Metrics
	baseCtx context.Context

	savedResetAfter   time.Duration
	createdResetAfter time.Duration
	errorResetAfter   time.Duration

	mu          sync.Mutex
	posts       []models.Post
	publicPosts []models.Post
	activeID    string
	saveStatus  models.SaveStatus
	statusTimer clock.Timer
	statusGen   uint64
	ai          models.AIPanelState

	// seq numbers local mutations; revisions[id] is the seq of the latest
	// local mutation of a post.
	seq       uint64
	revisions map[string]uint64
	// loadTokens holds the token of the latest LoadPostByID per post.
	loadTokens map[string]string
	// epoch changes on Reset; results of requests started before it are dropped.
	epoch uint64

	// mirrorMu orders cache writes so the mirror always ends with the
	// newest list.
	mirrorMu sync.Mutex

	subMu   sync.Mutex
	subs    map[int]func(models.State)
	nextSub int
}

type Option func(*Store)

func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithResetDelays overrides how long "saved" (after an update), "saved"
// (after create or publish) and "error" stay visible before reverting to idle.
func WithResetDelays(saved, created, failed time.Duration) Option {
	return func(s *Store) {
		s.savedResetAfter, s.createdResetAfter, s.errorResetAfter = saved, created, failed
	}
}

// New builds a store seeded from the cache; the first cached post becomes
// active. ctx is used for cache writes of commands that take no context.
func New(ctx context.Context, api PostsAPI, cache Cache, opts ...Option) *Store {
	if cache == nil {
		cache = nopCache{}
	}
	s := &Store{
		api:               api,
		cache:             cache,
		clock:             clock.Real{},
		log:               logging.Nop(),
		baseCtx:           context.WithoutCancel(ctx),
		savedResetAfter:   DefaultSavedResetAfter,
		createdResetAfter: DefaultCreatedResetAfter,
		errorResetAfter:   DefaultErrorResetAfter,
		saveStatus:        models.SaveStatusIdle,
		revisions:         make(map[string]uint64),
		loadTokens:        make(map[string]string),
		subs:              make(map[int]func(models.State)),
	}
	for _, o := range opts {
		o(s)
	}

	s.posts = cache.Restore(ctx)
	if len(s.posts) > 0 {
		s.activeID = s.posts[0].ID
	}
	s.log.Debug(ctx, "store restored from cache", "posts", len(s.posts))
	return s
}

// Close stops the pending status revert.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statusTimer != nil {
		s.statusTimer.Stop()
		s.statusTimer = nil
	}
}

// Reset forgets all session state: posts, the public listing, the
// selection, the AI panel and the fencing bookkeeping. The empty list is
// mirrored so the cache no longer holds the previous user's posts.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	s.epoch++
	s.posts = nil
	s.publicPosts = nil
	s.activeID = ""
	s.revisions = make(map[string]uint64)
	s.loadTokens = make(map[string]string)
	// the session counter keeps growing so no earlier session matches again
	s.ai = models.AIPanelState{Session: s.ai.Session}
	s.setStatusLocked(models.SaveStatusIdle, s.savedResetAfter)
	s.mu.Unlock()

	s.log.Debug(ctx, "store reset")
	s.mirror(ctx)
	s.notify()
}

// Subscribe registers fn to receive a snapshot after every change.
func (s *Store) Subscribe(fn func(models.State)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	if len(s.subs) == 0 {
		s.subMu.Unlock()
		return
	}
	fns := make([]func(models.State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	snap := s.Snapshot()
	for _, fn := range fns {
		fn(snap)
	}
}

// mirror writes the current post list to the cache.
func (s *Store) mirror(ctx context.Context) {
	s.mirrorMu.Lock()
	defer s.mirrorMu.Unlock()
	s.cache.Mirror(ctx, s.Posts())
}

func clonePosts(in []models.Post) []models.Post {
	out := make([]models.Post, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}

func (s *Store) Snapshot() models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.State{
		Posts:        clonePosts(s.posts),
		PublicPosts:  clonePosts(s.publicPosts),
		ActivePostID: s.activeID,
		SaveStatus:   s.saveStatus,
		AIPanel:      s.ai,
	}
}

func (s *Store) Posts() []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePosts(s.posts)
}

func (s *Store) PublicPosts() []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePosts(s.publicPosts)
}

func (s *Store) ActivePostID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

func (s *Store) ActivePost() (models.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(s.activeID); i >= 0 {
		return s.posts[i].Clone(), true
	}
	return models.Post{}, false
}

// Post returns the post with the given id.
func (s *Store) Post(id string) (models.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.posts[i].Clone(), true
	}
	return models.Post{}, false
}

func (s *Store) SaveStatus() models.SaveStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveStatus
}

// SetSaveStatus sets the indicator; "saved" and "error" revert to idle
// after their reset delay.
func (s *Store) SetSaveStatus(st models.SaveStatus) {
	s.mu.Lock()
	s.setStatusLocked(st, s.savedResetAfter)
	s.mu.Unlock()
	s.notify()
}

// setStatusLocked cancels any pending revert, so an older revert never
// overrides a newer status.
func (s *Store) setStatusLocked(st models.SaveStatus, savedReset time.Duration) {
	if s.statusTimer != nil {
		s.statusTimer.Stop()
		s.statusTimer = nil
	}
	s.statusGen++
	s.saveStatus = st

	var after time.Duration
	switch st {
	case models.SaveStatusSaved:
		after = savedReset
	case models.SaveStatusError:
		after = s.errorResetAfter
	default:
		return
	}

	gen := s.statusGen
	s.statusTimer = s.clock.AfterFunc(after, func() {
		s.mu.Lock()
		if s.statusGen != gen {
			s.mu.Unlock()
			return
		}
		s.saveStatus = models.SaveStatusIdle
		s.statusTimer = nil
		s.mu.Unlock()
		s.notify()
	})
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.posts {
		if s.posts[i].ID == id {
			return i
		}
	}
	return -1
}

// touchLocked records a local mutation of id.
func (s *Store) touchLocked(id string) {
	s.seq++
	s.revisions[id] = s.seq
}

// nextUpdatedAt returns now, or prev+1ns when the clock has not moved past
// prev, so UpdatedAt strictly increases.
func (s *Store) nextUpdatedAt(prev time.Time) time.Time {
	now := s.clock.Now()
	if !now.After(prev) {
		return prev.Add(time.Nanosecond)
	}
	return now
}
