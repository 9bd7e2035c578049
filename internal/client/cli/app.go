package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/syncdraft/internal/client/autosave"
	"github.com/dmitrijs2005/syncdraft/internal/client/cache"
	"github.com/dmitrijs2005/syncdraft/internal/client/client"
	"github.com/dmitrijs2005/syncdraft/internal/client/config"
	"github.com/dmitrijs2005/syncdraft/internal/client/models"
	"github.com/dmitrijs2005/syncdraft/internal/client/repositories"
	"github.com/dmitrijs2005/syncdraft/internal/client/services"
	"github.com/dmitrijs2005/syncdraft/internal/client/store"
	"github.com/dmitrijs2005/syncdraft/internal/client/stream"
	"github.com/dmitrijs2005/syncdraft/internal/logging"
	"github.com/dmitrijs2005/syncdraft/internal/metrics"
)

// postStore is the part of *store.Store the commands use.
type postStore interface {
	LoadPosts(ctx context.Context) error
	LoadPublicPosts(ctx context.Context) error
	CreatePost(ctx context.Context, title string) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
	PublishPost(ctx context.Context, id string) error
	UnpublishPost(ctx context.Context, id string) error
	Posts() []models.Post
	PublicPosts() []models.Post
	ActivePost() (models.Post, bool)
	SaveStatus() models.SaveStatus
	AIPanel() models.AIPanelState
	Subscribe(fn func(models.State)) (unsubscribe func())
	Reset(ctx context.Context)
}

type editor interface {
	Edit(title, text string) error
	Append(text string) error
	Rename(title string) error
	Switch(ctx context.Context, id string) error
	Flush(ctx context.Context) error
	Cancel()
	Close(ctx context.Context) error
}

type aiRunner interface {
	Run(ctx context.Context, mode models.AIMode) error
	Stop()
}

type publicReader interface {
	Read(ctx context.Context, postID string) (models.Post, []models.Comment, error)
	Comment(ctx context.Context, postID, body string) (models.Comment, error)
}

type App struct {
	config      *config.Config
	authService services.AuthService
	store       postStore
	editor      editor
	ai          aiRunner
	public      publicReader
	gatherer    prometheus.Gatherer
	log         logging.Logger
	// saveTimeout bounds the final save on exit.
	saveTimeout time.Duration

	user    *models.User
	expired atomic.Bool
	reader  *bufio.Reader
	out     io.Writer
	closers []func()
}

// NewApp opens the local database and wires the API client, the post store,
// autosave and the services per the configuration.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	repos, err := repositories.Open(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	api := client.NewHTTPClient(c.ServerURL, client.WithTimeout(c.RequestTimeout), client.WithLogger(log))
	postCache := cache.New(repos.Metadata, log, m)

	st := store.New(ctx, api, postCache, store.WithLogger(log), store.WithMetrics(m))
	sched := autosave.New(st,
		autosave.WithDelay(c.AutosaveDelay),
		autosave.WithSaveTimeout(c.RequestTimeout),
		autosave.WithLogger(log),
		autosave.WithMetrics(m))
	ai := services.NewAIService(api, st,
		services.WithRevealer(stream.New(c.AITokenDelay, c.AITokenJitter)),
		services.WithRateLimit(c.AIRequestsPerSecond, c.AIBurst),
		services.WithAILogger(log),
		services.WithAIMetrics(m))

	a := &App{
		config:      c,
		authService: services.NewAuthService(api, repos.DB, postCache, log),
		store:       st,
		editor:      services.NewEditor(st, sched),
		ai:          ai,
		public:      services.NewReaderService(api),
		gatherer:    reg,
		log:         log,
		saveTimeout: c.RequestTimeout,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		closers:     []func(){st.Close, func() { _ = repos.Close() }},
	}
	a.authService.OnExpired(func() { a.expired.Store(true) })
	return a, nil
}

// Run starts the REPL and releases everything once the user leaves.
func (a *App) Run(ctx context.Context) {
	defer a.Close(ctx)
	a.Root(ctx)
}

// Close saves the pending edit and closes the local database. The save runs
// even when ctx is already cancelled, bounded by the request timeout.
func (a *App) Close(ctx context.Context) {
	timeout := a.saveTimeout
	if timeout <= 0 {
		timeout = client.DefaultTimeout
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := a.editor.Close(saveCtx); err != nil {
		a.log.Warn(ctx, "failed to save pending edit on exit", "error", err)
	}
	a.ai.Stop()
	for _, c := range a.closers {
		c()
	}
}

func (a *App) isLoggedIn() bool {
	return a.user != nil
}

// sessionExpired reports, once, that the server rejected the session. The
// pending edit can no longer be saved and is dropped together with the rest
// of the session state.
func (a *App) sessionExpired(ctx context.Context) bool {
	if !a.expired.Swap(false) {
		return false
	}
	a.resetSession(ctx)
	return true
}

// resetSession forgets everything that belongs to the signed-in user.
func (a *App) resetSession(ctx context.Context) {
	a.editor.Cancel()
	a.ai.Stop()
	a.store.Reset(ctx)
	a.user = nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
