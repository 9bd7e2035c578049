package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/syncdraft/internal/client/models"
	"github.com/dmitrijs2005/syncdraft/internal/client/services"
	"github.com/dmitrijs2005/syncdraft/internal/common"
	"github.com/dmitrijs2005/syncdraft/internal/logging"
)

type fakeStore struct {
	mu          sync.Mutex
	posts       []models.Post
	public      []models.Post
	activeID    string
	status      models.SaveStatus
	panel       models.AIPanelState
	subscribers []func(models.State)

	loadErr   error
	createErr error
	loads     int
	deleted   []string
	published []string
	drafted   []string
	resets    int
}

func (f *fakeStore) LoadPosts(ctx context.Context) error {
	f.loads++
	return f.loadErr
}

func (f *fakeStore) LoadPublicPosts(ctx context.Context) error { return nil }

func (f *fakeStore) CreatePost(ctx context.Context, title string) (*models.Post, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if title == "" {
		title = common.DefaultPostTitle
	}
	p := models.Post{ID: "new", Title: title, Status: models.PostStatusDraft}
	f.posts = append([]models.Post{p}, f.posts...)
	f.activeID = p.ID
	return &p, nil
}

func (f *fakeStore) DeletePost(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStore) PublishPost(ctx context.Context, id string) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeStore) UnpublishPost(ctx context.Context, id string) error {
	f.drafted = append(f.drafted, id)
	return nil
}

func (f *fakeStore) Posts() []models.Post       { return f.posts }
func (f *fakeStore) PublicPosts() []models.Post { return f.public }

func (f *fakeStore) ActivePost() (models.Post, bool) {
	return models.State{Posts: f.posts, ActivePostID: f.activeID}.ActivePost()
}

func (f *fakeStore) SaveStatus() models.SaveStatus { return f.status }

func (f *fakeStore) AIPanel() models.AIPanelState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.panel
}

func (f *fakeStore) Subscribe(fn func(models.State)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribers = append(f.subscribers, fn)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.subscribers = nil
	}
}

func (f *fakeStore) Reset(ctx context.Context) {
	f.resets++
	f.posts, f.public, f.activeID = nil, nil, ""
	f.mu.Lock()
	f.panel = models.AIPanelState{Session: f.panel.Session}
	f.mu.Unlock()
}

// setPanel updates the panel and notifies subscribers.
func (f *fakeStore) setPanel(p models.AIPanelState) {
	f.mu.Lock()
	f.panel = p
	subs := append([]func(models.State){}, f.subscribers...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(models.State{AIPanel: p})
	}
}

type fakeEditor struct {
	edits    []string
	appends  []string
	renames  []string
	switches []string
	flushes  int
	cancels  int
	closed   bool
	closeCtx context.Context
	flushErr error
}

func (f *fakeEditor) Edit(title, text string) error { f.edits = append(f.edits, text); return nil }
func (f *fakeEditor) Append(text string) error      { f.appends = append(f.appends, text); return nil }
func (f *fakeEditor) Rename(title string) error     { f.renames = append(f.renames, title); return nil }
func (f *fakeEditor) Switch(ctx context.Context, id string) error {
	f.switches = append(f.switches, id)
	return nil
}
func (f *fakeEditor) Flush(ctx context.Context) error { f.flushes++; return f.flushErr }

func (f *fakeEditor) Cancel() {
	f.cancels++
}

func (f *fakeEditor) Close(ctx context.Context) error {
	f.closed = true
	f.closeCtx = ctx
	return ctx.Err()
}

type fakeAIRunner struct {
	run     func(ctx context.Context, mode models.AIMode) error
	stopped bool
}

func (f *fakeAIRunner) Run(ctx context.Context, mode models.AIMode) error { return f.run(ctx, mode) }
func (f *fakeAIRunner) Stop()                                             { f.stopped = true }

type fakePublic struct {
	post     models.Post
	comments []models.Comment
	readID   string
	posted   []string
}

func (f *fakePublic) Read(ctx context.Context, postID string) (models.Post, []models.Comment, error) {
	f.readID = postID
	return f.post, f.comments, nil
}

func (f *fakePublic) Comment(ctx context.Context, postID, body string) (models.Comment, error) {
	f.posted = append(f.posted, postID+":"+body)
	return models.Comment{PostID: postID, Body: body}, nil
}

type fakeAuth struct {
	user       *models.User
	err        error
	restoreErr error
	logins     []string
	logouts    int
	updates    []models.ProfileUpdate
	onExpired  func()
}

var _ services.AuthService = (*fakeAuth)(nil)

func (f *fakeAuth) Signup(ctx context.Context, email string, password []byte, fullName string) (*models.User, error) {
	f.logins = append(f.logins, "signup:"+email+":"+string(password)+":"+fullName)
	return f.user, f.err
}

func (f *fakeAuth) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	f.logins = append(f.logins, "login:"+email+":"+string(password))
	return f.user, f.err
}

func (f *fakeAuth) RestoreSession(ctx context.Context) (*models.User, error) {
	if f.restoreErr != nil {
		return nil, f.restoreErr
	}
	return f.user, nil
}

func (f *fakeAuth) Logout(ctx context.Context) error { f.logouts++; return nil }

func (f *fakeAuth) CurrentUser(ctx context.Context) (*models.User, error) { return f.user, nil }

func (f *fakeAuth) OnExpired(fn func()) { f.onExpired = fn }

func (f *fakeAuth) Profile(ctx context.Context) (*models.User, error) { return f.user, f.err }

func (f *fakeAuth) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	f.updates = append(f.updates, upd)
	u := *f.user
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	return &u, nil
}

type testApp struct {
	*App
	store  *fakeStore
	editor *fakeEditor
	ai     *fakeAIRunner
	public *fakePublic
	auth   *fakeAuth
	out    *bytes.Buffer
}

func newTestApp(t *testing.T, input string) *testApp {
	t.Helper()

	ta := &testApp{
		store:  &fakeStore{status: models.SaveStatusIdle},
		editor: &fakeEditor{},
		ai:     &fakeAIRunner{run: func(context.Context, models.AIMode) error { return nil }},
		public: &fakePublic{},
		auth:   &fakeAuth{user: &models.User{ID: "u1", Email: "user@example.com", FullName: "Jane Doe"}},
		out:    &bytes.Buffer{},
	}
	ta.App = &App{
		authService: ta.auth,
		store:       ta.store,
		editor:      ta.editor,
		ai:          ta.ai,
		public:      ta.public,
		gatherer:    prometheus.NewRegistry(),
		log:         logging.Nop(),
		reader:      rdr(input),
		out:         ta.out,
	}
	ta.auth.OnExpired(func() { ta.expired.Store(true) })

	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	origNow := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = origNow })

	return ta
}

func samplePosts() []models.Post {
	at := time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC)
	return []models.Post{
		{ID: "p1", Title: "First", ContentText: "one two", WordCount: 2, Status: models.PostStatusDraft, UpdatedAt: at},
		{ID: "p2", Title: "Second", ContentText: "three", WordCount: 1, Status: models.PostStatusPublished, UpdatedAt: at},
	}
}
