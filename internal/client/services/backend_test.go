package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/syncdraft/internal/client/client"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type remotePost struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type remoteComment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"postId"`
	AuthorName string    `json:"authorName"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

// backend is an in-memory stand-in for the blog API.
type backend struct {
	mu       sync.Mutex
	seq      int
	posts    map[string]*remotePost
	order    []string
	patches  []remotePost
	aiCalls  int
	aiResult string
	comments map[string][]remoteComment
}

func newBackend(t *testing.T) (*backend, *client.HTTPClient) {
	t.Helper()
	b := &backend{posts: map[string]*remotePost{}, comments: map[string][]remoteComment{}}

	r := chi.NewRouter()
	r.Get("/api/posts/", b.list)
	r.Post("/api/posts/", b.create)
	r.Get("/api/posts/{id}", b.get)
	r.Patch("/api/posts/{id}", b.patch)
	r.Delete("/api/posts/{id}", b.delete)
	r.Post("/api/posts/{id}/publish", b.setStatus("published"))
	r.Post("/api/posts/{id}/unpublish", b.setStatus("draft"))
	r.Post("/api/ai/generate", b.generate)
	r.Get("/api/public/posts/{id}", b.getPublic)
	r.Get("/api/public/posts/{id}/comments", b.listComments)
	r.Post("/api/posts/{id}/comments", b.createComment)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	c := client.NewHTTPClient(srv.URL)
	c.SetSession("T1", "R1")
	return b, c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *backend) seed(p remotePost) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := p
	b.posts[p.ID] = &cp
	b.order = append(b.order, p.ID)
}

func (b *backend) post(id string) remotePost {
	b.mu.Lock()
	defer b.mu.Unlock()
	return *b.posts[id]
}

func (b *backend) patchCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.patches)
}

func (b *backend) list(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]remotePost, 0, len(b.order))
	for _, id := range b.order {
		p := *b.posts[id]
		p.Content = ""
		out = append(out, p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *backend) create(w http.ResponseWriter, r *http.Request) {
	var in remotePost
	_ = json.NewDecoder(r.Body).Decode(&in)

	b.mu.Lock()
	b.seq++
	p := &remotePost{ID: fmt.Sprintf("p%d", b.seq), Title: in.Title, Content: in.Content, Status: "draft", CreatedAt: t0, UpdatedAt: t0}
	b.posts[p.ID] = p
	b.order = append([]string{p.ID}, b.order...)
	out := *p
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (b *backend) get(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.posts[chi.URLParam(r, "id")]
	if !ok {
		writeJSON(w, http.StatusOK, map[string]string{"error": "Post not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (b *backend) patch(w http.ResponseWriter, r *http.Request) {
	var in remotePost
	_ = json.NewDecoder(r.Body).Decode(&in)

	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.posts[chi.URLParam(r, "id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Post not found"})
		return
	}
	p.Title, p.Content = in.Title, in.Content
	b.patches = append(b.patches, *p)
	writeJSON(w, http.StatusOK, p)
}

func (b *backend) delete(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := chi.URLParam(r, "id")
	delete(b.posts, id)
	for i, x := range b.order {
		if x == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *backend) setStatus(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		p, ok := b.posts[chi.URLParam(r, "id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		p.Status = status
		writeJSON(w, http.StatusOK, p)
	}
}

func (b *backend) generate(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.aiCalls++
	writeJSON(w, http.StatusOK, map[string]string{"result": b.aiResult})
}

func (b *backend) getPublic(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.posts[chi.URLParam(r, "id")]
	if !ok || p.Status != "published" {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Post not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (b *backend) listComments(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.comments[chi.URLParam(r, "id")]
	if out == nil {
		out = []remoteComment{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *backend) createComment(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Body string `json:"body"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)

	b.mu.Lock()
	defer b.mu.Unlock()
	id := chi.URLParam(r, "id")
	c := remoteComment{ID: fmt.Sprintf("c%d", len(b.comments[id])+1), PostID: id, AuthorName: "Alice", Body: in.Body, CreatedAt: t0}
	b.comments[id] = append(b.comments[id], c)
	writeJSON(w, http.StatusOK, c)
}
