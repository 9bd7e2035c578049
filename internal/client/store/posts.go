package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/syncdraft/internal/client/content"
	"github.com/dmitrijs2005/syncdraft/internal/client/models"
	"github.com/dmitrijs2005/syncdraft/internal/common"
)

// applyLocked merges upd into the post at index i. When Content changes
// without an explicit ContentText the text is derived from the new content.
func (s *Store) applyLocked(i int, upd models.PostUpdate) {
	p := &s.posts[i]

	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Content != nil {
		p.Content = content.Normalize(*upd.Content)
		if upd.ContentText == nil {
			text := content.ExtractPlainText(p.Content)
			upd.ContentText = &text
		}
	}
	if upd.ContentText != nil {
		p.ContentText = *upd.ContentText
		p.WordCount = content.WordCount(p.ContentText)
	}
	p.UpdatedAt = s.nextUpdatedAt(p.UpdatedAt)
	s.touchLocked(p.ID)
}

// LoadPosts replaces the collection with the remote listing. List items carry
// no content; the active post (kept when it still exists, otherwise the
// first one) is fetched right after. Posts edited locally while the listing
// was in flight keep their local version, and a listing requested before a
// Reset is dropped.
//
// On failure the state is left untouched and the error is returned for
// display only.
func (s *Store) LoadPosts(ctx context.Context) error {
	s.mu.Lock()
	seq0, epoch0 := s.seq, s.epoch
	s.mu.Unlock()

	remote, err := s.api.ListPosts(ctx)
	if err != nil {
		s.log.Warn(ctx, "failed to load posts", "error", err)
		return fmt.Errorf("load posts: %w", err)
	}

	s.mu.Lock()
	if s.epoch != epoch0 {
		s.mu.Unlock()
		s.metrics.StaleResponse("list_posts")
		s.log.Debug(ctx, "dropping post listing of a reset session")
		return nil
	}
	local := make(map[string]models.Post, len(s.posts))
	for _, p := range s.posts {
		local[p.ID] = p
	}

	posts := make([]models.Post, 0, len(remote))
	for _, p := range remote {
		if lp, ok := local[p.ID]; ok && s.revisions[p.ID] > seq0 {
			s.metrics.StaleResponse("list_posts")
			posts = append(posts, lp)
			continue
		}
		posts = append(posts, p)
	}
	s.posts = posts

	if s.indexLocked(s.activeID) < 0 {
		s.activeID = ""
		if len(s.posts) > 0 {
			s.activeID = s.posts[0].ID
		}
	}
	activeID := s.activeID
	needLoad := false
	if i := s.indexLocked(activeID); i >= 0 {
		needLoad = content.IsEmpty(s.posts[i].Content)
	}
	s.mu.Unlock()

	s.mirror(ctx)
	s.notify()

	if needLoad {
		if err := s.LoadPostByID(ctx, activeID); err != nil {
			s.log.Warn(ctx, "failed to load active post", "post_id", activeID, "error", err)
		}
	}
	return nil
}

// LoadPostByID fetches the full post and merges it by id. A response is
// dropped when a newer load of the same post was issued meanwhile or when the
// post was edited locally after the request started.
func (s *Store) LoadPostByID(ctx context.Context, id string) error {
	token := uuid.NewString()

	s.mu.Lock()
	s.loadTokens[id] = token
	rev0 := s.revisions[id]
	s.mu.Unlock()

	p, err := s.api.GetPost(ctx, id)

	s.mu.Lock()
	if s.loadTokens[id] != token {
		s.mu.Unlock()
		s.metrics.StaleResponse("load_post")
		s.log.Debug(ctx, "dropping superseded post response", "post_id", id)
		return nil
	}
	delete(s.loadTokens, id)

	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("load post %s: %w", id, err)
	}

	if s.revisions[id] != rev0 {
		s.mu.Unlock()
		s.metrics.StaleResponse("load_post")
		s.log.Debug(ctx, "dropping post response older than local edits", "post_id", id)
		return nil
	}

	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	s.posts[i] = p
	s.mu.Unlock()

	s.mirror(ctx)
	s.notify()
	return nil
}

// LoadPublicPosts replaces the public listing. Failures leave it untouched.
func (s *Store) LoadPublicPosts(ctx context.Context) error {
	posts, err := s.api.ListPublicPosts(ctx)
	if err != nil {
		s.log.Warn(ctx, "failed to load public posts", "error", err)
		return fmt.Errorf("load public posts: %w", err)
	}
	for i := range posts {
		posts[i].Status = models.PostStatusPublished
	}

	s.mu.Lock()
	s.publicPosts = posts
	s.mu.Unlock()

	s.notify()
	return nil
}

// CreatePost creates a post with an empty document, prepends it and makes it
// active. On failure the returned post is nil.
func (s *Store) CreatePost(ctx context.Context, title string) (*models.Post, error) {
	if strings.TrimSpace(title) == "" {
		title = common.DefaultPostTitle
	}

	s.SetSaveStatus(models.SaveStatusSaving)

	s.mu.Lock()
	epoch0 := s.epoch
	s.mu.Unlock()

	p, err := s.api.CreatePost(ctx, title, content.EmptyDocument)
	if err != nil {
		s.fail(ctx, "create post", err)
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.mu.Lock()
	if s.epoch != epoch0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("create post: %w", common.ErrSessionReset)
	}
	s.posts = append([]models.Post{p}, s.posts...)
	s.activeID = p.ID
	s.setStatusLocked(models.SaveStatusSaved, s.createdResetAfter)
	s.mu.Unlock()

	s.mirror(ctx)
	s.notify()

	created := p.Clone()
	return &created, nil
}

// UpdatePostLocal merges upd without any network call.
func (s *Store) UpdatePostLocal(id string, upd models.PostUpdate) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.applyLocked(i, upd)
	s.mu.Unlock()

	s.mirror(s.baseCtx)
	s.notify()
}

// UpdatePost persists upd, filling title and content from the post's current
// values, then applies the same merge as UpdatePostLocal. When the post was
// edited locally while the request was in flight the newer local state is
// kept.
func (s *Store) UpdatePost(ctx context.Context, id string, upd models.PostUpdate) error {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("update post %s: %w", id, common.ErrorNotFound)
	}
	cur := s.posts[i]
	rev0 := s.revisions[id]

	eff := models.PostUpdate{Title: &cur.Title, Content: &cur.Content, ContentText: upd.ContentText}
	if upd.Title != nil {
		eff.Title = upd.Title
	}
	if upd.Content != nil {
		c := content.Normalize(*upd.Content)
		eff.Content = &c
	} else if eff.ContentText == nil {
		eff.ContentText = &cur.ContentText
	}
	s.setStatusLocked(models.SaveStatusSaving, s.savedResetAfter)
	s.mu.Unlock()
	s.notify()

	start := time.Now()
	err := s.api.UpdatePost(ctx, id, *eff.Title, *eff.Content)
	s.metrics.ObserveSave(time.Since(start))
	if err != nil {
		s.fail(ctx, "update post", err, "post_id", id)
		return fmt.Errorf("update post %s: %w", id, err)
	}

	s.mu.Lock()
	changed := false
	if i = s.indexLocked(id); i >= 0 {
		if s.revisions[id] == rev0 {
			s.applyLocked(i, eff)
			changed = true
		} else {
			s.metrics.StaleResponse("update_post")
		}
	}
	s.setStatusLocked(models.SaveStatusSaved, s.savedResetAfter)
	s.mu.Unlock()

	if changed {
		s.mirror(ctx)
	}
	s.notify()
	return nil
}

// DeletePost deletes remotely, then locally. A post the server no longer
// knows is removed locally as well. When the active post goes, the first
// remaining post becomes active.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	if err := s.api.DeletePost(ctx, id); err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.fail(ctx, "delete post", err, "post_id", id)
		return fmt.Errorf("delete post %s: %w", id, err)
	}

	s.mu.Lock()
	if i := s.indexLocked(id); i >= 0 {
		s.posts = append(s.posts[:i:i], s.posts[i+1:]...)
	}
	delete(s.revisions, id)
	delete(s.loadTokens, id)
	if s.activeID == id {
		s.activeID = ""
		if len(s.posts) > 0 {
			s.activeID = s.posts[0].ID
		}
	}
	s.mu.Unlock()

	s.mirror(ctx)
	s.notify()
	return nil
}

// SetActivePost selects id ("" clears the selection) and fetches its content
// when it has not been fetched yet.
func (s *Store) SetActivePost(ctx context.Context, id string) error {
	s.mu.Lock()
	if id == "" {
		s.activeID = ""
		s.mu.Unlock()
		s.notify()
		return nil
	}
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("select post %s: %w", id, common.ErrorNotFound)
	}
	s.activeID = id
	needLoad := content.IsEmpty(s.posts[i].Content)
	s.mu.Unlock()

	s.notify()

	if needLoad {
		return s.LoadPostByID(ctx, id)
	}
	return nil
}

func (s *Store) PublishPost(ctx context.Context, id string) error {
	return s.setPublished(ctx, id, models.PostStatusPublished, s.api.PublishPost)
}

func (s *Store) UnpublishPost(ctx context.Context, id string) error {
	return s.setPublished(ctx, id, models.PostStatusDraft, s.api.UnpublishPost)
}

func (s *Store) setPublished(ctx context.Context, id string, status models.PostStatus, call func(context.Context, string) error) error {
	s.SetSaveStatus(models.SaveStatusSaving)

	if err := call(ctx, id); err != nil {
		s.fail(ctx, "change post status", err, "post_id", id, "status", status)
		return fmt.Errorf("set post %s %s: %w", id, status, err)
	}

	s.mu.Lock()
	changed := false
	if i := s.indexLocked(id); i >= 0 {
		p := &s.posts[i]
		p.Status = status
		p.UpdatedAt = s.nextUpdatedAt(p.UpdatedAt)
		s.touchLocked(id)
		changed = true
	}
	s.setStatusLocked(models.SaveStatusSaved, s.createdResetAfter)
	s.mu.Unlock()

	if changed {
		s.mirror(ctx)
	}
	s.notify()
	return nil
}

// fail reports a failed write: the indicator shows "error" and the local
// state is kept.
func (s *Store) fail(ctx context.Context, op string, err error, args ...any) {
	s.log.Warn(ctx, op+" failed", append(args, "error", err)...)
	s.SetSaveStatus(models.SaveStatusError)
}
