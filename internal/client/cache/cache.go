// Package cache mirrors the post list into the local database so the CLI
// starts with the last known posts before the API answers. The remote API
// stays the source of truth: every failure here is logged and swallowed.
package cache

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/syncdraft/internal/client/models"
	"github.com/dmitrijs2005/syncdraft/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/syncdraft/internal/logging"
	"github.com/dmitrijs2005/syncdraft/internal/metrics"
	"github.com/dmitrijs2005/syncdraft/internal/timex"
)

// StorageKey is the metadata key holding the mirrored posts.
const StorageKey = "blog_editor_posts"

type record struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	ContentText string         `json:"contentText"`
	Status      string         `json:"status"`
	CreatedAt   timex.Time     `json:"createdAt"`
	UpdatedAt   timex.Time     `json:"updatedAt"`
	WordCount   int            `json:"wordCount"`
	Author      *models.Author `json:"author,omitempty"`
}

func fromPost(p models.Post) record {
	return record{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		ContentText: p.ContentText,
		Status:      string(p.Status),
		CreatedAt:   timex.Time{Time: p.CreatedAt},
		UpdatedAt:   timex.Time{Time: p.UpdatedAt},
		WordCount:   p.WordCount,
		Author:      p.Author,
	}
}

func (r record) toPost() models.Post {
	return models.Post{
		ID:          r.ID,
		Title:       r.Title,
		Content:     r.Content,
		ContentText: r.ContentText,
		Status:      models.PostStatus(r.Status),
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
		WordCount:   r.WordCount,
		Author:      r.Author,
	}
}

type Cache struct {
	repo    metadata.Repository
	log     logging.Logger
	metrics *metrics.Metrics
}

func New(repo metadata.Repository, log logging.Logger, m *metrics.Metrics) *Cache {
	if log == nil {
		log = logging.Nop()
	}
	return &Cache{repo: repo, log: log, metrics: m}
}

// Mirror replaces the stored list with posts.
func (c *Cache) Mirror(ctx context.Context, posts []models.Post) {
	records := make([]record, 0, len(posts))
	for _, p := range posts {
		records = append(records, fromPost(p))
	}

	raw, err := json.Marshal(records)
	if err == nil {
		err = c.repo.Set(ctx, StorageKey, raw)
	}
	c.metrics.CacheWrite(err)
	if err != nil {
		c.log.Warn(ctx, "failed to mirror posts", "error", err)
	}
}

// Restore reads the stored list back. A missing or unreadable entry yields an
// empty list.
func (c *Cache) Restore(ctx context.Context) []models.Post {
	raw, err := c.repo.Get(ctx, StorageKey)
	if err != nil {
		c.log.Warn(ctx, "failed to read cached posts", "error", err)
		return []models.Post{}
	}
	if len(raw) == 0 {
		return []models.Post{}
	}

	var records []record
	if err := json.Unmarshal(raw, &records); err != nil {
		c.log.Warn(ctx, "cached posts are corrupt, ignoring", "error", err)
		return []models.Post{}
	}

	posts := make([]models.Post, 0, len(records))
	for _, r := range records {
		posts = append(posts, r.toPost())
	}
	return posts
}

// Clear drops the mirror, used on logout.
func (c *Cache) Clear(ctx context.Context) {
	if err := c.repo.Delete(ctx, StorageKey); err != nil {
		c.log.Warn(ctx, "failed to clear cached posts", "error", err)
	}
}
