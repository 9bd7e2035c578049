package client

import (
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/syncdraft/internal/client/content"
	"github.com/dmitrijs2005/syncdraft/internal/client/models"
	"github.com/dmitrijs2005/syncdraft/internal/common"
	"github.com/dmitrijs2005/syncdraft/internal/timex"
)

type authorDTO struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

// postDTO accepts both the camelCase and snake_case timestamp spellings and
// both author shapes (embedded object or authorId/authorName), since the
// listing and detail routes differ.
type postDTO struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Content    json.RawMessage `json:"content"`
	Status     string          `json:"status"`
	CreatedAt  timex.Time      `json:"createdAt"`
	UpdatedAt  timex.Time      `json:"updatedAt"`
	CreatedAt2 timex.Time      `json:"created_at"`
	UpdatedAt2 timex.Time      `json:"updated_at"`
	AuthorID   string          `json:"authorId"`
	AuthorName string          `json:"authorName"`
	Author     *authorDTO      `json:"author"`
	Error      string          `json:"error"`
}

func firstTime(ts ...timex.Time) time.Time {
	for _, t := range ts {
		if !t.IsZero() {
			return t.Time
		}
	}
	return time.Time{}
}

// toModel builds a Post with canonical content and consistent derived fields.
func (d postDTO) toModel() models.Post {
	canonical := content.Normalize(d.Content)
	text := content.ExtractPlainText(canonical)

	title := d.Title
	if title == "" {
		title = common.DefaultPostTitle
	}

	p := models.Post{
		ID:          d.ID,
		Title:       title,
		Content:     canonical,
		ContentText: text,
		Status:      models.PostStatus(d.Status),
		CreatedAt:   firstTime(d.CreatedAt, d.CreatedAt2),
		UpdatedAt:   firstTime(d.UpdatedAt, d.UpdatedAt2, d.CreatedAt, d.CreatedAt2),
		WordCount:   content.WordCount(text),
	}
	if p.Status == "" {
		p.Status = models.PostStatusDraft
	}

	switch {
	case d.Author != nil && d.Author.ID != "":
		p.Author = &models.Author{ID: d.Author.ID, FullName: d.Author.FullName}
	case d.AuthorID != "":
		p.Author = &models.Author{ID: d.AuthorID, FullName: d.AuthorName}
	}
	if p.Author != nil && p.Author.FullName == "" {
		p.Author.FullName = "Anonymous"
	}
	return p
}

type postWriteDTO struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type commentDTO struct {
	ID         string     `json:"id"`
	PostID     string     `json:"postId"`
	AuthorID   string     `json:"authorId"`
	AuthorName string     `json:"authorName"`
	Body       string     `json:"body"`
	CreatedAt  timex.Time `json:"createdAt"`
	Error      string     `json:"error"`
}

func (d commentDTO) toModel() models.Comment {
	return models.Comment{
		ID:         d.ID,
		PostID:     d.PostID,
		AuthorID:   d.AuthorID,
		AuthorName: d.AuthorName,
		Body:       d.Body,
		CreatedAt:  d.CreatedAt.Time,
	}
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
