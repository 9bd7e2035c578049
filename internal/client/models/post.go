// Package models defines the client-side data model of SyncDraft.
package models

import "time"

// PostStatus is the publication state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Author identifies the writer of a public post.
type Author struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

// Post is the unit of authored content.
type Post struct {
	// ID is opaque and assigned by the server.
	ID string `json:"id"`

	Title string `json:"title"`

	// Content is the canonical serialized document state.
	Content string `json:"content"`

	// ContentText is the plain-text projection of Content.
	ContentText string `json:"contentText"`

	Status PostStatus `json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// WordCount equals the number of whitespace-delimited tokens of ContentText.
	WordCount int `json:"wordCount"`

	// Author is set only on posts of the public listing.
	Author *Author `json:"author,omitempty"`
}

func (p Post) HasAuthor() bool {
	return p.Author != nil
}

func (p Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// Clone returns a copy that shares no pointers with p.
func (p Post) Clone() Post {
	if p.Author != nil {
		a := *p.Author
		p.Author = &a
	}
	return p
}

// PostUpdate is a partial update. A nil field is not part of the update.
type PostUpdate struct {
	Title       *string
	Content     *string
	ContentText *string
}

func (u PostUpdate) IsEmpty() bool {
	return u.Title == nil && u.Content == nil && u.ContentText == nil
}

// Merge returns an update where fields set in next override those of u.
func (u PostUpdate) Merge(next PostUpdate) PostUpdate {
	if next.Title != nil {
		u.Title = next.Title
	}
	if next.Content != nil {
		u.Content = next.Content
	}
	if next.ContentText != nil {
		u.ContentText = next.ContentText
	}
	return u
}

// Ptr returns a pointer to v, handy for building a PostUpdate.
func Ptr[T any](v T) *T {
	return &v
}
