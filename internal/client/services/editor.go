package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/syncdraft/internal/client/autosave"
	"github.com/dmitrijs2005/syncdraft/internal/client/content"
	"github.com/dmitrijs2005/syncdraft/internal/client/models"
	"github.com/dmitrijs2005/syncdraft/internal/common"
)

// Posts is the part of the store the editor session needs.
type Posts interface {
	ActivePost() (models.Post, bool)
	SetActivePost(ctx context.Context, id string) error
}

// Editor binds the autosave scheduler to the active post. Every edit is
// applied locally at once and persisted after the idle window.
type Editor struct {
	posts     Posts
	scheduler *autosave.Scheduler
}

func NewEditor(posts Posts, scheduler *autosave.Scheduler) *Editor {
	return &Editor{posts: posts, scheduler: scheduler}
}

func (e *Editor) active() (models.Post, error) {
	p, ok := e.posts.ActivePost()
	if !ok {
		return models.Post{}, common.ErrNoActivePost
	}
	return p, nil
}

// Edit replaces the active post's body with text, one paragraph per line. A
// non-empty title renames the post in the same edit.
func (e *Editor) Edit(title, text string) error {
	p, err := e.active()
	if err != nil {
		return err
	}

	doc := content.FromPlainText(text)
	plain := content.ExtractPlainText(doc)
	upd := models.PostUpdate{Content: &doc, ContentText: &plain}
	if t := strings.TrimSpace(title); t != "" {
		upd.Title = &t
	}

	e.scheduler.Schedule(autosave.Payload{PostID: p.ID, Update: upd})
	return nil
}

// Append adds text as new paragraphs after the current body.
func (e *Editor) Append(text string) error {
	p, err := e.active()
	if err != nil {
		return err
	}
	if strings.TrimSpace(p.ContentText) == "" {
		return e.Edit("", text)
	}
	return e.Edit("", p.ContentText+"\n"+text)
}

func (e *Editor) Rename(title string) error {
	p, err := e.active()
	if err != nil {
		return err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: title is empty", common.ErrValidation)
	}
	e.scheduler.Schedule(autosave.Payload{PostID: p.ID, Update: models.PostUpdate{Title: &title}})
	return nil
}

// Switch persists any pending edit, then selects id.
func (e *Editor) Switch(ctx context.Context, id string) error {
	// A failed save keeps the edit local and shows up in the save status.
	_ = e.scheduler.Flush(ctx)
	return e.posts.SetActivePost(ctx, id)
}

// Flush persists any pending edit now.
func (e *Editor) Flush(ctx context.Context) error {
	return e.scheduler.Flush(ctx)
}

// Cancel drops the pending edit without saving it.
func (e *Editor) Cancel() {
	e.scheduler.Cancel()
}

func (e *Editor) Pending() bool {
	return e.scheduler.Pending()
}

// Close flushes the pending edit before the session ends.
func (e *Editor) Close(ctx context.Context) error {
	return e.scheduler.Flush(ctx)
}
