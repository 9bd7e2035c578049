package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/syncdraft/internal/client/models"
	"github.com/dmitrijs2005/syncdraft/internal/common"
)

// List refreshes the post list from the server and prints it. When the
// server cannot be reached the local copy is shown.
func (a *App) List(ctx context.Context) error {
	if err := a.store.LoadPosts(ctx); err != nil {
		printlnFn("Showing local copy:", err)
	}

	posts := a.store.Posts()
	if len(posts) == 0 {
		printlnFn("No posts yet. Create one with: new <title>")
		return nil
	}
	active, _ := a.store.ActivePost()
	for i, p := range posts {
		printlnFn(postLine(i, p, p.ID == active.ID))
	}
	return nil
}

// target returns the post named by args[0], or the active post.
func (a *App) target(args []string) (models.Post, error) {
	if len(args) > 0 {
		return resolvePost(a.store.Posts(), args[0])
	}
	p, ok := a.store.ActivePost()
	if !ok {
		return models.Post{}, common.ErrNoActivePost
	}
	return p, nil
}

// New creates a post and opens it. Pending edits of the previous post are
// saved first.
func (a *App) New(ctx context.Context, args []string) error {
	_ = a.editor.Flush(ctx)

	p, err := a.store.CreatePost(ctx, joinArgs(args))
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Created %q (%s).", p.Title, p.ID))
	return nil
}

func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: open <n|id>")
		return nil
	}
	p, err := resolvePost(a.store.Posts(), args[0])
	if err != nil {
		return err
	}
	if err := a.editor.Switch(ctx, p.ID); err != nil {
		return err
	}
	return a.Show(ctx)
}

func (a *App) Show(ctx context.Context) error {
	p, ok := a.store.ActivePost()
	if !ok {
		return common.ErrNoActivePost
	}
	a.printf("%s  [%s, %s, updated %s]\n\n", p.Title, p.Status, words(p.WordCount), relTime(p.UpdatedAt))
	if p.ContentText == "" {
		a.printf("(empty)\n")
	} else {
		a.printf("%s\n", p.ContentText)
	}
	return nil
}

// Edit replaces the active post's text. The change is saved after a short
// idle period.
func (a *App) Edit(ctx context.Context) error {
	if _, ok := a.store.ActivePost(); !ok {
		return common.ErrNoActivePost
	}
	text, err := GetMultiline(a.reader, "Enter the new text", a.out)
	if err != nil {
		return err
	}
	return a.editor.Edit("", text)
}

func (a *App) Append(ctx context.Context) error {
	if _, ok := a.store.ActivePost(); !ok {
		return common.ErrNoActivePost
	}
	text, err := GetMultiline(a.reader, "Enter text to append", a.out)
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	return a.editor.Append(text)
}

func (a *App) Rename(ctx context.Context, args []string) error {
	title := joinArgs(args)
	if title == "" {
		printlnFn("Usage: rename <title>")
		return nil
	}
	return a.editor.Rename(title)
}

// Save persists the pending edit right away.
func (a *App) Save(ctx context.Context) error {
	if err := a.editor.Flush(ctx); err != nil {
		return err
	}
	printlnFn("Saved.")
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	p, err := a.target(args)
	if err != nil {
		return err
	}
	if !Confirm(a.reader, fmt.Sprintf("Delete %q?", p.Title), a.out) {
		return nil
	}
	_ = a.editor.Flush(ctx)
	if err := a.store.DeletePost(ctx, p.ID); err != nil {
		return err
	}
	printlnFn("Deleted.")
	return nil
}

func (a *App) Publish(ctx context.Context, args []string) error {
	p, err := a.target(args)
	if err != nil {
		return err
	}
	_ = a.editor.Flush(ctx)
	if err := a.store.PublishPost(ctx, p.ID); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Published %q.", p.Title))
	return nil
}

func (a *App) Unpublish(ctx context.Context, args []string) error {
	p, err := a.target(args)
	if err != nil {
		return err
	}
	if err := a.store.UnpublishPost(ctx, p.ID); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("%q is a draft again.", p.Title))
	return nil
}

func (a *App) Status(ctx context.Context) error {
	printlnFn("Save status:", a.store.SaveStatus())
	return nil
}
