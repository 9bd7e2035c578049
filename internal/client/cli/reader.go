package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/syncdraft/internal/client/models"
)

func authorName(p models.Post) string {
	if p.Author == nil {
		return "Anonymous"
	}
	return p.Author.FullName
}

// Public lists published posts of all authors.
func (a *App) Public(ctx context.Context) error {
	if err := a.store.LoadPublicPosts(ctx); err != nil {
		return err
	}
	posts := a.store.PublicPosts()
	if len(posts) == 0 {
		printlnFn("Nothing published yet.")
		return nil
	}
	for i, p := range posts {
		printlnFn(fmt.Sprintf("  %2d. %-32s by %-20s %s", i+1, truncate(p.Title, 32), authorName(p), relTime(p.CreatedAt)))
	}
	return nil
}

// publicTarget resolves a reference against the public listing, loading it
// when it has not been fetched yet.
func (a *App) publicTarget(ctx context.Context, ref string) (models.Post, error) {
	if len(a.store.PublicPosts()) == 0 {
		_ = a.store.LoadPublicPosts(ctx)
	}
	if p, err := resolvePost(a.store.PublicPosts(), ref); err == nil {
		return p, nil
	}
	return models.Post{ID: ref}, nil
}

// Read prints a published post with its comments.
func (a *App) Read(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: read <n|id>")
		return nil
	}
	ref, err := a.publicTarget(ctx, args[0])
	if err != nil {
		return err
	}

	p, comments, err := a.public.Read(ctx, ref.ID)
	if err != nil {
		return err
	}

	a.printf("%s\nby %s, %s\n\n%s\n", p.Title, authorName(p), relTime(p.CreatedAt), p.ContentText)
	if len(comments) == 0 {
		return nil
	}
	a.printf("\n%d comment(s):\n", len(comments))
	for _, c := range comments {
		a.printf("  %s (%s): %s\n", c.AuthorName, relTime(c.CreatedAt), c.Body)
	}
	return nil
}

func (a *App) Comment(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: comment <n|id>")
		return nil
	}
	ref, err := a.publicTarget(ctx, args[0])
	if err != nil {
		return err
	}
	body, err := getSimpleText(a.reader, "Your comment", a.out)
	if err != nil {
		return err
	}
	if _, err := a.public.Comment(ctx, ref.ID, body); err != nil {
		return err
	}
	printlnFn("Comment posted.")
	return nil
}
