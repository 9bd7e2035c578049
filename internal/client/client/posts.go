package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/syncdraft/internal/client/models"
	"github.com/dmitrijs2005/syncdraft/internal/common"
)

func postPath(id string) string {
	return "/api/posts/" + url.PathEscape(id)
}

func toModels(dtos []postDTO) []models.Post {
	posts := make([]models.Post, 0, len(dtos))
	for _, d := range dtos {
		posts = append(posts, d.toModel())
	}
	return posts
}

func (c *HTTPClient) ListPosts(ctx context.Context) ([]models.Post, error) {
	var dtos []postDTO
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/posts/", auth: true}, &dtos); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return toModels(dtos), nil
}

// GetPost fetches a post with its content. The API may answer a missing post
// with 200 and an error body; that case maps to common.ErrorNotFound too.
func (c *HTTPClient) GetPost(ctx context.Context, id string) (models.Post, error) {
	var d postDTO
	if err := c.do(ctx, request{method: http.MethodGet, path: postPath(id), auth: true}, &d); err != nil {
		return models.Post{}, fmt.Errorf("get post %s: %w", id, err)
	}
	if d.ID == "" {
		return models.Post{}, fmt.Errorf("get post %s: %w", id, common.ErrorNotFound)
	}
	return d.toModel(), nil
}

func (c *HTTPClient) CreatePost(ctx context.Context, title, content string) (models.Post, error) {
	var d postDTO
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/posts/",
		body:   postWriteDTO{Title: title, Content: content},
		auth:   true,
	}, &d)
	if err != nil {
		return models.Post{}, fmt.Errorf("create post: %w", err)
	}
	if d.ID == "" {
		return models.Post{}, fmt.Errorf("create post: %w: response without id", common.ErrorInternal)
	}
	if len(d.Content) == 0 {
		d.Content = []byte(quote(content))
	}
	if d.Title == "" {
		d.Title = title
	}
	return d.toModel(), nil
}

func (c *HTTPClient) UpdatePost(ctx context.Context, id, title, content string) error {
	err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   postPath(id),
		body:   postWriteDTO{Title: title, Content: content},
		auth:   true,
	}, nil)
	if err != nil {
		return fmt.Errorf("update post %s: %w", id, err)
	}
	return nil
}

func (c *HTTPClient) DeletePost(ctx context.Context, id string) error {
	if err := c.do(ctx, request{method: http.MethodDelete, path: postPath(id), auth: true}, nil); err != nil {
		return fmt.Errorf("delete post %s: %w", id, err)
	}
	return nil
}

func (c *HTTPClient) PublishPost(ctx context.Context, id string) error {
	err := c.do(ctx, request{method: http.MethodPost, path: postPath(id) + "/publish", body: struct{}{}, auth: true}, nil)
	if err != nil {
		return fmt.Errorf("publish post %s: %w", id, err)
	}
	return nil
}

func (c *HTTPClient) UnpublishPost(ctx context.Context, id string) error {
	err := c.do(ctx, request{method: http.MethodPost, path: postPath(id) + "/unpublish", body: struct{}{}, auth: true}, nil)
	if err != nil {
		return fmt.Errorf("unpublish post %s: %w", id, err)
	}
	return nil
}

func (c *HTTPClient) ListPublicPosts(ctx context.Context) ([]models.Post, error) {
	var dtos []postDTO
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/public/posts"}, &dtos); err != nil {
		return nil, fmt.Errorf("list public posts: %w", err)
	}
	return toModels(dtos), nil
}

func (c *HTTPClient) GetPublicPost(ctx context.Context, id string) (models.Post, error) {
	var d postDTO
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/public/posts/" + url.PathEscape(id)}, &d); err != nil {
		return models.Post{}, fmt.Errorf("get public post %s: %w", id, err)
	}
	if d.ID == "" {
		return models.Post{}, fmt.Errorf("get public post %s: %w", id, common.ErrorNotFound)
	}
	return d.toModel(), nil
}
