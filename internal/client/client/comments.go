package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/syncdraft/internal/client/models"
	"github.com/dmitrijs2005/syncdraft/internal/common"
)

func (c *HTTPClient) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	var dtos []commentDTO
	path := "/api/public/posts/" + url.PathEscape(postID) + "/comments"
	if err := c.do(ctx, request{method: http.MethodGet, path: path}, &dtos); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	comments := make([]models.Comment, 0, len(dtos))
	for _, d := range dtos {
		comments = append(comments, d.toModel())
	}
	return comments, nil
}

func (c *HTTPClient) CreateComment(ctx context.Context, postID, body string) (models.Comment, error) {
	var d commentDTO
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   postPath(postID) + "/comments",
		body:   map[string]string{"body": body},
		auth:   true,
	}, &d)
	if err != nil {
		return models.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	if d.ID == "" {
		return models.Comment{}, fmt.Errorf("create comment: %w", common.ErrorNotFound)
	}
	return d.toModel(), nil
}

func (c *HTTPClient) DeleteComment(ctx context.Context, postID, commentID string) error {
	path := postPath(postID) + "/comments/" + url.PathEscape(commentID)
	if err := c.do(ctx, request{method: http.MethodDelete, path: path, auth: true}, nil); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}
