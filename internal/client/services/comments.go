package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/syncdraft/internal/client/client"
	"github.com/dmitrijs2005/syncdraft/internal/client/models"
	"github.com/dmitrijs2005/syncdraft/internal/common"
)

// ReaderService covers the public side: reading published posts and their
// comments, and commenting as the signed-in user.
type ReaderService struct {
	api client.CommentsAPI
}

func NewReaderService(api client.CommentsAPI) *ReaderService {
	return &ReaderService{api: api}
}

// Read returns a published post together with its comments. A failure to
// load comments is not fatal; the post is returned with no comments.
func (r *ReaderService) Read(ctx context.Context, postID string) (models.Post, []models.Comment, error) {
	p, err := r.api.GetPublicPost(ctx, postID)
	if err != nil {
		return models.Post{}, nil, fmt.Errorf("read post %s: %w", postID, err)
	}
	comments, err := r.api.ListComments(ctx, postID)
	if err != nil {
		return p, nil, nil
	}
	return p, comments, nil
}

func (r *ReaderService) Comments(ctx context.Context, postID string) ([]models.Comment, error) {
	return r.api.ListComments(ctx, postID)
}

func (r *ReaderService) Comment(ctx context.Context, postID, body string) (models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return models.Comment{}, fmt.Errorf("%w: comment is empty", common.ErrValidation)
	}
	return r.api.CreateComment(ctx, postID, body)
}

func (r *ReaderService) DeleteComment(ctx context.Context, postID, commentID string) error {
	return r.api.DeleteComment(ctx, postID, commentID)
}
