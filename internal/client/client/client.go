package client

import (
	"context"

	"github.com/dmitrijs2005/syncdraft/internal/client/models"
)

// PostsAPI is the part of the API the post store depends on.
type PostsAPI interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, id string) (models.Post, error)
	CreatePost(ctx context.Context, title, content string) (models.Post, error)
	UpdatePost(ctx context.Context, id, title, content string) error
	DeletePost(ctx context.Context, id string) error
	PublishPost(ctx context.Context, id string) error
	UnpublishPost(ctx context.Context, id string) error
	ListPublicPosts(ctx context.Context) ([]models.Post, error)
}

type AuthAPI interface {
	Signup(ctx context.Context, email, password, fullName string) (*models.Session, error)
	Login(ctx context.Context, email, password string) (*models.Session, error)
	SetSession(access, refresh string)
	ClearSession()
	OnSessionRefreshed(fn func(ctx context.Context, s models.Session))
	OnSessionExpired(fn func(ctx context.Context))
	Profile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, u models.ProfileUpdate) (*models.User, error)
}

type AIAPI interface {
	Generate(ctx context.Context, text string, mode models.AIMode) (string, error)
}

type CommentsAPI interface {
	GetPublicPost(ctx context.Context, id string) (models.Post, error)
	ListComments(ctx context.Context, postID string) ([]models.Comment, error)
	CreateComment(ctx context.Context, postID, body string) (models.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID string) error
}

// Client is the full remote API.
type Client interface {
	PostsAPI
	AuthAPI
	AIAPI
	CommentsAPI
}

var _ Client = (*HTTPClient)(nil)
