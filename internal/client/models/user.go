package models

import "time"

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Bio      string `json:"bio,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// Session is an authenticated API session.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *User
}

// ProfileUpdate is a partial profile change; nil fields are left as is.
type ProfileUpdate struct {
	FullName *string `json:"full_name,omitempty"`
	Bio      *string `json:"bio,omitempty"`
}

func (u ProfileUpdate) IsEmpty() bool {
	return u.FullName == nil && u.Bio == nil
}

// Comment is a reader comment on a published post.
type Comment struct {
	ID         string
	PostID     string
	AuthorID   string
	AuthorName string
	Body       string
	CreatedAt  time.Time
}
