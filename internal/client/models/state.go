package models

// State is an immutable snapshot of the post store, handed to subscribers.
type State struct {
	Posts        []Post
	PublicPosts  []Post
	ActivePostID string
	SaveStatus   SaveStatus
	AIPanel      AIPanelState
}

// ActivePost looks up the active post in the snapshot.
func (s State) ActivePost() (Post, bool) {
	if s.ActivePostID == "" {
		return Post{}, false
	}
	for _, p := range s.Posts {
		if p.ID == s.ActivePostID {
			return p, true
		}
	}
	return Post{}, false
}
