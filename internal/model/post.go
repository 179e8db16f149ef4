package model

import "time"

// Post is authored by a single user and embeds its comments and likes.
type Post struct {
	ID        string    `json:"_id" bson:"_id"`
	User      string    `json:"user" bson:"user"`
	Text      string    `json:"text" bson:"text"`
	Image     string    `json:"image,omitempty" bson:"image,omitempty"`
	Comments  []Comment `json:"comments" bson:"comments"`
	Likes     []Like    `json:"likes" bson:"likes"`
	Version   int64     `json:"-" bson:"version"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Comment is an ordered entry embedded in a Post.
type Comment struct {
	ID          string    `json:"_id" bson:"_id"`
	User        string    `json:"user" bson:"user"`
	Text        string    `json:"text" bson:"text"`
	CommentDate time.Time `json:"commentDate" bson:"commentDate"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Like marks a user's like on a post. A post holds at most one per user.
type Like struct {
	User string `json:"user" bson:"user"`
}

// Normalize replaces nil embedded slices with empty ones.
func (p *Post) Normalize() {
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
	if p.Likes == nil {
		p.Likes = []Like{}
	}
}

// CommentIndex returns the position of the comment with the given id, or -1.
func (p *Post) CommentIndex(id string) int {
	return indexOf(p.Comments, func(c Comment) bool { return c.ID == id })
}

// RemoveComment drops the comment with the given id and reports whether it existed.
func (p *Post) RemoveComment(id string) bool {
	var ok bool
	p.Comments, ok = removeFirst(p.Comments, func(c Comment) bool { return c.ID == id })
	return ok
}

// LikedBy reports whether userID is in the like set.
func (p *Post) LikedBy(userID string) bool {
	return indexOf(p.Likes, func(l Like) bool { return l.User == userID }) != -1
}

// ToggleLike removes userID's like if present, adds it otherwise, and
// reports whether the post is liked by userID afterwards.
func (p *Post) ToggleLike(userID string) bool {
	var removed bool
	p.Likes, removed = removeFirst(p.Likes, func(l Like) bool { return l.User == userID })
	if removed {
		return false
	}
	p.Likes = append(p.Likes, Like{User: userID})
	return true
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i := range items {
		if match(items[i]) {
			return i
		}
	}
	return -1
}

func removeFirst[T any](items []T, match func(T) bool) ([]T, bool) {
	i := indexOf(items, match)
	if i == -1 {
		return items, false
	}
	return append(items[:i], items[i+1:]...), true
}
