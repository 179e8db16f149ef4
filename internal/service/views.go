package service

import (
	"context"
	"time"

	"linkedapi/internal/model"
	"linkedapi/internal/repository"
)

// UserView is a user with connection references resolved to summaries.
// Connections shadows the embedded field of the same JSON name.
type UserView struct {
	*model.User
	Connections ConnectionsView `json:"connections"`
}

// ConnectionsView is model.Connections with populated users.
type ConnectionsView struct {
	Pending []ConnectionView `json:"pending"`
	Active  []ConnectionView `json:"active"`
}

// ConnectionView is a connection request whose user is resolved, or null if deleted.
type ConnectionView struct {
	ID        string             `json:"_id"`
	User      *model.UserSummary `json:"user"`
	CreatedAt time.Time          `json:"createdAt"`
}

// PostView is a post with its author and comment authors resolved.
type PostView struct {
	ID        string             `json:"_id"`
	User      *model.UserSummary `json:"user"`
	Text      string             `json:"text"`
	Image     string             `json:"image,omitempty"`
	Comments  []CommentView      `json:"comments"`
	Likes     []model.Like       `json:"likes"`
	LikeCount int                `json:"likeCount"`
	LikedByMe bool               `json:"likedByMe"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// CommentView is a comment whose author is resolved, or null if deleted.
type CommentView struct {
	ID          string             `json:"_id"`
	User        *model.UserSummary `json:"user"`
	Text        string             `json:"text"`
	CommentDate time.Time          `json:"commentDate"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// summaries resolves user ids to summaries. Ids that were not found map to nil.
type summaries map[string]*model.UserSummary

// loadSummaries fetches every distinct id in one repository call.
func loadSummaries(ctx context.Context, users repository.UserRepository, ids []string) (summaries, error) {
	seen := make(map[string]struct{}, len(ids))
	uniq := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	out := make(summaries, len(uniq))
	if len(uniq) == 0 {
		return out, nil
	}
	found, err := users.FindByIDs(ctx, uniq)
	if err != nil {
		return nil, err
	}
	for i := range found {
		out[found[i].ID] = found[i].Summary()
	}
	return out, nil
}

func userRefs(us ...*model.User) []string {
	var ids []string
	for _, u := range us {
		for _, r := range u.Connections.Pending {
			ids = append(ids, r.User)
		}
		for _, r := range u.Connections.Active {
			ids = append(ids, r.User)
		}
	}
	return ids
}

func postRefs(ps ...*model.Post) []string {
	var ids []string
	for _, p := range ps {
		ids = append(ids, p.User)
		for _, c := range p.Comments {
			ids = append(ids, c.User)
		}
	}
	return ids
}

func (s summaries) connections(reqs []model.ConnectionRequest) []ConnectionView {
	out := make([]ConnectionView, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, ConnectionView{ID: r.ID, User: s[r.User], CreatedAt: r.CreatedAt})
	}
	return out
}

func (s summaries) user(u *model.User) *UserView {
	u.Normalize()
	return &UserView{
		User: u,
		Connections: ConnectionsView{
			Pending: s.connections(u.Connections.Pending),
			Active:  s.connections(u.Connections.Active),
		},
	}
}

func (s summaries) comment(c model.Comment) CommentView {
	return CommentView{ID: c.ID, User: s[c.User], Text: c.Text, CommentDate: c.CommentDate, UpdatedAt: c.UpdatedAt}
}

func (s summaries) post(p *model.Post, viewerID string) *PostView {
	p.Normalize()
	comments := make([]CommentView, 0, len(p.Comments))
	for _, c := range p.Comments {
		comments = append(comments, s.comment(c))
	}
	return &PostView{
		ID:        p.ID,
		User:      s[p.User],
		Text:      p.Text,
		Image:     p.Image,
		Comments:  comments,
		Likes:     p.Likes,
		LikeCount: len(p.Likes),
		LikedByMe: viewerID != "" && p.LikedBy(viewerID),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func populateUser(ctx context.Context, users repository.UserRepository, u *model.User) (*UserView, error) {
	s, err := loadSummaries(ctx, users, userRefs(u))
	if err != nil {
		return nil, err
	}
	return s.user(u), nil
}

func populatePost(ctx context.Context, users repository.UserRepository, p *model.Post, viewerID string) (*PostView, error) {
	s, err := loadSummaries(ctx, users, postRefs(p))
	if err != nil {
		return nil, err
	}
	return s.post(p, viewerID), nil
}
