package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"linkedapi/internal/model"
	"linkedapi/internal/repository"
	"linkedapi/internal/storage"
)

// PostInput is a new post.
type PostInput struct {
	Text string `json:"text" validate:"required,max=3000"`
}

// UpdatePostInput changes a post's text. Nil leaves it unchanged.
type UpdatePostInput struct {
	Text *string `json:"text" validate:"omitempty,min=1,max=3000"`
}

// PostListResult is a page of posts.
type PostListResult struct {
	Items []PostView
	Total int
}

// PostService defines the post use cases. viewerID may be empty for anonymous
// reads, in which case likedByMe is always false.
type PostService interface {
	// Create stores a post by actorID. up is optional.
	Create(ctx context.Context, actorID string, in PostInput, up *Upload) (*PostView, error)
	List(ctx context.Context, viewerID string, q repository.ListQuery) (*PostListResult, error)
	Get(ctx context.Context, viewerID, id string) (*PostView, error)
	// Update is owner only. A non-nil up replaces the image.
	Update(ctx context.Context, actorID, id string, in UpdatePostInput, up *Upload) (*PostView, error)
	// Delete is owner only.
	Delete(ctx context.Context, actorID, id string) error
	// ToggleLike adds actorID's like if absent and removes it otherwise.
	ToggleLike(ctx context.Context, actorID, id string) (*PostView, error)
}

type postService struct {
	posts repository.PostRepository
	users repository.UserRepository
	media media
}

// NewPostService constructs a new PostService. store may be nil.
func NewPostService(posts repository.PostRepository, users repository.UserRepository, store storage.Storage, log *slog.Logger) PostService {
	return &postService{posts: posts, users: users, media: newMedia(store, log)}
}

func (s *postService) Create(ctx context.Context, actorID string, in PostInput, up *Upload) (*PostView, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &model.Post{
		ID:        uuid.NewString(),
		User:      actorID,
		Text:      in.Text,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var obj storage.ObjectInfo
	if up != nil {
		var err error
		if obj, err = s.media.put(ctx, storage.PrefixPosts, up); err != nil {
			return nil, err
		}
		p.Image = obj.URL
	}

	if err := s.posts.Create(ctx, p); err != nil {
		if up != nil {
			return nil, s.media.rollback(ctx, obj.Key, err)
		}
		return nil, err
	}
	return populatePost(ctx, s.users, p, actorID)
}

func (s *postService) List(ctx context.Context, viewerID string, q repository.ListQuery) (*PostListResult, error) {
	res, err := s.posts.List(ctx, q)
	if err != nil {
		return nil, err
	}
	ptrs := make([]*model.Post, len(res.Items))
	for i := range res.Items {
		ptrs[i] = &res.Items[i]
	}
	sums, err := loadSummaries(ctx, s.users, postRefs(ptrs...))
	if err != nil {
		return nil, err
	}
	items := make([]PostView, 0, len(ptrs))
	for _, p := range ptrs {
		items = append(items, *sums.post(p, viewerID))
	}
	return &PostListResult{Items: items, Total: res.Total}, nil
}

func (s *postService) Get(ctx context.Context, viewerID, id string) (*PostView, error) {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("post", err)
	}
	return populatePost(ctx, s.users, p, viewerID)
}

func (s *postService) Update(ctx context.Context, actorID, id string, in UpdatePostInput, up *Upload) (*PostView, error) {
	if in.Text != nil {
		t := strings.TrimSpace(*in.Text)
		in.Text = &t
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	current, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("post", err)
	}
	if current.User != actorID {
		return nil, ErrForbidden
	}

	var obj storage.ObjectInfo
	if up != nil {
		if obj, err = s.media.put(ctx, storage.PrefixPosts, up); err != nil {
			return nil, err
		}
	}

	var previous string
	p, err := mutatePost(ctx, s.posts, id, func(p *model.Post) error {
		if p.User != actorID {
			return ErrForbidden
		}
		assign(&p.Text, in.Text)
		if up != nil {
			previous = p.Image
			p.Image = obj.URL
		}
		return nil
	})
	if err != nil {
		if up != nil {
			return nil, s.media.rollback(ctx, obj.Key, err)
		}
		return nil, err
	}
	s.media.remove(ctx, previous)
	return populatePost(ctx, s.users, p, actorID)
}

func (s *postService) Delete(ctx context.Context, actorID, id string) error {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return notFound("post", err)
	}
	if p.User != actorID {
		return ErrForbidden
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return notFound("post", err)
	}
	s.media.remove(ctx, p.Image)
	return nil
}

func (s *postService) ToggleLike(ctx context.Context, actorID, id string) (*PostView, error) {
	p, err := mutatePost(ctx, s.posts, id, func(p *model.Post) error {
		p.ToggleLike(actorID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return populatePost(ctx, s.users, p, actorID)
}

