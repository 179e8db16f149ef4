package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"linkedapi/internal/model"
	"linkedapi/internal/repository"
)

// CommentInput is the body of a new or edited comment.
type CommentInput struct {
	Text string `json:"text" validate:"required,max=1000"`
}

// CommentService manages the comments embedded in a post. Mutations return the populated post.
type CommentService interface {
	Create(ctx context.Context, actorID, postID string, in CommentInput) (*PostView, error)
	List(ctx context.Context, postID string) ([]CommentView, error)
	Get(ctx context.Context, postID, commentID string) (*CommentView, error)
	// Update and Delete are limited to the comment's author.
	Update(ctx context.Context, actorID, postID, commentID string, in CommentInput) (*PostView, error)
	Delete(ctx context.Context, actorID, postID, commentID string) (*PostView, error)
}

type commentService struct {
	posts repository.PostRepository
	users repository.UserRepository
}

// NewCommentService constructs a new CommentService.
func NewCommentService(posts repository.PostRepository, users repository.UserRepository) CommentService {
	return &commentService{posts: posts, users: users}
}

func (s *commentService) Create(ctx context.Context, actorID, postID string, in CommentInput) (*PostView, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	p, err := mutatePost(ctx, s.posts, postID, func(p *model.Post) error {
		now := time.Now().UTC()
		p.Comments = append(p.Comments, model.Comment{
			ID:          uuid.NewString(),
			User:        actorID,
			Text:        in.Text,
			CommentDate: now,
			UpdatedAt:   now,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return populatePost(ctx, s.users, p, actorID)
}

func (s *commentService) List(ctx context.Context, postID string) ([]CommentView, error) {
	p, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, notFound("post", err)
	}
	view, err := populatePost(ctx, s.users, p, "")
	if err != nil {
		return nil, err
	}
	return view.Comments, nil
}

func (s *commentService) Get(ctx context.Context, postID, commentID string) (*CommentView, error) {
	p, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, notFound("post", err)
	}
	i := p.CommentIndex(commentID)
	if i == -1 {
		return nil, notFound("comment", repository.ErrNotFound)
	}
	sums, err := loadSummaries(ctx, s.users, []string{p.Comments[i].User})
	if err != nil {
		return nil, err
	}
	c := sums.comment(p.Comments[i])
	return &c, nil
}

func (s *commentService) Update(ctx context.Context, actorID, postID, commentID string, in CommentInput) (*PostView, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	p, err := mutatePost(ctx, s.posts, postID, func(p *model.Post) error {
		i := p.CommentIndex(commentID)
		if i == -1 {
			return notFound("comment", repository.ErrNotFound)
		}
		if p.Comments[i].User != actorID {
			return ErrForbidden
		}
		p.Comments[i].Text = in.Text
		p.Comments[i].UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return populatePost(ctx, s.users, p, actorID)
}

func (s *commentService) Delete(ctx context.Context, actorID, postID, commentID string) (*PostView, error) {
	p, err := mutatePost(ctx, s.posts, postID, func(p *model.Post) error {
		i := p.CommentIndex(commentID)
		if i == -1 {
			return notFound("comment", repository.ErrNotFound)
		}
		if p.Comments[i].User != actorID {
			return ErrForbidden
		}
		p.RemoveComment(commentID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return populatePost(ctx, s.users, p, actorID)
}
