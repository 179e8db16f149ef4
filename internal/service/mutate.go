package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"linkedapi/internal/model"
	"linkedapi/internal/repository"
)

// maxUpdateAttempts bounds how often a load-change-save cycle is re-run after
// losing an optimistic version race.
const maxUpdateAttempts = 3

// retryOnConflict runs fn until it succeeds, fails with anything other than a
// version conflict, or runs out of attempts.
func retryOnConflict(ctx context.Context, fn func() error) error {
	for attempt := 1; ; attempt++ {
		err := fn()
		if !errors.Is(err, repository.ErrVersionConflict) {
			return err
		}
		if attempt >= maxUpdateAttempts {
			return fmt.Errorf("%w after %d attempts", ErrConflict, attempt)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
}

// mutateUser loads user id, applies change and saves it under the version check.
// change may be called more than once and must derive everything from u.
func mutateUser(ctx context.Context, users repository.UserRepository, id string, change func(u *model.User) error) (*model.User, error) {
	var out *model.User
	err := retryOnConflict(ctx, func() error {
		u, err := users.FindByID(ctx, id)
		if err != nil {
			return notFound("user", err)
		}
		if err := change(u); err != nil {
			return err
		}
		u.UpdatedAt = time.Now().UTC()
		if err := users.Update(ctx, u); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrEmailTaken
			}
			return notFound("user", err)
		}
		out = u
		return nil
	})
	return out, err
}

// mutatePost is mutateUser for posts.
func mutatePost(ctx context.Context, posts repository.PostRepository, id string, change func(p *model.Post) error) (*model.Post, error) {
	var out *model.Post
	err := retryOnConflict(ctx, func() error {
		p, err := posts.FindByID(ctx, id)
		if err != nil {
			return notFound("post", err)
		}
		if err := change(p); err != nil {
			return err
		}
		p.UpdatedAt = time.Now().UTC()
		if err := posts.Update(ctx, p); err != nil {
			return notFound("post", err)
		}
		out = p
		return nil
	})
	return out, err
}
