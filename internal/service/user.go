package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"linkedapi/internal/auth"
	"linkedapi/internal/model"
	"linkedapi/internal/repository"
	"linkedapi/internal/storage"
)

// PasswordHasher hashes and checks account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID, role string) (string, error)
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	About     string `json:"about" validate:"max=2000"`
	Location  string `json:"location" validate:"max=200"`
	Title     string `json:"title" validate:"max=200"`
	Username  string `json:"username" validate:"max=50"`
}

// LoginInput is the login payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserInput is a partial profile update. Nil fields are left unchanged.
type UpdateUserInput struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1,max=100"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Password  *string `json:"password" validate:"omitempty,min=8,max=72"`
	About     *string `json:"about" validate:"omitempty,max=2000"`
	Location  *string `json:"location" validate:"omitempty,max=200"`
	Title     *string `json:"title" validate:"omitempty,max=200"`
	Username  *string `json:"username" validate:"omitempty,max=50"`
}

// AuthResult carries the issued access token.
type AuthResult struct {
	AccessToken string `json:"accessToken"`
}

// UserListResult is a page of users.
type UserListResult struct {
	Items []UserView
	Total int
}

// UserService defines the account and profile use cases.
type UserService interface {
	// Register creates an account and returns a token for it. An existing email yields ErrEmailTaken.
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)

	// Login checks credentials and returns a token.
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)

	// Get returns a user with populated connections.
	Get(ctx context.Context, id string) (*UserView, error)

	// List returns a page of users.
	List(ctx context.Context, q repository.ListQuery) (*UserListResult, error)

	// Update merges in into the actor's own profile.
	Update(ctx context.Context, actorID, id string, in UpdateUserInput) (*UserView, error)

	// Delete removes the actor's own account.
	Delete(ctx context.Context, actorID, id string) error

	// UploadImage replaces the actor's avatar.
	UploadImage(ctx context.Context, actorID, id string, up *Upload) (*UserView, error)
}

type userService struct {
	users  repository.UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	media  media
}

// NewUserService constructs a new UserService. store may be nil when media is disabled.
func NewUserService(users repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer, store storage.Storage, log *slog.Logger) UserService {
	return &userService{users: users, hasher: hasher, tokens: tokens, media: newMedia(store, log)}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &model.User{
		ID:        uuid.NewString(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  hash,
		About:     in.About,
		Location:  in.Location,
		Title:     in.Title,
		Username:  in.Username,
		Image:     model.DefaultAvatar,
		Role:      model.DefaultRole,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// The unique index catches a signup that raced the lookup above.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return s.issue(u)
}

func (s *userService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.hasher.Compare(u.Password, in.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return s.issue(u)
}

func (s *userService) issue(u *model.User) (*AuthResult, error) {
	tok, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{AccessToken: tok}, nil
}

func (s *userService) Get(ctx context.Context, id string) (*UserView, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("user", err)
	}
	return populateUser(ctx, s.users, u)
}

func (s *userService) List(ctx context.Context, q repository.ListQuery) (*UserListResult, error) {
	res, err := s.users.List(ctx, q)
	if err != nil {
		return nil, err
	}
	ptrs := make([]*model.User, len(res.Items))
	for i := range res.Items {
		ptrs[i] = &res.Items[i]
	}
	sums, err := loadSummaries(ctx, s.users, userRefs(ptrs...))
	if err != nil {
		return nil, err
	}
	items := make([]UserView, 0, len(ptrs))
	for _, u := range ptrs {
		items = append(items, *sums.user(u))
	}
	return &UserListResult{Items: items, Total: res.Total}, nil
}

func (s *userService) Update(ctx context.Context, actorID, id string, in UpdateUserInput) (*UserView, error) {
	if actorID != id {
		return nil, ErrForbidden
	}
	if in.Email != nil {
		e := normalizeEmail(*in.Email)
		in.Email = &e
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	var hash string
	if in.Password != nil {
		h, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		hash = h
	}

	u, err := mutateUser(ctx, s.users, id, func(u *model.User) error {
		if in.Email != nil && *in.Email != u.Email {
			other, err := s.users.FindByEmail(ctx, *in.Email)
			if err == nil && other.ID != u.ID {
				return ErrEmailTaken
			}
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			u.Email = *in.Email
		}
		if hash != "" {
			u.Password = hash
		}
		assign(&u.FirstName, in.FirstName)
		assign(&u.LastName, in.LastName)
		assign(&u.About, in.About)
		assign(&u.Location, in.Location)
		assign(&u.Title, in.Title)
		assign(&u.Username, in.Username)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return populateUser(ctx, s.users, u)
}

func (s *userService) Delete(ctx context.Context, actorID, id string) error {
	if actorID != id {
		return ErrForbidden
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return notFound("user", err)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return notFound("user", err)
	}
	s.media.remove(ctx, u.Image)
	for _, e := range u.Experiences {
		s.media.remove(ctx, e.Image)
	}
	return nil
}

func (s *userService) UploadImage(ctx context.Context, actorID, id string, up *Upload) (*UserView, error) {
	if actorID != id {
		return nil, ErrForbidden
	}
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return nil, notFound("user", err)
	}
	obj, err := s.media.put(ctx, storage.PrefixAvatars, up)
	if err != nil {
		return nil, err
	}

	var previous string
	u, err := mutateUser(ctx, s.users, id, func(u *model.User) error {
		previous = u.Image
		u.Image = obj.URL
		return nil
	})
	if err != nil {
		return nil, s.media.rollback(ctx, obj.Key, err)
	}
	s.media.remove(ctx, previous)
	return populateUser(ctx, s.users, u)
}

func assign(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

