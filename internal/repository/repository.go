package repository

import (
	"context"
	"errors"

	"linkedapi/internal/model"
)

// Package repository contains data access abstractions for the document store.
// Implementations live in subpackages (mongo, postgres) and hold no business logic.

var (
	// ErrNotFound is returned when no document matches the given id.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a unique key (user email) is already taken.
	ErrDuplicate = errors.New("duplicate key")
	// ErrVersionConflict is returned by Update when the stored version differs
	// from the one the caller loaded.
	ErrVersionConflict = errors.New("version conflict")
)

// UserRepository persists user documents, including their embedded
// experiences and connections.
type UserRepository interface {
	// Create inserts a new user. The caller sets ID and timestamps; Version is set to 1.
	Create(ctx context.Context, u *model.User) error

	// FindByID returns the user or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail returns the user or ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByIDs returns all users whose id is in ids. Missing ids are skipped.
	FindByIDs(ctx context.Context, ids []string) ([]model.User, error)

	// List returns a filtered, sorted page of users and the total match count.
	List(ctx context.Context, q ListQuery) (*PageResult[model.User], error)

	// Update replaces the whole document if its stored version equals u.Version,
	// then increments u.Version. Returns ErrVersionConflict or ErrNotFound otherwise.
	Update(ctx context.Context, u *model.User) error

	// Delete removes the user or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}

// PostRepository persists post documents with their embedded comments and likes.
type PostRepository interface {
	Create(ctx context.Context, p *model.Post) error
	FindByID(ctx context.Context, id string) (*model.Post, error)
	List(ctx context.Context, q ListQuery) (*PageResult[model.Post], error)
	// Update has the same optimistic semantics as UserRepository.Update.
	Update(ctx context.Context, p *model.Post) error
	Delete(ctx context.Context, id string) error
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
