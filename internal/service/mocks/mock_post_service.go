package mocks

import (
	"context"

	"linkedapi/internal/repository"
	"linkedapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) Create(ctx context.Context, actorID string, in service.PostInput, up *service.Upload) (*service.PostView, error) {
	args := m.Called(ctx, actorID, in, up)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PostView), args.Error(1)
}

func (m *MockPostService) List(ctx context.Context, viewerID string, q repository.ListQuery) (*service.PostListResult, error) {
	args := m.Called(ctx, viewerID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PostListResult), args.Error(1)
}

func (m *MockPostService) Get(ctx context.Context, viewerID, id string) (*service.PostView, error) {
	args := m.Called(ctx, viewerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PostView), args.Error(1)
}

func (m *MockPostService) Update(ctx context.Context, actorID, id string, in service.UpdatePostInput, up *service.Upload) (*service.PostView, error) {
	args := m.Called(ctx, actorID, id, in, up)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PostView), args.Error(1)
}

func (m *MockPostService) Delete(ctx context.Context, actorID, id string) error {
	args := m.Called(ctx, actorID, id)
	return args.Error(0)
}

func (m *MockPostService) ToggleLike(ctx context.Context, actorID, id string) (*service.PostView, error) {
	args := m.Called(ctx, actorID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PostView), args.Error(1)
}
