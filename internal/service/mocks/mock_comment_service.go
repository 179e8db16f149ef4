package mocks

import (
	"context"

	"linkedapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) Create(ctx context.Context, actorID, postID string, in service.CommentInput) (*service.PostView, error) {
	args := m.Called(ctx, actorID, postID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PostView), args.Error(1)
}

func (m *MockCommentService) List(ctx context.Context, postID string) ([]service.CommentView, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.CommentView), args.Error(1)
}

func (m *MockCommentService) Get(ctx context.Context, postID, commentID string) (*service.CommentView, error) {
	args := m.Called(ctx, postID, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CommentView), args.Error(1)
}

func (m *MockCommentService) Update(ctx context.Context, actorID, postID, commentID string, in service.CommentInput) (*service.PostView, error) {
	args := m.Called(ctx, actorID, postID, commentID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PostView), args.Error(1)
}

func (m *MockCommentService) Delete(ctx context.Context, actorID, postID, commentID string) (*service.PostView, error) {
	args := m.Called(ctx, actorID, postID, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PostView), args.Error(1)
}
