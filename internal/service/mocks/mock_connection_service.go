package mocks

import (
	"context"

	"linkedapi/internal/model"
	"linkedapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockConnectionService struct {
	mock.Mock
}

func (m *MockConnectionService) Request(ctx context.Context, actorID, targetID string) (*model.ConnectionRequest, error) {
	args := m.Called(ctx, actorID, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ConnectionRequest), args.Error(1)
}

func (m *MockConnectionService) Accept(ctx context.Context, actorID, fromID string) (*service.UserView, error) {
	args := m.Called(ctx, actorID, fromID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserView), args.Error(1)
}

func (m *MockConnectionService) Remove(ctx context.Context, actorID, otherID string) (*service.UserView, error) {
	args := m.Called(ctx, actorID, otherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserView), args.Error(1)
}
