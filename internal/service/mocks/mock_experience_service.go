package mocks

import (
	"context"

	"linkedapi/internal/model"
	"linkedapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockExperienceService struct {
	mock.Mock
}

func (m *MockExperienceService) Create(ctx context.Context, actorID, userID string, in service.ExperienceInput) (*service.UserView, error) {
	args := m.Called(ctx, actorID, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserView), args.Error(1)
}

func (m *MockExperienceService) List(ctx context.Context, userID string) ([]model.Experience, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Experience), args.Error(1)
}

func (m *MockExperienceService) Get(ctx context.Context, userID, expID string) (*model.Experience, error) {
	args := m.Called(ctx, userID, expID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Experience), args.Error(1)
}

func (m *MockExperienceService) Update(ctx context.Context, actorID, userID, expID string, in service.UpdateExperienceInput) (*service.UserView, error) {
	args := m.Called(ctx, actorID, userID, expID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserView), args.Error(1)
}

func (m *MockExperienceService) Delete(ctx context.Context, actorID, userID, expID string) (*service.UserView, error) {
	args := m.Called(ctx, actorID, userID, expID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserView), args.Error(1)
}

func (m *MockExperienceService) UploadImage(ctx context.Context, actorID, userID, expID string, up *service.Upload) (*service.UserView, error) {
	args := m.Called(ctx, actorID, userID, expID, up)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserView), args.Error(1)
}
