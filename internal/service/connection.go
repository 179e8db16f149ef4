package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"linkedapi/internal/model"
	"linkedapi/internal/repository"
)

// ConnectionService manages connection requests between users.
//
// Accepting or removing a connection updates two user documents. Each write
// is version checked, but the pair is not atomic: if the second write fails
// the first stays applied and the failure is logged.
type ConnectionService interface {
	// Request files a pending request from actorID on targetID.
	Request(ctx context.Context, actorID, targetID string) (*model.ConnectionRequest, error)

	// Accept moves fromID's pending request into both users' active lists.
	Accept(ctx context.Context, actorID, fromID string) (*UserView, error)

	// Remove declines a pending request or drops an active connection on both sides.
	Remove(ctx context.Context, actorID, otherID string) (*UserView, error)
}

type connectionService struct {
	users repository.UserRepository
	log   *slog.Logger
}

// NewConnectionService constructs a new ConnectionService.
func NewConnectionService(users repository.UserRepository, log *slog.Logger) ConnectionService {
	if log == nil {
		log = slog.Default()
	}
	return &connectionService{users: users, log: log.With(slog.String("component", "connections"))}
}

func (s *connectionService) Request(ctx context.Context, actorID, targetID string) (*model.ConnectionRequest, error) {
	if actorID == targetID {
		return nil, ErrSelfConnection
	}
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, notFound("user", err)
	}
	if actor.Connections.PendingFrom(targetID) != -1 || actor.Connections.ActiveWith(targetID) != -1 {
		return nil, ErrAlreadyConnected
	}

	var req model.ConnectionRequest
	_, err = mutateUser(ctx, s.users, targetID, func(u *model.User) error {
		if u.Connections.PendingFrom(actorID) != -1 || u.Connections.ActiveWith(actorID) != -1 {
			return ErrAlreadyConnected
		}
		req = model.ConnectionRequest{ID: uuid.NewString(), User: actorID, CreatedAt: time.Now().UTC()}
		u.Connections.Pending = append(u.Connections.Pending, req)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *connectionService) Accept(ctx context.Context, actorID, fromID string) (*UserView, error) {
	now := time.Now().UTC()
	actor, err := mutateUser(ctx, s.users, actorID, func(u *model.User) error {
		i := u.Connections.PendingFrom(fromID)
		if i == -1 {
			return notFound("connection request", repository.ErrNotFound)
		}
		req := u.Connections.Pending[i]
		u.Connections.Pending = append(u.Connections.Pending[:i], u.Connections.Pending[i+1:]...)
		if u.Connections.ActiveWith(fromID) == -1 {
			req.CreatedAt = now
			u.Connections.Active = append(u.Connections.Active, req)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_, err = mutateUser(ctx, s.users, fromID, func(u *model.User) error {
		// A crossed request from actorID is settled by this accept.
		if i := u.Connections.PendingFrom(actorID); i != -1 {
			u.Connections.Pending = append(u.Connections.Pending[:i], u.Connections.Pending[i+1:]...)
		}
		if u.Connections.ActiveWith(actorID) == -1 {
			u.Connections.Active = append(u.Connections.Active, model.ConnectionRequest{
				ID: uuid.NewString(), User: actorID, CreatedAt: now,
			})
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.log.Error("connection accept applied to one side only",
			slog.String("user_id", actorID),
			slog.String("other_id", fromID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return populateUser(ctx, s.users, actor)
}

func (s *connectionService) Remove(ctx context.Context, actorID, otherID string) (*UserView, error) {
	var removedMine bool
	actor, err := mutateUser(ctx, s.users, actorID, func(u *model.User) error {
		removedMine = u.Connections.Disconnect(otherID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var removedTheirs bool
	_, err = mutateUser(ctx, s.users, otherID, func(u *model.User) error {
		removedTheirs = u.Connections.Disconnect(actorID)
		return nil
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.log.Error("connection removal applied to one side only",
			slog.String("user_id", actorID),
			slog.String("other_id", otherID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	if !removedMine && !removedTheirs {
		return nil, notFound("connection", repository.ErrNotFound)
	}
	return populateUser(ctx, s.users, actor)
}
