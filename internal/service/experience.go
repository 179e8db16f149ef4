package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"linkedapi/internal/model"
	"linkedapi/internal/repository"
	"linkedapi/internal/storage"
)

// ExperienceInput is a new experience entry.
type ExperienceInput struct {
	Role        string     `json:"role" validate:"required,max=200"`
	Company     string     `json:"company" validate:"required,max=200"`
	StartDate   time.Time  `json:"startDate" validate:"required"`
	EndDate     *time.Time `json:"endDate"`
	Description string     `json:"description" validate:"max=2000"`
	Area        string     `json:"area" validate:"max=200"`
}

// UpdateExperienceInput merges into an existing entry. Nil fields are left
// unchanged. An explicit "endDate": null marks the position as current.
type UpdateExperienceInput struct {
	Role        *string      `json:"role" validate:"omitempty,min=1,max=200"`
	Company     *string      `json:"company" validate:"omitempty,min=1,max=200"`
	StartDate   *time.Time   `json:"startDate"`
	EndDate     NullableTime `json:"endDate"`
	Description *string      `json:"description" validate:"omitempty,max=2000"`
	Area        *string      `json:"area" validate:"omitempty,max=200"`
}

// NullableTime tells an absent JSON field (Set false) from an explicit null
// (Set true, Value nil).
type NullableTime struct {
	Set   bool
	Value *time.Time
}

// SetTime returns a NullableTime holding t.
func SetTime(t time.Time) NullableTime {
	return NullableTime{Set: true, Value: &t}
}

// UnmarshalJSON only runs when the key is present, null included.
func (n *NullableTime) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	n.Value = &t
	return nil
}

func (n NullableTime) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// ExperienceService manages the experiences embedded in a user.
type ExperienceService interface {
	Create(ctx context.Context, actorID, userID string, in ExperienceInput) (*UserView, error)
	List(ctx context.Context, userID string) ([]model.Experience, error)
	Get(ctx context.Context, userID, expID string) (*model.Experience, error)
	Update(ctx context.Context, actorID, userID, expID string, in UpdateExperienceInput) (*UserView, error)
	Delete(ctx context.Context, actorID, userID, expID string) (*UserView, error)
	UploadImage(ctx context.Context, actorID, userID, expID string, up *Upload) (*UserView, error)
}

type experienceService struct {
	users repository.UserRepository
	media media
}

// NewExperienceService constructs a new ExperienceService. store may be nil.
func NewExperienceService(users repository.UserRepository, store storage.Storage, log *slog.Logger) ExperienceService {
	return &experienceService{users: users, media: newMedia(store, log)}
}

func checkDates(start time.Time, end *time.Time) error {
	if end != nil && end.Before(start) {
		return invalidField("endDate", "must not be before startDate")
	}
	return nil
}

func (s *experienceService) Create(ctx context.Context, actorID, userID string, in ExperienceInput) (*UserView, error) {
	if actorID != userID {
		return nil, ErrForbidden
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := checkDates(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}

	u, err := mutateUser(ctx, s.users, userID, func(u *model.User) error {
		now := time.Now().UTC()
		u.Experiences = append(u.Experiences, model.Experience{
			ID:          uuid.NewString(),
			Role:        in.Role,
			Company:     in.Company,
			StartDate:   in.StartDate,
			EndDate:     in.EndDate,
			Description: in.Description,
			Area:        in.Area,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return populateUser(ctx, s.users, u)
}

func (s *experienceService) List(ctx context.Context, userID string) ([]model.Experience, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound("user", err)
	}
	u.Normalize()
	return u.Experiences, nil
}

func (s *experienceService) Get(ctx context.Context, userID, expID string) (*model.Experience, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound("user", err)
	}
	i := u.ExperienceIndex(expID)
	if i == -1 {
		return nil, notFound("experience", repository.ErrNotFound)
	}
	return &u.Experiences[i], nil
}

func (s *experienceService) Update(ctx context.Context, actorID, userID, expID string, in UpdateExperienceInput) (*UserView, error) {
	if actorID != userID {
		return nil, ErrForbidden
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	u, err := mutateUser(ctx, s.users, userID, func(u *model.User) error {
		i := u.ExperienceIndex(expID)
		if i == -1 {
			return notFound("experience", repository.ErrNotFound)
		}
		e := &u.Experiences[i]
		assign(&e.Role, in.Role)
		assign(&e.Company, in.Company)
		assign(&e.Description, in.Description)
		assign(&e.Area, in.Area)
		if in.StartDate != nil {
			e.StartDate = *in.StartDate
		}
		if in.EndDate.Set {
			e.EndDate = in.EndDate.Value
		}
		if err := checkDates(e.StartDate, e.EndDate); err != nil {
			return err
		}
		e.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return populateUser(ctx, s.users, u)
}

func (s *experienceService) Delete(ctx context.Context, actorID, userID, expID string) (*UserView, error) {
	if actorID != userID {
		return nil, ErrForbidden
	}
	var image string
	u, err := mutateUser(ctx, s.users, userID, func(u *model.User) error {
		if i := u.ExperienceIndex(expID); i != -1 {
			image = u.Experiences[i].Image
		}
		if !u.RemoveExperience(expID) {
			return notFound("experience", repository.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.media.remove(ctx, image)
	return populateUser(ctx, s.users, u)
}

func (s *experienceService) UploadImage(ctx context.Context, actorID, userID, expID string, up *Upload) (*UserView, error) {
	if actorID != userID {
		return nil, ErrForbidden
	}
	if _, err := s.Get(ctx, userID, expID); err != nil {
		return nil, err
	}
	obj, err := s.media.put(ctx, storage.PrefixExperiences, up)
	if err != nil {
		return nil, err
	}

	var previous string
	u, err := mutateUser(ctx, s.users, userID, func(u *model.User) error {
		i := u.ExperienceIndex(expID)
		if i == -1 {
			return notFound("experience", repository.ErrNotFound)
		}
		previous = u.Experiences[i].Image
		u.Experiences[i].Image = obj.URL
		u.Experiences[i].UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, s.media.rollback(ctx, obj.Key, err)
	}
	s.media.remove(ctx, previous)
	return populateUser(ctx, s.users, u)
}
