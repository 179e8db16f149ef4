package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"linkedapi/internal/model"
	"linkedapi/internal/repository"
)

// UserMongo stores users in a MongoDB collection.
type UserMongo struct {
	coll *mongo.Collection
}

// NewUserMongo creates a new UserMongo repository over coll.
func NewUserMongo(coll *mongo.Collection) *UserMongo {
	return &UserMongo{coll: coll}
}

var _ repository.UserRepository = (*UserMongo)(nil)

// Create inserts a new user document.
func (r *UserMongo) Create(ctx context.Context, u *model.User) error {
	u.Normalize()
	u.Version = 1
	_, err := r.coll.InsertOne(ctx, u)
	return writeErr(err)
}

// FindByID fetches a single user by its ID.
func (r *UserMongo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

// FindByEmail fetches a single user by email.
func (r *UserMongo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

// FindByIDs fetches every user whose id is in ids.
func (r *UserMongo) FindByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	cur, err := r.coll.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := make([]model.User, 0, len(ids))
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Normalize()
	}
	return items, nil
}

// List returns a filtered page of users and the total match count.
func (r *UserMongo) List(ctx context.Context, lq repository.ListQuery) (*repository.PageResult[model.User], error) {
	items, total, err := findPage[model.User](ctx, r.coll, lq)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Normalize()
	}
	return &repository.PageResult[model.User]{Items: items, Total: total}, nil
}

// Update replaces the user document if the stored version still matches.
func (r *UserMongo) Update(ctx context.Context, u *model.User) error {
	u.Normalize()
	loaded := u.Version
	u.Version = loaded + 1
	if err := replaceVersioned(ctx, r.coll, u.ID, loaded, u); err != nil {
		u.Version = loaded
		return err
	}
	return nil
}

// Delete removes a user by ID.
func (r *UserMongo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.coll, id)
}

func (r *UserMongo) findOne(ctx context.Context, filter bson.D) (*model.User, error) {
	var u model.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	u.Normalize()
	return &u, nil
}
