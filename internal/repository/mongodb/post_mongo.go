package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"linkedapi/internal/model"
	"linkedapi/internal/repository"
)

// PostMongo stores posts, comments and likes included, in a MongoDB collection.
type PostMongo struct {
	coll *mongo.Collection
}

// NewPostMongo creates a new PostMongo repository over coll.
func NewPostMongo(coll *mongo.Collection) *PostMongo {
	return &PostMongo{coll: coll}
}

var _ repository.PostRepository = (*PostMongo)(nil)

// Create inserts a new post document.
func (r *PostMongo) Create(ctx context.Context, p *model.Post) error {
	p.Normalize()
	p.Version = 1
	_, err := r.coll.InsertOne(ctx, p)
	return err
}

// FindByID fetches a single post by its ID.
func (r *PostMongo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	p.Normalize()
	return &p, nil
}

// List returns a filtered page of posts and the total match count.
func (r *PostMongo) List(ctx context.Context, lq repository.ListQuery) (*repository.PageResult[model.Post], error) {
	items, total, err := findPage[model.Post](ctx, r.coll, lq)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Normalize()
	}
	return &repository.PageResult[model.Post]{Items: items, Total: total}, nil
}

// Update replaces the post document if the stored version still matches.
func (r *PostMongo) Update(ctx context.Context, p *model.Post) error {
	p.Normalize()
	loaded := p.Version
	p.Version = loaded + 1
	if err := replaceVersioned(ctx, r.coll, p.ID, loaded, p); err != nil {
		p.Version = loaded
		return err
	}
	return nil
}

// Delete removes a post by ID.
func (r *PostMongo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.coll, id)
}
