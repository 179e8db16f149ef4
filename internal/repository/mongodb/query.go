package mongodb

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"linkedapi/internal/repository"
)

var (
	fieldName = regexp.MustCompile(`^(_id|[A-Za-z][A-Za-z0-9]*)$`)
	// filterPath also admits one level into an embedded list, e.g. experiences.area.
	filterPath = regexp.MustCompile(`^(_id|[A-Za-z][A-Za-z0-9]*(\.[A-Za-z][A-Za-z0-9]*)?)$`)
)

// buildFilter renders conditions as a query document. More than one
// condition is combined with $and so repeated fields keep every clause.
func buildFilter(conds []repository.Condition) (bson.D, error) {
	clauses := make(bson.A, 0, len(conds))
	for _, c := range conds {
		if !filterPath.MatchString(c.Field) {
			return nil, fmt.Errorf("invalid field name %q", c.Field)
		}
		switch c.Op {
		case repository.OpEq:
			clauses = append(clauses, bson.D{{Key: c.Field, Value: c.Value}})
		case repository.OpNe:
			clauses = append(clauses, bson.D{{Key: c.Field, Value: bson.D{{Key: "$ne", Value: c.Value}}}})
		case repository.OpRegex:
			re := bson.Regex{Pattern: c.Value}
			if c.IgnoreCase {
				re.Options = "i"
			}
			clauses = append(clauses, bson.D{{Key: c.Field, Value: re}})
		default:
			return nil, fmt.Errorf("unsupported operator %d", c.Op)
		}
	}
	switch len(clauses) {
	case 0:
		return bson.D{}, nil
	case 1:
		return clauses[0].(bson.D), nil
	default:
		return bson.D{{Key: "$and", Value: clauses}}, nil
	}
}

// buildSort renders the sort, falling back to newest first with _id as tiebreaker.
func buildSort(sort []repository.SortField) (bson.D, error) {
	if len(sort) == 0 {
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}, nil
	}
	out := make(bson.D, 0, len(sort)+1)
	hasID := false
	for _, s := range sort {
		if !fieldName.MatchString(s.Field) {
			return nil, fmt.Errorf("invalid field name %q", s.Field)
		}
		dir := 1
		if s.Desc {
			dir = -1
		}
		if s.Field == "_id" {
			hasID = true
		}
		out = append(out, bson.E{Key: s.Field, Value: dir})
	}
	if !hasID {
		out = append(out, bson.E{Key: "_id", Value: 1})
	}
	return out, nil
}

// findPage runs the count and the paged find for a list query.
func findPage[T any](ctx context.Context, coll *mongo.Collection, lq repository.ListQuery) ([]T, int, error) {
	filter, err := buildFilter(lq.Filter)
	if err != nil {
		return nil, 0, err
	}
	sort, err := buildSort(lq.Sort)
	if err != nil {
		return nil, 0, err
	}

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(sort).
		SetSkip(int64(lq.Offset)).
		SetLimit(int64(lq.Limit))
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	items := make([]T, 0)
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, int(total), nil
}

// replaceVersioned swaps the stored document for doc only while the stored
// version still equals version.
func replaceVersioned(ctx context.Context, coll *mongo.Collection, id string, version int64, doc any) error {
	res, err := coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}, {Key: "version", Value: version}}, doc)
	if err != nil {
		return writeErr(err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	return missedReplace(n > 0)
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id string) error {
	res, err := coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	return deleted(res.DeletedCount)
}

// writeErr maps a unique index violation to ErrDuplicate.
func writeErr(err error) error {
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	return err
}

// missedReplace classifies a versioned replace that matched nothing.
func missedReplace(exists bool) error {
	if exists {
		return repository.ErrVersionConflict
	}
	return repository.ErrNotFound
}

func deleted(n int64) error {
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
