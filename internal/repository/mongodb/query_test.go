package mongodb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"linkedapi/internal/repository"
)

func TestBuildFilter(t *testing.T) {
	tests := []struct {
		name  string
		conds []repository.Condition
		want  bson.D
	}{
		{
			name: "empty",
			want: bson.D{},
		},
		{
			name:  "equality",
			conds: []repository.Condition{{Field: "user", Op: repository.OpEq, Value: "u1"}},
			want:  bson.D{{Key: "user", Value: "u1"}},
		},
		{
			name:  "not equal",
			conds: []repository.Condition{{Field: "title", Op: repository.OpNe, Value: "CEO"}},
			want:  bson.D{{Key: "title", Value: bson.D{{Key: "$ne", Value: "CEO"}}}},
		},
		{
			name:  "case-insensitive regex",
			conds: []repository.Condition{{Field: "firstName", Op: repository.OpRegex, Value: "^jo", IgnoreCase: true}},
			want:  bson.D{{Key: "firstName", Value: bson.Regex{Pattern: "^jo", Options: "i"}}},
		},
		{
			name:  "embedded list path",
			conds: []repository.Condition{{Field: "experiences.area", Op: repository.OpEq, Value: "Rome"}},
			want:  bson.D{{Key: "experiences.area", Value: "Rome"}},
		},
		{
			name: "multiple conditions",
			conds: []repository.Condition{
				{Field: "user", Op: repository.OpEq, Value: "u1"},
				{Field: "text", Op: repository.OpRegex, Value: "go"},
			},
			want: bson.D{{Key: "$and", Value: bson.A{
				bson.D{{Key: "user", Value: "u1"}},
				bson.D{{Key: "text", Value: bson.Regex{Pattern: "go"}}},
			}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildFilter(tt.conds)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildFilter_RejectsOperatorKeys(t *testing.T) {
	for _, field := range []string{"$where", "experiences.$", "a.b.c", "experiences."} {
		_, err := buildFilter([]repository.Condition{{Field: field, Op: repository.OpEq, Value: "1"}})
		assert.Error(t, err, field)
	}
}

func TestBuildSort(t *testing.T) {
	got, err := buildSort(nil)
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}, got)

	got, err = buildSort([]repository.SortField{{Field: "lastName"}, {Field: "createdAt", Desc: true}})
	require.NoError(t, err)
	assert.Equal(t, bson.D{
		{Key: "lastName", Value: 1},
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: 1},
	}, got)

	_, err = buildSort([]repository.SortField{{Field: "a.b"}})
	assert.Error(t, err)
}

func TestWriteErr(t *testing.T) {
	other := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil", err: nil, want: nil},
		{
			name: "duplicate key write",
			err:  mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}}},
			want: repository.ErrDuplicate,
		},
		{
			name: "duplicate key command",
			err:  mongo.CommandError{Code: 11000, Message: "E11000 duplicate key error"},
			want: repository.ErrDuplicate,
		},
		{
			name: "other write error",
			err:  mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 121, Message: "Document failed validation"}}},
			want: nil,
		},
		{name: "passthrough", err: other, want: other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := writeErr(tt.err)
			switch {
			case tt.err == nil:
				assert.NoError(t, got)
			case tt.want == nil:
				assert.Equal(t, tt.err, got)
			default:
				assert.ErrorIs(t, got, tt.want)
			}
		})
	}
}

func TestMissedReplace(t *testing.T) {
	assert.ErrorIs(t, missedReplace(true), repository.ErrVersionConflict)
	assert.ErrorIs(t, missedReplace(false), repository.ErrNotFound)
}

func TestDeleted(t *testing.T) {
	assert.ErrorIs(t, deleted(0), repository.ErrNotFound)
	assert.NoError(t, deleted(1))
}
