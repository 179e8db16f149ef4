package postgres

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"regexp"
	"strings"
	"testing"
	"time"

	"linkedapi/internal/model"
	"linkedapi/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// docWithout matches a JSON document argument that does not contain s.
type docWithout string

func (d docWithout) Match(v driver.Value) bool {
	doc, ok := v.(string)
	return ok && json.Valid([]byte(doc)) && !strings.Contains(doc, string(d))
}

func userDoc(t *testing.T, u model.User) []byte {
	t.Helper()
	b, err := json.Marshal(u)
	require.NoError(t, err)
	return b
}

func TestUserPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("success keeps hash out of the document", func(t *testing.T) {
		u := &model.User{ID: "u1", Email: "ada@example.com", Password: "$2a$11$secret", CreatedAt: now, UpdatedAt: now}

		mock.ExpectExec("INSERT INTO users").
			WithArgs("u1", "ada@example.com", "$2a$11$secret", int64(1), docWithout("$2a$11$secret"), now, now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Create(ctx, u)

		assert.NoError(t, err)
		assert.Equal(t, int64(1), u.Version)
		assert.NotNil(t, u.Experiences)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := repo.Create(ctx, &model.User{ID: "u2", Email: "ada@example.com"})

		assert.ErrorIs(t, err, repository.ErrDuplicate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		doc := userDoc(t, model.User{ID: "u1", FirstName: "Ada", Email: "ada@example.com"})
		rows := sqlmock.NewRows([]string{"password_hash", "version", "doc"}).AddRow("hash", int64(3), doc)

		mock.ExpectQuery("SELECT (.+) FROM users WHERE id = ?").
			WithArgs("u1").
			WillReturnRows(rows)

		u, err := repo.FindByID(ctx, "u1")

		require.NoError(t, err)
		assert.Equal(t, "Ada", u.FirstName)
		assert.Equal(t, "hash", u.Password)
		assert.Equal(t, int64(3), u.Version)
		assert.NotNil(t, u.Connections.Pending)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE id = ?").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"password_hash", "version", "doc"}))

		u, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, u)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_FindByIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"password_hash", "version", "doc"}).
		AddRow("h1", int64(1), userDoc(t, model.User{ID: "a"})).
		AddRow("h2", int64(1), userDoc(t, model.User{ID: "b"}))

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id IN ($1, $2)")).
		WithArgs("a", "b").
		WillReturnRows(rows)

	users, err := repo.FindByIDs(ctx, []string{"a", "b"})

	require.NoError(t, err)
	assert.Len(t, users, 2)

	empty, err := repo.FindByIDs(ctx, nil)
	assert.NoError(t, err)
	assert.Empty(t, empty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	lq := repository.ListQuery{
		Filter: []repository.Condition{
			{Field: "lastName", Op: repository.OpEq, Value: "Lovelace"},
			{Field: "title", Op: repository.OpRegex, Value: "^eng", IgnoreCase: true},
		},
		Sort:   []repository.SortField{{Field: "createdAt", Desc: true}},
		Limit:  5,
		Offset: 10,
	}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE doc->>'lastName' = $1 AND doc->>'title' ~* $2")).
		WithArgs("Lovelace", "^eng").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id ASC LIMIT $3 OFFSET $4")).
		WithArgs("Lovelace", "^eng", 5, 10).
		WillReturnRows(sqlmock.NewRows([]string{"password_hash", "version", "doc"}).
			AddRow("h", int64(1), userDoc(t, model.User{ID: "u1", LastName: "Lovelace"})))

	res, err := repo.List(ctx, lq)

	require.NoError(t, err)
	assert.Equal(t, 11, res.Total)
	assert.Len(t, res.Items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_List_InvalidField(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	_, err = repo.List(context.Background(), repository.ListQuery{
		Filter: []repository.Condition{{Field: "x'; DROP TABLE users;--", Value: "1"}},
	})
	assert.Error(t, err)
}

func TestUserPostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("success bumps version", func(t *testing.T) {
		u := &model.User{ID: "u1", Email: "a@b.c", Password: "hash", Version: 2, UpdatedAt: now}

		mock.ExpectExec("UPDATE users").
			WithArgs("a@b.c", "hash", docWithout("hash"), now, "u1", int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(ctx, u))
		assert.Equal(t, int64(3), u.Version)
	})

	t.Run("stale version", func(t *testing.T) {
		u := &model.User{ID: "u1", Version: 1}

		mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err := repo.Update(ctx, u)
		assert.ErrorIs(t, err, repository.ErrVersionConflict)
		assert.Equal(t, int64(1), u.Version)
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").WithArgs("gone").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		err := repo.Update(ctx, &model.User{ID: "gone"})
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM users WHERE id = ?").
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM users WHERE id = ?").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(ctx, "u1"))
	assert.ErrorIs(t, repo.Delete(ctx, "missing"), repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
