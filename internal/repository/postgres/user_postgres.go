package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"linkedapi/internal/model"
	"linkedapi/internal/repository"
)

// UserPostgres stores users as JSONB documents. The password hash lives in its
// own column and never enters the document.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

var userColumns = columns{
	"_id":       "id",
	"email":     "email",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		hash    string
		version int64
		doc     []byte
	)
	if err := row.Scan(&hash, &version, &doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	var u model.User
	if err := json.Unmarshal(doc, &u); err != nil {
		return nil, fmt.Errorf("decode user document: %w", err)
	}
	u.Password = hash
	u.Version = version
	u.Normalize()
	return &u, nil
}

// Create inserts a new user row.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) error {
	const q = `
		INSERT INTO users (id, email, password_hash, version, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	u.Normalize()
	u.Version = 1
	doc, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user document: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, q, u.ID, u.Email, u.Password, u.Version, string(doc), u.CreatedAt, u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

// FindByID fetches a single user by its ID.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT password_hash, version, doc FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// FindByEmail fetches a single user by email.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT password_hash, version, doc FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

// FindByIDs fetches every user whose id is in ids.
func (r *UserPostgres) FindByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	in, args := inList(ids)
	rows, err := r.db.QueryContext(ctx, `SELECT password_hash, version, doc FROM users WHERE id IN (`+in+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

// List returns users matching the filter using LIMIT/OFFSET pagination and a total count.
func (r *UserPostgres) List(ctx context.Context, lq repository.ListQuery) (*repository.PageResult[model.User], error) {
	where, args, err := buildWhere(userColumns, lq.Filter)
	if err != nil {
		return nil, err
	}
	order, err := buildOrderBy(userColumns, lq.Sort)
	if err != nil {
		return nil, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`SELECT password_hash, version, doc FROM users%s%s LIMIT $%d OFFSET $%d`,
		where, order, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, q, append(args, lq.Limit, lq.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := collectUsers(rows)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.User]{Items: items, Total: total}, nil
}

// Update replaces the user document if the stored version still matches.
func (r *UserPostgres) Update(ctx context.Context, u *model.User) error {
	const q = `
		UPDATE users
		SET email = $1, password_hash = $2, version = version + 1, doc = $3, updated_at = $4
		WHERE id = $5 AND version = $6
	`
	u.Normalize()
	doc, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user document: %w", err)
	}
	res, err := r.db.ExecContext(ctx, q, u.Email, u.Password, string(doc), u.UpdatedAt, u.ID, u.Version)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	if err := r.checkUpdated(ctx, res, u.ID); err != nil {
		return err
	}
	u.Version++
	return nil
}

// Delete removes a user by ID.
func (r *UserPostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserPostgres) checkUpdated(ctx context.Context, res sql.Result, id string) error {
	return checkUpdated(ctx, r.db, res, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id)
}

func collectUsers(rows *sql.Rows) ([]model.User, error) {
	items := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func inList(ids []string) (string, []any) {
	ph := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		ph[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	return strings.Join(ph, ", "), args
}

// checkUpdated turns a zero-row optimistic update into ErrNotFound or
// ErrVersionConflict depending on whether the row still exists.
func checkUpdated(ctx context.Context, db *sql.DB, res sql.Result, existsQuery, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var exists bool
	if err := db.QueryRowContext(ctx, existsQuery, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return repository.ErrNotFound
	}
	return repository.ErrVersionConflict
}
