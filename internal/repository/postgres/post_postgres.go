package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"linkedapi/internal/model"
	"linkedapi/internal/repository"
)

// PostPostgres stores posts, comments and likes included, as JSONB documents.
type PostPostgres struct {
	db *sql.DB
}

// NewPostPostgres creates a new PostPostgres repository.
func NewPostPostgres(db *sql.DB) *PostPostgres {
	return &PostPostgres{db: db}
}

var _ repository.PostRepository = (*PostPostgres)(nil)

var postColumns = columns{
	"_id":       "id",
	"user":      "user_id",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

func scanPost(row rowScanner) (*model.Post, error) {
	var (
		version int64
		doc     []byte
	)
	if err := row.Scan(&version, &doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	var p model.Post
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("decode post document: %w", err)
	}
	p.Version = version
	p.Normalize()
	return &p, nil
}

// Create inserts a new post row.
func (r *PostPostgres) Create(ctx context.Context, p *model.Post) error {
	const q = `
		INSERT INTO posts (id, user_id, version, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	p.Normalize()
	p.Version = 1
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode post document: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q, p.ID, p.User, p.Version, string(doc), p.CreatedAt, p.UpdatedAt)
	return err
}

// FindByID fetches a single post by its ID.
func (r *PostPostgres) FindByID(ctx context.Context, id string) (*model.Post, error) {
	const q = `SELECT version, doc FROM posts WHERE id = $1`
	return scanPost(r.db.QueryRowContext(ctx, q, id))
}

// List returns posts matching the filter using LIMIT/OFFSET pagination and a total count.
func (r *PostPostgres) List(ctx context.Context, lq repository.ListQuery) (*repository.PageResult[model.Post], error) {
	where, args, err := buildWhere(postColumns, lq.Filter)
	if err != nil {
		return nil, err
	}
	order, err := buildOrderBy(postColumns, lq.Sort)
	if err != nil {
		return nil, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`SELECT version, doc FROM posts%s%s LIMIT $%d OFFSET $%d`,
		where, order, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, q, append(args, lq.Limit, lq.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Post]{Items: items, Total: total}, nil
}

// Update replaces the post document if the stored version still matches.
func (r *PostPostgres) Update(ctx context.Context, p *model.Post) error {
	const q = `
		UPDATE posts
		SET version = version + 1, doc = $1, updated_at = $2
		WHERE id = $3 AND version = $4
	`
	p.Normalize()
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode post document: %w", err)
	}
	res, err := r.db.ExecContext(ctx, q, string(doc), p.UpdatedAt, p.ID, p.Version)
	if err != nil {
		return err
	}
	if err := checkUpdated(ctx, r.db, res, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, p.ID); err != nil {
		return err
	}
	p.Version++
	return nil
}

// Delete removes a post by ID.
func (r *PostPostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
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
