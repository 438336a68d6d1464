package post

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediafeed/service/internal/user"
)

// ErrBadQuery is returned when a statement cannot be built.
var ErrBadQuery = errors.New("bad query")

var sqBuilder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var postColumns = []string{"id", "user_id", "caption", "url", "file_type", "file_name", "created_at"}

//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=mocks/mock.go -package=mocks

// Repository persists posts.
type Repository interface {
	// Create inserts p and fills its generated ID and CreatedAt.
	Create(ctx context.Context, p *Post) error
	// ListAll returns every post, newest first.
	ListAll(ctx context.Context) ([]Post, error)
	// GetByID returns ErrNotFound when no post has the id.
	GetByID(ctx context.Context, id string) (*Post, error)
	// Delete returns ErrNotFound when no row was removed.
	Delete(ctx context.Context, id string) error
}

// Directory lists the identities known to the identity provider.
type Directory interface {
	List(ctx context.Context) ([]user.User, error)
}

// PgxRepository implements Repository on PostgreSQL.
type PgxRepository struct {
	db *pgxpool.Pool
}

var _ Repository = (*PgxRepository)(nil)

// NewRepository creates a PgxRepository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *PgxRepository {
	return &PgxRepository{db: db}
}

func insertQuery(p *Post) sq.InsertBuilder {
	return sqBuilder.
		Insert("posts").
		Columns("user_id", "caption", "url", "file_type", "file_name").
		Values(p.UserID, p.Caption, p.URL, string(p.FileType), p.FileName).
		Suffix("RETURNING id, created_at")
}

func listQuery() sq.SelectBuilder {
	return sqBuilder.
		Select(postColumns...).
		From("posts").
		OrderBy("created_at DESC")
}

func getQuery(id string) sq.SelectBuilder {
	return sqBuilder.
		Select(postColumns...).
		From("posts").
		Where(sq.Eq{"id": id})
}

func deleteQuery(id string) sq.DeleteBuilder {
	return sqBuilder.
		Delete("posts").
		Where(sq.Eq{"id": id})
}

func scanPost(row pgx.Row) (Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.UserID, &p.Caption, &p.URL, &p.FileType, &p.FileName, &p.CreatedAt)
	return p, err
}

// Create inserts a post.
func (r *PgxRepository) Create(ctx context.Context, p *Post) error {
	query, args, err := insertQuery(p).ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadQuery, err)
	}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&p.ID, &p.CreatedAt); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// ListAll returns every post ordered by created_at descending.
func (r *PgxRepository) ListAll(ctx context.Context) ([]Post, error) {
	query, args, err := listQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadQuery, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	posts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Post, error) {
		return scanPost(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan posts: %w", err)
	}
	return posts, nil
}

// GetByID fetches a post by its UUID.
func (r *PgxRepository) GetByID(ctx context.Context, id string) (*Post, error) {
	query, args, err := getQuery(id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadQuery, err)
	}

	p, err := scanPost(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post by id: %w", err)
	}
	return &p, nil
}

// Delete removes a post row. A concurrent delete that got there first
// surfaces as ErrNotFound.
func (r *PgxRepository) Delete(ctx context.Context, id string) error {
	query, args, err := deleteQuery(id).ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadQuery, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
