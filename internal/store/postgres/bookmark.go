package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrSnakeDoc/userbrowser/internal/bookmark"
	"github.com/MrSnakeDoc/userbrowser/internal/domain"
)

var _ bookmark.Store = (*BookmarkRepository)(nil)

// querier is the subset of pgxpool.Pool the repository needs.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type BookmarkRepository struct {
	db querier
}

func NewBookmarkRepository(db *Connection) *BookmarkRepository {
	return &BookmarkRepository{
		db: db,
	}
}

func (r *BookmarkRepository) ListAll(ctx context.Context) ([]domain.Bookmark, error) {
	const query = `SELECT user_id, name, email, phone, picture, created_at FROM bookmarks`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, &domain.StorageError{Op: "list bookmarks", Err: err}
	}
	defer rows.Close()

	bookmarks := make([]domain.Bookmark, 0)
	for rows.Next() {
		var b domain.Bookmark
		if err := rows.Scan(&b.UserID, &b.Name, &b.Email, &b.Phone, &b.Picture, &b.CreatedAt); err != nil {
			return nil, &domain.StorageError{Op: "list bookmarks", Err: err}
		}
		bookmarks = append(bookmarks, b)
	}

	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "list bookmarks", Err: err}
	}

	return bookmarks, nil
}

func (r *BookmarkRepository) Upsert(ctx context.Context, b domain.Bookmark) error {
	const query = `
		INSERT INTO bookmarks (user_id, name, email, phone, picture, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET name = EXCLUDED.name,
		    email = EXCLUDED.email,
		    phone = EXCLUDED.phone,
		    picture = EXCLUDED.picture,
		    created_at = EXCLUDED.created_at`

	if _, err := r.db.Exec(ctx, query, b.UserID, b.Name, b.Email, b.Phone, b.Picture, b.CreatedAt); err != nil {
		return &domain.StorageError{Op: "upsert bookmark", Err: err}
	}
	return nil
}

func (r *BookmarkRepository) DeleteByID(ctx context.Context, id string) error {
	const query = `DELETE FROM bookmarks WHERE user_id = $1`

	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return &domain.StorageError{Op: "delete bookmark", Err: err}
	}
	return nil
}
