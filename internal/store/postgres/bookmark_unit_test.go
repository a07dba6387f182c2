package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/userbrowser/internal/domain"
)

type fakeQuerier struct {
	execErr  error
	queryErr error
	rows     *fakeRows
	lastSQL  string
	lastArgs []any
}

func (q *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.lastSQL, q.lastArgs = sql, args
	return pgconn.CommandTag{}, q.execErr
}

func (q *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.lastSQL, q.lastArgs = sql, args
	if q.queryErr != nil {
		return nil, q.queryErr
	}
	return q.rows, nil
}

type fakeRows struct {
	data   []domain.Bookmark
	pos    int
	err    error
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	b := r.data[r.pos-1]
	*dest[0].(*string) = b.UserID
	*dest[1].(*string) = b.Name
	*dest[2].(*string) = b.Email
	*dest[3].(*string) = b.Phone
	*dest[4].(*string) = b.Picture
	*dest[5].(*time.Time) = b.CreatedAt
	return nil
}

func TestNewBookmarkRepository(t *testing.T) {
	db := &Connection{}
	repo := NewBookmarkRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestBookmarkRepository_ListAll(t *testing.T) {
	now := time.Now()
	rows := &fakeRows{data: []domain.Bookmark{
		{UserID: "u1", Name: "One", CreatedAt: now},
		{UserID: "u2", Name: "Two", CreatedAt: now},
	}}
	repo := &BookmarkRepository{db: &fakeQuerier{rows: rows}}

	got, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "u2", got[1].UserID)
	assert.True(t, rows.closed, "rows must be closed")
}

func TestBookmarkRepository_ListAllRowsError(t *testing.T) {
	rows := &fakeRows{err: errors.New("conn reset")}
	repo := &BookmarkRepository{db: &fakeQuerier{rows: rows}}

	_, err := repo.ListAll(context.Background())
	var se *domain.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "list bookmarks", se.Op)
}

func TestBookmarkRepository_Errors(t *testing.T) {
	boom := errors.New("boom")
	repo := &BookmarkRepository{db: &fakeQuerier{execErr: boom, queryErr: boom}}
	ctx := context.Background()

	_, err := repo.ListAll(ctx)
	assert.ErrorIs(t, err, boom)

	err = repo.Upsert(ctx, domain.Bookmark{UserID: "u1"})
	var se *domain.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "upsert bookmark", se.Op)

	err = repo.DeleteByID(ctx, "u1")
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "delete bookmark", se.Op)
}

func TestBookmarkRepository_UpsertArgs(t *testing.T) {
	q := &fakeQuerier{}
	repo := &BookmarkRepository{db: q}
	created := time.Unix(42, 0)

	err := repo.Upsert(context.Background(), domain.Bookmark{
		UserID: "u9", Name: "Nine", Email: "n@x", Phone: "9", Picture: "p", CreatedAt: created,
	})
	require.NoError(t, err)
	assert.Contains(t, q.lastSQL, "ON CONFLICT (user_id)")
	assert.Equal(t, []any{"u9", "Nine", "n@x", "9", "p", created}, q.lastArgs)
}
