package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/userbrowser/internal/domain"
)

// Upsert stores a bookmark snapshot and indexes its user ID.
// Both writes go through one MULTI/EXEC so the index never points at a
// half-written entry.
func (s *Store) Upsert(ctx context.Context, b domain.Bookmark) error {
	data, err := json.Marshal(b)
	if err != nil {
		return &domain.StorageError{Op: "upsert bookmark", Err: fmt.Errorf("failed to marshal bookmark: %w", err)}
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, BookmarkKey(b.UserID), data, 0)
	pipe.SAdd(ctx, AllBookmarksKey(), b.UserID)

	if _, err := pipe.Exec(ctx); err != nil {
		return &domain.StorageError{Op: "upsert bookmark", Err: fmt.Errorf("failed to save bookmark: %w", err)}
	}

	return nil
}

// Get retrieves a bookmark by user ID
func (s *Store) Get(ctx context.Context, id string) (domain.Bookmark, error) {
	data, err := s.client.Get(ctx, BookmarkKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Bookmark{}, &domain.StorageError{Op: "get bookmark", Err: fmt.Errorf("bookmark not found: %s", id)}
		}
		return domain.Bookmark{}, &domain.StorageError{Op: "get bookmark", Err: fmt.Errorf("failed to get bookmark: %w", err)}
	}

	var b domain.Bookmark
	if err := json.Unmarshal(data, &b); err != nil {
		return domain.Bookmark{}, &domain.StorageError{Op: "get bookmark", Err: fmt.Errorf("failed to unmarshal bookmark: %w", err)}
	}

	return b, nil
}

// ListAll retrieves all bookmarks from Redis
func (s *Store) ListAll(ctx context.Context) ([]domain.Bookmark, error) {
	ids, err := s.client.SMembers(ctx, AllBookmarksKey()).Result()
	if err != nil {
		return nil, &domain.StorageError{Op: "list bookmarks", Err: fmt.Errorf("failed to get bookmark IDs: %w", err)}
	}

	if len(ids) == 0 {
		return []domain.Bookmark{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = BookmarkKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, &domain.StorageError{Op: "list bookmarks", Err: fmt.Errorf("failed to get bookmarks: %w", err)}
	}

	bookmarks := make([]domain.Bookmark, 0, len(values))
	for _, v := range values {
		// Skip index entries whose value vanished or is unreadable
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var b domain.Bookmark
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			continue
		}
		bookmarks = append(bookmarks, b)
	}

	return bookmarks, nil
}

// DeleteByID removes a bookmark and its index entry. Missing IDs are a no-op.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, BookmarkKey(id))
	pipe.SRem(ctx, AllBookmarksKey(), id)

	if _, err := pipe.Exec(ctx); err != nil {
		return &domain.StorageError{Op: "delete bookmark", Err: fmt.Errorf("failed to delete bookmark: %w", err)}
	}

	return nil
}
