package scheduler

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/userbrowser/internal/bookmark"
	"github.com/MrSnakeDoc/userbrowser/internal/logger"
)

// BookmarkSyncer checks on startup that the bookmark store is readable
type BookmarkSyncer struct {
	store  bookmark.Store
	logger logger.Logger
}

// NewBookmarkSyncer creates a new bookmark syncer
func NewBookmarkSyncer(store bookmark.Store, log logger.Logger) *BookmarkSyncer {
	return &BookmarkSyncer{
		store:  store,
		logger: log,
	}
}

// Sync lists the store once and reports how many bookmarks it holds
func (bs *BookmarkSyncer) Sync(ctx context.Context) (int, error) {
	bs.logger.Info("reading bookmarks from store")

	bookmarks, err := bs.store.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read bookmarks: %w", err)
	}

	if len(bookmarks) == 0 {
		bs.logger.Info("no bookmarks found in store")
		return 0, nil
	}

	bs.logger.Info("bookmarks available",
		logger.Int("count", len(bookmarks)))

	return len(bookmarks), nil
}
