package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/userbrowser/internal/bookmark"
	"github.com/MrSnakeDoc/userbrowser/internal/domain"
)

func TestNewStore(t *testing.T) {
	s := NewStore()
	if s == nil {
		t.Fatal("NewStore() returned nil")
	}
	all, err := s.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 0 {
		t.Errorf("NewStore() should start empty, got %v", len(all))
	}
}

func TestUpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	if err := s.Upsert(ctx, domain.Bookmark{UserID: "u1", Name: "Old Name"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := s.Upsert(ctx, domain.Bookmark{UserID: "u1", Name: "New Name"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}
	b, ok := s.Get("u1")
	if !ok || b.Name != "New Name" {
		t.Errorf("Get(u1) = %+v, %v", b, ok)
	}
}

func TestDeleteByIDMissingIsNoop(t *testing.T) {
	s := NewStore()
	if err := s.DeleteByID(context.Background(), "nope"); err != nil {
		t.Errorf("DeleteByID() on missing id error = %v", err)
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewStore()
	_, err := s.ListAll(ctx)

	var se *domain.StorageError
	if !errors.As(err, &se) {
		t.Fatalf("ListAll() with canceled ctx error = %v, want StorageError", err)
	}
}

func TestToggleAgainstStore(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u := domain.User{ID: "u2", Name: "Ada Lovelace"}
	fixed := func() time.Time { return time.Unix(100, 0) }

	on, err := bookmark.Toggle(ctx, s, u, fixed)
	if err != nil || !on {
		t.Fatalf("Toggle() = %v, %v; want true, nil", on, err)
	}
	b, ok := s.Get("u2")
	if !ok || b.Name != "Ada Lovelace" || !b.CreatedAt.Equal(fixed()) {
		t.Errorf("stored bookmark = %+v, %v", b, ok)
	}

	off, err := bookmark.Toggle(ctx, s, u.WithBookmarked(true), fixed)
	if err != nil || off {
		t.Fatalf("Toggle() = %v, %v; want false, nil", off, err)
	}
	if s.Count() != 0 {
		t.Errorf("Count() = %d after unbookmark, want 0", s.Count())
	}
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Upsert(ctx, domain.Bookmark{UserID: "shared"})
		}()
		go func() {
			defer wg.Done()
			_, _ = s.ListAll(ctx)
		}()
	}
	wg.Wait()

	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}
}
