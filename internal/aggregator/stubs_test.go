package aggregator

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/MrSnakeDoc/userbrowser/internal/domain"
	"github.com/MrSnakeDoc/userbrowser/internal/store/memory"
)

// stubFeed serves seeded pages and counts calls per page. A page with a gate
// blocks until the gate is closed or the context is canceled.
type stubFeed struct {
	mu      sync.Mutex
	pages   map[int][]domain.User
	errs    map[int]error
	gates   map[int]chan struct{}
	calls   map[int]int
	entered chan int
}

func newStubFeed() *stubFeed {
	return &stubFeed{
		pages:   map[int][]domain.User{},
		errs:    map[int]error{},
		gates:   map[int]chan struct{}{},
		calls:   map[int]int{},
		entered: make(chan int, 64),
	}
}

func (f *stubFeed) seed(page int, ids ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, domain.User{ID: id, Name: "user " + id, Email: id + "@example.com"})
	}
	f.pages[page] = users
	delete(f.errs, page)
}

func (f *stubFeed) fail(page int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[page] = err
}

func (f *stubFeed) gate(page int) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := make(chan struct{})
	f.gates[page] = g
	return g
}

func (f *stubFeed) callCount(page int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[page]
}

func (f *stubFeed) FetchPage(ctx context.Context, page int) ([]domain.User, error) {
	f.mu.Lock()
	f.calls[page]++
	g := f.gates[page]
	f.mu.Unlock()

	f.entered <- page
	if g != nil {
		select {
		case <-g:
		case <-ctx.Done():
			return nil, &domain.NetworkError{Op: "fetch users", Page: page, Err: ctx.Err()}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[page]; err != nil {
		return nil, err
	}
	return slices.Clone(f.pages[page]), nil
}

var errBoom = errors.New("boom")

// failingStore wraps the memory store with switchable failures.
type failingStore struct {
	*memory.Store

	mu        sync.Mutex
	failList  bool
	failWrite bool

	// listGate, when set, holds the next ListAll after it read the store.
	listGate    chan struct{}
	listEntered chan struct{}
}

func newFailingStore() *failingStore {
	return &failingStore{Store: memory.NewStore()}
}

func (s *failingStore) setFailList(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failList = v
}

func (s *failingStore) setFailWrite(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrite = v
}

// gateList makes the next ListAll block after taking its snapshot. entered
// is closed once the snapshot is taken; closing release lets it return.
func (s *failingStore) gateList() (entered <-chan struct{}, release chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listGate = make(chan struct{})
	s.listEntered = make(chan struct{})
	return s.listEntered, s.listGate
}

func (s *failingStore) ListAll(ctx context.Context) ([]domain.Bookmark, error) {
	s.mu.Lock()
	fail := s.failList
	gate, entered := s.listGate, s.listEntered
	s.listGate, s.listEntered = nil, nil
	s.mu.Unlock()
	if fail {
		return nil, &domain.StorageError{Op: "list bookmarks", Err: errBoom}
	}

	bookmarks, err := s.Store.ListAll(ctx)
	if gate != nil {
		close(entered)
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, &domain.StorageError{Op: "list bookmarks", Err: ctx.Err()}
		}
	}
	return bookmarks, err
}

func (s *failingStore) Upsert(ctx context.Context, b domain.Bookmark) error {
	s.mu.Lock()
	fail := s.failWrite
	s.mu.Unlock()
	if fail {
		return &domain.StorageError{Op: "upsert bookmark", Err: errBoom}
	}
	return s.Store.Upsert(ctx, b)
}

func (s *failingStore) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	fail := s.failWrite
	s.mu.Unlock()
	if fail {
		return &domain.StorageError{Op: "delete bookmark", Err: errBoom}
	}
	return s.Store.DeleteByID(ctx, id)
}

// tickClock returns strictly increasing times.
func tickClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func ids(users []domain.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}
