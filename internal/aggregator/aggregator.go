// Package aggregator implements the paginated user list and keeps its
// bookmark flags in sync with the bookmark store.
//
// An Aggregator is owned by one browsing session. All methods are safe for
// concurrent use. Feed and store I/O never runs under the state lock; results
// are committed under it and published as snapshots, so subscribers only ever
// observe a state from before or after a mutation.
package aggregator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/userbrowser/internal/bookmark"
	"github.com/MrSnakeDoc/userbrowser/internal/domain"
	"github.com/MrSnakeDoc/userbrowser/internal/logger"
	"github.com/MrSnakeDoc/userbrowser/internal/signal"
)

// ErrClosed is returned by operations on a closed Aggregator.
var ErrClosed = errors.New("aggregator closed")

// staleReadRetries bounds how often a bookmark read overtaken by a toggle is
// repeated.
const staleReadRetries = 3

// Feed fetches one page of users. Page numbers start at 1 and an empty page
// means the feed is exhausted.
type Feed interface {
	FetchPage(ctx context.Context, page int) ([]domain.User, error)
}

// Diagnostic describes a swallowed background failure.
type Diagnostic struct {
	Op  string
	Err error
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.log = l
		}
	}
}

// WithDiagnostics registers fn for bookmark read failures that are otherwise
// only logged. fn runs on the goroutine that hit the failure.
func WithDiagnostics(fn func(Diagnostic)) Option {
	return func(a *Aggregator) { a.diag = fn }
}

// WithClock overrides the bookmark timestamp source
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// Aggregator is the pagination and bookmark synchronization state machine.
type Aggregator struct {
	feed  Feed
	store bookmark.Store
	log   logger.Logger
	diag  func(Diagnostic)
	now   func() time.Time

	mu              sync.Mutex
	state           State
	bookmarkedIDs   domain.IDSet
	initialInFlight bool
	epoch           uint64
	closed          bool

	// bookmarkGen is bumped by every committed toggle. A store read taken
	// under an older generation must not overwrite bookmark state.
	bookmarkGen uint64

	// toggleMu serializes bookmark mutations.
	toggleMu sync.Mutex

	life   context.Context
	cancel context.CancelFunc

	states     *signal.Signal[State]
	bookmarked *signal.Signal[[]domain.User]
}

// New creates an Aggregator with an empty list in loading state.
func New(feed Feed, store bookmark.Store, opts ...Option) *Aggregator {
	life, cancel := context.WithCancel(context.Background())
	a := &Aggregator{
		feed:       feed,
		store:      store,
		log:        logger.Nop(),
		now:        time.Now,
		state:      emptyState(),
		life:       life,
		cancel:     cancel,
		states:     signal.New(emptyState()),
		bookmarked: signal.New([]domain.User{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// LoadInitial fetches page 1 and replaces the list with it. A call made while
// another initial load is in flight does nothing. Feed failures are reported
// through the state, never returned.
func (a *Aggregator) LoadInitial(ctx context.Context) {
	a.loadInitial(ctx, false)
}

// Refresh discards all pagination progress and loads page 1 again. Results
// of load-more calls started before the refresh are dropped.
func (a *Aggregator) Refresh(ctx context.Context) {
	a.loadInitial(ctx, true)
}

func (a *Aggregator) loadInitial(ctx context.Context, reset bool) {
	a.mu.Lock()
	if a.closed || a.initialInFlight {
		a.mu.Unlock()
		return
	}
	a.initialInFlight = true
	a.epoch++
	gen := a.bookmarkGen
	if reset {
		a.state = emptyState()
	} else {
		a.state.Status = StatusLoading
		a.state.Err = ""
		a.state.LoadingMore = false
	}
	a.publishLocked()
	a.mu.Unlock()

	ctx, done := a.bind(ctx)
	defer done()

	users, err := a.feed.FetchPage(ctx, 1)
	if err != nil {
		ne := domain.AsNetworkError("fetch users", 1, err)
		a.mu.Lock()
		defer a.mu.Unlock()
		a.initialInFlight = false
		if a.closed {
			return
		}
		a.log.Warn("initial load failed", logger.Error(ne))
		a.state.Status = StatusError
		a.state.Err = ne.Error()
		a.publishLocked()
		return
	}

	bookmarks, ok := a.readBookmarks(ctx, "load initial")

	a.mu.Lock()
	defer a.mu.Unlock()
	a.initialInFlight = false
	if a.closed {
		return
	}
	if ok && gen == a.bookmarkGen {
		a.bookmarkedIDs = domain.BookmarkIDs(bookmarks)
	}

	items := merge(users, make(domain.IDSet, len(users)), a.bookmarkedIDs)
	a.state = State{
		Status:   StatusSuccess,
		Items:    items,
		NextPage: 2,
		HasMore:  len(items) > 0,
	}
	a.log.Debug("initial page loaded", logger.Int("count", len(items)))
	a.publishLocked()
}

// LoadMore fetches the next page and appends the users not yet listed. It
// does nothing while another load is running, once the feed is exhausted, or
// after Close. A fetch failure keeps the list and sets State.Err; with an
// empty list the status becomes StatusError.
func (a *Aggregator) LoadMore(ctx context.Context) {
	a.mu.Lock()
	if a.closed || a.initialInFlight || !a.state.HasMore || a.state.LoadingMore {
		a.mu.Unlock()
		return
	}
	a.state.LoadingMore = true
	page, epoch := a.state.NextPage, a.epoch
	a.publishLocked()
	a.mu.Unlock()

	ctx, done := a.bind(ctx)
	defer done()

	users, err := a.feed.FetchPage(ctx, page)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || epoch != a.epoch {
		a.log.Debug("dropping stale page", logger.Int("page", page))
		return
	}
	a.state.LoadingMore = false

	if err != nil {
		ne := domain.AsNetworkError("fetch users", page, err)
		a.log.Warn("load more failed", logger.Int("page", page), logger.Error(ne))
		// Without items there is nothing to keep showing.
		if len(a.state.Items) == 0 {
			a.state.Status = StatusError
		} else {
			a.state.Status = StatusSuccess
		}
		a.state.Err = ne.Error()
		a.publishLocked()
		return
	}

	a.state.Status = StatusSuccess
	a.state.Err = ""
	fresh := merge(users, idsOf(a.state.Items), a.bookmarkedIDs)
	if len(fresh) == 0 {
		a.state.HasMore = false
		a.log.Debug("feed exhausted", logger.Int("page", page))
	} else {
		a.state.Items = append(a.state.Items, fresh...)
		a.state.NextPage++
	}
	a.publishLocked()
}

// ToggleBookmarkByID toggles the bookmark of a listed user.
func (a *Aggregator) ToggleBookmarkByID(ctx context.Context, id string) (domain.User, error) {
	a.mu.Lock()
	u, ok := a.state.Find(id)
	a.mu.Unlock()
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return a.ToggleBookmark(ctx, u)
}

// ToggleBookmark flips the bookmark of u in the store, then updates the flag
// of the matching list item and reloads the bookmarked view. The list flag
// changes only after the store confirmed. If u is listed, the list's flag is
// taken as the current state. Failures are *domain.StorageError.
func (a *Aggregator) ToggleBookmark(ctx context.Context, u domain.User) (domain.User, error) {
	a.toggleMu.Lock()
	defer a.toggleMu.Unlock()

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return u, ErrClosed
	}
	if cur, ok := a.state.Find(u.ID); ok {
		u.Bookmarked = cur.Bookmarked
	}
	a.mu.Unlock()

	opCtx, done := a.bind(ctx)
	defer done()

	flag, err := bookmark.Toggle(opCtx, a.store, u, a.now)
	if err != nil {
		a.log.Warn("bookmark toggle failed", logger.String("user_id", u.ID), logger.Error(err))
		return u, err
	}
	u.Bookmarked = flag

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return u, nil
	}
	a.bookmarkGen++
	if a.bookmarkedIDs == nil {
		a.bookmarkedIDs = domain.NewIDSet()
	}
	if flag {
		a.bookmarkedIDs[u.ID] = struct{}{}
	} else {
		delete(a.bookmarkedIDs, u.ID)
	}
	if i := indexOf(a.state.Items, u.ID); i >= 0 && a.state.Items[i].Bookmarked != flag {
		a.state.Items[i].Bookmarked = flag
		a.publishLocked()
	}
	a.mu.Unlock()

	a.log.Debug("bookmark toggled", logger.String("user_id", u.ID), logger.Bool("bookmarked", flag))
	a.LoadBookmarked(ctx)
	return u, nil
}

// ReconcileBookmarkFlags rewrites list flags from the store without
// reordering. A state is published only if some flag changed.
func (a *Aggregator) ReconcileBookmarkFlags(ctx context.Context) {
	ctx, done := a.bind(ctx)
	defer done()

	a.commitBookmarks(ctx, "reconcile flags", func(bookmarks []domain.Bookmark) {
		a.bookmarkedIDs = domain.BookmarkIDs(bookmarks)

		changed := 0
		for i := range a.state.Items {
			want := a.bookmarkedIDs.Has(a.state.Items[i].ID)
			if a.state.Items[i].Bookmarked != want {
				a.state.Items[i].Bookmarked = want
				changed++
			}
		}
		if changed > 0 {
			a.log.Debug("bookmark flags reconciled", logger.Int("count", changed))
			a.publishLocked()
		}
	})
}

// LoadBookmarked re-reads the store and publishes the bookmarked view,
// ordered by bookmark time.
func (a *Aggregator) LoadBookmarked(ctx context.Context) {
	ctx, done := a.bind(ctx)
	defer done()

	a.commitBookmarks(ctx, "load bookmarked", func(bookmarks []domain.Bookmark) {
		a.bookmarkedIDs = domain.BookmarkIDs(bookmarks)
		a.bookmarked.Publish(domain.BookmarkedUsers(bookmarks))
	})
}

// State returns the current snapshot.
func (a *Aggregator) State() State { return a.states.Value() }

// Subscribe streams list snapshots, starting with the current one.
func (a *Aggregator) Subscribe() (<-chan State, func()) { return a.states.Subscribe() }

// Bookmarked returns the current bookmarked view.
func (a *Aggregator) Bookmarked() []domain.User { return a.bookmarked.Value() }

// SubscribeBookmarked streams the bookmarked view.
func (a *Aggregator) SubscribeBookmarked() (<-chan []domain.User, func()) {
	return a.bookmarked.Subscribe()
}

// Lookup finds a user in the list, then in the bookmarked view.
func (a *Aggregator) Lookup(id string) (domain.User, bool) {
	if u, ok := a.State().Find(id); ok {
		return u, true
	}
	for _, u := range a.Bookmarked() {
		if u.ID == id {
			return u, true
		}
	}
	return domain.User{}, false
}

// Close cancels in-flight I/O and ends every subscription. Results that
// settle afterwards are dropped. Close is idempotent.
func (a *Aggregator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.closed = true
	a.cancel()
	a.states.Close()
	a.bookmarked.Close()
}

// Closed reports whether Close was called.
func (a *Aggregator) Closed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

// readBookmarks lists the store. Failures are logged, reported to the
// diagnostic hook and swallowed; ok is false in that case.
func (a *Aggregator) readBookmarks(ctx context.Context, op string) (bookmarks []domain.Bookmark, ok bool) {
	bookmarks, err := a.store.ListAll(ctx)
	if err == nil {
		return bookmarks, true
	}
	if ctx.Err() != nil && a.Closed() {
		return nil, false
	}
	se := domain.AsStorageError("list bookmarks", err)
	a.log.Warn("bookmark read failed", logger.String("op", op), logger.Error(se))
	if a.diag != nil {
		a.diag(Diagnostic{Op: op, Err: se})
	}
	return nil, false
}

// commitBookmarks reads the store and runs commit under a.mu with the
// result. A read overtaken by a toggle is discarded and taken again, at most
// staleReadRetries times; the toggle has already updated the cached set.
func (a *Aggregator) commitBookmarks(ctx context.Context, op string, commit func([]domain.Bookmark)) {
	for attempt := 0; attempt < staleReadRetries; attempt++ {
		a.mu.Lock()
		gen := a.bookmarkGen
		a.mu.Unlock()

		bookmarks, ok := a.readBookmarks(ctx, op)
		if !ok {
			return
		}

		a.mu.Lock()
		if a.closed {
			a.mu.Unlock()
			return
		}
		if gen == a.bookmarkGen {
			commit(bookmarks)
			a.mu.Unlock()
			return
		}
		a.mu.Unlock()
		a.log.Debug("bookmark read overtaken by a toggle", logger.String("op", op))
	}
}

// bind derives a context canceled by either ctx or Close.
func (a *Aggregator) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(a.life, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// publishLocked publishes a copy of the state. Callers hold a.mu.
func (a *Aggregator) publishLocked() {
	a.states.Publish(a.state.clone())
}
