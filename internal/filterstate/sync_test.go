// internal/filterstate/sync_test.go
package filterstate

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type applyRecorder struct {
	mu     sync.Mutex
	states []State
	ctxs   []context.Context
}

func (r *applyRecorder) apply(ctx context.Context, s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
	r.ctxs = append(r.ctxs, ctx)
}

func (r *applyRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

func (r *applyRecorder) last() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[len(r.states)-1]
}

type urlRecorder struct {
	mu      sync.Mutex
	queries []url.Values
}

func (r *urlRecorder) push(q url.Values) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, q)
}

func (r *urlRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queries)
}

func newTestSync() (*Synchronizer, *applyRecorder, *urlRecorder) {
	applies := &applyRecorder{}
	urls := &urlRecorder{}
	y := NewSynchronizer(applies.apply, urls.push)
	return y, applies, urls
}

func TestSetURLAppliesWithoutRewritingURL(t *testing.T) {
	y, applies, urls := newTestSync()

	y.SetURL(url.Values{"materials": {"wood"}})

	assert.Equal(t, Applied, y.Status())
	require.Equal(t, 1, applies.count())
	assert.Equal(t, []string{"wood"}, applies.last().Materials)
	assert.Equal(t, 0, urls.count(), "the URL is already authoritative on mount")
}

func TestSetURLWithNoFiltersStaysIdle(t *testing.T) {
	y, applies, _ := newTestSync()

	y.SetURL(url.Values{})

	assert.Equal(t, Idle, y.Status())
	assert.Equal(t, 0, applies.count())
}

func TestApplyMirrorsToURLOnlyWhenChanged(t *testing.T) {
	y, applies, urls := newTestSync()

	y.Edit(func(s *State) { s.Materials = []string{"wood"} })
	y.Apply()

	require.Equal(t, 1, applies.count())
	require.Equal(t, 1, urls.count())

	// Re-applying an identical state fetches again but must not push a
	// redundant history entry.
	y.Apply()
	assert.Equal(t, 2, applies.count())
	assert.Equal(t, 1, urls.count())
}

func TestApplyResetsPageUnlessExplicitlyRequested(t *testing.T) {
	y, applies, _ := newTestSync()

	y.SetURL(url.Values{"materials": {"wood"}, "page": {"5"}})
	require.Equal(t, 5, applies.last().Page)

	// A later filter edit drops back to page 1.
	y.Edit(func(s *State) { s.Materials = []string{"wood", "resin"} })
	y.Apply()
	assert.Equal(t, 1, applies.last().Page)

	// An explicit page edit survives its Apply.
	y.Edit(func(s *State) { s.Page = 3 })
	y.Apply()
	assert.Equal(t, 3, applies.last().Page)

	y.Edit(func(s *State) { s.Search = "bowl" })
	y.Apply()
	assert.Equal(t, 1, applies.last().Page)
}

func TestSearchDebouncesBursts(t *testing.T) {
	y, applies, _ := newTestSync()
	y.SetSearchDebounce(20 * time.Millisecond)

	y.SetSearch("b")
	y.SetSearch("bo")
	y.SetSearch("bowl")

	assert.Equal(t, 0, applies.count(), "nothing fires inside the debounce window")

	assert.Eventually(t, func() bool { return applies.count() == 1 },
		500*time.Millisecond, 10*time.Millisecond)
	assert.Equal(t, "bowl", applies.last().Search, "only the last keystroke reaches apply")

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, applies.count(), "earlier timers must be cancelled, not stacked")
}

func TestClearAllResetsAndClearsURL(t *testing.T) {
	y, _, urls := newTestSync()

	y.SetURL(url.Values{"materials": {"wood"}, "q": {"bowl"}})
	y.ClearAll()

	assert.Equal(t, Idle, y.Status())
	assert.True(t, y.Draft().IsZero())
	_, ok := y.Applied()
	assert.False(t, ok)

	require.Equal(t, 1, urls.count())
	assert.Empty(t, urls.queries[0].Encode(), "clear-all empties the query string")
}

func TestClearAllWithoutQueryDoesNotTouchURL(t *testing.T) {
	y, _, urls := newTestSync()

	y.ClearAll()
	assert.Equal(t, 0, urls.count())
}

func TestApplyCancelsSupersededContext(t *testing.T) {
	y, applies, _ := newTestSync()

	y.Edit(func(s *State) { s.Materials = []string{"wood"} })
	y.Apply()

	y.Edit(func(s *State) { s.Materials = []string{"resin"} })
	y.Apply()

	require.Equal(t, 2, applies.count())

	select {
	case <-applies.ctxs[0].Done():
	default:
		t.Fatal("first apply context must be cancelled by the second apply")
	}

	select {
	case <-applies.ctxs[1].Done():
		t.Fatal("latest apply context must stay live")
	default:
	}
}

func TestApplyReDerivesOccasions(t *testing.T) {
	y, applies, _ := newTestSync()

	y.Edit(func(s *State) { s.Category = "wedding gifts" })
	y.Apply()

	assert.Equal(t, []string{"wedding", "anniversary"}, applies.last().DerivedOccasions)
}
