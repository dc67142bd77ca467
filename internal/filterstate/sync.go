// internal/filterstate/sync.go
package filterstate

import (
	"context"
	"net/url"
	"sync"
	"time"
)

// Status is the synchronizer's state: Idle means no filters are applied
// and the product query is disabled; Applied means a filter object is set
// and has triggered a fetch.
type Status int

const (
	Idle Status = iota
	Applied
)

const DefaultSearchDebounce = 400 * time.Millisecond

// Synchronizer keeps three parties consistent: the filter widgets (the
// draft state), the address bar (the URL query string) and the product
// fetch trigger (the apply callback).
//
// Rules, in order of authority:
//   - SetURL parses the address bar into the applied state and fires the
//     fetch without touching the URL (the URL is already authoritative).
//   - Edit mutates the draft only.
//   - Apply normalizes the page, fires the fetch and mirrors the state
//     into the URL, but only when the canonical query string actually
//     changed.
//   - SetSearch debounces before taking the same apply path.
//
// Each apply cancels the context handed to the previous one, so a stale
// fetch can never overwrite newer results.
type Synchronizer struct {
	mu            sync.Mutex
	draft         State
	applied       *State
	status        Status
	currentQuery  string
	pageRequested bool

	apply    func(ctx context.Context, s State)
	pushURL  func(query url.Values)
	debounce time.Duration
	timer    *time.Timer
	cancel   context.CancelFunc
}

func NewSynchronizer(apply func(ctx context.Context, s State), pushURL func(query url.Values)) *Synchronizer {
	return &Synchronizer{
		apply:    apply,
		pushURL:  pushURL,
		debounce: DefaultSearchDebounce,
		status:   Idle,
	}
}

// SetSearchDebounce overrides the debounce window (tests shorten it).
func (y *Synchronizer) SetSearchDebounce(d time.Duration) {
	y.mu.Lock()
	defer y.mu.Unlock()
	y.debounce = d
}

func (y *Synchronizer) Status() Status {
	y.mu.Lock()
	defer y.mu.Unlock()
	return y.status
}

// Draft returns the current in-progress filter state.
func (y *Synchronizer) Draft() State {
	y.mu.Lock()
	defer y.mu.Unlock()
	return y.draft
}

// Applied returns the last applied state, if any.
func (y *Synchronizer) Applied() (State, bool) {
	y.mu.Lock()
	defer y.mu.Unlock()
	if y.applied == nil {
		return State{}, false
	}
	return *y.applied, true
}

// SetURL handles mount and back/forward navigation: the query string is
// parsed, becomes both draft and applied state, and triggers a fetch. The
// URL itself is not rewritten.
func (y *Synchronizer) SetURL(query url.Values) {
	y.mu.Lock()
	y.stopTimerLocked()

	state := FromQuery(query)
	y.draft = state
	y.pageRequested = false
	y.currentQuery = state.ToQuery().Encode()

	if state.IsZero() {
		y.applied = nil
		y.status = Idle
		y.cancelInflightLocked()
		y.mu.Unlock()
		return
	}

	y.applied = &state
	y.status = Applied
	ctx := y.nextContextLocked()
	y.mu.Unlock()

	y.apply(ctx, state)
}

// Edit mutates the draft state only; nothing is fetched or mirrored until
// Apply.
func (y *Synchronizer) Edit(fn func(*State)) {
	y.mu.Lock()
	defer y.mu.Unlock()

	before := y.draft.Page
	fn(&y.draft)
	if y.draft.Page != before {
		y.pageRequested = true
	}
}

// Apply flushes the draft: page resets to 1 unless one was explicitly
// requested, the fetch fires, and the URL is updated when it differs.
func (y *Synchronizer) Apply() {
	y.mu.Lock()
	y.stopTimerLocked()

	if !y.pageRequested {
		y.draft.Page = 1
	}
	y.pageRequested = false
	y.draft.deriveOccasions()

	state := y.draft
	y.applied = &state
	y.status = Applied
	ctx := y.nextContextLocked()

	encoded := state.ToQuery().Encode()
	changed := encoded != y.currentQuery
	y.currentQuery = encoded
	y.mu.Unlock()

	y.apply(ctx, state)
	if changed && y.pushURL != nil {
		y.pushURL(state.ToQuery())
	}
}

// SetSearch updates the search text and (re)arms the debounce timer; only
// the last keystroke in a burst reaches Apply.
func (y *Synchronizer) SetSearch(text string) {
	y.mu.Lock()
	y.draft.Search = text
	y.stopTimerLocked()
	y.timer = time.AfterFunc(y.debounce, y.Apply)
	y.mu.Unlock()
}

// ClearAll resets every filter field, disables the query and clears the
// URL query string entirely.
func (y *Synchronizer) ClearAll() {
	y.mu.Lock()
	y.stopTimerLocked()
	y.cancelInflightLocked()

	y.draft = State{Page: 1}
	y.applied = nil
	y.status = Idle
	y.pageRequested = false

	hadQuery := y.currentQuery != ""
	y.currentQuery = ""
	y.mu.Unlock()

	if hadQuery && y.pushURL != nil {
		y.pushURL(url.Values{})
	}
}

// Close stops any pending debounce timer and cancels the in-flight apply.
func (y *Synchronizer) Close() {
	y.mu.Lock()
	defer y.mu.Unlock()
	y.stopTimerLocked()
	y.cancelInflightLocked()
}

func (y *Synchronizer) stopTimerLocked() {
	if y.timer != nil {
		y.timer.Stop()
		y.timer = nil
	}
}

func (y *Synchronizer) cancelInflightLocked() {
	if y.cancel != nil {
		y.cancel()
		y.cancel = nil
	}
}

func (y *Synchronizer) nextContextLocked() context.Context {
	y.cancelInflightLocked()
	ctx, cancel := context.WithCancel(context.Background())
	y.cancel = cancel
	return ctx
}
