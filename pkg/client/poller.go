package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// State is the poller's position in the search lifecycle.
type State int

const (
	StateIdle State = iota
	StateSearching
	StateProgress
	StateResults
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StateProgress:
		return "progress"
	case StateResults:
		return "results"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Aggregate statuses as reported by the backend.
const (
	statusCompleted = "COMPLETED"
	statusFailed    = "FAILED"
)

const (
	// DefaultInterval is the delay between status polls.
	DefaultInterval = 3 * time.Second
	// DefaultMaxPolls bounds how many status checks a single search may
	// consume before the poller gives up.
	DefaultMaxPolls = 100
)

// ErrMaxPollsExceeded is returned when a search stays non-terminal past
// the poll budget.
var ErrMaxPollsExceeded = errors.New("search did not finish within the poll budget")

// Poller drives one search at a time through submit, poll and fetch.
// It is safe to inspect from other goroutines while Run is in flight.
type Poller struct {
	client   *Client
	interval time.Duration
	maxPolls int
	onState  func(State, Progress)

	mu       sync.Mutex
	state    State
	searchID string
	progress Progress
	results  map[string][]json.RawMessage
}

// PollerOption customizes a Poller.
type PollerOption func(*Poller)

// WithInterval overrides the delay between status polls.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) { p.interval = d }
}

// WithMaxPolls overrides the status poll budget.
func WithMaxPolls(n int) PollerOption {
	return func(p *Poller) { p.maxPolls = n }
}

// WithStateHandler registers a callback fired on every state or
// progress change, from the Run goroutine.
func WithStateHandler(fn func(State, Progress)) PollerOption {
	return func(p *Poller) { p.onState = fn }
}

// NewPoller creates a poller over the given client.
func NewPoller(c *Client, opts ...PollerOption) *Poller {
	p := &Poller{
		client:   c,
		interval: DefaultInterval,
		maxPolls: DefaultMaxPolls,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the poller's current state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SearchID returns the id of the search in flight, if any.
func (p *Poller) SearchID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.searchID
}

// Results returns the currently displayed results.
func (p *Poller) Results() map[string][]json.RawMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.results
}

// Reset returns the poller to idle and clears any held search.
func (p *Poller) Reset() {
	p.mu.Lock()
	p.searchID = ""
	p.progress = Progress{}
	p.results = nil
	p.mu.Unlock()
	p.setState(StateIdle)
}

// Run submits a search and polls it to a terminal state. Platforms
// that answered synchronously are displayed immediately; the rest fill
// in when the backend reports completion, merged so a platform's fresh
// rows replace its displayed ones only when non-empty. Run returns on
// completion, failure, context cancellation, or when the poll budget
// runs out.
func (p *Poller) Run(ctx context.Context, keyword string, maxItems int) (map[string][]json.RawMessage, error) {
	p.Reset()
	p.setState(StateSearching)

	start, err := p.client.StartSearch(ctx, keyword, maxItems)
	if err != nil {
		p.setState(StateError)
		return nil, err
	}

	p.mu.Lock()
	p.searchID = start.SearchID
	p.mu.Unlock()

	sync := start.SyncData()
	if len(sync) > 0 {
		p.mu.Lock()
		p.results = sync
		p.mu.Unlock()
		p.setState(StateResults)
	} else {
		p.setState(StateProgress)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for polls := 0; polls < p.maxPolls; polls++ {
		select {
		case <-ctx.Done():
			p.setState(StateError)
			return p.Results(), ctx.Err()
		case <-ticker.C:
		}

		status, err := p.client.Status(ctx, start.SearchID)
		if err != nil {
			p.setState(StateError)
			return p.Results(), err
		}

		p.mu.Lock()
		p.progress = status.Progress
		p.mu.Unlock()

		switch status.Status {
		case statusCompleted:
			return p.finish(ctx, start.SearchID)
		case statusFailed:
			// Whatever arrived synchronously stays displayed, but the
			// failure itself must not be masked by it.
			p.setState(StateError)
			return p.Results(), fmt.Errorf("search %s failed", start.SearchID)
		default:
			if p.State() != StateResults {
				p.setState(StateProgress)
			} else {
				p.notify()
			}
		}
	}

	p.setState(StateError)
	return p.Results(), ErrMaxPollsExceeded
}

// finish fetches the final results and merges them over what is
// displayed.
func (p *Poller) finish(ctx context.Context, searchID string) (map[string][]json.RawMessage, error) {
	final, err := p.client.Results(ctx, searchID)
	if err != nil {
		p.setState(StateError)
		return p.Results(), err
	}

	p.mu.Lock()
	p.results = MergeResults(p.results, final.Results)
	merged := p.results
	p.mu.Unlock()

	p.setState(StateResults)
	return merged, nil
}

// MergeResults applies the display merge policy: per platform a
// non-empty fresh set replaces the held one, an empty fresh set leaves
// the held rows in place.
func MergeResults(held, fresh map[string][]json.RawMessage) map[string][]json.RawMessage {
	merged := make(map[string][]json.RawMessage)
	for platform, items := range held {
		merged[platform] = items
	}
	for platform, items := range fresh {
		if len(items) > 0 {
			merged[platform] = items
		}
	}
	return merged
}

func (p *Poller) setState(next State) {
	p.mu.Lock()
	p.state = next
	p.mu.Unlock()
	p.notify()
}

func (p *Poller) notify() {
	if p.onState == nil {
		return
	}
	p.mu.Lock()
	state, progress := p.state, p.progress
	p.mu.Unlock()
	p.onState(state, progress)
}
