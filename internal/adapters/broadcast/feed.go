// Package broadcast implements the live posture feed: a bounded
// recent-history ring buffer plus best-effort fan-out to subscribers.
//
// Delivery is fire-and-forget. A subscriber whose channel is full is
// dropped and its channel closed; publish never blocks on a slow
// consumer and never fails the caller.
package broadcast

import (
	"sync"

	"github.com/google/uuid"
	"github.com/okian/upright/internal/domain/model"
	"github.com/okian/upright/pkg/metrics"
)

// Default feed configuration constants.
const (
	defaultHistorySize      = 20
	defaultReplayCount      = 5
	defaultSubscriberBuffer = 16
)

// Subscription is a live attachment to the feed. Replay holds the most
// recent buffered events at subscribe time, oldest first.
type Subscription struct {
	ID     string
	C      <-chan model.FeedEvent
	Replay []model.FeedEvent
}

// Feed is the in-process publish/subscribe bus for live posture events.
type Feed struct {
	mu      sync.Mutex
	history []model.FeedEvent
	subs    map[string]chan model.FeedEvent
	closed  bool

	historySize      int
	replayCount      int
	subscriberBuffer int
	newID            func() string
}

// Option applies a configuration option to the Feed.
type Option func(*Feed)

// WithHistorySize bounds the replay ring buffer.
func WithHistorySize(n int) Option {
	return func(f *Feed) {
		if n > 0 {
			f.historySize = n
		}
	}
}

// WithReplayCount sets how many buffered events a new subscriber gets.
func WithReplayCount(n int) Option {
	return func(f *Feed) {
		if n >= 0 {
			f.replayCount = n
		}
	}
}

// WithSubscriberBuffer sets the per-subscriber channel capacity.
func WithSubscriberBuffer(n int) Option {
	return func(f *Feed) {
		if n > 0 {
			f.subscriberBuffer = n
		}
	}
}

// NewFeed creates a live feed with configuration options.
func NewFeed(opts ...Option) *Feed {
	f := &Feed{
		subs:             make(map[string]chan model.FeedEvent),
		historySize:      defaultHistorySize,
		replayCount:      defaultReplayCount,
		subscriberBuffer: defaultSubscriberBuffer,
		newID:            uuid.NewString,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Publish records ev in the ring buffer and hands it to every
// subscriber. Subscribers that cannot keep up are dropped silently.
func (f *Feed) Publish(ev model.FeedEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}

	f.history = append(f.history, ev)
	if len(f.history) > f.historySize {
		f.history = f.history[len(f.history)-f.historySize:]
	}
	metrics.RecordFeedPublished()

	for id, ch := range f.subs {
		select {
		case ch <- ev:
		default:
			// Treated as a disconnect.
			delete(f.subs, id)
			close(ch)
			metrics.RecordFeedSubscriberDropped()
			metrics.UpdateFeedSubscribers(len(f.subs))
		}
	}
}

// Subscribe attaches a new live observer and returns its replay history.
func (f *Feed) Subscribe() *Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan model.FeedEvent, f.subscriberBuffer)
	id := f.newID()
	if !f.closed {
		f.subs[id] = ch
	} else {
		close(ch)
	}
	metrics.UpdateFeedSubscribers(len(f.subs))

	replay := f.replayCount
	if replay > len(f.history) {
		replay = len(f.history)
	}
	tail := make([]model.FeedEvent, replay)
	copy(tail, f.history[len(f.history)-replay:])

	return &Subscription{ID: id, C: ch, Replay: tail}
}

// Unsubscribe detaches an observer. Unknown handles are ignored, which
// makes disconnect paths safe to run after a drop.
func (f *Feed) Unsubscribe(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ch, ok := f.subs[id]; ok {
		delete(f.subs, id)
		close(ch)
		metrics.UpdateFeedSubscribers(len(f.subs))
	}
}

// History returns a copy of the buffered events, oldest first.
func (f *Feed) History() []model.FeedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]model.FeedEvent, len(f.history))
	copy(out, f.history)
	return out
}

// Subscribers reports the current observer count.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Close drops all subscribers and rejects further publishes.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
	metrics.UpdateFeedSubscribers(0)
}
