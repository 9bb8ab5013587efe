package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/sunduk/internal/game/state"
)

// Bus fans every notification out to its subscribers in subscription order.
// A Bus is itself a Listener. It is not safe for concurrent use.
type Bus struct {
	nextID int
	subs   []subscription
}

type subscription struct {
	id int
	l  Listener
}

// NewBus returns an empty bus.
func NewBus() *Bus { return &Bus{} }

// Subscribe registers l and returns a func that removes it. Calling the
// returned func more than once is harmless.
//
// Precondition: l must be non-nil.
func (b *Bus) Subscribe(l Listener) (unsubscribe func()) {
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, l: l})
	return func() {
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Len returns the number of subscribers.
func (b *Bus) Len() int { return len(b.subs) }

// each iterates over a snapshot so listeners may unsubscribe during delivery.
func (b *Bus) each(fn func(Listener)) {
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	for _, s := range subs {
		fn(s.l)
	}
}

func (b *Bus) OnStateChanged(prev, next state.GameState) {
	b.each(func(l Listener) { l.OnStateChanged(prev, next) })
}

func (b *Bus) OnCardClicked(id uuid.UUID) {
	b.each(func(l Listener) { l.OnCardClicked(id) })
}

func (b *Bus) OnAdventurerSelected(id uuid.UUID, selected bool) {
	b.each(func(l Listener) { l.OnAdventurerSelected(id, selected) })
}

func (b *Bus) OnRoundStarted(round int) {
	b.each(func(l Listener) { l.OnRoundStarted(round) })
}

func (b *Bus) OnRoundCleared(round int, reason string) {
	b.each(func(l Listener) { l.OnRoundCleared(round, reason) })
}

func (b *Bus) OnGoldChanged(total int) {
	b.each(func(l Listener) { l.OnGoldChanged(total) })
}

func (b *Bus) OnDragonCountChanged(count int) {
	b.each(func(l Listener) { l.OnDragonCountChanged(count) })
}

func (b *Bus) OnToast(message string, d time.Duration) {
	b.each(func(l Listener) { l.OnToast(message, d) })
}

func (b *Bus) OnRunEnded(summary RunSummary) {
	b.each(func(l Listener) { l.OnRunEnded(summary) })
}
