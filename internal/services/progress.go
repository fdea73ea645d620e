package services

import (
	"sync"

	"github.com/google/uuid"

	"woodoctor/pkg/models"
)

// ProgressBroker fans import run progress out to the subscribers of a user.
// Slow subscribers drop snapshots instead of blocking the import loop.
type ProgressBroker struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[chan models.ImportRunProgress]struct{}
}

func NewProgressBroker() *ProgressBroker {
	return &ProgressBroker{
		subscribers: make(map[uuid.UUID]map[chan models.ImportRunProgress]struct{}),
	}
}

// Subscribe registers a listener for the user's runs. The returned func
// removes the subscription and closes the channel.
func (b *ProgressBroker) Subscribe(userID uuid.UUID) (<-chan models.ImportRunProgress, func()) {
	ch := make(chan models.ImportRunProgress, 16)

	b.mu.Lock()
	if b.subscribers[userID] == nil {
		b.subscribers[userID] = make(map[chan models.ImportRunProgress]struct{})
	}
	b.subscribers[userID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers[userID], ch)
			if len(b.subscribers[userID]) == 0 {
				delete(b.subscribers, userID)
			}
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers a snapshot to every subscriber of the user.
func (b *ProgressBroker) Publish(userID uuid.UUID, progress models.ImportRunProgress) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers[userID] {
		select {
		case ch <- progress:
		default:
		}
	}
}
