package memory

import (
	"context"
	"sync"

	"github.com/bitbill-network/ebill-core/core/chain"
	"github.com/bitbill-network/ebill-core/core/store"
)

// NostrOffsetStore is an in-memory store.NostrOffsetStore.
type NostrOffsetStore struct {
	mu      sync.RWMutex
	offsets map[chain.NodeID]store.NostrEventOffset
	seen    map[chain.NodeID]map[string]bool
}

func NewNostrOffsetStore() *NostrOffsetStore {
	return &NostrOffsetStore{
		offsets: make(map[chain.NodeID]store.NostrEventOffset),
		seen:    make(map[chain.NodeID]map[string]bool),
	}
}

func (s *NostrOffsetStore) GetOffset(_ context.Context, nodeID chain.NodeID) (*store.NostrEventOffset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	off, ok := s.offsets[nodeID]
	if !ok {
		return nil, nil
	}
	return &off, nil
}

func (s *NostrOffsetStore) SetOffset(_ context.Context, nodeID chain.NodeID, off store.NostrEventOffset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offsets[nodeID] = off
	return nil
}

func (s *NostrOffsetStore) SeenEvent(_ context.Context, nodeID chain.NodeID, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[nodeID] == nil {
		s.seen[nodeID] = make(map[string]bool)
	}
	if s.seen[nodeID][eventID] {
		return true, nil
	}
	s.seen[nodeID][eventID] = true
	return false, nil
}

// NostrQueueStore is an in-memory store.NostrQueueStore.
type NostrQueueStore struct {
	mu    sync.Mutex
	items map[string]store.NostrQueuedMessage
}

func NewNostrQueueStore() *NostrQueueStore {
	return &NostrQueueStore{items: make(map[string]store.NostrQueuedMessage)}
}

func (s *NostrQueueStore) Enqueue(_ context.Context, m store.NostrQueuedMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.MaxRetries == 0 {
		m.MaxRetries = store.DefaultMaxRetries
	}
	s.items[m.ID] = m
	return nil
}

func (s *NostrQueueStore) GetRetryable(_ context.Context, now uint64) ([]store.NostrQueuedMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.NostrQueuedMessage
	for _, m := range s.items {
		if m.Completed || m.Processing {
			continue
		}
		if m.NumRetries >= m.MaxRetries {
			continue
		}
		out = append(out, m)
	}
	_ = now // retry backoff scheduling is computed by the caller (core/transport)
	return out, nil
}

func (s *NostrQueueStore) MarkSent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.items[id]; ok {
		m.Completed = true
		s.items[id] = m
	}
	return nil
}

func (s *NostrQueueStore) MarkFailedAttempt(_ context.Context, id string, now uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.items[id]; ok {
		m.NumRetries++
		m.LastTry = now
		s.items[id] = m
	}
	return nil
}
