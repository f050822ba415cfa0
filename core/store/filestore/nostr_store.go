package filestore

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/bitbill-network/ebill-core/core/chain"
	"github.com/bitbill-network/ebill-core/core/store"
)

type offsetSnapshot struct {
	Offsets map[chain.NodeID]store.NostrEventOffset `json:"offsets"`
	Seen    map[chain.NodeID]map[string]bool        `json:"seen"`
}

// NostrOffsetStore is a store.NostrOffsetStore backed by a JSON snapshot
// file.
type NostrOffsetStore struct {
	path string

	mu      sync.RWMutex
	offsets map[chain.NodeID]store.NostrEventOffset
	seen    map[chain.NodeID]map[string]bool
}

func NewNostrOffsetStore(dir string) (*NostrOffsetStore, error) {
	s := &NostrOffsetStore{
		path:    filepath.Join(dir, "nostr_offsets.json"),
		offsets: make(map[chain.NodeID]store.NostrEventOffset),
		seen:    make(map[chain.NodeID]map[string]bool),
	}
	var snap offsetSnapshot
	if err := readJSON(s.path, &snap); err != nil {
		return nil, err
	}
	if snap.Offsets != nil {
		s.offsets = snap.Offsets
	}
	if snap.Seen != nil {
		s.seen = snap.Seen
	}
	return s, nil
}

func (s *NostrOffsetStore) persist() error {
	return writeJSONAtomic(s.path, offsetSnapshot{Offsets: s.offsets, Seen: s.seen})
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
	return s.persist()
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
	return false, s.persist()
}

// NostrQueueStore is a store.NostrQueueStore backed by a JSON snapshot file.
type NostrQueueStore struct {
	path string

	mu    sync.Mutex
	items map[string]store.NostrQueuedMessage
}

func NewNostrQueueStore(dir string) (*NostrQueueStore, error) {
	s := &NostrQueueStore{path: filepath.Join(dir, "nostr_queue.json"), items: make(map[string]store.NostrQueuedMessage)}
	if err := readJSON(s.path, &s.items); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *NostrQueueStore) persist() error {
	return writeJSONAtomic(s.path, s.items)
}

func (s *NostrQueueStore) Enqueue(_ context.Context, m store.NostrQueuedMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.MaxRetries == 0 {
		m.MaxRetries = store.DefaultMaxRetries
	}
	s.items[m.ID] = m
	return s.persist()
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
	return s.persist()
}

func (s *NostrQueueStore) MarkFailedAttempt(_ context.Context, id string, now uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.items[id]; ok {
		m.NumRetries++
		m.LastTry = now
		s.items[id] = m
	}
	return s.persist()
}
