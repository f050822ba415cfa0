package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/bitbill-network/ebill-core/core/chain"
	"github.com/bitbill-network/ebill-core/core/notification"
)

// NotificationStore is an in-memory store.NotificationStore.
type NotificationStore struct {
	mu   sync.RWMutex
	byID map[string]notification.Notification
	// dedup is keyed by (billID, blockHeight, kind) to satisfy ExistsDeduped.
	dedup map[string]bool
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{
		byID:  make(map[string]notification.Notification),
		dedup: make(map[string]bool),
	}
}

func dedupKey(billID chain.BillID, blockHeight uint64, kind string) string {
	return string(billID) + "|" + kind + "|" + strconv.FormatUint(blockHeight, 10)
}

func (s *NotificationStore) Create(_ context.Context, n notification.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[n.ID] = n
	if n.Kind == notification.KindBill {
		s.dedup[dedupKey(chain.BillID(n.ReferenceID), n.BlockHeight, string(n.Action))] = true
	}
	return nil
}

func (s *NotificationStore) MarkInactive(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.byID[id]; ok {
		n.Active = false
		s.byID[id] = n
	}
	return nil
}

func (s *NotificationStore) SupersedeByReference(_ context.Context, referenceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, n := range s.byID {
		if n.ReferenceID == referenceID && n.Active {
			n.Active = false
			s.byID[id] = n
		}
	}
	return nil
}

func (s *NotificationStore) GetActiveForNode(_ context.Context, nodeID chain.NodeID) ([]notification.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []notification.Notification
	for _, n := range s.byID {
		if n.NodeID == nodeID && n.Active {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *NotificationStore) ExistsDeduped(_ context.Context, billID chain.BillID, blockHeight uint64, kind string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dedup[dedupKey(billID, blockHeight, kind)], nil
}
