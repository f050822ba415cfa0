package filestore

import (
	"context"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/bitbill-network/ebill-core/core/chain"
	"github.com/bitbill-network/ebill-core/core/notification"
)

func dedupKey(billID chain.BillID, blockHeight uint64, kind string) string {
	return string(billID) + "|" + kind + "|" + strconv.FormatUint(blockHeight, 10)
}

type notificationSnapshot struct {
	ByID  map[string]notification.Notification `json:"by_id"`
	Dedup map[string]bool                       `json:"dedup"`
}

// NotificationStore is a store.NotificationStore backed by a JSON snapshot
// file, rewritten atomically on every mutation.
type NotificationStore struct {
	path string

	mu    sync.RWMutex
	byID  map[string]notification.Notification
	dedup map[string]bool
}

func NewNotificationStore(dir string) (*NotificationStore, error) {
	s := &NotificationStore{
		path:  filepath.Join(dir, "notifications.json"),
		byID:  make(map[string]notification.Notification),
		dedup: make(map[string]bool),
	}
	var snap notificationSnapshot
	if err := readJSON(s.path, &snap); err != nil {
		return nil, err
	}
	if snap.ByID != nil {
		s.byID = snap.ByID
	}
	if snap.Dedup != nil {
		s.dedup = snap.Dedup
	}
	return s, nil
}

func (s *NotificationStore) persist() error {
	return writeJSONAtomic(s.path, notificationSnapshot{ByID: s.byID, Dedup: s.dedup})
}

func (s *NotificationStore) Create(_ context.Context, n notification.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[n.ID] = n
	if n.Kind == notification.KindBill {
		s.dedup[dedupKey(chain.BillID(n.ReferenceID), n.BlockHeight, string(n.Action))] = true
	}
	return s.persist()
}

func (s *NotificationStore) MarkInactive(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.byID[id]; ok {
		n.Active = false
		s.byID[id] = n
	}
	return s.persist()
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
	return s.persist()
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
