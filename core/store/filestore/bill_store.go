package filestore

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/bitbill-network/ebill-core/core/billview"
	"github.com/bitbill-network/ebill-core/core/chain"
)

// billRecord is the on-disk representation of a bill's durable metadata: its
// dedicated key pair (as a raw scalar) and the order it was first seen in.
// The assembled-view cache is deliberately NOT persisted here -- it is pure
// performance hint reconstructible from the chain, so filestore keeps it
// in memory only, same as core/billcache.
type billRecord struct {
	PrivateKey []byte `json:"private_key"`
}

type billSnapshot struct {
	Bills         map[chain.BillID]billRecord `json:"bills"`
	Order         []chain.BillID              `json:"order"`
	PaidAddresses map[string]bool             `json:"paid_addresses"`
}

type cachedView struct {
	view        *billview.BillView
	blockHeight uint64
}

// BillStore is a store.BillStore backed by a single JSON snapshot file,
// rewritten atomically on every mutation.
type BillStore struct {
	path string

	mu    sync.RWMutex
	keys  map[chain.BillID]*chain.KeyPair
	order []chain.BillID
	paid  map[string]bool
	cache map[chain.BillID]cachedView
}

// NewBillStore opens (or creates) a bill store snapshot at dir/bills.json.
func NewBillStore(dir string) (*BillStore, error) {
	s := &BillStore{
		path:  filepath.Join(dir, "bills.json"),
		keys:  make(map[chain.BillID]*chain.KeyPair),
		paid:  make(map[string]bool),
		cache: make(map[chain.BillID]cachedView),
	}
	var snap billSnapshot
	if err := readJSON(s.path, &snap); err != nil {
		return nil, err
	}
	for id, rec := range snap.Bills {
		kp, err := chain.KeyPairFromPrivateBytes(rec.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("bill %s: %w", id, err)
		}
		s.keys[id] = kp
	}
	s.order = snap.Order
	if snap.PaidAddresses != nil {
		s.paid = snap.PaidAddresses
	}
	return s, nil
}

// persist must be called with s.mu held.
func (s *BillStore) persist() error {
	snap := billSnapshot{
		Bills:         make(map[chain.BillID]billRecord, len(s.keys)),
		Order:         s.order,
		PaidAddresses: s.paid,
	}
	for id, kp := range s.keys {
		snap.Bills[id] = billRecord{PrivateKey: kp.Private.Serialize()}
	}
	return writeJSONAtomic(s.path, snap)
}

func (s *BillStore) SaveKeys(_ context.Context, billID chain.BillID, keys *chain.KeyPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.keys[billID]; !exists {
		s.order = append(s.order, billID)
	}
	s.keys[billID] = keys
	return s.persist()
}

func (s *BillStore) GetKeys(_ context.Context, billID chain.BillID) (*chain.KeyPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kp, ok := s.keys[billID]
	if !ok {
		return nil, fmt.Errorf("billstore: unknown bill %s", billID)
	}
	return kp, nil
}

func (s *BillStore) Exists(_ context.Context, billID chain.BillID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.keys[billID]
	return ok, nil
}

func (s *BillStore) GetIDs(_ context.Context) ([]chain.BillID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]chain.BillID, len(s.order))
	copy(out, s.order)
	return out, nil
}

func (s *BillStore) GetBillFromCache(_ context.Context, billID chain.BillID, blockHeight uint64) (*billview.BillView, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cache[billID]
	if !ok || c.blockHeight != blockHeight {
		return nil, false, nil
	}
	return c.view, true, nil
}

func (s *BillStore) SaveBillToCache(_ context.Context, billID chain.BillID, view *billview.BillView) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[billID] = cachedView{view: view, blockHeight: view.BlockHeight}
	return nil
}

func (s *BillStore) InvalidateBillInCache(_ context.Context, billID chain.BillID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, billID)
	return nil
}

func (s *BillStore) IsPaid(_ context.Context, _ chain.BillID, paymentAddress string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paid[paymentAddress], nil
}

func (s *BillStore) SetToPaid(_ context.Context, _ chain.BillID, paymentAddress string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paid[paymentAddress] = true
	return s.persist()
}

// The three waiting-for-payment queries are answered by the caller (the
// scheduler) by assembling each bill's view and checking its
// OfferToSellWaiting/RecourseWaiting/RequestToPayPending fields; filestore
// keeps no independent index, so it returns every known bill id and lets
// the caller filter, same as the memory store.

func (s *BillStore) GetBillIDsWaitingForPayment(ctx context.Context) ([]chain.BillID, error) {
	return s.GetIDs(ctx)
}

func (s *BillStore) GetBillIDsWaitingForSellPayment(ctx context.Context) ([]chain.BillID, error) {
	return s.GetIDs(ctx)
}

func (s *BillStore) GetBillIDsWaitingForRecoursePayment(ctx context.Context) ([]chain.BillID, error) {
	return s.GetIDs(ctx)
}
