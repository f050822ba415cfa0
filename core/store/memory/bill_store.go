package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/bitbill-network/ebill-core/core/billview"
	"github.com/bitbill-network/ebill-core/core/chain"
)

type cachedView struct {
	view        *billview.BillView
	blockHeight uint64
}

// BillStore is an in-memory store.BillStore.
type BillStore struct {
	mu              sync.RWMutex
	keys            map[chain.BillID]*chain.KeyPair
	cache           map[chain.BillID]cachedView
	paidAddresses   map[string]bool
	order           []chain.BillID
}

// NewBillStore builds an empty BillStore.
func NewBillStore() *BillStore {
	return &BillStore{
		keys:          make(map[chain.BillID]*chain.KeyPair),
		cache:         make(map[chain.BillID]cachedView),
		paidAddresses: make(map[string]bool),
	}
}

func (s *BillStore) SaveKeys(_ context.Context, billID chain.BillID, keys *chain.KeyPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.keys[billID]; !exists {
		s.order = append(s.order, billID)
	}
	s.keys[billID] = keys
	return nil
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
	return s.paidAddresses[paymentAddress], nil
}

func (s *BillStore) SetToPaid(_ context.Context, _ chain.BillID, paymentAddress string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paidAddresses[paymentAddress] = true
	return nil
}

// The three waiting-for-payment queries are answered by the caller (the
// scheduler) by assembling each bill's view and checking its
// OfferToSellWaiting/RecourseWaiting/RequestToPayPending fields; a memory
// store has no independent index to maintain, so it simply returns every
// known bill id and lets the caller filter.

func (s *BillStore) GetBillIDsWaitingForPayment(ctx context.Context) ([]chain.BillID, error) {
	return s.GetIDs(ctx)
}

func (s *BillStore) GetBillIDsWaitingForSellPayment(ctx context.Context) ([]chain.BillID, error) {
	return s.GetIDs(ctx)
}

func (s *BillStore) GetBillIDsWaitingForRecoursePayment(ctx context.Context) ([]chain.BillID, error) {
	return s.GetIDs(ctx)
}
