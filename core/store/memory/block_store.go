// Package memory provides in-memory reference implementations of the
// core/store contracts, sufficient for tests and single-process demos.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/bitbill-network/ebill-core/core/chain"
)

// BlockStore is an in-memory store.BlockStore.
type BlockStore struct {
	mu     sync.RWMutex
	chains map[chain.BillID][]*chain.Block
}

// NewBlockStore builds an empty BlockStore.
func NewBlockStore() *BlockStore {
	return &BlockStore{chains: make(map[chain.BillID][]*chain.Block)}
}

func (s *BlockStore) AddBlock(_ context.Context, billID chain.BillID, block *chain.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chains[billID] = append(s.chains[billID], block)
	return nil
}

func (s *BlockStore) GetChain(_ context.Context, billID chain.BillID) (*chain.Chain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blocks, ok := s.chains[billID]
	if !ok {
		return nil, fmt.Errorf("blockstore: unknown bill %s", billID)
	}
	cp := make([]*chain.Block, len(blocks))
	copy(cp, blocks)
	return chain.NewChain(billID, cp), nil
}

func (s *BlockStore) GetLatestBlock(_ context.Context, billID chain.BillID) (*chain.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blocks := s.chains[billID]
	if len(blocks) == 0 {
		return nil, fmt.Errorf("blockstore: unknown bill %s", billID)
	}
	return blocks[len(blocks)-1], nil
}
