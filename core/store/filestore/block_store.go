package filestore

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bitbill-network/ebill-core/core/chain"
)

// BlockStore persists each bill's chain as an append-only, newline-delimited
// JSON log, one file per bill id. A chain is replayed from its log the first
// time it is touched and kept in memory afterwards, mirroring the
// open-then-replay-the-WAL shape used throughout this codebase's ledger
// storage.
type BlockStore struct {
	dir string

	mu     sync.Mutex
	chains map[chain.BillID][]*chain.Block
}

// NewBlockStore opens (creating if necessary) a block store rooted at dir.
func NewBlockStore(dir string) (*BlockStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	return &BlockStore{dir: dir, chains: make(map[chain.BillID][]*chain.Block)}, nil
}

func (s *BlockStore) walPath(billID chain.BillID) string {
	return filepath.Join(s.dir, string(billID)+".wal")
}

// load reads billID's WAL into memory if it hasn't been loaded yet. Callers
// must hold s.mu.
func (s *BlockStore) load(billID chain.BillID) ([]*chain.Block, error) {
	if blocks, ok := s.chains[billID]; ok {
		return blocks, nil
	}
	f, err := os.Open(s.walPath(billID))
	if err != nil {
		if os.IsNotExist(err) {
			s.chains[billID] = nil
			return nil, nil
		}
		return nil, fmt.Errorf("open wal: %w", err)
	}
	defer f.Close()

	var blocks []*chain.Block
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		var b chain.Block
		if err := json.Unmarshal(scanner.Bytes(), &b); err != nil {
			return nil, fmt.Errorf("wal unmarshal: %w", err)
		}
		blocks = append(blocks, &b)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("wal scan: %w", err)
	}
	s.chains[billID] = blocks
	return blocks, nil
}

// AddBlock appends block to billID's WAL and in-memory chain. Callers must
// hold the bill's chain.Locker for the duration of the call.
func (s *BlockStore) AddBlock(ctx context.Context, billID chain.BillID, block *chain.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.load(billID); err != nil {
		return err
	}

	f, err := os.OpenFile(s.walPath(billID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open wal: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(block)
	if err != nil {
		return fmt.Errorf("marshal block: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append wal: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync wal: %w", err)
	}

	s.chains[billID] = append(s.chains[billID], block)
	return nil
}

// GetChain loads the full chain for billID.
func (s *BlockStore) GetChain(ctx context.Context, billID chain.BillID) (*chain.Chain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blocks, err := s.load(billID)
	if err != nil {
		return nil, err
	}
	cp := make([]*chain.Block, len(blocks))
	copy(cp, blocks)
	return chain.NewChain(billID, cp), nil
}

// GetLatestBlock is a lighter-weight GetChain().Latest().
func (s *BlockStore) GetLatestBlock(ctx context.Context, billID chain.BillID) (*chain.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blocks, err := s.load(billID)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, nil
	}
	return blocks[len(blocks)-1], nil
}
