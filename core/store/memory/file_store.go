package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/bitbill-network/ebill-core/core/chain"
)

// FileBlobStore is an in-memory store.FileBlobStore.
type FileBlobStore struct {
	mu       sync.RWMutex
	uploads  map[string]map[string][]byte
	attached map[chain.BillID]map[string][]byte
}

func NewFileBlobStore() *FileBlobStore {
	return &FileBlobStore{
		uploads:  make(map[string]map[string][]byte),
		attached: make(map[chain.BillID]map[string][]byte),
	}
}

func (s *FileBlobStore) WriteTempUpload(_ context.Context, uploadID, fileName string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploads[uploadID] == nil {
		s.uploads[uploadID] = make(map[string][]byte)
	}
	s.uploads[uploadID][fileName] = data
	return nil
}

func (s *FileBlobStore) ReadTempUpload(_ context.Context, uploadID, fileName string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.uploads[uploadID][fileName]
	if !ok {
		return nil, fmt.Errorf("fileblobstore: no such upload %s/%s", uploadID, fileName)
	}
	return data, nil
}

func (s *FileBlobStore) RemoveTempUpload(_ context.Context, uploadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.uploads, uploadID)
	return nil
}

func (s *FileBlobStore) SaveAttachment(_ context.Context, billID chain.BillID, fileName string, encrypted []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attached[billID] == nil {
		s.attached[billID] = make(map[string][]byte)
	}
	s.attached[billID][fileName] = encrypted
	return nil
}

func (s *FileBlobStore) OpenAttachment(_ context.Context, billID chain.BillID, fileName string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.attached[billID][fileName]
	if !ok {
		return nil, fmt.Errorf("fileblobstore: no such attachment %s/%s", billID, fileName)
	}
	return data, nil
}
