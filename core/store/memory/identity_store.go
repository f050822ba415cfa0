package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/bitbill-network/ebill-core/core/chain"
	"github.com/bitbill-network/ebill-core/core/identity"
)

// ContactStore is an in-memory store.ContactStore.
type ContactStore struct {
	mu       sync.RWMutex
	contacts map[chain.NodeID]identity.Contact
}

func NewContactStore() *ContactStore {
	return &ContactStore{contacts: make(map[chain.NodeID]identity.Contact)}
}

func (s *ContactStore) Get(_ context.Context, nodeID chain.NodeID) (*identity.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contacts[nodeID]
	if !ok {
		return nil, fmt.Errorf("contactstore: unknown contact %s", nodeID)
	}
	return &c, nil
}

func (s *ContactStore) GetAll(_ context.Context) ([]identity.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]identity.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		out = append(out, c)
	}
	return out, nil
}

func (s *ContactStore) Upsert(_ context.Context, c identity.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[c.NodeID] = c
	return nil
}

func (s *ContactStore) Delete(_ context.Context, nodeID chain.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contacts, nodeID)
	return nil
}

// IdentityStore is an in-memory store.IdentityStore holding a single local
// identity.
type IdentityStore struct {
	mu sync.RWMutex
	id *identity.Identity
}

func NewIdentityStore() *IdentityStore {
	return &IdentityStore{}
}

func (s *IdentityStore) Get(_ context.Context) (*identity.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.id == nil {
		return nil, fmt.Errorf("identitystore: no local identity set")
	}
	cp := *s.id
	return &cp, nil
}

func (s *IdentityStore) Save(_ context.Context, id identity.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = &id
	return nil
}

// CompanyStore is an in-memory store.CompanyStore.
type CompanyStore struct {
	mu        sync.RWMutex
	companies map[chain.NodeID]identity.Company
}

func NewCompanyStore() *CompanyStore {
	return &CompanyStore{companies: make(map[chain.NodeID]identity.Company)}
}

func (s *CompanyStore) Get(_ context.Context, nodeID chain.NodeID) (*identity.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.companies[nodeID]
	if !ok {
		return nil, fmt.Errorf("companystore: unknown company %s", nodeID)
	}
	return &c, nil
}

func (s *CompanyStore) GetAll(_ context.Context) ([]identity.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]identity.Company, 0, len(s.companies))
	for _, c := range s.companies {
		out = append(out, c)
	}
	return out, nil
}

func (s *CompanyStore) Upsert(_ context.Context, c identity.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[c.NodeID] = c
	return nil
}
