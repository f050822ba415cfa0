package filestore

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/bitbill-network/ebill-core/core/chain"
	"github.com/bitbill-network/ebill-core/core/identity"
)

// ContactStore is a store.ContactStore backed by a JSON snapshot file.
type ContactStore struct {
	path string

	mu       sync.RWMutex
	contacts map[chain.NodeID]identity.Contact
}

func NewContactStore(dir string) (*ContactStore, error) {
	s := &ContactStore{path: filepath.Join(dir, "contacts.json"), contacts: make(map[chain.NodeID]identity.Contact)}
	if err := readJSON(s.path, &s.contacts); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ContactStore) persist() error {
	return writeJSONAtomic(s.path, s.contacts)
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
	return s.persist()
}

func (s *ContactStore) Delete(_ context.Context, nodeID chain.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contacts, nodeID)
	return s.persist()
}

// identityRecord carries the local identity's private key alongside its
// public fields, since identity.Identity deliberately excludes Keys from
// its own JSON encoding.
type identityRecord struct {
	Identity   identity.Identity `json:"identity"`
	PrivateKey []byte            `json:"private_key,omitempty"`
}

// IdentityStore is a store.IdentityStore holding a single local identity,
// persisted to a JSON snapshot file.
type IdentityStore struct {
	path string

	mu sync.RWMutex
	id *identity.Identity
}

func NewIdentityStore(dir string) (*IdentityStore, error) {
	s := &IdentityStore{path: filepath.Join(dir, "identity.json")}
	var rec identityRecord
	if err := readJSON(s.path, &rec); err != nil {
		return nil, err
	}
	if rec.Identity.NodeID != "" {
		id := rec.Identity
		if len(rec.PrivateKey) > 0 {
			kp, err := chain.KeyPairFromPrivateBytes(rec.PrivateKey)
			if err != nil {
				return nil, fmt.Errorf("identity key: %w", err)
			}
			id.Keys = kp
		}
		s.id = &id
	}
	return s, nil
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

	rec := identityRecord{Identity: id.Public()}
	if id.Keys != nil {
		rec.PrivateKey = id.Keys.Private.Serialize()
	}
	return writeJSONAtomic(s.path, rec)
}

// companyRecord mirrors identityRecord for multi-signatory companies.
type companyRecord struct {
	Company    identity.Company `json:"company"`
	PrivateKey []byte           `json:"private_key,omitempty"`
}

// CompanyStore is a store.CompanyStore persisted to a JSON snapshot file.
type CompanyStore struct {
	path string

	mu        sync.RWMutex
	companies map[chain.NodeID]identity.Company
}

func NewCompanyStore(dir string) (*CompanyStore, error) {
	s := &CompanyStore{path: filepath.Join(dir, "companies.json"), companies: make(map[chain.NodeID]identity.Company)}
	var recs []companyRecord
	if err := readJSON(s.path, &recs); err != nil {
		return nil, err
	}
	for _, rec := range recs {
		c := rec.Company
		if len(rec.PrivateKey) > 0 {
			kp, err := chain.KeyPairFromPrivateBytes(rec.PrivateKey)
			if err != nil {
				return nil, fmt.Errorf("company %s key: %w", c.NodeID, err)
			}
			c.Keys = kp
		}
		s.companies[c.NodeID] = c
	}
	return s, nil
}

func (s *CompanyStore) persist() error {
	recs := make([]companyRecord, 0, len(s.companies))
	for _, c := range s.companies {
		rec := companyRecord{Company: c}
		if c.Keys != nil {
			rec.PrivateKey = c.Keys.Private.Serialize()
		}
		recs = append(recs, rec)
	}
	return writeJSONAtomic(s.path, recs)
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
	return s.persist()
}
