// Package identity models local actors (identities), the address book
// (contacts), and multi-signatory companies (§3).
package identity

import "github.com/bitbill-network/ebill-core/core/chain"

// Identity is a local actor. A "full" identity additionally carries its key
// pair; a "public" identity is the shareable subset sent to counterparties.
type Identity struct {
	NodeID        chain.NodeID `json:"node_id"`
	Name          string       `json:"name"`
	PostalAddress string       `json:"postal_address,omitempty"`
	RelayURL      string       `json:"relay_url,omitempty"`
	Documents     []string     `json:"documents,omitempty"`

	// Keys is non-nil only for a full, local identity.
	Keys *chain.KeyPair `json:"-"`
}

// IsFull reports whether this identity carries its own signing key.
func (i Identity) IsFull() bool { return i.Keys != nil }

// Public returns the shareable subset of i, stripping key material.
func (i Identity) Public() Identity {
	pub := i
	pub.Keys = nil
	return pub
}

// ContactType distinguishes a person from a company in the address book.
type ContactType int

const (
	ContactPerson ContactType = iota
	ContactCompany
)

// Contact is a local address-book entry.
type Contact struct {
	NodeID        chain.NodeID `json:"node_id"`
	Name          string       `json:"name"`
	Type          ContactType  `json:"type"`
	PostalAddress string       `json:"postal_address,omitempty"`
	RelayURL      string       `json:"relay_url,omitempty"`
}

// Company is a multi-signatory identity: any listed signatory may act on
// its behalf, subject to being a current signatory at the time a block is
// signed (§4.1: "Verification requires that the signatory was on the
// company's roster at block timestamp").
type Company struct {
	NodeID      chain.NodeID   `json:"node_id"`
	Name        string         `json:"name"`
	Keys        *chain.KeyPair `json:"-"`
	Signatories []chain.NodeID `json:"signatories"`
}

// IsSignatory reports whether nodeID is currently listed as a signatory.
func (c Company) IsSignatory(nodeID chain.NodeID) bool {
	for _, s := range c.Signatories {
		if s == nodeID {
			return true
		}
	}
	return false
}
