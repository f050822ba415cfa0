// Package chain implements the per-bill append-only cryptographic ledger:
// key material, block framing, hybrid encryption, signatures and the chain
// state machine described by the bill lifecycle.
package chain

import (
	"crypto/sha256"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/mr-tron/base58"
)

// KeyPair is a secp256k1 private/public pair. It backs both local identities
// (personal and company) and the dedicated per-bill key used to encrypt block
// payloads and derive payment addresses.
type KeyPair struct {
	Private *secp256k1.PrivateKey
	Public  *secp256k1.PublicKey
}

// NewKeyPair generates a fresh secp256k1 key pair.
func NewKeyPair() (*KeyPair, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &KeyPair{Private: priv, Public: priv.PubKey()}, nil
}

// KeyPairFromPrivateBytes reconstructs a key pair from a 32-byte scalar, as
// read back from a key store.
func KeyPairFromPrivateBytes(b []byte) (*KeyPair, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("private key: want 32 bytes, got %d", len(b))
	}
	priv := secp256k1.PrivKeyFromBytes(b)
	return &KeyPair{Private: priv, Public: priv.PubKey()}, nil
}

// PublicKeyFromBytes parses a compressed (33-byte) public key, for example
// when only the public half of a counterparty's key pair is known.
func PublicKeyFromBytes(b []byte) (*secp256k1.PublicKey, error) {
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return pub, nil
}

// NodeID is the self-describing string identifier derived from a compressed
// public key: every participant, local or remote, is addressed by it.
type NodeID string

// NodeIDFromPublicKey base58-encodes a compressed public key into a NodeID.
func NodeIDFromPublicKey(pub *secp256k1.PublicKey) NodeID {
	return NodeID(base58.Encode(pub.SerializeCompressed()))
}

// PublicKey recovers the secp256k1 public key encoded in a NodeID.
func (n NodeID) PublicKey() (*secp256k1.PublicKey, error) {
	raw, err := base58.Decode(string(n))
	if err != nil {
		return nil, fmt.Errorf("decode node id: %w", err)
	}
	return PublicKeyFromBytes(raw)
}

func (n NodeID) String() string { return string(n) }

// MessagingKey is the 32-byte x-only projection of a public key used as a
// transport-layer routing/encryption identifier distinct from the node id.
type MessagingKey [32]byte

// MessagingKeyFromPublicKey extracts the x-only coordinate of pub.
func MessagingKeyFromPublicKey(pub *secp256k1.PublicKey) MessagingKey {
	var out MessagingKey
	xBytes := pub.X().Bytes()
	copy(out[:], xBytes[:])
	return out
}

// BillID is the immutable base58(sha256(bill public key)) identifier of a
// bill. It never changes once a bill is issued.
type BillID string

// NewBillID derives the bill identifier from the bill's dedicated public key.
func NewBillID(billPublicKey *secp256k1.PublicKey) BillID {
	sum := sha256.Sum256(billPublicKey.SerializeCompressed())
	return BillID(base58.Encode(sum[:]))
}

func (b BillID) String() string { return string(b) }
