package chain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// OpCode discriminates the payload carried by a block and drives the bill
// state machine (§4.1).
type OpCode string

const (
	OpIssue               OpCode = "Issue"
	OpAccept              OpCode = "Accept"
	OpRequestToAccept     OpCode = "RequestToAccept"
	OpRequestToPay        OpCode = "RequestToPay"
	OpEndorse             OpCode = "Endorse"
	OpOfferToSell         OpCode = "OfferToSell"
	OpSell                OpCode = "Sell"
	OpMint                OpCode = "Mint"
	OpRequestRecourse     OpCode = "RequestRecourse"
	OpRecourse            OpCode = "Recourse"
	OpRejectToAccept      OpCode = "RejectToAccept"
	OpRejectToPay         OpCode = "RejectToPay"
	OpRejectToBuy         OpCode = "RejectToBuy"
	OpRejectToPayRecourse OpCode = "RejectToPayRecourse"
)

// Hash is a SHA-256 digest over a block's framing bytes.
type Hash [32]byte

// ZeroHash is the previous-hash value recorded by a genesis (Issue) block.
var ZeroHash Hash

func (h Hash) IsZero() bool { return h == ZeroHash }

// Block is one entry of a bill's chain.
type Block struct {
	ID              uint64  `json:"id"`
	OpCode          OpCode  `json:"op_code"`
	Timestamp       uint64  `json:"timestamp"`
	PreviousHash    Hash    `json:"previous_hash"`
	Hash            Hash    `json:"hash"`
	Data            []byte  `json:"data"`
	SignatoryNodeID NodeID  `json:"signatory_node_id"`
	PublicKey       []byte  `json:"public_key"` // compressed secp256k1 public key that verifies Signature
	Signature       Signature `json:"signature"`
}

// framingBytes reproduces the exact byte sequence that Hash commits to:
// id ‖ op_code ‖ previous_hash ‖ data ‖ timestamp ‖ public_key ‖ signatory_node_id.
func framingBytes(id uint64, op OpCode, prev Hash, data []byte, ts uint64, pubKey []byte, signatory NodeID) []byte {
	var idBytes, tsBytes [8]byte
	binary.BigEndian.PutUint64(idBytes[:], id)
	binary.BigEndian.PutUint64(tsBytes[:], ts)

	var buf []byte
	buf = append(buf, idBytes[:]...)
	buf = append(buf, []byte(op)...)
	buf = append(buf, prev[:]...)
	buf = append(buf, data...)
	buf = append(buf, tsBytes[:]...)
	buf = append(buf, pubKey...)
	buf = append(buf, []byte(signatory)...)
	return buf
}

// computeHash recomputes the block hash from its fields; used both at
// construction time and during verification.
func computeHash(id uint64, op OpCode, prev Hash, data []byte, ts uint64, pubKey []byte, signatory NodeID) Hash {
	return sha256.Sum256(framingBytes(id, op, prev, data, ts, pubKey, signatory))
}

// NewBlock builds, encrypts, and signs a new block.
//
//   - payload is serialized to JSON and hybrid-encrypted with billKeys.Public
//     (§4.1 step 1).
//   - id is prevID+1, or 1 for a genesis block (pass prev=nil).
//   - signerKeys signs the resulting hash; the block's PublicKey is
//     signerKeys.Public and signatoryNodeID is recorded as given.
func NewBlock(op OpCode, payload any, prev *Block, billPublicKey *secp256k1.PublicKey, signerKeys *KeyPair, signatoryNodeID NodeID, timestamp uint64) (*Block, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	data, err := EncryptPayload(billPublicKey, plaintext)
	if err != nil {
		return nil, fmt.Errorf("encrypt payload: %w", err)
	}

	var id uint64 = 1
	prevHash := ZeroHash
	if prev != nil {
		id = prev.ID + 1
		prevHash = prev.Hash
	}

	pubKeyBytes := signerKeys.Public.SerializeCompressed()
	hash := computeHash(id, op, prevHash, data, timestamp, pubKeyBytes, signatoryNodeID)
	sig := Sign(signerKeys.Private, hash)

	return &Block{
		ID:              id,
		OpCode:          op,
		Timestamp:       timestamp,
		PreviousHash:    prevHash,
		Hash:            hash,
		Data:            data,
		SignatoryNodeID: signatoryNodeID,
		PublicKey:       pubKeyBytes,
		Signature:       sig,
	}, nil
}

// VerifySelf checks that b.Hash matches the recomputed hash and that
// b.Signature verifies under b.PublicKey. It does not check linkage to a
// predecessor block; see Chain.Append and Chain.VerifyStructure for that.
func (b *Block) VerifySelf() error {
	recomputed := computeHash(b.ID, b.OpCode, b.PreviousHash, b.Data, b.Timestamp, b.PublicKey, b.SignatoryNodeID)
	if recomputed != b.Hash {
		return fmt.Errorf("%w: block %d", ErrHashMismatch, b.ID)
	}
	pub, err := secp256k1.ParsePubKey(b.PublicKey)
	if err != nil {
		return fmt.Errorf("%w: block %d: %v", ErrInvalidPublicKey, b.ID, err)
	}
	if !Verify(pub, b.Hash, b.Signature) {
		return fmt.Errorf("%w: block %d", ErrSignatureInvalid, b.ID)
	}
	return nil
}

// DecryptData decrypts the block's payload ciphertext with the bill's
// private key and unmarshals it into out.
func (b *Block) DecryptData(billPrivate *secp256k1.PrivateKey, out any) error {
	plaintext, err := DecryptPayload(billPrivate, b.Data)
	if err != nil {
		return fmt.Errorf("decrypt block %d: %w", b.ID, err)
	}
	if err := json.Unmarshal(plaintext, out); err != nil {
		return fmt.Errorf("unmarshal block %d payload: %w", b.ID, err)
	}
	return nil
}

// PublicKeyParsed parses the block's stored compressed public key.
func (b *Block) PublicKeyParsed() (*secp256k1.PublicKey, error) {
	return secp256k1.ParsePubKey(b.PublicKey)
}
