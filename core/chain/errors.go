package chain

import "errors"

// Chain-integrity errors (§7): fatal to the operation that produced them,
// always logged by the caller, never surfaced as a validation error.
var (
	ErrHashMismatch      = errors.New("chain: block hash does not match recomputed hash")
	ErrSignatureInvalid  = errors.New("chain: block signature does not verify")
	ErrInvalidPublicKey  = errors.New("chain: block public key is malformed")
	ErrBrokenLinkage     = errors.New("chain: block does not link to its predecessor")
	ErrUnknownOpCode     = errors.New("chain: unknown block op code")
	ErrDecryptionFailed  = errors.New("chain: payload decryption failed")
	ErrDuplicateBlockID  = errors.New("chain: block id already present in chain")
	ErrNonIncreasingTime = errors.New("chain: block timestamp precedes predecessor")
	ErrEmptyChain        = errors.New("chain: chain has no blocks")
	ErrGenesisNotIssue   = errors.New("chain: genesis block is not an Issue block")
	ErrInvalidPaymentKey = errors.New("chain: derived payment key is the point at infinity")
)
