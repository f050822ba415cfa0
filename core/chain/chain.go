package chain

import "fmt"

// Chain is an ordered, append-only sequence of blocks for one bill.
type Chain struct {
	BillID BillID
	Blocks []*Block
}

// NewChain wraps an existing, already-ordered block slice (e.g. loaded from
// a store). It does not validate; call VerifyStructure explicitly.
func NewChain(id BillID, blocks []*Block) *Chain {
	return &Chain{BillID: id, Blocks: blocks}
}

// Latest returns the chain's most recent block, or nil for an empty chain.
func (c *Chain) Latest() *Block {
	if len(c.Blocks) == 0 {
		return nil
	}
	return c.Blocks[len(c.Blocks)-1]
}

// Genesis returns the chain's first (Issue) block, or nil for an empty chain.
func (c *Chain) Genesis() *Block {
	if len(c.Blocks) == 0 {
		return nil
	}
	return c.Blocks[0]
}

// Append validates next against the current head's linkage invariants and,
// if they hold, appends it. It does not re-verify blocks already in the
// chain. Callers are expected to hold the bill's lock (see Locker) for the
// duration of an append.
func (c *Chain) Append(next *Block) error {
	if err := next.VerifySelf(); err != nil {
		return err
	}
	head := c.Latest()
	if head == nil {
		if next.ID != 1 || !next.PreviousHash.IsZero() {
			return fmt.Errorf("%w: first block must be id=1 with zero previous hash", ErrBrokenLinkage)
		}
		if next.OpCode != OpIssue {
			return ErrGenesisNotIssue
		}
		c.Blocks = append(c.Blocks, next)
		return nil
	}
	if next.ID != head.ID+1 {
		return fmt.Errorf("%w: want id %d, got %d", ErrDuplicateBlockID, head.ID+1, next.ID)
	}
	if next.PreviousHash != head.Hash {
		return fmt.Errorf("%w: block %d", ErrBrokenLinkage, next.ID)
	}
	if next.Timestamp < head.Timestamp {
		return fmt.Errorf("%w: block %d", ErrNonIncreasingTime, next.ID)
	}
	c.Blocks = append(c.Blocks, next)
	return nil
}

// VerifyStructure checks every block's hash/signature and the linkage
// invariants between adjacent blocks (§3 invariants 2 and 3). It does not
// decrypt any payload.
func (c *Chain) VerifyStructure() error {
	if len(c.Blocks) == 0 {
		return ErrEmptyChain
	}
	if c.Blocks[0].OpCode != OpIssue || !c.Blocks[0].PreviousHash.IsZero() || c.Blocks[0].ID != 1 {
		return ErrGenesisNotIssue
	}
	for i, b := range c.Blocks {
		if err := b.VerifySelf(); err != nil {
			return err
		}
		if i == 0 {
			continue
		}
		prev := c.Blocks[i-1]
		if b.ID != prev.ID+1 {
			return fmt.Errorf("%w: block %d", ErrDuplicateBlockID, b.ID)
		}
		if b.PreviousHash != prev.Hash {
			return fmt.Errorf("%w: block %d", ErrBrokenLinkage, b.ID)
		}
		if b.Timestamp < prev.Timestamp {
			return fmt.Errorf("%w: block %d", ErrNonIncreasingTime, b.ID)
		}
	}
	return nil
}

// IsAccepted reports whether the chain contains an Accept block.
func (c *Chain) IsAccepted() bool {
	for _, b := range c.Blocks {
		if b.OpCode == OpAccept {
			return true
		}
	}
	return false
}

// latestOf returns the most recent block with one of the given op codes and
// its index, or (nil, -1).
func (c *Chain) latestOf(ops ...OpCode) (*Block, int) {
	set := make(map[OpCode]bool, len(ops))
	for _, o := range ops {
		set[o] = true
	}
	for i := len(c.Blocks) - 1; i >= 0; i-- {
		if set[c.Blocks[i].OpCode] {
			return c.Blocks[i], i
		}
	}
	return nil, -1
}

// followedBy reports whether any block after index idx has one of ops.
func (c *Chain) followedBy(idx int, ops ...OpCode) bool {
	set := make(map[OpCode]bool, len(ops))
	for _, o := range ops {
		set[o] = true
	}
	for _, b := range c.Blocks[idx+1:] {
		if set[b.OpCode] {
			return true
		}
	}
	return false
}

// IsRequestToAcceptPending reports whether the latest RequestToAccept has
// not expired and has not been followed by Accept or RejectToAccept.
func (c *Chain) IsRequestToAcceptPending(now uint64) bool {
	b, idx := c.latestOf(OpRequestToAccept)
	if b == nil {
		return false
	}
	if c.followedBy(idx, OpAccept, OpRejectToAccept) {
		return false
	}
	return !expired(b.Timestamp, RequestToAcceptDeadline, now)
}

// IsRequestToAcceptExpired reports whether the latest RequestToAccept has
// expired without a subsequent Accept/RejectToAccept.
func (c *Chain) IsRequestToAcceptExpired(now uint64) bool {
	b, idx := c.latestOf(OpRequestToAccept)
	if b == nil {
		return false
	}
	if c.followedBy(idx, OpAccept, OpRejectToAccept) {
		return false
	}
	return expired(b.Timestamp, RequestToAcceptDeadline, now)
}

// IsRequestToPayPending mirrors IsRequestToAcceptPending, except the
// deadline clock starts at max(block.timestamp, maturityDateTS).
func (c *Chain) IsRequestToPayPending(now uint64, maturityDateTS uint64) bool {
	b, idx := c.latestOf(OpRequestToPay)
	if b == nil {
		return false
	}
	if c.followedBy(idx, OpSell, OpRejectToPay) {
		return false
	}
	start := b.Timestamp
	if maturityDateTS > start {
		start = maturityDateTS
	}
	return !expired(start, RequestToPayDeadline, now)
}

// IsRequestToPayExpired is the expired counterpart of IsRequestToPayPending.
func (c *Chain) IsRequestToPayExpired(now uint64, maturityDateTS uint64) bool {
	b, idx := c.latestOf(OpRequestToPay)
	if b == nil {
		return false
	}
	if c.followedBy(idx, OpSell, OpRejectToPay) {
		return false
	}
	start := b.Timestamp
	if maturityDateTS > start {
		start = maturityDateTS
	}
	return expired(start, RequestToPayDeadline, now)
}

// OfferToSellWaiting describes a pending, unexpired offer to sell.
type OfferToSellWaiting struct {
	Block   *Block
	Payload OfferToSellPayload
}

// IsOfferToSellWaitingForPayment reports the latest OfferToSell if it has
// neither expired nor been followed by Sell/RejectToBuy.
func (c *Chain) IsOfferToSellWaitingForPayment(now uint64, decrypt func(*Block, any) error) (*OfferToSellWaiting, error) {
	b, idx := c.latestOf(OpOfferToSell)
	if b == nil {
		return nil, nil
	}
	if c.followedBy(idx, OpSell, OpRejectToBuy) {
		return nil, nil
	}
	if expired(b.Timestamp, OfferToSellDeadline, now) {
		return nil, nil
	}
	var payload OfferToSellPayload
	if err := decrypt(b, &payload); err != nil {
		return nil, err
	}
	return &OfferToSellWaiting{Block: b, Payload: payload}, nil
}

// IsOfferToSellExpired reports whether the latest unresolved OfferToSell has
// passed its deadline.
func (c *Chain) IsOfferToSellExpired(now uint64) bool {
	b, idx := c.latestOf(OpOfferToSell)
	if b == nil {
		return false
	}
	if c.followedBy(idx, OpSell, OpRejectToBuy) {
		return false
	}
	return expired(b.Timestamp, OfferToSellDeadline, now)
}

// RecourseWaiting describes a pending, unexpired recourse request.
type RecourseWaiting struct {
	Block   *Block
	Payload RequestRecoursePayload
}

// IsLastRequestToRecourseWaitingForPayment mirrors
// IsOfferToSellWaitingForPayment for RequestRecourse/Recourse.
func (c *Chain) IsLastRequestToRecourseWaitingForPayment(now uint64, decrypt func(*Block, any) error) (*RecourseWaiting, error) {
	b, idx := c.latestOf(OpRequestRecourse)
	if b == nil {
		return nil, nil
	}
	if c.followedBy(idx, OpRecourse, OpRejectToPayRecourse) {
		return nil, nil
	}
	if expired(b.Timestamp, RequestRecourseDeadline, now) {
		return nil, nil
	}
	var payload RequestRecoursePayload
	if err := decrypt(b, &payload); err != nil {
		return nil, err
	}
	return &RecourseWaiting{Block: b, Payload: payload}, nil
}

// IsRequestRecourseExpired reports whether the latest unresolved
// RequestRecourse has passed its deadline.
func (c *Chain) IsRequestRecourseExpired(now uint64) bool {
	b, idx := c.latestOf(OpRequestRecourse)
	if b == nil {
		return false
	}
	if c.followedBy(idx, OpRecourse, OpRejectToPayRecourse) {
		return false
	}
	return expired(b.Timestamp, RequestRecourseDeadline, now)
}

// IsRequestRecourseRejected reports whether the latest RequestRecourse was
// resolved by RejectToPayRecourse (as opposed to Recourse or expiry).
func (c *Chain) IsRequestRecourseRejected() bool {
	for i := len(c.Blocks) - 1; i >= 0; i-- {
		switch c.Blocks[i].OpCode {
		case OpRejectToPayRecourse:
			return true
		case OpRecourse, OpRequestRecourse:
			return false
		}
	}
	return false
}

// IsRequestToAcceptRejected reports whether the drawee has ever rejected a
// request to accept. RejectToAccept is terminal (§4.2: Accept requires the
// bill not already accepted, and nothing reopens a rejected request).
func (c *Chain) IsRequestToAcceptRejected() bool {
	for _, b := range c.Blocks {
		if b.OpCode == OpRejectToAccept {
			return true
		}
	}
	return false
}

// IsRequestToPayRejected reports whether the drawee has ever rejected a
// request to pay. RejectToPay is terminal, mirroring IsRequestToAcceptRejected.
func (c *Chain) IsRequestToPayRejected() bool {
	for _, b := range c.Blocks {
		if b.OpCode == OpRejectToPay {
			return true
		}
	}
	return false
}

// HolderHistory walks the chain and returns the ordered sequence of node ids
// that have held the bill, starting with the genesis payee.
func (c *Chain) HolderHistory(decrypt func(*Block, any) error, payee NodeID) ([]NodeID, error) {
	holders := []NodeID{payee}
	for _, b := range c.Blocks {
		switch b.OpCode {
		case OpEndorse:
			var p EndorsePayload
			if err := decrypt(b, &p); err != nil {
				return nil, err
			}
			holders = append(holders, p.Endorsee.NodeID)
		case OpSell:
			var p SellPayload
			if err := decrypt(b, &p); err != nil {
				return nil, err
			}
			holders = append(holders, p.Buyer.NodeID)
		case OpMint:
			var p MintPayload
			if err := decrypt(b, &p); err != nil {
				return nil, err
			}
			holders = append(holders, p.Mint.NodeID)
		case OpRecourse:
			var p RecoursePayload
			if err := decrypt(b, &p); err != nil {
				return nil, err
			}
			holders = append(holders, p.Recoursee.NodeID)
		}
	}
	return holders, nil
}

// Holder returns the current right-bearer: the last entry of HolderHistory.
func (c *Chain) Holder(decrypt func(*Block, any) error, payee NodeID) (NodeID, error) {
	hist, err := c.HolderHistory(decrypt, payee)
	if err != nil {
		return "", err
	}
	return hist[len(hist)-1], nil
}

// PastHolders returns the holders preceding the given node id, used to
// validate that a proposed recoursee actually held the bill before.
func (c *Chain) PastHolders(decrypt func(*Block, any) error, payee NodeID, nodeID NodeID) ([]NodeID, error) {
	hist, err := c.HolderHistory(decrypt, payee)
	if err != nil {
		return nil, err
	}
	for i, h := range hist {
		if h == nodeID {
			return hist[:i], nil
		}
	}
	return nil, nil
}

// ParticipantFirstSeenHeight returns, for every node id that has ever
// appeared in the chain (as drawer, drawee, payee, endorsee, buyer, mint or
// recoursee), the 1-based block id at which it first appeared. Used by the
// transport fan-out to decide whether a recipient needs the full chain or
// just the latest block (§4.4).
func (c *Chain) ParticipantFirstSeenHeight(decrypt func(*Block, any) error) (map[NodeID]uint64, error) {
	first := make(map[NodeID]uint64)
	record := func(id NodeID, height uint64) {
		if id == "" {
			return
		}
		if _, ok := first[id]; !ok {
			first[id] = height
		}
	}
	for _, b := range c.Blocks {
		switch b.OpCode {
		case OpIssue:
			var p IssuePayload
			if err := decrypt(b, &p); err != nil {
				return nil, err
			}
			record(p.Drawer.NodeID, b.ID)
			record(p.Drawee.NodeID, b.ID)
			record(p.Payee.NodeID, b.ID)
		case OpEndorse:
			var p EndorsePayload
			if err := decrypt(b, &p); err != nil {
				return nil, err
			}
			record(p.Endorsee.NodeID, b.ID)
		case OpOfferToSell:
			var p OfferToSellPayload
			if err := decrypt(b, &p); err != nil {
				return nil, err
			}
			record(p.Buyer.NodeID, b.ID)
		case OpSell:
			var p SellPayload
			if err := decrypt(b, &p); err != nil {
				return nil, err
			}
			record(p.Buyer.NodeID, b.ID)
		case OpMint:
			var p MintPayload
			if err := decrypt(b, &p); err != nil {
				return nil, err
			}
			record(p.Mint.NodeID, b.ID)
		case OpRequestRecourse:
			var p RequestRecoursePayload
			if err := decrypt(b, &p); err != nil {
				return nil, err
			}
			record(p.Recoursee.NodeID, b.ID)
		case OpRecourse:
			var p RecoursePayload
			if err := decrypt(b, &p); err != nil {
				return nil, err
			}
			record(p.Recoursee.NodeID, b.ID)
		}
		record(b.SignatoryNodeID, b.ID)
	}
	return first, nil
}
