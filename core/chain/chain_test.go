package chain

import (
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// testBill bundles the key material a test needs to build and read a chain.
type testBill struct {
	billKeys   *KeyPair
	drawer     *KeyPair
	drawee     *KeyPair
	payee      *KeyPair
}

func newTestBill(t *testing.T) *testBill {
	t.Helper()
	mk := func() *KeyPair {
		kp, err := NewKeyPair()
		if err != nil {
			t.Fatalf("NewKeyPair: %v", err)
		}
		return kp
	}
	return &testBill{billKeys: mk(), drawer: mk(), drawee: mk(), payee: mk()}
}

func (tb *testBill) decrypt(b *Block, out any) error {
	return b.DecryptData(tb.billKeys.Private, out)
}

func (tb *testBill) issueChain(t *testing.T, ts uint64) *Chain {
	t.Helper()
	payload := IssuePayload{
		BillType:      BillTypeThreeParties,
		BillPublicKey: tb.billKeys.Public.SerializeCompressed(),
		Drawer:        Party{NodeID: NodeIDFromPublicKey(tb.drawer.Public), Name: "Drawer"},
		Drawee:        Party{NodeID: NodeIDFromPublicKey(tb.drawee.Public), Name: "Drawee"},
		Payee:         Party{NodeID: NodeIDFromPublicKey(tb.payee.Public), Name: "Payee"},
		Sum:           1000,
		Currency:      "sat",
		IssueDate:     "2024-01-01",
		MaturityDate:  "2024-04-01",
	}
	genesis, err := NewBlock(OpIssue, payload, nil, tb.billKeys.Public, tb.drawer, NodeIDFromPublicKey(tb.drawer.Public), ts)
	if err != nil {
		t.Fatalf("NewBlock(Issue): %v", err)
	}
	c := NewChain(NewBillID(tb.billKeys.Public), nil)
	if err := c.Append(genesis); err != nil {
		t.Fatalf("Append(genesis): %v", err)
	}
	return c
}

func TestChainAppendLinkage(t *testing.T) {
	tb := newTestBill(t)
	c := tb.issueChain(t, 1000)

	accept, err := NewBlock(OpAccept, AcceptPayload{}, c.Latest(), tb.billKeys.Public, tb.drawee, NodeIDFromPublicKey(tb.drawee.Public), 1001)
	if err != nil {
		t.Fatalf("NewBlock(Accept): %v", err)
	}
	if err := c.Append(accept); err != nil {
		t.Fatalf("Append(accept): %v", err)
	}
	if err := c.VerifyStructure(); err != nil {
		t.Fatalf("VerifyStructure: %v", err)
	}
	if !c.IsAccepted() {
		t.Fatalf("expected chain to be accepted")
	}
}

func TestChainAppendRejectsWrongID(t *testing.T) {
	tb := newTestBill(t)
	c := tb.issueChain(t, 1000)

	bogus := *c.Latest()
	bogus.ID = 5 // not head.ID+1
	bogus.PreviousHash = c.Latest().Hash
	hash := computeHash(bogus.ID, OpAccept, bogus.PreviousHash, bogus.Data, 1001, tb.drawee.Public.SerializeCompressed(), NodeIDFromPublicKey(tb.drawee.Public))
	bogus.OpCode = OpAccept
	bogus.Hash = hash
	bogus.Timestamp = 1001
	bogus.PublicKey = tb.drawee.Public.SerializeCompressed()
	bogus.SignatoryNodeID = NodeIDFromPublicKey(tb.drawee.Public)
	bogus.Signature = Sign(tb.drawee.Private, hash)

	if err := c.Append(&bogus); err == nil {
		t.Fatalf("expected append to fail for out-of-sequence id")
	}
}

func TestChainAppendRejectsBadSignature(t *testing.T) {
	tb := newTestBill(t)
	c := tb.issueChain(t, 1000)

	accept, err := NewBlock(OpAccept, AcceptPayload{}, c.Latest(), tb.billKeys.Public, tb.drawee, NodeIDFromPublicKey(tb.drawee.Public), 1001)
	if err != nil {
		t.Fatalf("NewBlock(Accept): %v", err)
	}
	accept.Signature[0] ^= 0xFF
	if err := c.Append(accept); err == nil {
		t.Fatalf("expected append to fail for tampered signature")
	}
}

func TestRequestToAcceptExpiry(t *testing.T) {
	tb := newTestBill(t)
	c := tb.issueChain(t, 1000)

	req, err := NewBlock(OpRequestToAccept, RequestToAcceptPayload{}, c.Latest(), tb.billKeys.Public, tb.payee, NodeIDFromPublicKey(tb.payee.Public), 1100)
	if err != nil {
		t.Fatalf("NewBlock: %v", err)
	}
	if err := c.Append(req); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if !c.IsRequestToAcceptPending(1100) {
		t.Fatalf("expected request to accept to be pending right after creation")
	}
	expiredAt := uint64(1100) + uint64(RequestToAcceptDeadline.Seconds()) + 1
	if c.IsRequestToAcceptPending(expiredAt) {
		t.Fatalf("expected request to accept to have expired")
	}
	if !c.IsRequestToAcceptExpired(expiredAt) {
		t.Fatalf("expected IsRequestToAcceptExpired to report true")
	}
}

func TestHolderHistoryAfterEndorsement(t *testing.T) {
	tb := newTestBill(t)
	c := tb.issueChain(t, 1000)
	endorsee, _ := NewKeyPair()

	block, err := NewBlock(OpEndorse, EndorsePayload{Endorsee: Party{NodeID: NodeIDFromPublicKey(endorsee.Public)}}, c.Latest(), tb.billKeys.Public, tb.payee, NodeIDFromPublicKey(tb.payee.Public), 1200)
	if err != nil {
		t.Fatalf("NewBlock: %v", err)
	}
	if err := c.Append(block); err != nil {
		t.Fatalf("Append: %v", err)
	}

	payeeID := NodeIDFromPublicKey(tb.payee.Public)
	holder, err := c.Holder(tb.decrypt, payeeID)
	if err != nil {
		t.Fatalf("Holder: %v", err)
	}
	if holder != NodeIDFromPublicKey(endorsee.Public) {
		t.Fatalf("expected endorsee to be holder, got %s", holder)
	}

	past, err := c.PastHolders(tb.decrypt, payeeID, NodeIDFromPublicKey(endorsee.Public))
	if err != nil {
		t.Fatalf("PastHolders: %v", err)
	}
	if len(past) != 1 || past[0] != payeeID {
		t.Fatalf("expected payee as sole past holder, got %v", past)
	}
}

func TestDerivePaymentAddressRejectsInfinity(t *testing.T) {
	kp, _ := NewKeyPair()
	var negPriv secp256k1.ModNScalar
	negPriv.Set(&kp.Private.Key)
	negPriv.Negate()
	negated := secp256k1.NewPrivateKey(&negPriv)

	if _, err := addPublicKeys(kp.Public, negated.PubKey()); err != ErrInvalidPaymentKey {
		t.Fatalf("expected ErrInvalidPaymentKey, got %v", err)
	}
}
