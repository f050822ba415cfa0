package billview

import (
	"testing"

	"github.com/bitbill-network/ebill-core/core/chain"
)

type testBill struct {
	billKeys, drawer, drawee, payee *chain.KeyPair
}

func newTestBill(t *testing.T) *testBill {
	t.Helper()
	mk := func() *chain.KeyPair {
		kp, err := chain.NewKeyPair()
		if err != nil {
			t.Fatalf("NewKeyPair: %v", err)
		}
		return kp
	}
	return &testBill{billKeys: mk(), drawer: mk(), drawee: mk(), payee: mk()}
}

func (tb *testBill) decrypt(b *chain.Block, out any) error {
	return b.DecryptData(tb.billKeys.Private, out)
}

func (tb *testBill) issueChain(t *testing.T, ts uint64) *chain.Chain {
	t.Helper()
	payload := chain.IssuePayload{
		BillType:      chain.BillTypeThreeParties,
		BillPublicKey: tb.billKeys.Public.SerializeCompressed(),
		Drawer:        chain.Party{NodeID: chain.NodeIDFromPublicKey(tb.drawer.Public), Name: "Drawer"},
		Drawee:        chain.Party{NodeID: chain.NodeIDFromPublicKey(tb.drawee.Public), Name: "Drawee"},
		Payee:         chain.Party{NodeID: chain.NodeIDFromPublicKey(tb.payee.Public), Name: "Payee"},
		Sum:           1000,
		Currency:      "sat",
		IssueDate:     "2024-01-01",
		MaturityDate:  "2024-04-01",
	}
	genesis, err := chain.NewBlock(chain.OpIssue, payload, nil, tb.billKeys.Public, tb.drawer, chain.NodeIDFromPublicKey(tb.drawer.Public), ts)
	if err != nil {
		t.Fatalf("NewBlock(Issue): %v", err)
	}
	c := chain.NewChain(chain.NewBillID(tb.billKeys.Public), nil)
	if err := c.Append(genesis); err != nil {
		t.Fatalf("Append(genesis): %v", err)
	}
	return c
}

func TestAssembleFreshlyIssuedBill(t *testing.T) {
	tb := newTestBill(t)
	c := tb.issueChain(t, 1000)

	v, err := Assemble(c, tb.decrypt, 1000)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if v.Sum != 1000 || v.Currency != "sat" {
		t.Fatalf("unexpected issue fields: %+v", v)
	}
	if v.Accepted {
		t.Fatalf("fresh bill should not be accepted")
	}
	if v.Holder != chain.NodeIDFromPublicKey(tb.payee.Public) {
		t.Fatalf("expected payee to be initial holder")
	}
	if v.Endorsed {
		t.Fatalf("fresh bill should not be endorsed")
	}
}

func TestAssembleAfterAcceptAndEndorse(t *testing.T) {
	tb := newTestBill(t)
	c := tb.issueChain(t, 1000)

	accept, err := chain.NewBlock(chain.OpAccept, chain.AcceptPayload{}, c.Latest(), tb.billKeys.Public, tb.drawee, chain.NodeIDFromPublicKey(tb.drawee.Public), 1001)
	if err != nil {
		t.Fatalf("NewBlock(Accept): %v", err)
	}
	if err := c.Append(accept); err != nil {
		t.Fatalf("Append(accept): %v", err)
	}

	endorsee, _ := chain.NewKeyPair()
	endorse, err := chain.NewBlock(chain.OpEndorse, chain.EndorsePayload{Endorsee: chain.Party{NodeID: chain.NodeIDFromPublicKey(endorsee.Public)}}, c.Latest(), tb.billKeys.Public, tb.payee, chain.NodeIDFromPublicKey(tb.payee.Public), 1002)
	if err != nil {
		t.Fatalf("NewBlock(Endorse): %v", err)
	}
	if err := c.Append(endorse); err != nil {
		t.Fatalf("Append(endorse): %v", err)
	}

	v, err := Assemble(c, tb.decrypt, 1002)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !v.Accepted {
		t.Fatalf("expected accepted")
	}
	if !v.Endorsed {
		t.Fatalf("expected endorsed")
	}
	if v.Holder != chain.NodeIDFromPublicKey(endorsee.Public) {
		t.Fatalf("expected endorsee as current holder")
	}
	if v.BlockHeight != 3 {
		t.Fatalf("expected block height 3, got %d", v.BlockHeight)
	}
}
