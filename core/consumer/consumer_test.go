package consumer

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/bitbill-network/ebill-core/core/billcache"
	"github.com/bitbill-network/ebill-core/core/chain"
	"github.com/bitbill-network/ebill-core/core/store/memory"
	"github.com/bitbill-network/ebill-core/core/transport"
)

func TestHandlesEventFiltersByRecipient(t *testing.T) {
	env := transport.Envelope{RecipientNodeID: "node-a"}
	if !handlesEvent("node-a", env) {
		t.Fatal("expected node-a to handle its own envelope")
	}
	if handlesEvent("node-b", env) {
		t.Fatal("expected node-b to ignore an envelope addressed to node-a")
	}
}

func TestHandleAppendsNewBlocksOnce(t *testing.T) {
	ctx := context.Background()
	blocks := memory.NewBlockStore()
	bills := memory.NewBillStore()
	offsets := memory.NewNostrOffsetStore()
	cache, err := billcache.New(4)
	if err != nil {
		t.Fatalf("billcache.New: %v", err)
	}

	billKeys, _ := chain.NewKeyPair()
	billID := chain.NewBillID(billKeys.Public)
	drawer, _ := chain.NewKeyPair()
	drawerID := chain.NodeIDFromPublicKey(drawer.Public)

	payload := chain.IssuePayload{
		BillType: chain.BillTypeThreeParties,
		Drawer:   chain.Party{NodeID: drawerID},
		Drawee:   chain.Party{NodeID: "drawee"},
		Payee:    chain.Party{NodeID: "payee"},
		Sum:      100, Currency: "sat",
		IssueDate: "2026-01-01", MaturityDate: "2026-04-01",
	}
	genesis, err := chain.NewBlock(chain.OpIssue, payload, nil, billKeys.Public, drawer, drawerID, 1000)
	if err != nil {
		t.Fatalf("NewBlock: %v", err)
	}

	c := &Consumer{
		NodeID:  "payee",
		Offsets: offsets,
		Blocks:  blocks,
		Bills:   bills,
		Cache:   cache,
		Now:     func() uint64 { return 1000 },
		Log:     logrus.NewEntry(logrus.New()),
	}

	env := transport.Envelope{SenderNodeID: drawerID, RecipientNodeID: "payee", BillID: billID, Blocks: []*chain.Block{genesis}}
	blob, err := env.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if err := c.handle(ctx, blob); err != nil {
		t.Fatalf("handle: %v", err)
	}
	got, err := blocks.GetLatestBlock(ctx, billID)
	if err != nil || got.ID != 1 {
		t.Fatalf("expected genesis block stored, err=%v got=%+v", err, got)
	}

	// Re-delivering the same envelope must be a no-op (dedup by event id).
	if err := c.handle(ctx, blob); err != nil {
		t.Fatalf("handle (replay): %v", err)
	}
	chainAfter, err := blocks.GetChain(ctx, billID)
	if err != nil {
		t.Fatalf("GetChain: %v", err)
	}
	if len(chainAfter.Blocks) != 1 {
		t.Fatalf("expected replay to be deduped, got %d blocks", len(chainAfter.Blocks))
	}
}
