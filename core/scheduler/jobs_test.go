package scheduler

import (
	"context"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/sirupsen/logrus"

	"github.com/bitbill-network/ebill-core/core/action"
	"github.com/bitbill-network/ebill-core/core/bill"
	"github.com/bitbill-network/ebill-core/core/billcache"
	"github.com/bitbill-network/ebill-core/core/bitcoin"
	"github.com/bitbill-network/ebill-core/core/chain"
	"github.com/bitbill-network/ebill-core/core/store/memory"
)

type fakeBitcoin struct{ paid bool }

func (f *fakeBitcoin) CheckAddress(ctx context.Context, address string) (bitcoin.AddressStatus, error) {
	return bitcoin.AddressStatus{Address: address, Paid: f.paid, FundedSatoshi: 1000}, nil
}
func (f *fakeBitcoin) MempoolLink(address string) string { return "https://example.invalid/" + address }

func newSigner(t *testing.T) action.Signer {
	t.Helper()
	kp, err := chain.NewKeyPair()
	if err != nil {
		t.Fatalf("NewKeyPair: %v", err)
	}
	return action.Signer{Keys: kp, SignatoryNodeID: chain.NodeIDFromPublicKey(kp.Public)}
}

func TestCheckTimeoutsNotifiesOnce(t *testing.T) {
	ctx := context.Background()
	cache, _ := billcache.New(8)
	blocks := memory.NewBlockStore()
	bills := memory.NewBillStore()
	notifications := memory.NewNotificationStore()
	engine := action.New(blocks, bills, notifications, cache)

	drawer := newSigner(t)
	drawee := newSigner(t)
	payee := newSigner(t)
	billKeys, _ := chain.NewKeyPair()

	data := bill.IssueData{
		Type:         chain.BillTypeThreeParties,
		Drawer:       chain.Party{NodeID: drawer.SignatoryNodeID},
		Drawee:       chain.Party{NodeID: drawee.SignatoryNodeID},
		Payee:        chain.Party{NodeID: payee.SignatoryNodeID},
		Sum:          1000, Currency: "sat",
		IssueDate: "2026-01-01", MaturityDate: "2026-04-01",
	}
	v, err := engine.Issue(ctx, data, billKeys, drawer, 1000)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := engine.RequestToAccept(ctx, v.BillID, payee, 1100); err != nil {
		t.Fatalf("RequestToAccept: %v", err)
	}

	deps := &Deps{
		Engine:        engine,
		Bitcoin:       &fakeBitcoin{},
		Bills:         bills,
		Notifications: notifications,
		Network:       &chaincfg.MainNetParams,
		Now:           func() uint64 { return 1100 + uint64(chain.RequestToAcceptDeadline.Seconds()) + 1 },
		Log:           logrus.New(),
	}
	job := CheckTimeouts(deps)
	if err := job.Run(ctx); err != nil {
		t.Fatalf("CheckTimeouts: %v", err)
	}
	active, err := notifications.GetActiveForNode(ctx, drawee.SignatoryNodeID)
	if err != nil || len(active) != 1 {
		t.Fatalf("expected one notification, got %d (err=%v)", len(active), err)
	}

	// Running again must not create a duplicate (dedup by block height).
	if err := job.Run(ctx); err != nil {
		t.Fatalf("CheckTimeouts (second run): %v", err)
	}
	active, _ = notifications.GetActiveForNode(ctx, drawee.SignatoryNodeID)
	if len(active) != 1 {
		t.Fatalf("expected dedup to prevent a second notification, got %d", len(active))
	}
}
