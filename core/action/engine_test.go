package action

import (
	"context"
	"errors"
	"testing"

	"github.com/bitbill-network/ebill-core/core/bill"
	"github.com/bitbill-network/ebill-core/core/billcache"
	"github.com/bitbill-network/ebill-core/core/chain"
	"github.com/bitbill-network/ebill-core/core/store/memory"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cache, err := billcache.New(16)
	if err != nil {
		t.Fatalf("billcache.New: %v", err)
	}
	return New(memory.NewBlockStore(), memory.NewBillStore(), memory.NewNotificationStore(), cache)
}

func mkSigner(t *testing.T) (Signer, *chain.KeyPair) {
	t.Helper()
	kp, err := chain.NewKeyPair()
	if err != nil {
		t.Fatalf("NewKeyPair: %v", err)
	}
	return Signer{Keys: kp, SignatoryNodeID: chain.NodeIDFromPublicKey(kp.Public)}, kp
}

func threePartyIssueData(drawer, drawee, payee Signer) bill.IssueData {
	return bill.IssueData{
		Type:         chain.BillTypeThreeParties,
		Drawer:       chain.Party{NodeID: drawer.SignatoryNodeID, Name: "Drawer"},
		Drawee:       chain.Party{NodeID: drawee.SignatoryNodeID, Name: "Drawee"},
		Payee:        chain.Party{NodeID: payee.SignatoryNodeID, Name: "Payee"},
		Sum:          1000,
		Currency:     "sat",
		IssueDate:    "2026-01-01",
		MaturityDate: "2026-04-01",
	}
}

func TestEngineIssueThenAccept(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	drawer, _ := mkSigner(t)
	drawee, _ := mkSigner(t)
	payee, _ := mkSigner(t)
	billKeys, _ := chain.NewKeyPair()

	v, err := e.Issue(ctx, threePartyIssueData(drawer, drawee, payee), billKeys, drawer, 1000)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if v.Accepted {
		t.Fatalf("three-party bill should not auto-accept")
	}

	if _, err := e.Accept(ctx, v.BillID, payee, 1001); !errors.Is(err, ErrNotDrawee) {
		t.Fatalf("expected ErrNotDrawee, got %v", err)
	}

	v, err = e.Accept(ctx, v.BillID, drawee, 1001)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if !v.Accepted {
		t.Fatalf("expected accepted after Accept")
	}

	if _, err := e.Accept(ctx, v.BillID, drawee, 1002); !errors.Is(err, ErrAlreadyAccepted) {
		t.Fatalf("expected ErrAlreadyAccepted, got %v", err)
	}
}

func TestEngineSelfDraftedAutoAccepts(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	drawer, _ := mkSigner(t)
	payee, _ := mkSigner(t)
	billKeys, _ := chain.NewKeyPair()

	data := bill.IssueData{
		Type:         chain.BillTypeSelfDrafted,
		Drawer:       chain.Party{NodeID: drawer.SignatoryNodeID, Name: "Drawer"},
		Drawee:       chain.Party{NodeID: drawer.SignatoryNodeID, Name: "Drawer"},
		Payee:        chain.Party{NodeID: payee.SignatoryNodeID, Name: "Payee"},
		Sum:          500,
		Currency:     "sat",
		IssueDate:    "2026-01-01",
		MaturityDate: "2026-04-01",
	}
	v, err := e.Issue(ctx, data, billKeys, drawer, 1000)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !v.Accepted {
		t.Fatalf("expected self-drafted bill to auto-accept")
	}
	if v.BlockHeight != 2 {
		t.Fatalf("expected 2 blocks (issue+accept), got %d", v.BlockHeight)
	}
}

func TestEngineEndorseTransfersHolder(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	drawer, _ := mkSigner(t)
	drawee, _ := mkSigner(t)
	payee, _ := mkSigner(t)
	endorsee, _ := mkSigner(t)
	billKeys, _ := chain.NewKeyPair()

	v, err := e.Issue(ctx, threePartyIssueData(drawer, drawee, payee), billKeys, drawer, 1000)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := e.Endorse(ctx, v.BillID, chain.Party{NodeID: endorsee.SignatoryNodeID}, drawee, 1001); !errors.Is(err, ErrNotHolder) {
		t.Fatalf("expected ErrNotHolder, got %v", err)
	}

	v, err = e.Endorse(ctx, v.BillID, chain.Party{NodeID: endorsee.SignatoryNodeID}, payee, 1001)
	if err != nil {
		t.Fatalf("Endorse: %v", err)
	}
	if v.Holder != endorsee.SignatoryNodeID {
		t.Fatalf("expected endorsee as new holder, got %s", v.Holder)
	}
}

func TestEngineOfferToSellThenSell(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	drawer, _ := mkSigner(t)
	drawee, _ := mkSigner(t)
	payee, _ := mkSigner(t)
	buyer, _ := mkSigner(t)
	billKeys, _ := chain.NewKeyPair()

	v, err := e.Issue(ctx, threePartyIssueData(drawer, drawee, payee), billKeys, drawer, 1000)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	v, err = e.Accept(ctx, v.BillID, drawee, 1001)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}

	buyerParty := chain.Party{NodeID: buyer.SignatoryNodeID, Name: "Buyer"}
	v, err = e.OfferToSell(ctx, v.BillID, buyerParty, 900, "sat", payee, 1002)
	if err != nil {
		t.Fatalf("OfferToSell: %v", err)
	}
	if v.OfferToSellWaiting == nil {
		t.Fatalf("expected a pending offer to sell")
	}

	// The buyer paid, but only the seller (current holder) who made the
	// offer may append the completing Sell block.
	if _, err := e.Sell(ctx, v.BillID, "addr1", buyer, 1003); !errors.Is(err, ErrNotHolder) {
		t.Fatalf("expected ErrNotHolder, got %v", err)
	}

	if _, err := e.Sell(ctx, v.BillID, "addr1", payee, 1003); !errors.Is(err, ErrBillNotPaid) {
		t.Fatalf("expected ErrBillNotPaid, got %v", err)
	}

	if err := e.Bills.SetToPaid(ctx, v.BillID, "addr1"); err != nil {
		t.Fatalf("SetToPaid: %v", err)
	}
	v, err = e.Sell(ctx, v.BillID, "addr1", payee, 1004)
	if err != nil {
		t.Fatalf("Sell: %v", err)
	}
	if !v.Sold {
		t.Fatalf("expected bill sold after Sell")
	}
}

func TestEngineRejectToBuy(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	drawer, _ := mkSigner(t)
	drawee, _ := mkSigner(t)
	payee, _ := mkSigner(t)
	buyer, _ := mkSigner(t)
	billKeys, _ := chain.NewKeyPair()

	v, err := e.Issue(ctx, threePartyIssueData(drawer, drawee, payee), billKeys, drawer, 1000)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	v, err = e.Accept(ctx, v.BillID, drawee, 1001)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	v, err = e.OfferToSell(ctx, v.BillID, chain.Party{NodeID: buyer.SignatoryNodeID}, 900, "sat", payee, 1002)
	if err != nil {
		t.Fatalf("OfferToSell: %v", err)
	}

	if _, err := e.RejectToBuy(ctx, v.BillID, "too slow", payee, 1003); !errors.Is(err, ErrNotBuyer) {
		t.Fatalf("expected ErrNotBuyer, got %v", err)
	}

	v, err = e.RejectToBuy(ctx, v.BillID, "changed my mind", buyer, 1003)
	if err != nil {
		t.Fatalf("RejectToBuy: %v", err)
	}
	if v.OfferToSellWaiting != nil {
		t.Fatalf("expected no pending offer after reject")
	}
}

func TestEngineMint(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	drawer, _ := mkSigner(t)
	drawee, _ := mkSigner(t)
	payee, _ := mkSigner(t)
	institution, _ := mkSigner(t)
	billKeys, _ := chain.NewKeyPair()

	v, err := e.Issue(ctx, threePartyIssueData(drawer, drawee, payee), billKeys, drawer, 1000)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	v, err = e.Accept(ctx, v.BillID, drawee, 1001)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}

	mintParty := chain.Party{NodeID: institution.SignatoryNodeID, Name: "Institution"}
	v, err = e.Mint(ctx, v.BillID, mintParty, 950, "sat", payee, 1002)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if !v.Minted {
		t.Fatalf("expected minted after Mint")
	}

	if _, err := e.Mint(ctx, v.BillID, mintParty, 950, "sat", institution, 1003); !errors.Is(err, ErrAlreadyMinted) {
		t.Fatalf("expected ErrAlreadyMinted, got %v", err)
	}
}

func TestEngineRequestRecourseThenRecourse(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	drawer, _ := mkSigner(t)
	drawee, _ := mkSigner(t)
	payee, _ := mkSigner(t)
	endorsee, _ := mkSigner(t)
	billKeys, _ := chain.NewKeyPair()

	v, err := e.Issue(ctx, threePartyIssueData(drawer, drawee, payee), billKeys, drawer, 1000)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	v, err = e.Accept(ctx, v.BillID, drawee, 1001)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	v, err = e.Endorse(ctx, v.BillID, chain.Party{NodeID: endorsee.SignatoryNodeID}, payee, 1002)
	if err != nil {
		t.Fatalf("Endorse: %v", err)
	}
	// now > the bill's 2026-04-01 maturity date, so RequestToPay clears the
	// maturity gate.
	v, err = e.RequestToPay(ctx, v.BillID, "sat", endorsee, 2000000000)
	if err != nil {
		t.Fatalf("RequestToPay: %v", err)
	}
	v, err = e.RejectToPay(ctx, v.BillID, "insufficient funds", drawee, 2000000001)
	if err != nil {
		t.Fatalf("RejectToPay: %v", err)
	}

	recourseeParty := chain.Party{NodeID: payee.SignatoryNodeID}
	v, err = e.RequestRecourse(ctx, v.BillID, recourseeParty, chain.RecourseReasonPay, endorsee, 2000000002)
	if err != nil {
		t.Fatalf("RequestRecourse: %v", err)
	}
	if v.RecourseWaiting == nil {
		t.Fatalf("expected a pending recourse request")
	}

	// The recoursee being pursued paid, but only the recourser (current
	// holder) who filed the request may complete it.
	if _, err := e.Recourse(ctx, v.BillID, "addr2", payee, 2000000003); !errors.Is(err, ErrNotHolder) {
		t.Fatalf("expected ErrNotHolder, got %v", err)
	}

	if _, err := e.Recourse(ctx, v.BillID, "addr2", endorsee, 2000000003); !errors.Is(err, ErrBillNotPaid) {
		t.Fatalf("expected ErrBillNotPaid, got %v", err)
	}

	if err := e.Bills.SetToPaid(ctx, v.BillID, "addr2"); err != nil {
		t.Fatalf("SetToPaid: %v", err)
	}
	v, err = e.Recourse(ctx, v.BillID, "addr2", endorsee, 2000000004)
	if err != nil {
		t.Fatalf("Recourse: %v", err)
	}
	if !v.Recoursed {
		t.Fatalf("expected recoursed after Recourse")
	}
}

func TestEngineRejectToPayRecourse(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	drawer, _ := mkSigner(t)
	drawee, _ := mkSigner(t)
	payee, _ := mkSigner(t)
	endorsee, _ := mkSigner(t)
	billKeys, _ := chain.NewKeyPair()

	v, err := e.Issue(ctx, threePartyIssueData(drawer, drawee, payee), billKeys, drawer, 1000)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	v, err = e.Accept(ctx, v.BillID, drawee, 1001)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	v, err = e.Endorse(ctx, v.BillID, chain.Party{NodeID: endorsee.SignatoryNodeID}, payee, 1002)
	if err != nil {
		t.Fatalf("Endorse: %v", err)
	}
	v, err = e.RequestToPay(ctx, v.BillID, "sat", endorsee, 2000000000)
	if err != nil {
		t.Fatalf("RequestToPay: %v", err)
	}
	v, err = e.RejectToPay(ctx, v.BillID, "insufficient funds", drawee, 2000000001)
	if err != nil {
		t.Fatalf("RejectToPay: %v", err)
	}
	recourseeParty := chain.Party{NodeID: payee.SignatoryNodeID}
	v, err = e.RequestRecourse(ctx, v.BillID, recourseeParty, chain.RecourseReasonPay, endorsee, 2000000002)
	if err != nil {
		t.Fatalf("RequestRecourse: %v", err)
	}

	if _, err := e.RejectToPayRecourse(ctx, v.BillID, "can't pay", endorsee, 2000000003); !errors.Is(err, ErrNotRecoursee) {
		t.Fatalf("expected ErrNotRecoursee, got %v", err)
	}

	v, err = e.RejectToPayRecourse(ctx, v.BillID, "can't pay", payee, 2000000003)
	if err != nil {
		t.Fatalf("RejectToPayRecourse: %v", err)
	}
	if v.RecourseWaiting != nil {
		t.Fatalf("expected no pending recourse after reject")
	}
}

func TestEngineRequestToPayRespectsMaturity(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	drawer, _ := mkSigner(t)
	drawee, _ := mkSigner(t)
	payee, _ := mkSigner(t)
	billKeys, _ := chain.NewKeyPair()

	v, err := e.Issue(ctx, threePartyIssueData(drawer, drawee, payee), billKeys, drawer, 1000)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	v, err = e.Accept(ctx, v.BillID, drawee, 1001)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}

	if _, err := e.RequestToPay(ctx, v.BillID, "sat", payee, 1002); !errors.Is(err, ErrRequestToPayBeforeMaturity) {
		t.Fatalf("expected ErrRequestToPayBeforeMaturity, got %v", err)
	}

	v, err = e.RequestToPay(ctx, v.BillID, "sat", payee, 2000000000)
	if err != nil {
		t.Fatalf("RequestToPay at/after maturity: %v", err)
	}
	if !v.RequestToPayPending {
		t.Fatalf("expected a pending request to pay")
	}
}

func TestEngineRequestRecourseRequiresExpiredOrRejected(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	drawer, _ := mkSigner(t)
	drawee, _ := mkSigner(t)
	payee, _ := mkSigner(t)
	endorsee, _ := mkSigner(t)
	billKeys, _ := chain.NewKeyPair()

	v, err := e.Issue(ctx, threePartyIssueData(drawer, drawee, payee), billKeys, drawer, 1000)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	v, err = e.Accept(ctx, v.BillID, drawee, 1001)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	v, err = e.Endorse(ctx, v.BillID, chain.Party{NodeID: endorsee.SignatoryNodeID}, payee, 1002)
	if err != nil {
		t.Fatalf("Endorse: %v", err)
	}
	v, err = e.RequestToPay(ctx, v.BillID, "sat", endorsee, 2000000000)
	if err != nil {
		t.Fatalf("RequestToPay: %v", err)
	}

	recourseeParty := chain.Party{NodeID: payee.SignatoryNodeID}
	if _, err := e.RequestRecourse(ctx, v.BillID, recourseeParty, chain.RecourseReasonPay, endorsee, 2000000001); !errors.Is(err, ErrRecourseNotYetAvailable) {
		t.Fatalf("expected ErrRecourseNotYetAvailable, got %v", err)
	}

	if _, err := e.RejectToPay(ctx, v.BillID, "no funds", drawee, 2000000002); err != nil {
		t.Fatalf("RejectToPay: %v", err)
	}

	if _, err := e.RequestRecourse(ctx, v.BillID, recourseeParty, chain.RecourseReasonPay, endorsee, 2000000003); err != nil {
		t.Fatalf("expected RequestRecourse to succeed once the request to pay was rejected, got %v", err)
	}
}
