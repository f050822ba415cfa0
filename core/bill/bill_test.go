package bill

import (
	"errors"
	"testing"

	"github.com/bitbill-network/ebill-core/core/chain"
)

func party(id chain.NodeID) chain.Party {
	return chain.Party{NodeID: id, Name: string(id)}
}

func baseData() IssueData {
	return IssueData{
		Type:         chain.BillTypeThreeParties,
		Drawer:       party("drawer"),
		Drawee:       party("drawee"),
		Payee:        party("payee"),
		Sum:          1000,
		Currency:     "sat",
		IssueDate:    "2026-01-01",
		MaturityDate: "2026-04-01",
		Language:     "en",
	}
}

func TestIssueDataValidateThreeParty(t *testing.T) {
	if err := baseData().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIssueDataValidateDraweeEqualsPayee(t *testing.T) {
	d := baseData()
	d.Payee = d.Drawee
	if err := d.Validate(); !errors.Is(err, ErrDraweeCantBePayee) {
		t.Fatalf("got %v, want ErrDraweeCantBePayee", err)
	}
}

func TestIssueDataValidateSelfDraftedRequiresDrawerIsDrawee(t *testing.T) {
	d := baseData()
	d.Type = chain.BillTypeSelfDrafted
	if err := d.Validate(); !errors.Is(err, ErrInvalidBillType) {
		t.Fatalf("got %v, want ErrInvalidBillType", err)
	}
	d.Drawee = d.Drawer
	d.Payee = party("payee")
	if err := d.Validate(); err != nil {
		t.Fatalf("unexpected error once drawer==drawee: %v", err)
	}
}

func TestIssueDataValidatePromissoryNoteRequiresDrawerIsPayee(t *testing.T) {
	d := baseData()
	d.Type = chain.BillTypePromissoryNote
	if err := d.Validate(); !errors.Is(err, ErrInvalidBillType) {
		t.Fatalf("got %v, want ErrInvalidBillType", err)
	}
	d.Payee = d.Drawer
	if err := d.Validate(); err != nil {
		t.Fatalf("unexpected error once drawer==payee: %v", err)
	}
}

func TestIssueDataValidateBadSumAndCurrency(t *testing.T) {
	d := baseData()
	d.Sum = 0
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for zero sum")
	}
	d = baseData()
	d.Currency = "usd"
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for unsupported currency")
	}
}

func TestNewDerivesBillID(t *testing.T) {
	kp, err := chain.NewKeyPair()
	if err != nil {
		t.Fatalf("NewKeyPair: %v", err)
	}
	b := New(baseData(), kp)
	if b.ID != chain.NewBillID(kp.Public) {
		t.Fatalf("bill ID not derived from bill public key")
	}
	payload := b.ToIssuePayload()
	if payload.Sum != b.Sum || payload.Currency != b.Currency {
		t.Fatalf("ToIssuePayload lost fields: %+v", payload)
	}
}
