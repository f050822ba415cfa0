// Package bill models the negotiable instrument itself: the immutable
// identifying data established at issuance (§3). The full current state of
// a bill is always derived from its chain (see core/billview); Bill is the
// static record of what was agreed at issuance time.
package bill

import (
	"fmt"

	"github.com/bitbill-network/ebill-core/core/chain"
	"github.com/bitbill-network/ebill-core/core/money"
)

// IssueData is the caller-supplied input to Issue (§4.2).
type IssueData struct {
	Type         chain.BillType
	Drawer       chain.Party
	Drawee       chain.Party
	Payee        chain.Party
	Sum          uint64
	Currency     string
	IssueDate    string
	MaturityDate string
	CountryOfIssue, CityOfIssue string
	CountryOfPay, CityOfPay     string
	Language     string
	Files        []chain.FileReference
}

// Validate checks the structural invariants an issuance must satisfy,
// independent of role/authorization concerns (those live in core/action).
func (d IssueData) Validate() error {
	if err := money.ValidateSum(d.Sum); err != nil {
		return err
	}
	if err := money.ValidateCurrency(d.Currency); err != nil {
		return err
	}
	if d.Drawee.NodeID == d.Payee.NodeID {
		return ErrDraweeCantBePayee
	}
	switch d.Type {
	case chain.BillTypeSelfDrafted:
		if d.Drawer.NodeID != d.Drawee.NodeID {
			return fmt.Errorf("%w: self-drafted bill requires drawer == drawee", ErrInvalidBillType)
		}
	case chain.BillTypePromissoryNote:
		if d.Drawer.NodeID != d.Payee.NodeID {
			return fmt.Errorf("%w: promissory note requires drawer == payee", ErrInvalidBillType)
		}
	case chain.BillTypeThreeParties:
		// drawer, drawee and payee may all differ; no extra constraint.
	default:
		return ErrInvalidBillType
	}
	return nil
}

// Bill is the immutable record established when a bill is issued.
type Bill struct {
	ID       chain.BillID
	Keys     *chain.KeyPair
	Type     chain.BillType
	Drawer   chain.Party
	Drawee   chain.Party
	Payee    chain.Party

	Sum      uint64
	Currency string

	IssueDate, MaturityDate     string
	CountryOfIssue, CityOfIssue string
	CountryOfPay, CityOfPay     string
	Language                    string

	Files []chain.FileReference
}

// New derives a Bill record from issuance inputs and a freshly generated
// bill key pair. It does not build or sign the genesis block; see
// core/action for that.
func New(data IssueData, billKeys *chain.KeyPair) *Bill {
	return &Bill{
		ID:             chain.NewBillID(billKeys.Public),
		Keys:           billKeys,
		Type:           data.Type,
		Drawer:         data.Drawer,
		Drawee:         data.Drawee,
		Payee:          data.Payee,
		Sum:            data.Sum,
		Currency:       data.Currency,
		IssueDate:      data.IssueDate,
		MaturityDate:   data.MaturityDate,
		CountryOfIssue: data.CountryOfIssue,
		CityOfIssue:    data.CityOfIssue,
		CountryOfPay:   data.CountryOfPay,
		CityOfPay:      data.CityOfPay,
		Language:       data.Language,
		Files:          data.Files,
	}
}

// ToIssuePayload converts Bill into the genesis block's encrypted payload.
func (b *Bill) ToIssuePayload() chain.IssuePayload {
	return chain.IssuePayload{
		BillType:       b.Type,
		BillPublicKey:  b.Keys.Public.SerializeCompressed(),
		Drawer:         b.Drawer,
		Drawee:         b.Drawee,
		Payee:          b.Payee,
		Sum:            b.Sum,
		Currency:       b.Currency,
		IssueDate:      b.IssueDate,
		MaturityDate:   b.MaturityDate,
		CountryOfIssue: b.CountryOfIssue,
		CityOfIssue:    b.CityOfIssue,
		CountryOfPay:   b.CountryOfPay,
		CityOfPay:      b.CityOfPay,
		Language:       b.Language,
		Files:          b.Files,
	}
}
