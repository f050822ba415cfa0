// Package billview assembles the read-oriented projection of a bill that
// core/action validates against and that clients are shown: the genesis
// data plus every fact derivable by walking the chain (current holder,
// acceptance/payment status, pending requests). Assemble is a pure function
// over a chain and a caller-supplied decrypter; it does no I/O itself.
package billview

import (
	"fmt"
	"time"

	"github.com/bitbill-network/ebill-core/core/chain"
)

// dateLayout is the ISO 8601 calendar-date format issue/maturity dates are
// stored in (§3).
const dateLayout = "2006-01-02"

// BillView is the full current state of one bill, as seen by a viewer who
// holds enough key material to decrypt its chain.
type BillView struct {
	BillID   chain.BillID
	Type     chain.BillType
	Drawer   chain.Party
	Drawee   chain.Party
	Payee    chain.Party

	Sum      uint64
	Currency string

	IssueDate, MaturityDate     string
	MaturityTimestamp           uint64
	CountryOfIssue, CityOfIssue string
	CountryOfPay, CityOfPay     string
	Language                    string
	Files                       []chain.FileReference

	Holder      chain.NodeID
	HolderChain []chain.NodeID
	Endorsed    bool
	Accepted    bool
	Paid        bool
	Recoursed   bool
	Sold        bool
	Minted      bool

	RequestToAcceptPending  bool
	RequestToAcceptExpired  bool
	RequestToAcceptRejected bool
	RequestToPayPending     bool
	RequestToPayExpired     bool
	RequestToPayRejected    bool
	OfferToSellWaiting      *chain.OfferToSellWaiting
	OfferToSellExpired      bool
	RecourseWaiting         *chain.RecourseWaiting
	RecourseExpired         bool
	RecourseRejected        bool

	BlockHeight uint64
}

// Decrypter decrypts one block's payload into out; bound to whatever key
// material the caller (action engine, consumer, scheduler) holds for a bill.
type Decrypter func(b *chain.Block, out any) error

// Assemble walks c and produces the projection described above. The
// RequestToPay deadline clock never starts before the bill's maturity date
// (§4.1), parsed here from the genesis payload.
func Assemble(c *chain.Chain, dec Decrypter, now uint64) (*BillView, error) {
	genesis := c.Genesis()
	if genesis == nil {
		return nil, fmt.Errorf("billview: empty chain")
	}
	var issue chain.IssuePayload
	if err := dec(genesis, &issue); err != nil {
		return nil, fmt.Errorf("billview: decrypt genesis: %w", err)
	}

	var maturityTS uint64
	if t, err := time.Parse(dateLayout, issue.MaturityDate); err == nil {
		maturityTS = uint64(t.Unix())
	}

	holderHist, err := c.HolderHistory(dec, issue.Payee.NodeID)
	if err != nil {
		return nil, fmt.Errorf("billview: holder history: %w", err)
	}

	offer, err := c.IsOfferToSellWaitingForPayment(now, dec)
	if err != nil {
		return nil, fmt.Errorf("billview: offer to sell: %w", err)
	}
	recourse, err := c.IsLastRequestToRecourseWaitingForPayment(now, dec)
	if err != nil {
		return nil, fmt.Errorf("billview: recourse: %w", err)
	}

	v := &BillView{
		BillID:            c.BillID,
		Type:              issue.BillType,
		Drawer:            issue.Drawer,
		Drawee:            issue.Drawee,
		Payee:             issue.Payee,
		Sum:               issue.Sum,
		Currency:          issue.Currency,
		IssueDate:         issue.IssueDate,
		MaturityDate:      issue.MaturityDate,
		MaturityTimestamp: maturityTS,
		CountryOfIssue:    issue.CountryOfIssue,
		CityOfIssue:       issue.CityOfIssue,
		CountryOfPay:      issue.CountryOfPay,
		CityOfPay:         issue.CityOfPay,
		Language:          issue.Language,
		Files:             issue.Files,

		Holder:      holderHist[len(holderHist)-1],
		HolderChain: holderHist,
		Endorsed:    len(holderHist) > 1,
		Accepted:    c.IsAccepted(),

		RequestToAcceptPending:  c.IsRequestToAcceptPending(now),
		RequestToAcceptExpired:  c.IsRequestToAcceptExpired(now),
		RequestToAcceptRejected: c.IsRequestToAcceptRejected(),
		RequestToPayPending:     c.IsRequestToPayPending(now, maturityTS),
		RequestToPayExpired:     c.IsRequestToPayExpired(now, maturityTS),
		RequestToPayRejected:    c.IsRequestToPayRejected(),
		OfferToSellWaiting:      offer,
		OfferToSellExpired:      c.IsOfferToSellExpired(now),
		RecourseWaiting:         recourse,
		RecourseExpired:         c.IsRequestRecourseExpired(now),
		RecourseRejected:        c.IsRequestRecourseRejected(),

		BlockHeight: c.Latest().ID,
	}

	for _, b := range c.Blocks {
		switch b.OpCode {
		case chain.OpSell:
			v.Sold = true
		case chain.OpMint:
			v.Minted = true
		case chain.OpRecourse:
			v.Recoursed = true
		}
	}

	return v, nil
}
