package chain

// This file declares the tagged-union block payloads: one Go type per
// op-code (§9 Design Notes: "Encrypted payloads as sum-typed enums... Do not
// rely on structural typing"). Each payload is exactly what gets
// JSON-marshaled and then hybrid-encrypted by NewBlock.

// Party identifies a participant referenced by a block payload. Drawer and
// drawee are always "identified" (name/address present); payee and endorsee
// may be anonymous, carrying only a node id and a relay hint.
type Party struct {
	NodeID         NodeID `json:"node_id"`
	Name           string `json:"name,omitempty"`
	PostalAddress  string `json:"postal_address,omitempty"`
	Country        string `json:"country,omitempty"`
	City           string `json:"city,omitempty"`
	RelayURL       string `json:"relay_url,omitempty"`
	EmailAddress   string `json:"email,omitempty"`
}

// Identified reports whether the party carries more than a bare node id.
func (p Party) Identified() bool { return p.Name != "" || p.PostalAddress != "" }

// BillType determines drawer/drawee/payee role constraints at issuance.
type BillType int

const (
	BillTypePromissoryNote BillType = iota
	BillTypeSelfDrafted
	BillTypeThreeParties
)

// FileReference names an encrypted attachment stored externally by bill id.
type FileReference struct {
	FileName    string `json:"file_name"`
	ContentHash string `json:"content_hash"`
}

// IssuePayload is the genesis block's payload.
type IssuePayload struct {
	BillType        BillType        `json:"bill_type"`
	BillPublicKey   []byte          `json:"bill_public_key"`
	Drawer          Party           `json:"drawer"`
	Drawee          Party           `json:"drawee"`
	Payee           Party           `json:"payee"`
	Sum             uint64          `json:"sum"`
	Currency        string          `json:"currency"`
	IssueDate       string          `json:"issue_date"`
	MaturityDate    string          `json:"maturity_date"`
	CountryOfIssue  string          `json:"country_of_issuing"`
	CityOfIssue     string          `json:"city_of_issuing"`
	CountryOfPay    string          `json:"country_of_payment"`
	CityOfPay       string          `json:"city_of_payment"`
	Language        string          `json:"language"`
	Files           []FileReference `json:"files,omitempty"`
}

// RequestToAcceptPayload carries no extra data beyond the block envelope.
type RequestToAcceptPayload struct{}

// AcceptPayload carries no extra data beyond the block envelope.
type AcceptPayload struct{}

// RequestToPayPayload names the currency the holder expects payment in.
type RequestToPayPayload struct {
	Currency string `json:"currency"`
}

// EndorsePayload names the new holder.
type EndorsePayload struct {
	Endorsee Party `json:"endorsee"`
}

// OfferToSellPayload proposes a sale to buyer for sum/currency.
type OfferToSellPayload struct {
	Buyer    Party  `json:"buyer"`
	Sum      uint64 `json:"sum"`
	Currency string `json:"currency"`
}

// SellPayload finalizes a sale; PaymentAddress is the derived Bitcoin address
// the buyer paid (or is expected to pay).
type SellPayload struct {
	Buyer          Party  `json:"buyer"`
	Sum            uint64 `json:"sum"`
	Currency       string `json:"currency"`
	PaymentAddress string `json:"payment_address"`
}

// MintPayload records minting the bill to a financial institution.
type MintPayload struct {
	Mint     Party  `json:"mint"`
	Sum      uint64 `json:"sum"`
	Currency string `json:"currency"`
}

// RecourseReason names the obligation that recourse is being sought for.
type RecourseReason string

const (
	RecourseReasonAccept RecourseReason = "Accept"
	RecourseReasonPay    RecourseReason = "Pay"
)

// RequestRecoursePayload asks a past holder to make good on the bill.
type RequestRecoursePayload struct {
	Recoursee Party          `json:"recoursee"`
	Reason    RecourseReason `json:"reason"`
}

// RecoursePayload finalizes a recourse payment.
type RecoursePayload struct {
	Recoursee      Party          `json:"recoursee"`
	Sum            uint64         `json:"sum"`
	Currency       string         `json:"currency"`
	Reason         RecourseReason `json:"reason"`
	PaymentAddress string         `json:"payment_address"`
}

// RejectToAcceptPayload records the drawee's refusal to accept.
type RejectToAcceptPayload struct {
	Reason string `json:"reason,omitempty"`
}

// RejectToPayPayload records the drawee's refusal to pay.
type RejectToPayPayload struct {
	Reason string `json:"reason,omitempty"`
}

// RejectToBuyPayload records the buyer's refusal of a pending OfferToSell.
type RejectToBuyPayload struct {
	Reason string `json:"reason,omitempty"`
}

// RejectToPayRecoursePayload records the recoursee's refusal of a pending
// RequestRecourse.
type RejectToPayRecoursePayload struct {
	Reason string `json:"reason,omitempty"`
}
