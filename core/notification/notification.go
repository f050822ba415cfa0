// Package notification models the in-app notifications raised when a bill
// changes state or a deadline is reached (§3, §4.5).
package notification

import "github.com/bitbill-network/ebill-core/core/chain"

// Kind distinguishes a bill-scoped notification from a general one.
type Kind string

const (
	KindGeneral Kind = "General"
	KindBill    Kind = "Bill"
)

// ActionType names what prompted the notification, mirroring the op-codes
// plus the scheduler's own timeout findings (§4.5).
type ActionType string

const (
	ActionAccept                ActionType = "Accept"
	ActionPay                   ActionType = "Pay"
	ActionEndorse               ActionType = "Endorse"
	ActionOfferToSell           ActionType = "OfferToSell"
	ActionSell                  ActionType = "Sell"
	ActionMint                  ActionType = "Mint"
	ActionRequestRecourse       ActionType = "RequestRecourse"
	ActionRecourse              ActionType = "Recourse"
	ActionRequestToAcceptTimeout ActionType = "RequestToAcceptTimeout"
	ActionRequestToPayTimeout    ActionType = "RequestToPayTimeout"
	ActionOfferToSellTimeout     ActionType = "OfferToSellTimeout"
	ActionRecourseTimeout        ActionType = "RecourseTimeout"
	ActionBillPaid               ActionType = "BillPaid"
)

// Notification is one row in the recipient's notification list.
type Notification struct {
	ID          string       `json:"id"`
	NodeID      chain.NodeID `json:"node_id"`
	Kind        Kind         `json:"kind"`
	Action      ActionType   `json:"action"`
	ReferenceID string       `json:"reference_id,omitempty"` // bill id, for Kind == KindBill
	BlockHeight uint64       `json:"block_height,omitempty"`
	Description string       `json:"description"`
	Datetime    uint64       `json:"datetime"`
	Active      bool         `json:"active"`
	Payload     []byte       `json:"payload,omitempty"`
}
