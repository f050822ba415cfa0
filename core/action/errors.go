// Package action is the bill state-machine engine: given a current
// BillView and a proposed operation, it checks authorization and
// preconditions, builds and signs the next block, appends it, and runs any
// cascades the operation triggers (§4.2).
package action

import "fmt"

// Kind classifies a BillError for callers that need to map it onto a
// transport status (e.g. a future HTTP surface), without coupling this
// package to any particular transport.
type Kind int

const (
	KindValidation Kind = iota
	KindUnauthorized
	KindConflict
	KindNotFound
)

// BillError is the typed error every action-engine entry point returns on
// failure, carrying enough structure for a caller to render a precise
// message without string-matching.
type BillError struct {
	Code string
	Kind Kind
	Msg  string
}

func (e *BillError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func newErr(code string, kind Kind, format string, args ...any) *BillError {
	return &BillError{Code: code, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Validation errors (§7).
var (
	ErrBillNotFound         = func(id string) *BillError { return newErr("bill_not_found", KindNotFound, "bill %s not found", id) }
	ErrInvalidIssueData     = func(reason error) *BillError { return newErr("invalid_issue_data", KindValidation, "%v", reason) }
	ErrInvalidActionPayload = func(reason error) *BillError { return newErr("invalid_action_payload", KindValidation, "%v", reason) }
)

// Authorization errors.
var (
	ErrNotDrawee     = &BillError{Code: "not_drawee", Kind: KindUnauthorized, Msg: "actor is not the bill's drawee"}
	ErrNotHolder     = &BillError{Code: "not_holder", Kind: KindUnauthorized, Msg: "actor is not the bill's current holder"}
	ErrNotBuyer      = &BillError{Code: "not_buyer", Kind: KindUnauthorized, Msg: "actor is not the named buyer"}
	ErrNotRecoursee  = &BillError{Code: "not_recoursee", Kind: KindUnauthorized, Msg: "actor is not the named recoursee"}
	ErrNotPastHolder = &BillError{Code: "not_past_holder", Kind: KindUnauthorized, Msg: "named recoursee was never a holder of this bill"}
	ErrNotSignatory  = &BillError{Code: "not_signatory", Kind: KindUnauthorized, Msg: "actor is not a current signatory of the signing company"}
)

// State-machine (gate) errors.
var (
	ErrAlreadyAccepted            = &BillError{Code: "already_accepted", Kind: KindConflict, Msg: "bill is already accepted"}
	ErrNotAccepted                = &BillError{Code: "not_accepted", Kind: KindConflict, Msg: "bill has not been accepted"}
	ErrNoPendingRequestToAccept   = &BillError{Code: "no_pending_request_to_accept", Kind: KindConflict, Msg: "no pending request to accept"}
	ErrRequestToAcceptExpired     = &BillError{Code: "request_to_accept_expired", Kind: KindConflict, Msg: "request to accept has expired"}
	ErrNoPendingRequestToPay      = &BillError{Code: "no_pending_request_to_pay", Kind: KindConflict, Msg: "no pending request to pay"}
	ErrRequestToPayExpired        = &BillError{Code: "request_to_pay_expired", Kind: KindConflict, Msg: "request to pay has expired"}
	ErrRequestToPayBeforeMaturity = &BillError{Code: "request_to_pay_before_maturity_date", Kind: KindConflict, Msg: "cannot request payment before the bill's maturity date"}
	ErrNoPendingOfferToSell       = &BillError{Code: "no_pending_offer_to_sell", Kind: KindConflict, Msg: "no pending offer to sell"}
	ErrOfferToSellExpired         = &BillError{Code: "offer_to_sell_expired", Kind: KindConflict, Msg: "offer to sell has expired"}
	ErrBillOfferedToSellAndWaitingForPayment = &BillError{Code: "bill_offered_to_sell_and_waiting_for_payment", Kind: KindConflict, Msg: "bill already has an offer to sell waiting for payment"}
	ErrAlreadySold                = &BillError{Code: "already_sold", Kind: KindConflict, Msg: "bill has already been sold"}
	ErrAlreadyMinted              = &BillError{Code: "already_minted", Kind: KindConflict, Msg: "bill has already been minted"}
	ErrNoPendingRecourse          = &BillError{Code: "no_pending_recourse", Kind: KindConflict, Msg: "no pending recourse request"}
	ErrRecourseExpired            = &BillError{Code: "recourse_expired", Kind: KindConflict, Msg: "recourse request has expired"}
	ErrRecourseNotYetAvailable    = &BillError{Code: "recourse_not_yet_available", Kind: KindConflict, Msg: "recourse is only available once the corresponding request has expired or been rejected"}
	ErrBillNotPaid                = &BillError{Code: "bill_not_paid", Kind: KindConflict, Msg: "bill's payment address has not been observed as paid"}
)
