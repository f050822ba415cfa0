package action

import (
	"github.com/bitbill-network/ebill-core/core/billview"
	"github.com/bitbill-network/ebill-core/core/chain"
)

// gateAccept checks that an Accept may be appended: the bill must not
// already be accepted.
func gateAccept(v *billview.BillView) error {
	if v.Accepted {
		return reject(ErrAlreadyAccepted)
	}
	return nil
}

// gateRequestToPay checks that the bill has been accepted, since an
// unaccepted bill carries no payment obligation yet.
func gateRequestToPay(v *billview.BillView, now uint64) error {
	if !v.Accepted {
		return reject(ErrNotAccepted)
	}
	if v.MaturityTimestamp > 0 && now < v.MaturityTimestamp {
		return reject(ErrRequestToPayBeforeMaturity)
	}
	return nil
}

// gateRejectToAccept mirrors gateAccept: there must be a pending,
// unexpired request to accept outstanding.
func gateRejectToAccept(v *billview.BillView) error {
	if v.Accepted {
		return reject(ErrAlreadyAccepted)
	}
	if !v.RequestToAcceptPending {
		return reject(ErrNoPendingRequestToAccept)
	}
	return nil
}

func gateRejectToPay(v *billview.BillView) error {
	if !v.RequestToPayPending {
		return reject(ErrNoPendingRequestToPay)
	}
	return nil
}

func gateOfferToSell(v *billview.BillView) error {
	if v.Sold {
		return reject(ErrAlreadySold)
	}
	if v.OfferToSellWaiting != nil {
		return reject(ErrBillOfferedToSellAndWaitingForPayment)
	}
	return nil
}

func gateSell(v *billview.BillView) error {
	if v.OfferToSellWaiting == nil {
		if v.OfferToSellExpired {
			return reject(ErrOfferToSellExpired)
		}
		return reject(ErrNoPendingOfferToSell)
	}
	return nil
}

func gateRejectToBuy(v *billview.BillView) error {
	if v.OfferToSellWaiting == nil {
		return reject(ErrNoPendingOfferToSell)
	}
	return nil
}

func gateMint(v *billview.BillView) error {
	if v.Minted {
		return reject(ErrAlreadyMinted)
	}
	if !v.Accepted {
		return reject(ErrNotAccepted)
	}
	return nil
}

// gateRequestRecourse requires that the obligation named by reason has
// actually come due: the corresponding request expired without being
// honored, or was rejected outright. requirePastHolder (the caller) already
// confirms the recoursee held the bill before the current holder.
func gateRequestRecourse(v *billview.BillView, reason chain.RecourseReason) error {
	switch reason {
	case chain.RecourseReasonAccept:
		if !v.RequestToAcceptExpired && !v.RequestToAcceptRejected {
			return reject(ErrRecourseNotYetAvailable)
		}
	case chain.RecourseReasonPay:
		if !v.RequestToPayExpired && !v.RequestToPayRejected {
			return reject(ErrRecourseNotYetAvailable)
		}
	}
	return nil
}

func gateRecourse(v *billview.BillView) error {
	if v.RecourseWaiting == nil {
		if v.RecourseExpired {
			return reject(ErrRecourseExpired)
		}
		return reject(ErrNoPendingRecourse)
	}
	return nil
}

func gateRejectToPayRecourse(v *billview.BillView) error {
	if v.RecourseWaiting == nil {
		return reject(ErrNoPendingRecourse)
	}
	return nil
}
