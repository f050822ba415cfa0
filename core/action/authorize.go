package action

import (
	"github.com/bitbill-network/ebill-core/core/billview"
	"github.com/bitbill-network/ebill-core/core/chain"
	"github.com/bitbill-network/ebill-core/core/identity"
	"github.com/bitbill-network/ebill-core/core/metrics"
)

func reject(e *BillError) error {
	metrics.ActionErrors.WithLabelValues(e.Code).Inc()
	return e
}

func requireDrawee(v *billview.BillView, actor chain.NodeID) error {
	if v.Drawee.NodeID != actor {
		return reject(ErrNotDrawee)
	}
	return nil
}

func requireHolder(v *billview.BillView, actor chain.NodeID) error {
	if v.Holder != actor {
		return reject(ErrNotHolder)
	}
	return nil
}

func requireBuyer(buyer chain.NodeID, actor chain.NodeID) error {
	if buyer != actor {
		return reject(ErrNotBuyer)
	}
	return nil
}

func requireRecoursee(recoursee chain.NodeID, actor chain.NodeID) error {
	if recoursee != actor {
		return reject(ErrNotRecoursee)
	}
	return nil
}

// requirePastHolder checks that nodeID appears among v's holders strictly
// before the current holder (v.Holder), as recourse may only be sought from a prior holder
// (§4.1 RequestRecourse).
func requirePastHolder(v *billview.BillView, nodeID chain.NodeID) error {
	for _, h := range v.HolderChain {
		if h == v.Holder {
			break
		}
		if h == nodeID {
			return nil
		}
	}
	return reject(ErrNotPastHolder)
}

// requireSignatory checks that signer is currently listed on company's
// roster, used when a block is signed on behalf of a company identity
// (§4.1: "Verification requires that the signatory was on the company's
// roster at block timestamp"). Companies don't carry historical rosters, so
// this checks the roster as currently known to the caller's store.
func requireSignatory(company *identity.Company, signer chain.NodeID) error {
	if company == nil {
		return nil
	}
	if !company.IsSignatory(signer) {
		return reject(ErrNotSignatory)
	}
	return nil
}
