package action

import (
	"context"

	"github.com/bitbill-network/ebill-core/core/bill"
	"github.com/bitbill-network/ebill-core/core/billview"
	"github.com/bitbill-network/ebill-core/core/chain"
)

// cascadeAfterIssue auto-accepts a self-drafted bill: since its drawer and
// drawee are the same party, there is no one else to accept from, so the
// engine appends the Accept block itself using the same signer that issued
// it (§4.2 Issue: "self-drafted bills are considered accepted from
// creation").
func (e *Engine) cascadeAfterIssue(ctx context.Context, c *chain.Chain, billKeys *chain.KeyPair, v *billview.BillView, data bill.IssueData, signer Signer, now uint64) (*billview.BillView, error) {
	if data.Type != chain.BillTypeSelfDrafted {
		return v, nil
	}
	billID := c.BillID
	return e.append(ctx, billID, c, billKeys, chain.OpAccept, chain.AcceptPayload{}, signer, now)
}
