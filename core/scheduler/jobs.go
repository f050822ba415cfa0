package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/bitbill-network/ebill-core/core/action"
	"github.com/bitbill-network/ebill-core/core/bitcoin"
	"github.com/bitbill-network/ebill-core/core/chain"
	"github.com/bitbill-network/ebill-core/core/notification"
	"github.com/bitbill-network/ebill-core/core/store"
)

// Deps bundles what every job needs: the action engine to read bill state
// and (for the two payment jobs) append the completing block, the Bitcoin
// client to poll, and the stores to enumerate/record against.
type Deps struct {
	Engine        *action.Engine
	Bitcoin       bitcoin.Client
	Bills         store.BillStore
	Notifications store.NotificationStore
	Network       *chaincfg.Params
	Signer        action.Signer
	Now           func() uint64
	Log           *logrus.Logger

	// PollInterval overrides the default one-minute tick for the three
	// payment-polling jobs (CheckTimeouts always runs every 5 minutes).
	// Zero keeps the default.
	PollInterval time.Duration

	// BitcoinLimiter caps the rate of outbound Client.CheckAddress calls so a
	// large waiting-for-payment set never bursts the external client beyond
	// what it was configured to accept. Nil disables limiting.
	BitcoinLimiter *rate.Limiter
}

func (d *Deps) log(job string) *logrus.Entry {
	return d.Log.WithField("component", "scheduler").WithField("job", job)
}

func (d *Deps) interval() time.Duration {
	if d.PollInterval > 0 {
		return d.PollInterval
	}
	return time.Minute
}

// checkAddress rate-limits and delegates to d.Bitcoin.CheckAddress.
func (d *Deps) checkAddress(ctx context.Context, addr string) (bitcoin.AddressStatus, error) {
	if d.BitcoinLimiter != nil {
		if err := d.BitcoinLimiter.Wait(ctx); err != nil {
			return bitcoin.AddressStatus{}, fmt.Errorf("rate limit wait: %w", err)
		}
	}
	return d.Bitcoin.CheckAddress(ctx, addr)
}

// CheckBillPayment polls the payment address of every bill with a pending
// RequestToPay and records it as paid once the Bitcoin client observes
// funds (§4.1). There is no on-chain "Paid" block; the fact lives in the
// bill store alone.
func CheckBillPayment(d *Deps) Job {
	return Job{Name: "CheckBillPayment", Interval: d.interval(), Run: func(ctx context.Context) error {
		log := d.log("CheckBillPayment")
		ids, err := d.Bills.GetBillIDsWaitingForPayment(ctx)
		if err != nil {
			return fmt.Errorf("list bills waiting for payment: %w", err)
		}
		now := d.Now()
		for _, billID := range ids {
			v, err := d.Engine.View(ctx, billID, now)
			if err != nil || !v.RequestToPayPending {
				continue
			}
			keys, err := d.Bills.GetKeys(ctx, billID)
			if err != nil {
				log.WithError(err).WithField("bill_id", string(billID)).Warn("missing bill keys")
				continue
			}
			holderPub, err := v.Holder.PublicKey()
			if err != nil {
				continue
			}
			addr, err := chain.DerivePaymentAddress(keys.Public, holderPub, d.Network)
			if err != nil {
				log.WithError(err).WithField("bill_id", string(billID)).Warn("derive payment address")
				continue
			}
			status, err := d.checkAddress(ctx, addr)
			if err != nil {
				log.WithError(err).WithField("address", addr).Warn("check address")
				continue
			}
			if !status.Paid {
				continue
			}
			if err := d.Bills.SetToPaid(ctx, billID, addr); err != nil {
				return fmt.Errorf("mark %s paid: %w", billID, err)
			}
			notify(ctx, d, billID, v.BlockHeight, notification.ActionBillPaid, v.Holder, now, "bill payment observed")
		}
		return nil
	}}
}

// CheckOfferToSellPayment polls the payment address of every pending
// OfferToSell and, once the Bitcoin client observes the buyer's payment,
// completes the sale by appending a Sell block on the seller's behalf (the
// node running this job must hold the seller/current-holder's signing key —
// §4.1, §4.6).
func CheckOfferToSellPayment(d *Deps) Job {
	return Job{Name: "CheckOfferToSellPayment", Interval: d.interval(), Run: func(ctx context.Context) error {
		log := d.log("CheckOfferToSellPayment")
		ids, err := d.Bills.GetBillIDsWaitingForSellPayment(ctx)
		if err != nil {
			return fmt.Errorf("list bills waiting for sell payment: %w", err)
		}
		now := d.Now()
		for _, billID := range ids {
			v, err := d.Engine.View(ctx, billID, now)
			if err != nil || v.OfferToSellWaiting == nil {
				continue
			}
			offer := v.OfferToSellWaiting
			if v.Holder != d.Signer.SignatoryNodeID {
				continue // this node isn't the seller; nothing to do
			}
			keys, err := d.Bills.GetKeys(ctx, billID)
			if err != nil {
				continue
			}
			buyerPub, err := offer.Payload.Buyer.NodeID.PublicKey()
			if err != nil {
				continue
			}
			addr, err := chain.DerivePaymentAddress(keys.Public, buyerPub, d.Network)
			if err != nil {
				log.WithError(err).WithField("bill_id", string(billID)).Warn("derive payment address")
				continue
			}
			status, err := d.checkAddress(ctx, addr)
			if err != nil || !status.Paid {
				continue
			}
			if _, err := d.Engine.Sell(ctx, billID, addr, d.Signer, now); err != nil {
				log.WithError(err).WithField("bill_id", string(billID)).Warn("complete sell")
				continue
			}
			notify(ctx, d, billID, v.BlockHeight+1, notification.ActionSell, v.Holder, now, "offer to sell paid")
		}
		return nil
	}}
}

// CheckRecoursePayment mirrors CheckOfferToSellPayment for pending
// RequestRecourse payments: it fires for the recourser (the current holder
// who filed the request), not the recoursee who must pay it.
func CheckRecoursePayment(d *Deps) Job {
	return Job{Name: "CheckRecoursePayment", Interval: d.interval(), Run: func(ctx context.Context) error {
		log := d.log("CheckRecoursePayment")
		ids, err := d.Bills.GetBillIDsWaitingForRecoursePayment(ctx)
		if err != nil {
			return fmt.Errorf("list bills waiting for recourse payment: %w", err)
		}
		now := d.Now()
		for _, billID := range ids {
			v, err := d.Engine.View(ctx, billID, now)
			if err != nil || v.RecourseWaiting == nil {
				continue
			}
			req := v.RecourseWaiting
			if v.Holder != d.Signer.SignatoryNodeID {
				continue // this node isn't the recourser; nothing to do
			}
			keys, err := d.Bills.GetKeys(ctx, billID)
			if err != nil {
				continue
			}
			recourseePub, err := req.Payload.Recoursee.NodeID.PublicKey()
			if err != nil {
				continue
			}
			addr, err := chain.DerivePaymentAddress(keys.Public, recourseePub, d.Network)
			if err != nil {
				log.WithError(err).WithField("bill_id", string(billID)).Warn("derive payment address")
				continue
			}
			status, err := d.checkAddress(ctx, addr)
			if err != nil || !status.Paid {
				continue
			}
			if _, err := d.Engine.Recourse(ctx, billID, addr, d.Signer, now); err != nil {
				log.WithError(err).WithField("bill_id", string(billID)).Warn("complete recourse")
				continue
			}
			notify(ctx, d, billID, v.BlockHeight+1, notification.ActionRecourse, v.Holder, now, "recourse paid")
		}
		return nil
	}}
}

// CheckTimeouts scans every known bill for an expired RequestToAccept,
// RequestToPay, OfferToSell or RequestRecourse and records a notification
// once per (bill, block height, kind) (§4.5).
func CheckTimeouts(d *Deps) Job {
	return Job{Name: "CheckTimeouts", Interval: 5 * time.Minute, Run: func(ctx context.Context) error {
		ids, err := d.Bills.GetIDs(ctx)
		if err != nil {
			return fmt.Errorf("list bills: %w", err)
		}
		now := d.Now()
		for _, billID := range ids {
			v, err := d.Engine.View(ctx, billID, now)
			if err != nil {
				continue
			}
			if v.RequestToAcceptExpired {
				notify(ctx, d, billID, v.BlockHeight, notification.ActionRequestToAcceptTimeout, v.Drawee.NodeID, now, "request to accept expired")
			}
			if v.RequestToPayExpired {
				notify(ctx, d, billID, v.BlockHeight, notification.ActionRequestToPayTimeout, v.Drawee.NodeID, now, "request to pay expired")
			}
			if v.OfferToSellExpired {
				notify(ctx, d, billID, v.BlockHeight, notification.ActionOfferToSellTimeout, v.Holder, now, "offer to sell expired")
			}
			if v.RecourseExpired {
				notify(ctx, d, billID, v.BlockHeight, notification.ActionRecourseTimeout, v.Holder, now, "recourse request expired")
			}
		}
		return nil
	}}
}

func notify(ctx context.Context, d *Deps, billID chain.BillID, blockHeight uint64, kind notification.ActionType, recipient chain.NodeID, now uint64, description string) {
	exists, err := d.Notifications.ExistsDeduped(ctx, billID, blockHeight, string(kind))
	if err != nil || exists {
		return
	}
	_ = d.Notifications.Create(ctx, notification.Notification{
		ID:          fmt.Sprintf("%s:%d:%s", billID, blockHeight, kind),
		NodeID:      recipient,
		Kind:        notification.KindBill,
		Action:      kind,
		ReferenceID: string(billID),
		BlockHeight: blockHeight,
		Description: description,
		Datetime:    now,
		Active:      true,
	})
}
