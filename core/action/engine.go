package action

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/sirupsen/logrus"

	"github.com/bitbill-network/ebill-core/core/bill"
	"github.com/bitbill-network/ebill-core/core/billcache"
	"github.com/bitbill-network/ebill-core/core/billview"
	"github.com/bitbill-network/ebill-core/core/chain"
	"github.com/bitbill-network/ebill-core/core/metrics"
	"github.com/bitbill-network/ebill-core/core/store"
	"github.com/bitbill-network/ebill-core/core/transport"
)

// Engine dispatches bill operations: it authorizes the actor, checks the
// current state machine gate, builds and signs the next block, appends it,
// and runs any cascades the operation triggers (§4.2). One Engine is shared
// across all bills; per-bill mutual exclusion is provided by Locker.
type Engine struct {
	Blocks        store.BlockStore
	Bills         store.BillStore
	Notifications store.NotificationStore
	Cache         *billcache.Cache
	Locker        *chain.Locker

	// Queue and SelfNodeID enable the fan-out step of §4.2's pipeline (step
	// 7): after a block is appended, one outbound Envelope per participant
	// is enqueued on Queue for the outbox (core/transport.Outbox) to
	// deliver. Queue is nil in tests that don't exercise transport, in
	// which case fan-out is silently skipped.
	Queue      store.NostrQueueStore
	SelfNodeID chain.NodeID
	Log        *logrus.Entry

	// Network selects the address encoding used when deriving a bill's own
	// RequestToPay settlement address to answer BillView.Paid (core/bitcoin,
	// core/scheduler.CheckBillPayment derives the same address). Nil means
	// mainnet.
	Network *chaincfg.Params
}

func (e *Engine) network() *chaincfg.Params {
	if e.Network != nil {
		return e.Network
	}
	return &chaincfg.MainNetParams
}

// paymentStatus reports whether v's own bill-payment address has already
// been observed paid (core/bitcoin + scheduler.CheckBillPayment), separately
// from any sell or recourse settlement address.
func (e *Engine) paymentStatus(ctx context.Context, billID chain.BillID, keys *chain.KeyPair, v *billview.BillView) bool {
	holderPub, err := v.Holder.PublicKey()
	if err != nil {
		return false
	}
	addr, err := chain.DerivePaymentAddress(keys.Public, holderPub, e.network())
	if err != nil {
		return false
	}
	paid, err := e.Bills.IsPaid(ctx, billID, addr)
	if err != nil {
		return false
	}
	return paid
}

// New builds an Engine over the given stores. Cache may be nil, in which
// case every read reassembles from the chain. Fan-out is disabled until
// Queue and SelfNodeID are set.
func New(blocks store.BlockStore, bills store.BillStore, notifications store.NotificationStore, cache *billcache.Cache) *Engine {
	return &Engine{Blocks: blocks, Bills: bills, Notifications: notifications, Cache: cache, Locker: chain.NewLocker(), Log: logrus.NewEntry(logrus.StandardLogger())}
}

// fanOut enqueues one Envelope per bill participant other than the local
// node onto Queue, per §4.4's generate_action_messages. A failure to
// enqueue is logged and swallowed: the block is already durably appended,
// and a missed fan-out is recovered by the consumer's periodic resend (§5).
func (e *Engine) fanOut(ctx context.Context, billID chain.BillID, c *chain.Chain, keys *chain.KeyPair, overrides map[chain.NodeID]string) {
	if e.Queue == nil || e.SelfNodeID == "" {
		return
	}
	envelopes, err := transport.GenerateActionMessages(c, decrypterFor(keys), e.SelfNodeID, overrides)
	if err != nil {
		e.logger().WithError(err).WithField("bill_id", string(billID)).Warn("generate fan-out envelopes")
		return
	}
	for _, env := range envelopes {
		pub, err := env.RecipientNodeID.PublicKey()
		if err != nil {
			e.logger().WithError(err).WithField("recipient", string(env.RecipientNodeID)).Warn("resolve recipient key")
			continue
		}
		recipientKey := chain.MessagingKeyFromPublicKey(pub)
		if err := transport.Enqueue(ctx, e.Queue, e.SelfNodeID, recipientKey, env); err != nil {
			e.logger().WithError(err).WithField("recipient", string(env.RecipientNodeID)).Warn("enqueue fan-out envelope")
		}
	}
}

func (e *Engine) logger() *logrus.Entry {
	if e.Log != nil {
		return e.Log
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// decrypterFor binds a Decrypter closure to keys, the bill's key pair.
func decrypterFor(keys *chain.KeyPair) billview.Decrypter {
	return func(b *chain.Block, out any) error {
		return b.DecryptData(keys.Private, out)
	}
}

// loadView loads billID's chain and key pair and assembles (or fetches from
// cache) its current view. Callers must already hold the bill's lock.
func (e *Engine) loadView(ctx context.Context, billID chain.BillID, now uint64) (*chain.Chain, *chain.KeyPair, *billview.BillView, error) {
	keys, err := e.Bills.GetKeys(ctx, billID)
	if err != nil {
		return nil, nil, nil, ErrBillNotFound(string(billID))
	}
	c, err := e.Blocks.GetChain(ctx, billID)
	if err != nil {
		return nil, nil, nil, ErrBillNotFound(string(billID))
	}
	if e.Cache != nil {
		if v, ok := e.Cache.Get(billID, c.Latest().ID); ok {
			v.Paid = e.paymentStatus(ctx, billID, keys, v)
			return c, keys, v, nil
		}
	}
	v, err := billview.Assemble(c, decrypterFor(keys), now)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("action: assemble %s: %w", billID, err)
	}
	if e.Cache != nil {
		e.Cache.Put(billID, v)
	}
	v.Paid = e.paymentStatus(ctx, billID, keys, v)
	return c, keys, v, nil
}

// View assembles billID's current BillView without appending anything;
// used by read paths and by the scheduler's polling jobs.
func (e *Engine) View(ctx context.Context, billID chain.BillID, now uint64) (*billview.BillView, error) {
	unlock := e.Locker.Lock(billID)
	defer unlock()
	_, _, v, err := e.loadView(ctx, billID, now)
	return v, err
}

// Signer bundles the key material and identity a caller acts with: either a
// personal identity (SignatoryNodeID == NodeIDFromPublicKey(Keys.Public)) or
// a company identity signed by one of its current signatories.
type Signer struct {
	Keys            *chain.KeyPair
	SignatoryNodeID chain.NodeID
}

func (e *Engine) append(ctx context.Context, billID chain.BillID, c *chain.Chain, keys *chain.KeyPair, op chain.OpCode, payload any, signer Signer, now uint64) (*billview.BillView, error) {
	block, err := chain.NewBlock(op, payload, c.Latest(), keys.Public, signer.Keys, signer.SignatoryNodeID, now)
	if err != nil {
		return nil, fmt.Errorf("action: build block: %w", err)
	}
	if err := c.Append(block); err != nil {
		return nil, fmt.Errorf("action: append block: %w", err)
	}
	if err := e.Blocks.AddBlock(ctx, billID, block); err != nil {
		return nil, fmt.Errorf("action: persist block: %w", err)
	}
	metrics.BlocksAppended.WithLabelValues(string(op)).Inc()
	if e.Cache != nil {
		e.Cache.Invalidate(billID)
	}
	v, err := billview.Assemble(c, decrypterFor(keys), now)
	if err != nil {
		return nil, fmt.Errorf("action: reassemble %s: %w", billID, err)
	}
	if e.Cache != nil {
		e.Cache.Put(billID, v)
	}
	v.Paid = e.paymentStatus(ctx, billID, keys, v)
	e.fanOut(ctx, billID, c, keys, nil)
	return v, nil
}

// Issue creates a new bill: a fresh chain whose genesis block is the Issue
// op, then runs the self-drafted auto-accept cascade (§4.2, §4.3).
func (e *Engine) Issue(ctx context.Context, data bill.IssueData, billKeys *chain.KeyPair, signer Signer, now uint64) (*billview.BillView, error) {
	if err := data.Validate(); err != nil {
		return nil, ErrInvalidIssueData(err)
	}
	b := bill.New(data, billKeys)
	unlock := e.Locker.Lock(b.ID)
	defer unlock()

	if err := e.Bills.SaveKeys(ctx, b.ID, billKeys); err != nil {
		return nil, fmt.Errorf("action: save keys: %w", err)
	}
	genesis, err := chain.NewBlock(chain.OpIssue, b.ToIssuePayload(), nil, billKeys.Public, signer.Keys, signer.SignatoryNodeID, now)
	if err != nil {
		return nil, fmt.Errorf("action: build genesis: %w", err)
	}
	c := chain.NewChain(b.ID, nil)
	if err := c.Append(genesis); err != nil {
		return nil, fmt.Errorf("action: append genesis: %w", err)
	}
	if err := e.Blocks.AddBlock(ctx, b.ID, genesis); err != nil {
		return nil, fmt.Errorf("action: persist genesis: %w", err)
	}
	v, err := billview.Assemble(c, decrypterFor(billKeys), now)
	if err != nil {
		return nil, fmt.Errorf("action: assemble issued bill: %w", err)
	}
	if e.Cache != nil {
		e.Cache.Put(b.ID, v)
	}
	v.Paid = e.paymentStatus(ctx, b.ID, billKeys, v)
	e.fanOut(ctx, b.ID, c, billKeys, map[chain.NodeID]string{
		data.Drawer.NodeID: "BillSigned",
		data.Drawee.NodeID: "AcceptBill",
		data.Payee.NodeID:  "CheckBill",
	})
	return e.cascadeAfterIssue(ctx, c, billKeys, v, data, signer, now)
}

// RequestToAccept appends a RequestToAccept block. Any current holder may
// request acceptance.
func (e *Engine) RequestToAccept(ctx context.Context, billID chain.BillID, signer Signer, now uint64) (*billview.BillView, error) {
	unlock := e.Locker.Lock(billID)
	defer unlock()
	c, keys, v, err := e.loadView(ctx, billID, now)
	if err != nil {
		return nil, err
	}
	if err := requireHolder(v, signer.SignatoryNodeID); err != nil {
		return nil, err
	}
	return e.append(ctx, billID, c, keys, chain.OpRequestToAccept, chain.RequestToAcceptPayload{}, signer, now)
}

// Accept appends an Accept block. Only the drawee may accept.
func (e *Engine) Accept(ctx context.Context, billID chain.BillID, signer Signer, now uint64) (*billview.BillView, error) {
	unlock := e.Locker.Lock(billID)
	defer unlock()
	c, keys, v, err := e.loadView(ctx, billID, now)
	if err != nil {
		return nil, err
	}
	if err := requireDrawee(v, signer.SignatoryNodeID); err != nil {
		return nil, err
	}
	if err := gateAccept(v); err != nil {
		return nil, err
	}
	return e.append(ctx, billID, c, keys, chain.OpAccept, chain.AcceptPayload{}, signer, now)
}

// RejectToAccept appends a RejectToAccept block. Only the drawee may reject.
func (e *Engine) RejectToAccept(ctx context.Context, billID chain.BillID, reason string, signer Signer, now uint64) (*billview.BillView, error) {
	unlock := e.Locker.Lock(billID)
	defer unlock()
	c, keys, v, err := e.loadView(ctx, billID, now)
	if err != nil {
		return nil, err
	}
	if err := requireDrawee(v, signer.SignatoryNodeID); err != nil {
		return nil, err
	}
	if err := gateRejectToAccept(v); err != nil {
		return nil, err
	}
	return e.append(ctx, billID, c, keys, chain.OpRejectToAccept, chain.RejectToAcceptPayload{Reason: reason}, signer, now)
}

// RequestToPay appends a RequestToPay block. Only the current holder may
// request payment, and only once the bill is accepted.
func (e *Engine) RequestToPay(ctx context.Context, billID chain.BillID, currency string, signer Signer, now uint64) (*billview.BillView, error) {
	unlock := e.Locker.Lock(billID)
	defer unlock()
	c, keys, v, err := e.loadView(ctx, billID, now)
	if err != nil {
		return nil, err
	}
	if err := requireHolder(v, signer.SignatoryNodeID); err != nil {
		return nil, err
	}
	if err := gateRequestToPay(v, now); err != nil {
		return nil, err
	}
	if err := validateSumCurrency(v.Sum, currency); err != nil {
		return nil, ErrInvalidActionPayload(err)
	}
	return e.append(ctx, billID, c, keys, chain.OpRequestToPay, chain.RequestToPayPayload{Currency: currency}, signer, now)
}

// RejectToPay appends a RejectToPay block. Only the drawee may reject.
func (e *Engine) RejectToPay(ctx context.Context, billID chain.BillID, reason string, signer Signer, now uint64) (*billview.BillView, error) {
	unlock := e.Locker.Lock(billID)
	defer unlock()
	c, keys, v, err := e.loadView(ctx, billID, now)
	if err != nil {
		return nil, err
	}
	if err := requireDrawee(v, signer.SignatoryNodeID); err != nil {
		return nil, err
	}
	if err := gateRejectToPay(v); err != nil {
		return nil, err
	}
	return e.append(ctx, billID, c, keys, chain.OpRejectToPay, chain.RejectToPayPayload{Reason: reason}, signer, now)
}

// Endorse appends an Endorse block, transferring the bill to endorsee. Only
// the current holder may endorse.
func (e *Engine) Endorse(ctx context.Context, billID chain.BillID, endorsee chain.Party, signer Signer, now uint64) (*billview.BillView, error) {
	unlock := e.Locker.Lock(billID)
	defer unlock()
	c, keys, v, err := e.loadView(ctx, billID, now)
	if err != nil {
		return nil, err
	}
	if err := requireHolder(v, signer.SignatoryNodeID); err != nil {
		return nil, err
	}
	if err := validateParty(endorsee); err != nil {
		return nil, err
	}
	return e.append(ctx, billID, c, keys, chain.OpEndorse, chain.EndorsePayload{Endorsee: endorsee}, signer, now)
}

// OfferToSell appends an OfferToSell block. Only the current holder may
// offer, a bill already sold cannot be re-offered, and a second offer is
// rejected while an earlier one is still waiting for payment (§9 Open
// Questions).
func (e *Engine) OfferToSell(ctx context.Context, billID chain.BillID, buyer chain.Party, sum uint64, currency string, signer Signer, now uint64) (*billview.BillView, error) {
	unlock := e.Locker.Lock(billID)
	defer unlock()
	c, keys, v, err := e.loadView(ctx, billID, now)
	if err != nil {
		return nil, err
	}
	if err := requireHolder(v, signer.SignatoryNodeID); err != nil {
		return nil, err
	}
	if err := gateOfferToSell(v); err != nil {
		return nil, err
	}
	if err := validateSumCurrency(sum, currency); err != nil {
		return nil, ErrInvalidActionPayload(err)
	}
	if err := validateParty(buyer); err != nil {
		return nil, err
	}
	return e.append(ctx, billID, c, keys, chain.OpOfferToSell, chain.OfferToSellPayload{Buyer: buyer, Sum: sum, Currency: currency}, signer, now)
}

// Sell appends a Sell block once paymentAddress has been observed paid by
// the buyer (core/bitcoin + core/scheduler). Only the seller named in the
// pending OfferToSell — the current holder — may trigger it.
func (e *Engine) Sell(ctx context.Context, billID chain.BillID, paymentAddress string, signer Signer, now uint64) (*billview.BillView, error) {
	unlock := e.Locker.Lock(billID)
	defer unlock()
	c, keys, v, err := e.loadView(ctx, billID, now)
	if err != nil {
		return nil, err
	}
	if err := gateSell(v); err != nil {
		return nil, err
	}
	offer := v.OfferToSellWaiting
	if err := requireHolder(v, signer.SignatoryNodeID); err != nil {
		return nil, err
	}
	paid, err := e.Bills.IsPaid(ctx, billID, paymentAddress)
	if err != nil {
		return nil, fmt.Errorf("action: check paid: %w", err)
	}
	if !paid {
		return nil, reject(ErrBillNotPaid)
	}
	payload := chain.SellPayload{Buyer: offer.Payload.Buyer, Sum: offer.Payload.Sum, Currency: offer.Payload.Currency, PaymentAddress: paymentAddress}
	return e.append(ctx, billID, c, keys, chain.OpSell, payload, signer, now)
}

// RejectToBuy appends a RejectToBuy block. Only the named buyer may reject.
func (e *Engine) RejectToBuy(ctx context.Context, billID chain.BillID, reason string, signer Signer, now uint64) (*billview.BillView, error) {
	unlock := e.Locker.Lock(billID)
	defer unlock()
	c, keys, v, err := e.loadView(ctx, billID, now)
	if err != nil {
		return nil, err
	}
	if err := gateRejectToBuy(v); err != nil {
		return nil, err
	}
	if err := requireBuyer(v.OfferToSellWaiting.Payload.Buyer.NodeID, signer.SignatoryNodeID); err != nil {
		return nil, err
	}
	return e.append(ctx, billID, c, keys, chain.OpRejectToBuy, chain.RejectToBuyPayload{Reason: reason}, signer, now)
}

// Mint appends a Mint block, recording the bill minted to a financial
// institution. Only the current holder may mint, and only once accepted.
func (e *Engine) Mint(ctx context.Context, billID chain.BillID, mint chain.Party, sum uint64, currency string, signer Signer, now uint64) (*billview.BillView, error) {
	unlock := e.Locker.Lock(billID)
	defer unlock()
	c, keys, v, err := e.loadView(ctx, billID, now)
	if err != nil {
		return nil, err
	}
	if err := requireHolder(v, signer.SignatoryNodeID); err != nil {
		return nil, err
	}
	if err := gateMint(v); err != nil {
		return nil, err
	}
	if err := validateSumCurrency(sum, currency); err != nil {
		return nil, ErrInvalidActionPayload(err)
	}
	return e.append(ctx, billID, c, keys, chain.OpMint, chain.MintPayload{Mint: mint, Sum: sum, Currency: currency}, signer, now)
}

// RequestRecourse appends a RequestRecourse block against a past holder.
// Only the current holder may request recourse.
func (e *Engine) RequestRecourse(ctx context.Context, billID chain.BillID, recoursee chain.Party, reason chain.RecourseReason, signer Signer, now uint64) (*billview.BillView, error) {
	unlock := e.Locker.Lock(billID)
	defer unlock()
	c, keys, v, err := e.loadView(ctx, billID, now)
	if err != nil {
		return nil, err
	}
	if err := requireHolder(v, signer.SignatoryNodeID); err != nil {
		return nil, err
	}
	if err := requirePastHolder(v, recoursee.NodeID); err != nil {
		return nil, err
	}
	if err := gateRequestRecourse(v, reason); err != nil {
		return nil, err
	}
	return e.append(ctx, billID, c, keys, chain.OpRequestRecourse, chain.RequestRecoursePayload{Recoursee: recoursee, Reason: reason}, signer, now)
}

// Recourse appends a Recourse block once paymentAddress has been observed
// paid by the recoursee. Only the recourser who filed the pending request —
// the current holder — may trigger it.
func (e *Engine) Recourse(ctx context.Context, billID chain.BillID, paymentAddress string, signer Signer, now uint64) (*billview.BillView, error) {
	unlock := e.Locker.Lock(billID)
	defer unlock()
	c, keys, v, err := e.loadView(ctx, billID, now)
	if err != nil {
		return nil, err
	}
	if err := gateRecourse(v); err != nil {
		return nil, err
	}
	req := v.RecourseWaiting
	if err := requireHolder(v, signer.SignatoryNodeID); err != nil {
		return nil, err
	}
	paid, err := e.Bills.IsPaid(ctx, billID, paymentAddress)
	if err != nil {
		return nil, fmt.Errorf("action: check paid: %w", err)
	}
	if !paid {
		return nil, reject(ErrBillNotPaid)
	}
	payload := chain.RecoursePayload{Recoursee: req.Payload.Recoursee, Sum: v.Sum, Currency: v.Currency, Reason: req.Payload.Reason, PaymentAddress: paymentAddress}
	return e.append(ctx, billID, c, keys, chain.OpRecourse, payload, signer, now)
}

// RejectToPayRecourse appends a RejectToPayRecourse block. Only the named
// recoursee may reject.
func (e *Engine) RejectToPayRecourse(ctx context.Context, billID chain.BillID, reason string, signer Signer, now uint64) (*billview.BillView, error) {
	unlock := e.Locker.Lock(billID)
	defer unlock()
	c, keys, v, err := e.loadView(ctx, billID, now)
	if err != nil {
		return nil, err
	}
	if err := gateRejectToPayRecourse(v); err != nil {
		return nil, err
	}
	if err := requireRecoursee(v.RecourseWaiting.Payload.Recoursee.NodeID, signer.SignatoryNodeID); err != nil {
		return nil, err
	}
	return e.append(ctx, billID, c, keys, chain.OpRejectToPayRecourse, chain.RejectToPayRecoursePayload{Reason: reason}, signer, now)
}
