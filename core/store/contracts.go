package store

import (
	"context"

	"github.com/bitbill-network/ebill-core/core/billview"
	"github.com/bitbill-network/ebill-core/core/chain"
	"github.com/bitbill-network/ebill-core/core/identity"
	"github.com/bitbill-network/ebill-core/core/notification"
)

// BlockStore persists one append-only chain per bill.
type BlockStore interface {
	// AddBlock appends block to billID's chain. Callers must hold the bill's
	// lock (core/chain.Locker) for the duration of the call.
	AddBlock(ctx context.Context, billID chain.BillID, block *chain.Block) error
	// GetChain loads the full chain for billID.
	GetChain(ctx context.Context, billID chain.BillID) (*chain.Chain, error)
	// GetLatestBlock is a lighter-weight GetChain().Latest().
	GetLatestBlock(ctx context.Context, billID chain.BillID) (*chain.Block, error)
}

// BillStore tracks per-bill metadata that lives outside the chain itself:
// key material, cached views, and the payment-address indexes the scheduler
// polls.
type BillStore interface {
	SaveKeys(ctx context.Context, billID chain.BillID, keys *chain.KeyPair) error
	GetKeys(ctx context.Context, billID chain.BillID) (*chain.KeyPair, error)
	Exists(ctx context.Context, billID chain.BillID) (bool, error)
	GetIDs(ctx context.Context) ([]chain.BillID, error)

	GetBillFromCache(ctx context.Context, billID chain.BillID, blockHeight uint64) (*billview.BillView, bool, error)
	SaveBillToCache(ctx context.Context, billID chain.BillID, view *billview.BillView) error
	InvalidateBillInCache(ctx context.Context, billID chain.BillID) error

	// IsPaid/SetToPaid track a bill's (or a sell/recourse's) settlement on
	// the payment address the chain derived, since that fact lives outside
	// the chain (it is observed from Bitcoin, not signed into a block).
	IsPaid(ctx context.Context, billID chain.BillID, paymentAddress string) (bool, error)
	SetToPaid(ctx context.Context, billID chain.BillID, paymentAddress string) error

	GetBillIDsWaitingForPayment(ctx context.Context) ([]chain.BillID, error)
	GetBillIDsWaitingForSellPayment(ctx context.Context) ([]chain.BillID, error)
	GetBillIDsWaitingForRecoursePayment(ctx context.Context) ([]chain.BillID, error)
}

// ContactStore is the local address book.
type ContactStore interface {
	Get(ctx context.Context, nodeID chain.NodeID) (*identity.Contact, error)
	GetAll(ctx context.Context) ([]identity.Contact, error)
	Upsert(ctx context.Context, c identity.Contact) error
	Delete(ctx context.Context, nodeID chain.NodeID) error
}

// IdentityStore holds the node's own local identity (singleton).
type IdentityStore interface {
	Get(ctx context.Context) (*identity.Identity, error)
	Save(ctx context.Context, id identity.Identity) error
}

// CompanyStore holds multi-signatory companies the node is a signatory of.
type CompanyStore interface {
	Get(ctx context.Context, nodeID chain.NodeID) (*identity.Company, error)
	GetAll(ctx context.Context) ([]identity.Company, error)
	Upsert(ctx context.Context, c identity.Company) error
}

// FileBlobStore stores encrypted bill attachments and unconfirmed uploads
// awaiting a bill id.
type FileBlobStore interface {
	WriteTempUpload(ctx context.Context, uploadID, fileName string, data []byte) error
	ReadTempUpload(ctx context.Context, uploadID, fileName string) ([]byte, error)
	RemoveTempUpload(ctx context.Context, uploadID string) error

	SaveAttachment(ctx context.Context, billID chain.BillID, fileName string, encrypted []byte) error
	OpenAttachment(ctx context.Context, billID chain.BillID, fileName string) ([]byte, error)
}

// NotificationStore persists in-app notifications (§3, §4.5).
type NotificationStore interface {
	Create(ctx context.Context, n notification.Notification) error
	MarkInactive(ctx context.Context, id string) error
	SupersedeByReference(ctx context.Context, referenceID string) error
	GetActiveForNode(ctx context.Context, nodeID chain.NodeID) ([]notification.Notification, error)
	// ExistsDeduped reports whether a notification for this (billID,
	// blockHeight, kind) triple was already created, so the scheduler's
	// timeout jobs don't re-notify every tick (§4.5).
	ExistsDeduped(ctx context.Context, billID chain.BillID, blockHeight uint64, kind string) (bool, error)
}

// NostrOffsetStore tracks relay subscription progress and event dedup.
type NostrOffsetStore interface {
	GetOffset(ctx context.Context, nodeID chain.NodeID) (*NostrEventOffset, error)
	SetOffset(ctx context.Context, nodeID chain.NodeID, off NostrEventOffset) error
	SeenEvent(ctx context.Context, nodeID chain.NodeID, eventID string) (bool, error)
}

// NostrQueueStore is the outbox of relay sends awaiting retry (§4.4).
type NostrQueueStore interface {
	Enqueue(ctx context.Context, m NostrQueuedMessage) error
	GetRetryable(ctx context.Context, now uint64) ([]NostrQueuedMessage, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailedAttempt(ctx context.Context, id string, now uint64) error
}
