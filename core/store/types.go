// Package store declares the persistence contracts the rest of the core
// depends on (§6) plus two reference implementations of every contract: an
// in-memory one (store/memory) sufficient for tests, and a file-backed one
// (store/filestore) that keeps one append-only WAL per bill chain and a JSON
// snapshot file for each other store, grounded on core/ledger.go's
// NewLedger/OpenLedger replay pattern.
package store

import "github.com/bitbill-network/ebill-core/core/chain"

// NostrEventOffset records how far the consumer has progressed through a
// relay subscription, and is also used to deduplicate already-seen events.
type NostrEventOffset struct {
	EventID  string       `json:"event_id"`
	WallTime uint64       `json:"wall_time"`
	Success  bool         `json:"success"`
	NodeID   chain.NodeID `json:"node_id"`
}

// NostrQueuedMessage is one entry of the outbox of relay sends that failed
// and are awaiting retry (§3, §4.4).
type NostrQueuedMessage struct {
	ID            string       `json:"id"`
	SenderID      chain.NodeID `json:"sender_id"`
	RecipientNode chain.NodeID `json:"recipient_node_id"`
	Payload       []byte       `json:"payload"`
	Created       uint64       `json:"created"`
	LastTry       uint64       `json:"last_try"`
	NumRetries    int          `json:"num_retries"`
	MaxRetries    int          `json:"max_retries"`
	Completed     bool         `json:"completed"`
	Processing    bool         `json:"processing"`
}

// DefaultMaxRetries is the outbox retry ceiling (§9 Open Questions).
const DefaultMaxRetries = 5
