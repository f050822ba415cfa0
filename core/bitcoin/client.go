// Package bitcoin defines the contract for checking whether a derived
// payment address has been paid, and a concrete esplora-style HTTP
// implementation (§4.1 "Bitcoin client": get_address_to_pay, check_if_paid,
// mempool_link).
package bitcoin

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg"
)

// AddressStatus is what the client reports for one payment address.
type AddressStatus struct {
	Address       string
	FundedSatoshi uint64
	SpentSatoshi  uint64
	Paid          bool
}

// Client checks whether a derived payment address has received funds.
type Client interface {
	CheckAddress(ctx context.Context, address string) (AddressStatus, error)
	// MempoolLink returns a block-explorer URL for address, for display
	// purposes only.
	MempoolLink(address string) string
}

// Network is the chain parameters used for address derivation/validation
// (mainnet vs a test network); kept alongside Client since both need to
// agree on it.
var Network = &chaincfg.MainNetParams
