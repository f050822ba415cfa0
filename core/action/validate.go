package action

import (
	"github.com/bitbill-network/ebill-core/core/chain"
	"github.com/bitbill-network/ebill-core/core/money"
)

func validateSumCurrency(sum uint64, currency string) error {
	if err := money.ValidateSum(sum); err != nil {
		return err
	}
	return money.ValidateCurrency(currency)
}

func validateParty(p chain.Party) error {
	if p.NodeID == "" {
		return ErrInvalidActionPayload(errNodeIDRequired)
	}
	return nil
}

var errNodeIDRequired = errRequired("node id")

type errRequired string

func (e errRequired) Error() string { return string(e) + " is required" }
