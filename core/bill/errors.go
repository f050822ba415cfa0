package bill

import "errors"

var (
	ErrDraweeCantBePayee = errors.New("bill: drawee cannot be payee")
	ErrInvalidBillType   = errors.New("bill: bill type constraints violated")
)
