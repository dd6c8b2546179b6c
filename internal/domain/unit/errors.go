package unit

import "errors"

var (
	ErrUnitNotFound       = errors.New("unit not found")
	ErrBilletNotFound     = errors.New("billet not found in TDA")
	ErrDuplicateParaLine  = errors.New("para-line already in TDA")
	ErrNotOverseas        = errors.New("employee is not on an overseas assignment")
	ErrLedgerInconsistent = errors.New("TDA/roster ledger inconsistent")
)
