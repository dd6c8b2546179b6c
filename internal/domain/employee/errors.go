package employee

import "errors"

var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrInvalidTransition = errors.New("invalid employee status transition")
	ErrAlreadyApplied    = errors.New("employee already applied to vacancy")
	ErrDuplicateOffer    = errors.New("employee already holds an offer for vacancy")
	ErrOfferNotFound     = errors.New("job offer not found")
	ErrAlreadyAssigned   = errors.New("employee already holds a billet")
	ErrNotInRoster       = errors.New("employee not in unit roster")
)
