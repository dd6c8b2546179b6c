package billet

import "errors"

var (
	ErrBilletOccupied = errors.New("billet already occupied")
	ErrNotVacant      = errors.New("billet is not vacant")
	ErrNotHiring      = errors.New("billet is not hiring")
)
