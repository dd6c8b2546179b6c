package run

import "errors"

var (
	ErrRunNotFound = errors.New("run not found")
	ErrRunArchived = errors.New("run is archived")
)
