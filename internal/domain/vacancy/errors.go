package vacancy

import "errors"

var (
	ErrInvalidTransition  = errors.New("invalid vacancy status transition")
	ErrNotOpen            = errors.New("vacancy is not accepting applicants")
	ErrDuplicateApplicant = errors.New("applicant already in vacancy pool")
	ErrVacancyNotFound    = errors.New("vacancy not found")
)
