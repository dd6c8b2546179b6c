package response

import (
	"errors"
	"net/http"

	"github.com/forcemodel/forcesim-backend-go/internal/domain/employee"
	"github.com/forcemodel/forcesim-backend-go/internal/domain/run"
	"github.com/forcemodel/forcesim-backend-go/internal/domain/unit"
	"github.com/forcemodel/forcesim-backend-go/internal/domain/vacancy"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Run registry errors
	case errors.Is(err, run.ErrRunNotFound):
		NotFound(w, "Run not found")
	case errors.Is(err, run.ErrRunArchived):
		Conflict(w, "Run is archived")

	// Unit / ledger errors
	case errors.Is(err, unit.ErrUnitNotFound):
		NotFound(w, "Unit not found")
	case errors.Is(err, unit.ErrBilletNotFound):
		NotFound(w, "Billet not found")
	case errors.Is(err, unit.ErrDuplicateParaLine):
		Conflict(w, "Para-line already in TDA")
	case errors.Is(err, unit.ErrLedgerInconsistent):
		Conflict(w, "TDA/roster ledger inconsistent")

	// Employee errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrAlreadyAssigned):
		Conflict(w, "Employee already holds a billet")
	case errors.Is(err, employee.ErrInvalidTransition):
		Conflict(w, "Invalid employee status transition")

	// Market errors
	case errors.Is(err, vacancy.ErrVacancyNotFound):
		NotFound(w, "Vacancy not found")
	case errors.Is(err, vacancy.ErrDuplicateApplicant):
		Conflict(w, "Applicant already in vacancy pool")
	case errors.Is(err, vacancy.ErrNotOpen):
		BadRequest(w, "Vacancy is not accepting applicants", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
