package validator

import (
	"regexp"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// UIC validation: six characters, uppercase letters and digits.
var uicRegex = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func IsValidUIC(uic string) bool {
	return uicRegex.MatchString(uic)
}

// UPI validation: one uppercase letter followed by at least four digits.
var upiRegex = regexp.MustCompile(`^[A-Z]\d{4,}$`)

func IsValidUPI(upi string) bool {
	return upiRegex.MatchString(upi)
}

// Para-line validation: up to four digits with an optional trailing letter.
var plnRegex = regexp.MustCompile(`^\d{1,4}[A-Z]?$`)

func IsValidPLN(pln string) bool {
	return plnRegex.MatchString(pln)
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}
