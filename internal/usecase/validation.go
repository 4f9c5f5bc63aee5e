package usecase

import "strings"

type ValidationError struct {
	Field   string
	Message string
}

func ValidateCreateLeadInput(input CreateLeadInput) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(input.Email) == "" {
		errs = append(errs, ValidationError{Field: "email", Message: "is required"})
	} else if !strings.Contains(input.Email, "@") {
		errs = append(errs, ValidationError{Field: "email", Message: "is not a valid email"})
	}

	if strings.TrimSpace(input.FirstName) == "" {
		errs = append(errs, ValidationError{Field: "first_name", Message: "is required"})
	}
	if strings.TrimSpace(input.LastName) == "" {
		errs = append(errs, ValidationError{Field: "last_name", Message: "is required"})
	}

	return errs
}
