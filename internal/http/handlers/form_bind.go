package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// formErrorMessage flattens a form bind failure into one line suitable for
// re-rendering the page. Validator failures become "field must be ...";
// anything else (bad multipart, wrong types) gets a generic message rather
// than leaking the raw error.
func formErrorMessage(err error) string {
	var verrs validator.ValidationErrors

	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid form input"
	}

	parts := make([]string, 0, len(verrs))

	for _, fe := range verrs {
		parts = append(parts, strings.ToLower(fe.Field())+" "+validationMessage(fe.Tag(), fe.Param()))
	}

	return strings.Join(parts, "; ")
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	default:
		if param != "" {
			return "failed " + rule + " validation (" + param + ")"
		}
		return "failed " + rule + " validation"
	}
}
