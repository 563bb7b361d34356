package resumekit

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field-to-message map suitable for JSON responses and view contexts.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}

	if err == nil {
		return out
	}

	if verrs, ok := err.(validation.Errors); ok {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	out["error"] = err.Error()
	return out
}
