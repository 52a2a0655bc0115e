package domain

import "fmt"

// field is one named value checked by requireFields.
type field struct {
	name    string
	missing bool
}

func present(name, value string) field { return field{name: name, missing: value == ""} }

// requireFields reports the first missing field of a kind as a validation
// error wrapping ErrMissingRequiredField.
func requireFields(kind string, fields ...field) error {
	for _, f := range fields {
		if f.missing {
			return fmt.Errorf("%s %s: %w", kind, f.name, ErrMissingRequiredField)
		}
	}
	return nil
}

func errNil(kind string) error {
	return fmt.Errorf("%s is nil: %w", kind, ErrMissingRequiredField)
}
