// Package validation holds the declarative field rules shared by the public
// lead form and account signup. Each rule reports a user-facing message for
// the first violation; callers surface that message and stop.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	emailRe      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe      = regexp.MustCompile(`^[\d\s\-+()]+$`)
	postalCodeRe = regexp.MustCompile(`(?i)^[A-Z]{1,2}\d[A-Z\d]?\s?\d[A-Z]{2}$`)
	ukPhoneRe    = regexp.MustCompile(`^(\+44\s?7\d{3}|\(?07\d{3}\)?)\s?\d{3}\s?\d{3}$|^(\+44\s?[1-9]\d{1,4}|\(?0[1-9]\d{1,4}\)?)\s?\d{3,4}\s?\d{3,4}$`)
)

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return e.Message
}

// ContactInput is the candidate record collected by the wizard's contact
// step and postal step.
type ContactInput struct {
	ContactName string `json:"contactName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	PostalCode  string `json:"postalCode"`
}

// Validate trims every field and checks it against the contact rules.
// On success the receiver holds the normalized values and the returned
// slice is empty; otherwise one error per violated field, in declaration
// order, with the rule's message.
func (in *ContactInput) Validate() []FieldError {
	var errs []FieldError

	in.ContactName = strings.TrimSpace(in.ContactName)
	if in.ContactName == "" {
		errs = append(errs, FieldError{"contactName", "Name is required"})
	} else if utf8.RuneCountInString(in.ContactName) > 100 {
		// Names are not ASCII; the bound counts characters, not bytes.
		errs = append(errs, FieldError{"contactName", "Name must be less than 100 characters"})
	}

	in.Email = strings.TrimSpace(in.Email)
	if !emailRe.MatchString(in.Email) {
		errs = append(errs, FieldError{"email", "Please enter a valid email address"})
	} else if len(in.Email) > 255 {
		errs = append(errs, FieldError{"email", "Email must be less than 255 characters"})
	}

	in.Phone = strings.TrimSpace(in.Phone)
	if in.Phone == "" {
		errs = append(errs, FieldError{"phone", "Phone number is required"})
	} else if !phoneRe.MatchString(in.Phone) {
		errs = append(errs, FieldError{"phone", "Please enter a valid phone number"})
	} else if len(in.Phone) > 20 {
		errs = append(errs, FieldError{"phone", "Phone number must be less than 20 characters"})
	}

	if err := ValidatePostalCode(&in.PostalCode); err != nil {
		errs = append(errs, *err)
	}

	return errs
}

// ValidatePostalCode trims and upper-cases *code in place and checks it
// against the UK postcode pattern. Returns nil when the code is valid.
func ValidatePostalCode(code *string) *FieldError {
	*code = strings.ToUpper(strings.TrimSpace(*code))
	if *code == "" {
		return &FieldError{"postalCode", "Postcode is required"}
	}
	if len(*code) > 10 {
		return &FieldError{"postalCode", "Postcode must be less than 10 characters"}
	}
	if !postalCodeRe.MatchString(*code) {
		return &FieldError{"postalCode", "Please enter a valid UK postcode"}
	}
	return nil
}

// ValidatePassword enforces the signup password rule: at least 8 characters
// with an upper-case letter, a lower-case letter and a digit.
func ValidatePassword(password string) *FieldError {
	if len(password) < 8 {
		return &FieldError{"password", "Password must be at least 8 characters"}
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper {
		return &FieldError{"password", "Password must contain at least one uppercase letter"}
	}
	if !hasLower {
		return &FieldError{"password", "Password must contain at least one lowercase letter"}
	}
	if !hasDigit {
		return &FieldError{"password", "Password must contain at least one number"}
	}
	return nil
}

// ProfileInput is the optional business metadata collected at signup or
// edited from the settings page. Empty fields are skipped.
type ProfileInput struct {
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	CompanyName string `json:"companyName"`
	PostalCode  string `json:"postalCode"`
}

// Validate checks the populated profile fields.
func (in *ProfileInput) Validate() []FieldError {
	var errs []FieldError

	in.FullName = strings.TrimSpace(in.FullName)
	if in.FullName != "" {
		if utf8.RuneCountInString(in.FullName) < 2 {
			errs = append(errs, FieldError{"fullName", "Name must be at least 2 characters"})
		} else if utf8.RuneCountInString(in.FullName) > 100 {
			errs = append(errs, FieldError{"fullName", "Name must be less than 100 characters"})
		}
	}

	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if in.PhoneNumber != "" {
		if !ukPhoneRe.MatchString(in.PhoneNumber) {
			errs = append(errs, FieldError{"phoneNumber", "Please enter a valid UK phone number (e.g., +44 7123 456789 or 020 1234 5678)"})
		} else if len(in.PhoneNumber) > 20 {
			errs = append(errs, FieldError{"phoneNumber", "Phone number must be less than 20 characters"})
		}
	}

	in.CompanyName = strings.TrimSpace(in.CompanyName)
	if in.CompanyName != "" {
		if utf8.RuneCountInString(in.CompanyName) < 2 {
			errs = append(errs, FieldError{"companyName", "Company name must be at least 2 characters"})
		} else if utf8.RuneCountInString(in.CompanyName) > 100 {
			errs = append(errs, FieldError{"companyName", "Company name must be less than 100 characters"})
		}
	}

	in.PostalCode = strings.TrimSpace(in.PostalCode)
	if len(in.PostalCode) > 20 {
		errs = append(errs, FieldError{"postalCode", "Postal code must be less than 20 characters"})
	}

	return errs
}
