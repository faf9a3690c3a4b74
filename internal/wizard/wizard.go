// Package wizard implements the linear multi-step lead-intake form as a
// finite-state machine. Steps 1-4 collect care preferences, step 5 the
// postcode, step 6 shows the matches interstitial, step 7 captures contact
// details and submits, step 8 is the terminal success state.
package wizard

import (
	"errors"
	"fmt"

	"github.com/carebridge/backend/internal/validation"
)

const (
	StepSupportType    = 1
	StepVisitFrequency = 2
	StepCareDuration   = 3
	StepPriority       = 4
	StepPostalCode     = 5
	StepMatches        = 6
	StepContact        = 7
	StepDone           = 8
)

// ErrSubmitRequired is returned by Next at the contact step: the only way
// forward from step 7 is Submit.
var ErrSubmitRequired = errors.New("contact step requires submit")

// Draft is the accumulating form record.
type Draft struct {
	SupportType    string `json:"supportType"`
	VisitFrequency string `json:"visitFrequency"`
	CareDuration   string `json:"careDuration"`
	Priority       string `json:"priority"`
	PostalCode     string `json:"postalCode"`
	ContactName    string `json:"contactName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
}

// choiceFields maps each preference field to its allowed answers.
var choiceFields = map[string][]string{
	"supportType":    {"mobility", "companionship", "meal", "medication"},
	"visitFrequency": {"once-daily", "twice-daily", "overnight", "few-times"},
	"careDuration":   {"short-term", "long-term", "emergency", "unsure"},
	"priority":       {"compassion", "flexibility", "expertise", "affordability"},
}

// DefaultDraft returns the draft with every preference at its default.
func DefaultDraft() Draft {
	return Draft{
		SupportType:    "companionship",
		VisitFrequency: "twice-daily",
		CareDuration:   "long-term",
		Priority:       "flexibility",
	}
}

// Wizard is the intake form state machine.
type Wizard struct {
	Step  int   `json:"step"`
	Draft Draft `json:"draft"`
}

func New() *Wizard {
	return &Wizard{Step: StepSupportType, Draft: DefaultDraft()}
}

// Back decrements the step with a floor of 1. Below the floor it is a no-op.
func (w *Wizard) Back() {
	if w.Step > StepSupportType {
		w.Step--
	}
}

// Next advances the wizard one step. Leaving the postcode step is blocked
// until the postcode validates; leaving the contact step is only possible
// through Submit. At the terminal step Next is a no-op.
func (w *Wizard) Next() error {
	switch w.Step {
	case StepPostalCode:
		if err := validation.ValidatePostalCode(&w.Draft.PostalCode); err != nil {
			return err
		}
	case StepContact:
		return ErrSubmitRequired
	case StepDone:
		return nil
	}
	w.Step++
	return nil
}

// SetField records a draft value. Preference fields must be one of the
// fixed choices; postcode and contact fields are validated at the gates,
// not on entry.
func (w *Wizard) SetField(name, value string) error {
	if choices, ok := choiceFields[name]; ok {
		valid := false
		for _, c := range choices {
			if value == c {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid choice %q for %s", value, name)
		}
	}

	switch name {
	case "supportType":
		w.Draft.SupportType = value
	case "visitFrequency":
		w.Draft.VisitFrequency = value
	case "careDuration":
		w.Draft.CareDuration = value
	case "priority":
		w.Draft.Priority = value
	case "postalCode":
		w.Draft.PostalCode = value
	case "contactName":
		w.Draft.ContactName = value
	case "email":
		w.Draft.Email = value
	case "phone":
		w.Draft.Phone = value
	default:
		return fmt.Errorf("unknown field %q", name)
	}
	return nil
}

// Submit validates the full contact record (including the step-5 postcode)
// and, when clean, runs persist exactly once. On success the wizard moves
// to the terminal step; on any failure it stays at the contact step with
// the draft intact.
func (w *Wizard) Submit(persist func(Draft) error) error {
	if w.Step != StepContact {
		return fmt.Errorf("submit only allowed at step %d", StepContact)
	}

	contact := validation.ContactInput{
		ContactName: w.Draft.ContactName,
		Email:       w.Draft.Email,
		Phone:       w.Draft.Phone,
		PostalCode:  w.Draft.PostalCode,
	}
	if errs := contact.Validate(); len(errs) > 0 {
		return &errs[0]
	}

	// Carry the normalized values into the persisted record.
	w.Draft.ContactName = contact.ContactName
	w.Draft.Email = contact.Email
	w.Draft.Phone = contact.Phone
	w.Draft.PostalCode = contact.PostalCode

	if err := persist(w.Draft); err != nil {
		return err
	}
	w.Step = StepDone
	return nil
}

// Reset returns the wizard to the first step with a default draft,
// discarding all entered data.
func (w *Wizard) Reset() {
	w.Step = StepSupportType
	w.Draft = DefaultDraft()
}
