package wizard

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestNewStartsWithDefaults(t *testing.T) {
	w := New()
	if w.Step != StepSupportType {
		t.Errorf("Step = %d, want %d", w.Step, StepSupportType)
	}
	want := Draft{
		SupportType:    "companionship",
		VisitFrequency: "twice-daily",
		CareDuration:   "long-term",
		Priority:       "flexibility",
	}
	if w.Draft != want {
		t.Errorf("Draft = %+v, want %+v", w.Draft, want)
	}
}

func TestBackFloorsAtFirstStep(t *testing.T) {
	w := New()
	w.Back()
	if w.Step != StepSupportType {
		t.Errorf("Back at step 1 moved to %d", w.Step)
	}

	w.Step = StepCareDuration
	w.Back()
	if w.Step != StepVisitFrequency {
		t.Errorf("Back from step 3 = %d, want %d", w.Step, StepVisitFrequency)
	}
}

func TestBackRetainsDraft(t *testing.T) {
	w := New()
	if err := w.SetField("supportType", "mobility"); err != nil {
		t.Fatal(err)
	}
	if err := w.Next(); err != nil {
		t.Fatal(err)
	}
	w.Back()
	if w.Draft.SupportType != "mobility" {
		t.Errorf("SupportType = %q after Back, want %q", w.Draft.SupportType, "mobility")
	}
}

func TestSetFieldRejectsUnknownChoice(t *testing.T) {
	w := New()
	if err := w.SetField("supportType", "butler"); err == nil {
		t.Error("unknown choice accepted")
	}
	if w.Draft.SupportType != "companionship" {
		t.Errorf("rejected choice mutated draft: %q", w.Draft.SupportType)
	}
	if err := w.SetField("favouriteColour", "blue"); err == nil {
		t.Error("unknown field accepted")
	}
}

func TestNextBlocksOnInvalidPostcode(t *testing.T) {
	w := New()
	w.Step = StepPostalCode

	if err := w.Next(); err == nil {
		t.Fatal("empty postcode passed the gate")
	}
	if w.Step != StepPostalCode {
		t.Errorf("failed gate advanced to step %d", w.Step)
	}

	if err := w.SetField("postalCode", "sw1a1aa"); err != nil {
		t.Fatal(err)
	}
	if err := w.Next(); err != nil {
		t.Fatalf("valid postcode blocked: %v", err)
	}
	if w.Step != StepMatches {
		t.Errorf("Step = %d, want %d", w.Step, StepMatches)
	}
	if w.Draft.PostalCode != "SW1A1AA" {
		t.Errorf("postcode not normalized at gate: %q", w.Draft.PostalCode)
	}
}

func TestNextAtContactStepRequiresSubmit(t *testing.T) {
	w := New()
	w.Step = StepContact
	if err := w.Next(); !errors.Is(err, ErrSubmitRequired) {
		t.Errorf("Next at contact step = %v, want ErrSubmitRequired", err)
	}
	if w.Step != StepContact {
		t.Errorf("Step = %d, want %d", w.Step, StepContact)
	}
}

func TestNextAtTerminalStepIsNoop(t *testing.T) {
	w := New()
	w.Step = StepDone
	if err := w.Next(); err != nil {
		t.Errorf("Next at terminal step = %v", err)
	}
	if w.Step != StepDone {
		t.Errorf("Step = %d, want %d", w.Step, StepDone)
	}
}

func TestSubmitValidatesBeforePersisting(t *testing.T) {
	w := New()
	w.Step = StepContact
	// Contact fields missing.

	persisted := 0
	err := w.Submit(func(Draft) error {
		persisted++
		return nil
	})
	if err == nil {
		t.Fatal("invalid contact submitted")
	}
	if persisted != 0 {
		t.Errorf("persist ran %d times on invalid input", persisted)
	}
	if w.Step != StepContact {
		t.Errorf("failed submit moved to step %d", w.Step)
	}
}

func TestSubmitPersistsExactlyOnce(t *testing.T) {
	w := New()
	w.Step = StepContact
	w.Draft.ContactName = "Jane Doe"
	w.Draft.Email = "jane@example.com"
	w.Draft.Phone = "07700 900123"
	w.Draft.PostalCode = "sw1a 1aa"

	persisted := 0
	var got Draft
	err := w.Submit(func(d Draft) error {
		persisted++
		got = d
		return nil
	})
	if err != nil {
		t.Fatalf("Submit() = %v", err)
	}
	if persisted != 1 {
		t.Fatalf("persist ran %d times, want 1", persisted)
	}
	if w.Step != StepDone {
		t.Errorf("Step = %d, want %d", w.Step, StepDone)
	}
	if got.PostalCode != "SW1A 1AA" {
		t.Errorf("persisted postcode = %q, want normalized %q", got.PostalCode, "SW1A 1AA")
	}
}

func TestSubmitStaysOnContactWhenPersistFails(t *testing.T) {
	w := New()
	w.Step = StepContact
	w.Draft.ContactName = "Jane Doe"
	w.Draft.Email = "jane@example.com"
	w.Draft.Phone = "07700 900123"
	w.Draft.PostalCode = "SW1A 1AA"

	err := w.Submit(func(Draft) error {
		return fmt.Errorf("db down")
	})
	if err == nil {
		t.Fatal("persist failure swallowed")
	}
	if w.Step != StepContact {
		t.Errorf("failed persist moved to step %d", w.Step)
	}
	if w.Draft.ContactName != "Jane Doe" {
		t.Error("draft lost after failed persist")
	}
}

func TestSubmitOutsideContactStepRejected(t *testing.T) {
	w := New()
	err := w.Submit(func(Draft) error {
		t.Fatal("persist ran from step 1")
		return nil
	})
	if err == nil {
		t.Fatal("submit allowed at step 1")
	}
}

func TestResetDiscardsEverything(t *testing.T) {
	w := New()
	w.Step = StepContact
	w.Draft.ContactName = "Jane Doe"
	w.Reset()
	if w.Step != StepSupportType {
		t.Errorf("Step = %d after Reset", w.Step)
	}
	if w.Draft != DefaultDraft() {
		t.Errorf("Draft = %+v after Reset", w.Draft)
	}
}

func TestFullWalkthrough(t *testing.T) {
	w := New()

	steps := []struct {
		field string
		value string
	}{
		{"supportType", "mobility"},
		{"visitFrequency", "once-daily"},
		{"careDuration", "short-term"},
		{"priority", "expertise"},
	}
	for _, s := range steps {
		if err := w.SetField(s.field, s.value); err != nil {
			t.Fatalf("SetField(%s) = %v", s.field, err)
		}
		if err := w.Next(); err != nil {
			t.Fatalf("Next from %s = %v", s.field, err)
		}
	}

	if w.Step != StepPostalCode {
		t.Fatalf("Step = %d, want %d", w.Step, StepPostalCode)
	}
	if err := w.SetField("postalCode", "m1 1ae"); err != nil {
		t.Fatal(err)
	}
	if err := w.Next(); err != nil {
		t.Fatalf("postcode gate: %v", err)
	}

	// Matches interstitial.
	if err := w.Next(); err != nil {
		t.Fatalf("Next from matches = %v", err)
	}
	if w.Step != StepContact {
		t.Fatalf("Step = %d, want %d", w.Step, StepContact)
	}

	for _, s := range []struct{ field, value string }{
		{"contactName", "Jane Doe"},
		{"email", "jane@example.com"},
		{"phone", "07700 900123"},
	} {
		if err := w.SetField(s.field, s.value); err != nil {
			t.Fatal(err)
		}
	}

	var saved Draft
	if err := w.Submit(func(d Draft) error {
		saved = d
		return nil
	}); err != nil {
		t.Fatalf("Submit() = %v", err)
	}

	if w.Step != StepDone {
		t.Errorf("Step = %d, want %d", w.Step, StepDone)
	}
	if saved.SupportType != "mobility" || saved.PostalCode != "M1 1AE" {
		t.Errorf("saved draft = %+v", saved)
	}
}

func TestStoreLifecycle(t *testing.T) {
	s := NewStore(time.Hour)
	defer s.Close()

	sess := s.Start(nil)
	if sess.ID == "" {
		t.Fatal("empty session id")
	}
	if sess.CreatedBy != nil {
		t.Errorf("anonymous session has creator %v", sess.CreatedBy)
	}

	got, ok := s.Get(sess.ID)
	if !ok || got.ID != sess.ID {
		t.Fatalf("Get(%q) = %v, %v", sess.ID, got, ok)
	}

	s.Delete(sess.ID)
	if _, ok := s.Get(sess.ID); ok {
		t.Error("deleted session still reachable")
	}

	if _, ok := s.Get("no-such-session"); ok {
		t.Error("unknown session reported present")
	}
}

func TestStoreAttributesCreator(t *testing.T) {
	s := NewStore(time.Hour)
	defer s.Close()

	userID := "user-1"
	sess := s.Start(&userID)
	if sess.CreatedBy == nil || *sess.CreatedBy != userID {
		t.Errorf("CreatedBy = %v, want %q", sess.CreatedBy, userID)
	}
}
