package intake

import (
	"context"
	"math/rand"
	"testing"
)

func TestStepGateBlocksIncompleteIdentity(t *testing.T) {
	drafts := []Draft{
		{},
		{FullName: "Jane Doe"},
		{Email: "jane@acme.com"},
		{FullName: "", Email: "", CompanyName: "Acme"},
	}
	for _, d := range drafts {
		got := Transition(Initial(), EventNext, d)
		if got != Initial() {
			t.Fatalf("draft %+v advanced to %+v", d, got)
		}
		if CanAdvance(Initial(), d) {
			t.Fatalf("CanAdvance true for draft %+v", d)
		}
	}
}

func TestStepGateDoesNotCheckEmailFormat(t *testing.T) {
	got := Transition(Initial(), EventNext, Draft{FullName: "A", Email: "not-an-email"})
	if got != AtStep(1) {
		t.Fatalf("expected step 1, got %+v", got)
	}
}

func TestTransitionTable(t *testing.T) {
	complete := Draft{FullName: "A", Email: "a@b.com"}
	tests := []struct {
		name string
		from State
		ev   Event
		want State
	}{
		{"step1 next is ungated", AtStep(1), EventNext, AtStep(2)},
		{"step1 back", AtStep(1), EventBack, AtStep(0)},
		{"step2 back", AtStep(2), EventBack, AtStep(1)},
		{"back at step0 is a no-op", AtStep(0), EventBack, AtStep(0)},
		{"next at step2 is a no-op", AtStep(2), EventNext, AtStep(2)},
		{"submit from step2", AtStep(2), EventSubmit, Submitting()},
		{"submit before last step ignored", AtStep(1), EventSubmit, AtStep(1)},
		{"accepted", Submitting(), EventAccepted, Succeeded()},
		{"duplicate", Submitting(), EventRejectedDuplicate, Failed(FailureDuplicateEmail)},
		{"generic", Submitting(), EventRejectedGeneric, Failed(FailureGeneric)},
		{"navigation while submitting ignored", Submitting(), EventBack, Submitting()},
		{"second submit while submitting ignored", Submitting(), EventSubmit, Submitting()},
		{"failed resubmits", Failed(FailureGeneric), EventSubmit, Submitting()},
		{"failed goes back to step1", Failed(FailureDuplicateEmail), EventBack, AtStep(1)},
		{"failed next is a no-op", Failed(FailureGeneric), EventNext, Failed(FailureGeneric)},
		{"success is terminal", Succeeded(), EventBack, Succeeded()},
		{"success ignores submit", Succeeded(), EventSubmit, Succeeded()},
		{"store outcome outside submitting ignored", AtStep(2), EventAccepted, AtStep(2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Transition(tt.from, tt.ev, complete); got != tt.want {
				t.Fatalf("Transition(%+v, %s) = %+v, want %+v", tt.from, tt.ev, got, tt.want)
			}
		})
	}
}

func TestNavigationNeverChangesDraft(t *testing.T) {
	set, err := NewPainPointSet(PainReturnsOverhead, PainInventoryFragmentation)
	if err != nil {
		t.Fatal(err)
	}
	original := Draft{
		FullName:    "Jane Doe",
		Email:       "jane@acme.com",
		CompanyName: "Acme",
		Website:     "acme.com",
		CompanySize: CompanySize11To50,
		Role:        "Founder",
		PainPoints:  set,
	}

	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))
	w := NewWizard(newMemStore())
	w.draft = original.Clone()
	for i := 0; i < 500; i++ {
		if rng.Intn(2) == 0 {
			w.Next(ctx)
		} else {
			w.Back(ctx)
		}
		if !w.Draft().Equal(original) {
			t.Fatalf("draft changed after %d navigation steps: %+v", i+1, w.Draft())
		}
		if s := w.State(); s.Kind != KindStep || s.Step < 0 || s.Step > LastStep {
			t.Fatalf("navigation left the form steps: %+v", s)
		}
	}
}

func TestMessageSlot(t *testing.T) {
	if AtStep(2).Message() != "" || Succeeded().Message() != "" {
		t.Fatal("expected no message outside failed state")
	}
	if Failed(FailureDuplicateEmail).Message() == Failed(FailureGeneric).Message() {
		t.Fatal("duplicate and generic failures must read differently")
	}
}
