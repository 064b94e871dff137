package claims_test

import (
	"testing"

	"github.com/businessinrwanda/marketplace/internal/server/claims"
	"github.com/businessinrwanda/marketplace/internal/server/models"
)

func TestIsTransitionAllowed_Forward(t *testing.T) {
	cases := []struct{ from, to models.ApplicationStatus }{
		{models.ApplicationApplied, models.ApplicationReviewed},
		{models.ApplicationReviewed, models.ApplicationInterviewScheduled},
		{models.ApplicationInterviewScheduled, models.ApplicationHired},
	}
	for _, c := range cases {
		if !claims.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be true", c.from, c.to)
		}
	}
}

func TestIsTransitionAllowed_ToRejected(t *testing.T) {
	for _, from := range []models.ApplicationStatus{
		models.ApplicationApplied,
		models.ApplicationReviewed,
		models.ApplicationInterviewScheduled,
	} {
		if !claims.IsTransitionAllowed(from, models.ApplicationRejected) {
			t.Errorf("IsTransitionAllowed(%s → rejected) should be true", from)
		}
	}
}

func TestIsTransitionAllowed_Invalid(t *testing.T) {
	cases := []struct{ from, to models.ApplicationStatus }{
		{models.ApplicationApplied, models.ApplicationHired},
		{models.ApplicationReviewed, models.ApplicationApplied},
		{models.ApplicationHired, models.ApplicationRejected},
		{models.ApplicationRejected, models.ApplicationApplied},
		{models.ApplicationApplied, models.ApplicationApplied},
	}
	for _, c := range cases {
		if claims.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be false", c.from, c.to)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if !claims.IsTerminal(models.ApplicationHired) || !claims.IsTerminal(models.ApplicationRejected) {
		t.Error("hired and rejected must be terminal")
	}
	if claims.IsTerminal(models.ApplicationApplied) {
		t.Error("applied must not be terminal")
	}
}
