package reasoner

import (
	"errors"
	"math"
	"testing"

	"github.com/cogpy/probreacog/internal/domain"
)

func tv(s, c float64) domain.TruthValue {
	return domain.TruthValue{Strength: s, Confidence: c}
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

func TestDeduction(t *testing.T) {
	out, err := Deduction(tv(0.8, 0.9), tv(0.7, 0.8))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	wantS := 0.8*0.7 + 0.2*NeutralPrior
	if !approxEqual(out.Strength, wantS) {
		t.Fatalf("expected strength %v, got %v", wantS, out.Strength)
	}
	if !approxEqual(out.Confidence, 0.9*0.8) {
		t.Fatalf("expected confidence %v, got %v", 0.9*0.8, out.Confidence)
	}
}

func TestDeduction_ConfidenceDecreasesAlongChain(t *testing.T) {
	link := tv(0.9, 0.8)
	out := link
	var err error
	for i := 0; i < 5; i++ {
		prev := out.Confidence
		out, err = Deduction(out, link)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out.Confidence >= prev {
			t.Fatalf("step %d: confidence %v did not decrease from %v", i, out.Confidence, prev)
		}
	}
}

func TestDeduction_InvalidInput(t *testing.T) {
	if _, err := Deduction(tv(1.5, 0.5), tv(0.5, 0.5)); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := Deduction(tv(0.5, 0.5), tv(0.5, -0.1)); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestInduction(t *testing.T) {
	out, err := Induction(tv(0.6, 0.5))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !approxEqual(out.Strength, 0.6) {
		t.Fatalf("expected strength preserved, got %v", out.Strength)
	}
	if !approxEqual(out.Confidence, 0.5*ReductionFactor) {
		t.Fatalf("expected confidence %v, got %v", 0.5*ReductionFactor, out.Confidence)
	}
}

func TestAbduction(t *testing.T) {
	out, err := Abduction(tv(0.8, 0.6), tv(0.4, 0.9))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !approxEqual(out.Strength, 0.6) {
		t.Fatalf("expected strength 0.6, got %v", out.Strength)
	}
	if !approxEqual(out.Confidence, 0.6*ReductionFactor) {
		t.Fatalf("expected confidence %v, got %v", 0.6*ReductionFactor, out.Confidence)
	}
}

func TestRevision_WeightedMean(t *testing.T) {
	out, err := Revision(tv(0.9, 0.8), tv(0.3, 0.2))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	wantS := (0.9*0.8 + 0.3*0.2) / (0.8 + 0.2)
	if !approxEqual(out.Strength, wantS) {
		t.Fatalf("expected strength %v, got %v", wantS, out.Strength)
	}
	if !approxEqual(out.Confidence, 1.0) {
		t.Fatalf("expected confidence 1, got %v", out.Confidence)
	}
}

func TestRevision_StrengthIdempotent(t *testing.T) {
	for _, in := range []domain.TruthValue{tv(0, 0), tv(0.5, 0.3), tv(1, 1), tv(0.25, 0.9)} {
		out, err := Revision(in, in)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !approxEqual(out.Strength, in.Strength) {
			t.Fatalf("revising %v with itself moved strength to %v", in, out.Strength)
		}
	}
}

func TestRevision_ZeroConfidence(t *testing.T) {
	out, err := Revision(tv(0.2, 0), tv(0.8, 0))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !approxEqual(out.Strength, 0.5) {
		t.Fatalf("expected unweighted mean 0.5, got %v", out.Strength)
	}
	if out.Confidence != 0 {
		t.Fatalf("expected confidence 0, got %v", out.Confidence)
	}
}

func TestRevision_ConfidenceCapped(t *testing.T) {
	out, err := Revision(tv(0.5, 0.9), tv(0.5, 0.9))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Confidence != 1 {
		t.Fatalf("expected confidence capped at 1, got %v", out.Confidence)
	}
}

func TestConjunction(t *testing.T) {
	out, err := Conjunction([]domain.TruthValue{tv(0.8, 0.9), tv(0.5, 0.6), tv(1, 1)})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !approxEqual(out.Strength, 0.4) {
		t.Fatalf("expected strength 0.4, got %v", out.Strength)
	}
	if !approxEqual(out.Confidence, 0.6) {
		t.Fatalf("expected confidence 0.6, got %v", out.Confidence)
	}
}

func TestConjunction_Empty(t *testing.T) {
	out, err := Conjunction(nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Strength != 1 || out.Confidence != 1 {
		t.Fatalf("expected vacuous truth, got %v", out)
	}
}

func TestConjunction_OrderIndependent(t *testing.T) {
	a := []domain.TruthValue{tv(0.8, 0.9), tv(0.5, 0.6), tv(0.3, 0.7)}
	b := []domain.TruthValue{tv(0.3, 0.7), tv(0.8, 0.9), tv(0.5, 0.6)}
	outA, _ := Conjunction(a)
	outB, _ := Conjunction(b)
	if !approxEqual(outA.Strength, outB.Strength) || !approxEqual(outA.Confidence, outB.Confidence) {
		t.Fatalf("conjunction not order independent: %v vs %v", outA, outB)
	}
}

func TestDisjunction(t *testing.T) {
	out, err := Disjunction([]domain.TruthValue{tv(0.5, 0.9), tv(0.5, 0.4)})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !approxEqual(out.Strength, 0.75) {
		t.Fatalf("expected strength 0.75, got %v", out.Strength)
	}
	if !approxEqual(out.Confidence, 0.4) {
		t.Fatalf("expected confidence 0.4, got %v", out.Confidence)
	}
}

func TestDisjunction_OrderIndependent(t *testing.T) {
	a := []domain.TruthValue{tv(0.8, 0.9), tv(0.5, 0.6), tv(0.3, 0.7)}
	b := []domain.TruthValue{tv(0.3, 0.7), tv(0.8, 0.9), tv(0.5, 0.6)}
	outA, _ := Disjunction(a)
	outB, _ := Disjunction(b)
	if !approxEqual(outA.Strength, outB.Strength) || !approxEqual(outA.Confidence, outB.Confidence) {
		t.Fatalf("disjunction not order independent: %v vs %v", outA, outB)
	}
}

func TestDisjunction_Empty(t *testing.T) {
	out, err := Disjunction(nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Strength != 0 || out.Confidence != 1 {
		t.Fatalf("expected vacuous falsehood, got %v", out)
	}
}

func TestOperators_RangeClosure(t *testing.T) {
	values := []domain.TruthValue{tv(0, 0), tv(0, 1), tv(1, 0), tv(1, 1), tv(0.5, 0.5), tv(0.1, 0.9)}
	check := func(name string, out domain.TruthValue) {
		t.Helper()
		if out.Strength < 0 || out.Strength > 1 || out.Confidence < 0 || out.Confidence > 1 {
			t.Fatalf("%s escaped [0,1]: %v", name, out)
		}
	}
	for _, a := range values {
		for _, b := range values {
			out, _ := Deduction(a, b)
			check("deduction", out)
			out, _ = Abduction(a, b)
			check("abduction", out)
			out, _ = Revision(a, b)
			check("revision", out)
			out, _ = Conjunction([]domain.TruthValue{a, b})
			check("conjunction", out)
			out, _ = Disjunction([]domain.TruthValue{a, b})
			check("disjunction", out)
		}
		out, _ := Induction(a)
		check("induction", out)
	}
}
