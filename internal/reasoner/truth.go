package reasoner

import (
	"github.com/cogpy/probreacog/internal/domain"
)

const (
	// NeutralPrior is the assumed base rate used by deduction when no chain
	// evidence exists.
	NeutralPrior = 0.5
	// ReductionFactor encodes the information loss of reversing an
	// implication (induction, abduction).
	ReductionFactor = 0.9
)

// Deduction combines A->B and B->C into A->C. Confidence multiplies under
// an independence assumption, so it strictly decreases with chain length.
func Deduction(tvAB, tvBC domain.TruthValue) (domain.TruthValue, error) {
	if err := validate(tvAB, tvBC); err != nil {
		return domain.TruthValue{}, err
	}
	return domain.TruthValue{
		Strength:   tvAB.Strength*tvBC.Strength + (1-tvAB.Strength)*NeutralPrior,
		Confidence: tvAB.Confidence * tvBC.Confidence,
	}, nil
}

// Induction reverses A->B into B->A, keeping strength but discounting
// confidence by ReductionFactor.
func Induction(tvAB domain.TruthValue) (domain.TruthValue, error) {
	if err := validate(tvAB); err != nil {
		return domain.TruthValue{}, err
	}
	return domain.TruthValue{
		Strength:   tvAB.Strength,
		Confidence: tvAB.Confidence * ReductionFactor,
	}, nil
}

// Abduction infers A->B from A->C and B->C.
func Abduction(tvAC, tvBC domain.TruthValue) (domain.TruthValue, error) {
	if err := validate(tvAC, tvBC); err != nil {
		return domain.TruthValue{}, err
	}
	return domain.TruthValue{
		Strength:   (tvAC.Strength + tvBC.Strength) / 2,
		Confidence: min(tvAC.Confidence, tvBC.Confidence) * ReductionFactor,
	}, nil
}

// Revision merges two estimates of the same proposition. Strength is the
// confidence-weighted mean, so revising an estimate with itself leaves
// strength unchanged. Confidence accumulates but never exceeds 1.
func Revision(tv1, tv2 domain.TruthValue) (domain.TruthValue, error) {
	if err := validate(tv1, tv2); err != nil {
		return domain.TruthValue{}, err
	}
	total := tv1.Confidence + tv2.Confidence
	var strength float64
	if total > 0 {
		strength = (tv1.Strength*tv1.Confidence + tv2.Strength*tv2.Confidence) / total
	} else {
		strength = (tv1.Strength + tv2.Strength) / 2
	}
	return domain.TruthValue{
		Strength:   strength,
		Confidence: min(1, total),
	}, nil
}

// Conjunction combines jointly-required conditions: product strength under
// an independence assumption, confidence of the weakest operand.
// Commutative and associative over the operand multiset. The empty
// conjunction is vacuously true.
func Conjunction(tvs []domain.TruthValue) (domain.TruthValue, error) {
	if err := validate(tvs...); err != nil {
		return domain.TruthValue{}, err
	}
	out := domain.TruthValue{Strength: 1, Confidence: 1}
	for _, tv := range tvs {
		out.Strength *= tv.Strength
		out.Confidence = min(out.Confidence, tv.Confidence)
	}
	return out, nil
}

// Disjunction combines alternative conditions via the independence
// co-product 1-prod(1-s). The empty disjunction is false.
func Disjunction(tvs []domain.TruthValue) (domain.TruthValue, error) {
	if err := validate(tvs...); err != nil {
		return domain.TruthValue{}, err
	}
	out := domain.TruthValue{Strength: 0, Confidence: 1}
	failAll := 1.0
	for _, tv := range tvs {
		failAll *= 1 - tv.Strength
		out.Confidence = min(out.Confidence, tv.Confidence)
	}
	out.Strength = 1 - failAll
	return out, nil
}

func validate(tvs ...domain.TruthValue) error {
	for _, tv := range tvs {
		if err := tv.Validate(); err != nil {
			return err
		}
	}
	return nil
}
