package reasoner

import (
	"fmt"
	"math"

	"github.com/cogpy/probreacog/internal/domain"
	"go.uber.org/zap"
)

// Graph is the read surface the reasoner needs from the knowledge graph.
type Graph interface {
	GetAtom(atomType domain.AtomType, name string) (*domain.Atom, error)
	AtomsByType(atomType domain.AtomType) []*domain.Atom
}

// EvidenceMode selects how reachability evidence is combined.
type EvidenceMode string

const (
	// EvidenceIndependent treats each item as an independent re-estimate of
	// the same goal; items are folded through revision.
	EvidenceIndependent EvidenceMode = "independent"
	// EvidenceJoint treats items as jointly-required conditions; items are
	// combined through conjunction before revising the prior.
	EvidenceJoint EvidenceMode = "joint"
)

// Evidence is one (source, truth value) pair supporting a goal.
type Evidence struct {
	Source string           `json:"source"`
	Truth  domain.TruthValue `json:"truth_value"`
}

// Explanation records the supporting premises behind a conclusion.
type Explanation struct {
	Conclusion domain.AtomKey    `json:"conclusion"`
	Truth      domain.TruthValue `json:"truth_value"`
	Premises   []domain.AtomKey  `json:"premises,omitempty"`
}

// Reasoner applies probabilistic operators over the knowledge graph. The
// operators themselves never mutate the graph; callers decide whether to
// store conclusions back as atoms or links.
type Reasoner struct {
	graph  Graph
	logger *zap.Logger
}

func New(graph Graph, logger *zap.Logger) *Reasoner {
	return &Reasoner{graph: graph, logger: logger}
}

// operation weights scale a parameter's nominal uncertainty by how much an
// analysis operation amplifies it.
var operationWeights = map[string]float64{
	"identity": 1.0,
	"add":      1.2,
	"multiply": 1.5,
}

const defaultOperationWeight = 2.0

// PropagateUncertainty maps a parameter's declared bound width and nominal
// uncertainty into a truth value. Confidence is exactly 1 when the nominal
// uncertainty is 0 and decreases monotonically as relative uncertainty
// grows.
func (r *Reasoner) PropagateUncertainty(parameter, operation string) (domain.TruthValue, error) {
	atom, err := r.graph.GetAtom(domain.AtomParameter, parameter)
	if err != nil {
		return domain.TruthValue{}, fmt.Errorf("%w: parameter %q not found", domain.ErrValidation, parameter)
	}

	uncertainty := metaFloat(atom, "uncertainty")
	value := metaFloat(atom, "value")
	width := metaFloat(atom, "upper_bound") - metaFloat(atom, "lower_bound")

	weight, ok := operationWeights[operation]
	if !ok {
		weight = defaultOperationWeight
	}

	// Relative bound width in [0,1): a wide interval around a small nominal
	// value amplifies the effective uncertainty.
	relWidth := 0.0
	if width > 0 {
		relWidth = width / (math.Abs(value) + width)
	}

	confidence := 1.0 / (1.0 + uncertainty*weight*(1.0+relWidth))
	return domain.TruthValue{Strength: atom.Truth.Strength, Confidence: confidence}, nil
}

// ReasonAboutReachability folds evidence into a posterior truth value for
// the named goal. The result's strength is the reachability probability,
// its confidence the reliability of that estimate.
func (r *Reasoner) ReasonAboutReachability(goal string, evidence []Evidence, mode EvidenceMode) (domain.TruthValue, error) {
	prior := domain.TruthValue{Strength: NeutralPrior, Confidence: 0.1}
	if atom, err := r.graph.GetAtom(domain.AtomGoal, goal); err == nil {
		prior = atom.Truth
	}
	if len(evidence) == 0 {
		return prior, nil
	}

	switch mode {
	case EvidenceJoint:
		tvs := make([]domain.TruthValue, 0, len(evidence))
		for _, ev := range evidence {
			tvs = append(tvs, ev.Truth)
		}
		joint, err := Conjunction(tvs)
		if err != nil {
			return domain.TruthValue{}, err
		}
		return Revision(prior, joint)
	default:
		posterior := prior
		for _, ev := range evidence {
			var err error
			posterior, err = Revision(posterior, ev.Truth)
			if err != nil {
				return domain.TruthValue{}, err
			}
		}
		return posterior, nil
	}
}

// BackwardChain walks supporting links from goal up to maxDepth hops,
// de-duplicated by atom key. The traversal is recomputed fresh on every
// call.
func (r *Reasoner) BackwardChain(goal *domain.Atom, maxDepth int) []*domain.Atom {
	seen := map[domain.AtomKey]bool{goal.Key(): true}
	var supporters []*domain.Atom

	frontier := []*domain.Atom{goal}
	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []*domain.Atom
		for _, atom := range frontier {
			for _, link := range atom.Incoming {
				src := link.Source
				if seen[src.Key()] {
					continue
				}
				seen[src.Key()] = true
				supporters = append(supporters, src)
				next = append(next, src)
			}
		}
		frontier = next
	}
	return supporters
}

// ForwardChain derives new atoms from the premise set by following
// outgoing links, terminating at maxSteps or at a fixpoint where no new
// atom is produced.
func (r *Reasoner) ForwardChain(premises []*domain.Atom, maxSteps int) []*domain.Atom {
	seen := make(map[domain.AtomKey]bool, len(premises))
	for _, p := range premises {
		seen[p.Key()] = true
	}

	var derived []*domain.Atom
	frontier := premises
	for step := 0; step < maxSteps; step++ {
		var next []*domain.Atom
		for _, atom := range frontier {
			for _, link := range atom.Outgoing {
				tgt := link.Target
				if seen[tgt.Key()] {
					continue
				}
				seen[tgt.Key()] = true
				derived = append(derived, tgt)
				next = append(next, tgt)
			}
		}
		if len(next) == 0 {
			break
		}
		frontier = next
	}
	return derived
}

// Explain reports the direct premises supporting a conclusion atom.
func (r *Reasoner) Explain(conclusion *domain.Atom) *Explanation {
	exp := &Explanation{
		Conclusion: conclusion.Key(),
		Truth:      conclusion.Truth,
	}
	for _, link := range conclusion.Incoming {
		exp.Premises = append(exp.Premises, link.Source.Key())
	}
	return exp
}

// InferParameterBounds estimates 2-sigma bounds for a parameter from a set
// of observations.
func InferParameterBounds(observations []float64) domain.Interval {
	if len(observations) == 0 {
		return domain.Interval{Lower: 0, Upper: 1}
	}
	mean := 0.0
	for _, x := range observations {
		mean += x
	}
	mean /= float64(len(observations))

	variance := 0.0
	for _, x := range observations {
		variance += (x - mean) * (x - mean)
	}
	variance /= float64(len(observations))
	sigma := math.Sqrt(variance)

	return domain.Interval{Lower: mean - 2*sigma, Upper: mean + 2*sigma}
}

func metaFloat(atom *domain.Atom, key string) float64 {
	v, ok := atom.Metadata[key]
	if !ok {
		return 0
	}
	f, ok := v.(float64)
	if !ok {
		return 0
	}
	return f
}
