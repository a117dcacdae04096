package atomspace

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cogpy/probreacog/internal/domain"
	"github.com/cogpy/probreacog/internal/reasoner"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("atom not found")

const (
	// BaselineSTI is the short-term importance assigned to freshly inserted
	// atoms.
	BaselineSTI = 10.0
	// BaselineLTI is the long-term importance assigned to freshly inserted
	// atoms.
	BaselineLTI = 0.0
)

// Space is the shared knowledge graph of one orchestration session. It
// owns every atom and link; atoms are never removed once added. All
// mutating operations are atomic: no partial merge state is ever visible.
type Space struct {
	mu     sync.RWMutex
	atoms  map[domain.AtomKey]*domain.Atom
	order  []domain.AtomKey
	links  []*domain.Link
	models map[string]*domain.Atom
	logger *zap.Logger

	baseline domain.AttentionValue
}

func New(logger *zap.Logger) *Space {
	return &Space{
		atoms:    make(map[domain.AtomKey]*domain.Atom),
		models:   make(map[string]*domain.Atom),
		logger:   logger,
		baseline: domain.AttentionValue{STI: BaselineSTI, LTI: BaselineLTI},
	}
}

// SetBaseline overrides the attention value given to fresh atoms.
func (s *Space) SetBaseline(av domain.AttentionValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseline = av
}

// AddAtom inserts atom, or merges it into the existing atom with the same
// (type, name) key: truth values combine by confidence-weighted revision,
// attention values add, metadata keys from the incoming atom win. Returns
// the atom now owned by the space.
func (s *Space) AddAtom(atom *domain.Atom) (*domain.Atom, error) {
	if err := atom.Truth.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addAtomLocked(atom)
}

func (s *Space) addAtomLocked(atom *domain.Atom) (*domain.Atom, error) {
	key := atom.Key()
	if existing, ok := s.atoms[key]; ok {
		merged, err := reasoner.Revision(existing.Truth, atom.Truth)
		if err != nil {
			return nil, err
		}
		existing.Truth = merged
		existing.Attention.STI += atom.Attention.STI
		existing.Attention.LTI += atom.Attention.LTI
		for k, v := range atom.Metadata {
			if existing.Metadata == nil {
				existing.Metadata = make(map[string]any)
			}
			existing.Metadata[k] = v
		}
		return existing, nil
	}

	atom.Attention = s.baseline
	s.atoms[key] = atom
	s.order = append(s.order, key)
	if atom.Type == domain.AtomModel {
		s.models[atom.Name] = atom
	}
	return atom, nil
}

// GetAtom returns the atom with the given key, or ErrNotFound.
func (s *Space) GetAtom(atomType domain.AtomType, name string) (*domain.Atom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	atom, ok := s.atoms[domain.AtomKey{Type: atomType, Name: name}]
	if !ok {
		return nil, ErrNotFound
	}
	return atom, nil
}

// Atoms returns every atom in insertion order.
func (s *Space) Atoms() []*domain.Atom {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Atom, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.atoms[key])
	}
	return out
}

// AtomsByType returns every atom of the given type in insertion order.
func (s *Space) AtomsByType(atomType domain.AtomType) []*domain.Atom {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Atom
	for _, key := range s.order {
		if key.Type == atomType {
			out = append(out, s.atoms[key])
		}
	}
	return out
}

// Pattern selects atoms by any subset of type, name prefix and metadata
// key/value pairs. Empty fields match everything.
type Pattern struct {
	Type       domain.AtomType
	NamePrefix string
	Metadata   map[string]any
}

// Query returns all atoms matching the pattern in insertion order. The
// scan is linear; callers must not assume sub-linear cost.
func (s *Space) Query(p Pattern) []*domain.Atom {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Atom
	for _, key := range s.order {
		atom := s.atoms[key]
		if p.Type != "" && atom.Type != p.Type {
			continue
		}
		if p.NamePrefix != "" && !strings.HasPrefix(atom.Name, p.NamePrefix) {
			continue
		}
		if !matchesMetadata(atom, p.Metadata) {
			continue
		}
		out = append(out, atom)
	}
	return out
}

func matchesMetadata(atom *domain.Atom, want map[string]any) bool {
	for k, v := range want {
		got, ok := atom.Metadata[k]
		if !ok || got != v {
			return false
		}
	}
	return true
}

// AddLink records a typed relation between two atoms already owned by the
// space, and threads it into both atoms' ordered link lists.
func (s *Space) AddLink(linkType domain.LinkType, name string, source, target *domain.Atom, tv domain.TruthValue) (*domain.Link, error) {
	if err := tv.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLinkLocked(linkType, name, source, target, tv), nil
}

func (s *Space) addLinkLocked(linkType domain.LinkType, name string, source, target *domain.Atom, tv domain.TruthValue) *domain.Link {
	link := &domain.Link{Type: linkType, Name: name, Truth: tv, Source: source, Target: target}
	s.links = append(s.links, link)
	source.Outgoing = append(source.Outgoing, link)
	target.Incoming = append(target.Incoming, link)
	return link
}

// Links returns every link in insertion order.
func (s *Space) Links() []*domain.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Link, len(s.links))
	copy(out, s.links)
	return out
}

// Len returns the number of atoms.
func (s *Space) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.atoms)
}

// ModelNames lists registered model atoms in insertion order.
func (s *Space) ModelNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, key := range s.order {
		if key.Type == domain.AtomModel {
			out = append(out, key.Name)
		}
	}
	return out
}

// AddModel creates or merges a model atom.
func (s *Space) AddModel(name, file string) (*domain.Atom, error) {
	atom := &domain.Atom{
		Type:     domain.AtomModel,
		Name:     name,
		Truth:    domain.DefaultTruthValue(),
		Metadata: map[string]any{"model_file": file},
	}
	return s.AddAtom(atom)
}

// AddMode creates a mode atom under the named model with an inheritance
// link to it. Fails if the model atom is absent.
func (s *Space) AddMode(modelName string, modeID int, modeName string) (*domain.Atom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	model, ok := s.models[modelName]
	if !ok {
		return nil, fmt.Errorf("%w: model %q not found", domain.ErrValidation, modelName)
	}

	atom, err := s.addAtomLocked(&domain.Atom{
		Type:  domain.AtomMode,
		Name:  fmt.Sprintf("%s_mode_%d", modelName, modeID),
		Truth: domain.DefaultTruthValue(),
		Metadata: map[string]any{
			"model":     modelName,
			"mode_id":   float64(modeID),
			"mode_name": modeName,
		},
	})
	if err != nil {
		return nil, err
	}
	s.addLinkLocked(domain.LinkInheritance,
		fmt.Sprintf("mode_%d_isa_%s", modeID, modelName),
		atom, model, domain.DefaultTruthValue())
	return atom, nil
}

// AddParameter creates a parameter atom under the named model. Parameter
// uncertainty lowers the atom's truth confidence. Fails if the model atom
// is absent.
func (s *Space) AddParameter(modelName string, p domain.ParameterDescriptor) (*domain.Atom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	model, ok := s.models[modelName]
	if !ok {
		return nil, fmt.Errorf("%w: model %q not found", domain.ErrValidation, modelName)
	}

	confidence := 1.0 - p.Uncertainty
	if confidence < 0 {
		confidence = 0
	}
	atom, err := s.addAtomLocked(&domain.Atom{
		Type:  domain.AtomParameter,
		Name:  p.Name,
		Truth: domain.TruthValue{Strength: 1.0, Confidence: confidence},
		Metadata: map[string]any{
			"model":       modelName,
			"value":       p.Value,
			"lower_bound": p.Bounds.Lower,
			"upper_bound": p.Bounds.Upper,
			"uncertainty": p.Uncertainty,
		},
	})
	if err != nil {
		return nil, err
	}
	s.addLinkLocked(domain.LinkEvaluation,
		fmt.Sprintf("param_%s_of_%s", p.Name, modelName),
		atom, model, domain.DefaultTruthValue())
	return atom, nil
}

// AddFlow creates a flow-equation atom under the named mode. Fails if the
// mode atom is absent.
func (s *Space) AddFlow(modeName, variable, equation string) (*domain.Atom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mode, ok := s.atoms[domain.AtomKey{Type: domain.AtomMode, Name: modeName}]
	if !ok {
		return nil, fmt.Errorf("%w: mode %q not found", domain.ErrValidation, modeName)
	}

	atom, err := s.addAtomLocked(&domain.Atom{
		Type:  domain.AtomFlow,
		Name:  fmt.Sprintf("%s_flow_%s", modeName, variable),
		Truth: domain.DefaultTruthValue(),
		Metadata: map[string]any{
			"mode":     modeName,
			"variable": variable,
			"equation": equation,
		},
	})
	if err != nil {
		return nil, err
	}
	s.addLinkLocked(domain.LinkEvaluation,
		fmt.Sprintf("flow_%s_in_%s", variable, modeName),
		atom, mode, domain.DefaultTruthValue())
	return atom, nil
}

// AddJump creates a jump atom connecting two modes. Fails if either mode
// atom is absent.
func (s *Space) AddJump(fromMode, toMode, guard string) (*domain.Atom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, ok := s.atoms[domain.AtomKey{Type: domain.AtomMode, Name: fromMode}]
	if !ok {
		return nil, fmt.Errorf("%w: mode %q not found", domain.ErrValidation, fromMode)
	}
	to, ok := s.atoms[domain.AtomKey{Type: domain.AtomMode, Name: toMode}]
	if !ok {
		return nil, fmt.Errorf("%w: mode %q not found", domain.ErrValidation, toMode)
	}

	atom, err := s.addAtomLocked(&domain.Atom{
		Type:  domain.AtomJump,
		Name:  fmt.Sprintf("jump_%s_to_%s", fromMode, toMode),
		Truth: domain.DefaultTruthValue(),
		Metadata: map[string]any{
			"from_mode": fromMode,
			"to_mode":   toMode,
			"guard":     guard,
		},
	})
	if err != nil {
		return nil, err
	}
	s.addLinkLocked(domain.LinkEvaluation,
		fmt.Sprintf("jump_from_%s", fromMode), atom, from, domain.DefaultTruthValue())
	s.addLinkLocked(domain.LinkEvaluation,
		fmt.Sprintf("jump_to_%s", toMode), atom, to, domain.DefaultTruthValue())
	return atom, nil
}

// AddGoal creates a reachability goal atom under the named model. The
// target probability seeds the goal's truth strength at half confidence.
// Fails if the model atom is absent.
func (s *Space) AddGoal(modelName string, g domain.GoalDescriptor) (*domain.Atom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	model, ok := s.models[modelName]
	if !ok {
		return nil, fmt.Errorf("%w: model %q not found", domain.ErrValidation, modelName)
	}

	tv := domain.TruthValue{Strength: g.TargetProbability, Confidence: 0.5}
	if err := tv.Validate(); err != nil {
		return nil, err
	}
	atom, err := s.addAtomLocked(&domain.Atom{
		Type:  domain.AtomGoal,
		Name:  g.Name,
		Truth: tv,
		Metadata: map[string]any{
			"model":              modelName,
			"condition":          g.Condition,
			"target_probability": g.TargetProbability,
		},
	})
	if err != nil {
		return nil, err
	}
	s.addLinkLocked(domain.LinkEvaluation,
		fmt.Sprintf("goal_%s_of_%s", g.Name, modelName),
		atom, model, domain.DefaultTruthValue())
	return atom, nil
}
