package attention

import (
	"sort"

	"github.com/cogpy/probreacog/internal/domain"
	"go.uber.org/zap"
)

// Graph is the surface the allocator needs from the knowledge graph. Atoms
// must be returned in a stable insertion order; the allocator's tie-breaks
// and diffusion are deterministic only under that guarantee.
type Graph interface {
	Atoms() []*domain.Atom
}

// Config fixes the economic constants of the allocator.
type Config struct {
	STIMin           float64
	STIMax           float64
	BaselineSTI      float64
	BaselineLTI      float64
	Rent             float64
	DecayRate        float64
	LearningFraction float64
	FocusThreshold   float64
	FocusSize        int
	GoalDecay        float64
	GoalHopLimit     int
}

func DefaultConfig() Config {
	return Config{
		STIMin:           -100,
		STIMax:           500,
		BaselineSTI:      10,
		BaselineLTI:      0,
		Rent:             0.5,
		DecayRate:        0.1,
		LearningFraction: 0.1,
		FocusThreshold:   20,
		FocusSize:        10,
		GoalDecay:        0.5,
		GoalHopLimit:     5,
	}
}

// Stats summarizes the allocator's economy.
type Stats struct {
	TotalSTI      float64 `json:"total_sti"`
	MeanSTI       float64 `json:"mean_sti"`
	MaxSTI        float64 `json:"max_sti"`
	MeanLTI       float64 `json:"mean_lti"`
	RentCollected float64 `json:"rent_collected"`
	FocusSize     int     `json:"focus_size"`
}

// Allocator distributes a bounded importance resource across the graph.
// Total STI changes only through explicit stimulation and through rent
// collected during diffusion; diffusion itself conserves funds.
type Allocator struct {
	graph  Graph
	cfg    Config
	logger *zap.Logger

	focus         []*domain.Atom
	rentCollected float64
}

func New(graph Graph, cfg Config, logger *zap.Logger) *Allocator {
	return &Allocator{graph: graph, cfg: cfg, logger: logger}
}

// InitializeAttention resets every atom to the configured baseline.
// Idempotent.
func (a *Allocator) InitializeAttention() {
	for _, atom := range a.graph.Atoms() {
		atom.Attention = domain.AttentionValue{STI: a.cfg.BaselineSTI, LTI: a.cfg.BaselineLTI}
	}
	a.focus = nil
	a.rentCollected = 0
}

// StimulateAtom deposits amount into the atom's STI, clamped to the
// configured bounds, and a learning fraction of it into LTI. LTI never
// decreases here.
func (a *Allocator) StimulateAtom(atom *domain.Atom, amount float64) {
	atom.Attention.STI = clamp(atom.Attention.STI+amount, a.cfg.STIMin, a.cfg.STIMax)
	if amount > 0 {
		atom.Attention.LTI += amount * a.cfg.LearningFraction
	}
}

// DiffuseAttention charges every atom the fixed rent, then pushes the
// decayRate fraction of each atom's remaining positive STI to its direct
// neighbors, weighted by link truth strength. Returns the rent collected.
// Apart from rent, the call conserves total STI exactly; atoms may go
// negative and stay resident.
func (a *Allocator) DiffuseAttention(decayRate float64) float64 {
	atoms := a.graph.Atoms()
	if len(atoms) == 0 {
		return 0
	}

	rent := a.cfg.Rent * float64(len(atoms))
	for _, atom := range atoms {
		atom.Attention.STI -= a.cfg.Rent
	}

	// Two phases: compute transfers against post-rent values, then apply,
	// so diffusion order cannot influence the outcome.
	deltas := make(map[domain.AtomKey]float64, len(atoms))
	for _, atom := range atoms {
		if atom.Attention.STI <= 0 {
			continue
		}
		outflow := atom.Attention.STI * decayRate
		weights := neighborWeights(atom)
		if len(weights) == 0 {
			continue
		}
		total := 0.0
		for _, w := range weights {
			total += w.weight
		}
		if total <= 0 {
			continue
		}
		deltas[atom.Key()] -= outflow
		for _, w := range weights {
			deltas[w.key] += outflow * w.weight / total
		}
	}

	for _, atom := range atoms {
		atom.Attention.STI += deltas[atom.Key()]
	}

	a.rentCollected += rent
	return rent
}

type weightedNeighbor struct {
	key    domain.AtomKey
	weight float64
}

func neighborWeights(atom *domain.Atom) []weightedNeighbor {
	var out []weightedNeighbor
	for _, link := range atom.Outgoing {
		out = append(out, weightedNeighbor{key: link.Target.Key(), weight: link.Truth.Strength})
	}
	for _, link := range atom.Incoming {
		out = append(out, weightedNeighbor{key: link.Source.Key(), weight: link.Truth.Strength})
	}
	return out
}

// UpdateAttentionalFocus recomputes the focus set: the top-K atoms whose
// STI clears the threshold, ordered by STI, then LTI, then insertion
// order.
func (a *Allocator) UpdateAttentionalFocus() {
	ranked := rankAtoms(a.graph.Atoms())
	var focus []*domain.Atom
	for _, atom := range ranked {
		if atom.Attention.STI < a.cfg.FocusThreshold {
			break
		}
		focus = append(focus, atom)
		if len(focus) == a.cfg.FocusSize {
			break
		}
	}
	a.focus = focus
}

// Focus returns the current attentional focus set.
func (a *Allocator) Focus() []*domain.Atom {
	out := make([]*domain.Atom, len(a.focus))
	copy(out, a.focus)
	return out
}

// FocusOnGoal stimulates the goal atom and, transitively, its supporting
// atoms, with the stimulus decaying geometrically per hop. The hop bound
// guarantees termination on cyclic graphs.
func (a *Allocator) FocusOnGoal(goal *domain.Atom, intensity float64) {
	visited := map[domain.AtomKey]bool{goal.Key(): true}
	a.StimulateAtom(goal, intensity)

	frontier := []*domain.Atom{goal}
	stimulus := intensity
	for hop := 0; hop < a.cfg.GoalHopLimit && len(frontier) > 0; hop++ {
		stimulus *= a.cfg.GoalDecay
		var next []*domain.Atom
		for _, atom := range frontier {
			for _, nb := range atom.Neighbors() {
				if visited[nb.Key()] {
					continue
				}
				visited[nb.Key()] = true
				a.StimulateAtom(nb, stimulus)
				next = append(next, nb)
			}
		}
		frontier = next
	}
	a.UpdateAttentionalFocus()
}

// GetTopAtoms returns the n highest-STI atoms, optionally filtered by
// type, using the same deterministic ordering as the focus set. An empty
// atomType disables the filter; n <= 0 yields nothing.
func (a *Allocator) GetTopAtoms(n int, atomType domain.AtomType) []*domain.Atom {
	if n <= 0 {
		return nil
	}
	atoms := a.graph.Atoms()
	if atomType != "" {
		var filtered []*domain.Atom
		for _, atom := range atoms {
			if atom.Type == atomType {
				filtered = append(filtered, atom)
			}
		}
		atoms = filtered
	}
	ranked := rankAtoms(atoms)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// RunAttentionCycle repeats diffusion and focus update. Deterministic for
// a fixed atom iteration order.
func (a *Allocator) RunAttentionCycle(iterations int) {
	for i := 0; i < iterations; i++ {
		a.DiffuseAttention(a.cfg.DecayRate)
		a.UpdateAttentionalFocus()
	}
	if a.logger != nil {
		stats := a.Stats()
		a.logger.Debug("attention cycle complete",
			zap.Int("iterations", iterations),
			zap.Float64("total_sti", stats.TotalSTI),
			zap.Float64("rent_collected", stats.RentCollected),
			zap.Int("focus_size", stats.FocusSize))
	}
}

// Stats reports the allocator economy over the whole graph.
func (a *Allocator) Stats() Stats {
	atoms := a.graph.Atoms()
	s := Stats{RentCollected: a.rentCollected, FocusSize: len(a.focus)}
	if len(atoms) == 0 {
		return s
	}
	s.MaxSTI = atoms[0].Attention.STI
	var ltiSum float64
	for _, atom := range atoms {
		s.TotalSTI += atom.Attention.STI
		ltiSum += atom.Attention.LTI
		if atom.Attention.STI > s.MaxSTI {
			s.MaxSTI = atom.Attention.STI
		}
	}
	s.MeanSTI = s.TotalSTI / float64(len(atoms))
	s.MeanLTI = ltiSum / float64(len(atoms))
	return s
}

// rankAtoms sorts by STI desc, LTI desc; the stable sort preserves
// insertion order among full ties.
func rankAtoms(atoms []*domain.Atom) []*domain.Atom {
	out := make([]*domain.Atom, len(atoms))
	copy(out, atoms)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Attention.STI != out[j].Attention.STI {
			return out[i].Attention.STI > out[j].Attention.STI
		}
		return out[i].Attention.LTI > out[j].Attention.LTI
	})
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
