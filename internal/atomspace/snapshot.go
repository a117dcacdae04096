package atomspace

import (
	"fmt"

	"github.com/cogpy/probreacog/internal/domain"
)

// Export captures every atom and link, in insertion order, with all truth
// and attention fields. The result round-trips losslessly through Import.
func (s *Space) Export() *domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &domain.Snapshot{}
	for _, key := range s.order {
		atom := s.atoms[key]
		snap.Atoms = append(snap.Atoms, domain.AtomSnapshot{
			Type:      atom.Type,
			Name:      atom.Name,
			Truth:     atom.Truth,
			Attention: atom.Attention,
			Metadata:  copyMetadata(atom.Metadata),
		})
	}
	for _, link := range s.links {
		snap.Links = append(snap.Links, domain.LinkSnapshot{
			Type:   link.Type,
			Name:   link.Name,
			Truth:  link.Truth,
			Source: link.Source.Key(),
			Target: link.Target.Key(),
		})
	}
	return snap
}

// Import replaces the space's contents with the snapshot. Attention and
// truth values are restored verbatim, bypassing merge and baseline rules.
func (s *Space) Import(snap *domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	atoms := make(map[domain.AtomKey]*domain.Atom, len(snap.Atoms))
	order := make([]domain.AtomKey, 0, len(snap.Atoms))
	models := make(map[string]*domain.Atom)

	for _, as := range snap.Atoms {
		if !domain.ValidAtomType(string(as.Type)) {
			return fmt.Errorf("%w: unknown atom type %q in snapshot", domain.ErrValidation, as.Type)
		}
		if err := as.Truth.Validate(); err != nil {
			return err
		}
		atom := &domain.Atom{
			Type:      as.Type,
			Name:      as.Name,
			Truth:     as.Truth,
			Attention: as.Attention,
			Metadata:  copyMetadata(as.Metadata),
		}
		key := atom.Key()
		if _, ok := atoms[key]; ok {
			return fmt.Errorf("%w: duplicate atom %s in snapshot", domain.ErrValidation, key)
		}
		atoms[key] = atom
		order = append(order, key)
		if atom.Type == domain.AtomModel {
			models[atom.Name] = atom
		}
	}

	links := make([]*domain.Link, 0, len(snap.Links))
	for _, ls := range snap.Links {
		src, ok := atoms[ls.Source]
		if !ok {
			return fmt.Errorf("%w: link %q references missing atom %s", domain.ErrValidation, ls.Name, ls.Source)
		}
		tgt, ok := atoms[ls.Target]
		if !ok {
			return fmt.Errorf("%w: link %q references missing atom %s", domain.ErrValidation, ls.Name, ls.Target)
		}
		link := &domain.Link{Type: ls.Type, Name: ls.Name, Truth: ls.Truth, Source: src, Target: tgt}
		src.Outgoing = append(src.Outgoing, link)
		tgt.Incoming = append(tgt.Incoming, link)
		links = append(links, link)
	}

	s.atoms = atoms
	s.order = order
	s.links = links
	s.models = models
	return nil
}

func copyMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
