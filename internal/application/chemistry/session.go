package chemistry

import (
	chem "github.com/chem4word/chem4word/internal/domain/chemistry"
	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/logging"
	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/prometheus"
	"github.com/chem4word/chem4word/pkg/errors"
)

// Session applies undoable edits to a model.  Every edit snapshots the whole
// model first, so Undo and Redo replace the current model with another
// instance; callers must re-read Model() rather than hold on to atoms,
// bonds or molecules across those calls.
//
// A Session is not safe for concurrent use.
type Session struct {
	model   *chem.Model
	stack   *UndoStack
	metrics *prometheus.ChemistryMetrics
	logger  logging.Logger
}

// NewSession starts a session on md.  A nil model starts an empty one.
func NewSession(md *chem.Model, undoDepth int, metrics *prometheus.ChemistryMetrics, logger logging.Logger) *Session {
	if md == nil {
		md = chem.NewModel()
	}
	if metrics == nil {
		metrics = prometheus.NewNoopChemistryMetrics()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Session{
		model:   md,
		stack:   NewUndoStack(undoDepth),
		metrics: metrics,
		logger:  logger.Named("session"),
	}
}

// Model returns the current model.
func (s *Session) Model() *chem.Model { return s.model }

// CanUndo reports whether an edit can be undone.
func (s *Session) CanUndo() bool { return s.stack.CanUndo() }

// CanRedo reports whether an undone edit can be reapplied.
func (s *Session) CanRedo() bool { return s.stack.CanRedo() }

// Undo restores the model as it was before the last edit.
func (s *Session) Undo() error {
	prev, err := s.stack.Undo(s.model)
	if err != nil {
		return err
	}
	s.model = prev
	s.record("undo")
	return nil
}

// Redo reapplies the last undone edit.
func (s *Session) Redo() error {
	next, err := s.stack.Redo(s.model)
	if err != nil {
		return err
	}
	s.model = next
	s.record("redo")
	return nil
}

// edit snapshots the model and runs fn.  When fn fails the snapshot becomes
// the current model again and nothing is pushed.
func (s *Session) edit(op string, fn func(md *chem.Model) error) error {
	snapshot := s.model.Clone()
	if err := fn(s.model); err != nil {
		s.model = snapshot
		return err
	}
	s.model.RefreshDerived()
	s.stack.Push(snapshot)
	s.record(op)
	return nil
}

func (s *Session) record(op string) {
	prometheus.RecordEdit(s.metrics, op, s.stack.UndoDepth(), s.stack.RedoDepth())
	s.logger.Debug("edit applied",
		logging.String("operation", op),
		logging.Int("undo_depth", s.stack.UndoDepth()),
		logging.Int("redo_depth", s.stack.RedoDepth()),
	)
}

func findMolecule(md *chem.Model, id string) (*chem.Molecule, error) {
	mol, ok := md.FindMolecule(id)
	if !ok {
		return nil, errors.New(errors.CodeEntityNotFound, "molecule not found").WithDetail("molecule=" + id)
	}
	return mol, nil
}

// ─── Edits ──────────────────────────────────────────────────────────────────

// DeleteAtoms removes atoms, and every bond touching them, from a molecule.
// Either all atoms are removed or none.
func (s *Session) DeleteAtoms(moleculeID string, atomIDs ...string) error {
	return s.edit("delete_atoms", func(md *chem.Model) error {
		mol, err := findMolecule(md, moleculeID)
		if err != nil {
			return err
		}
		for _, id := range atomIDs {
			if err := mol.RemoveAtom(id); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteBonds removes bonds from a molecule.  Their atoms stay.
func (s *Session) DeleteBonds(moleculeID string, bondIDs ...string) error {
	return s.edit("delete_bonds", func(md *chem.Model) error {
		mol, err := findMolecule(md, moleculeID)
		if err != nil {
			return err
		}
		for _, id := range bondIDs {
			if err := mol.RemoveBond(id); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteMolecule removes a top-level or nested molecule.
func (s *Session) DeleteMolecule(moleculeID string) error {
	return s.edit("delete_molecule", func(md *chem.Model) error {
		mol, err := findMolecule(md, moleculeID)
		if err != nil {
			return err
		}
		if parent := mol.Parent(); parent != nil {
			return parent.RemoveMolecule(moleculeID)
		}
		return md.RemoveMolecule(moleculeID)
	})
}

// FlipMolecule mirrors a molecule about its centroid.
func (s *Session) FlipMolecule(moleculeID string, horizontal, flipStereo bool) error {
	return s.edit("flip_molecule", func(md *chem.Model) error {
		mol, err := findMolecule(md, moleculeID)
		if err != nil {
			return err
		}
		mol.Flip(horizontal, flipStereo)
		return nil
	})
}

// MoveMolecule translates a molecule by (dx, dy).
func (s *Session) MoveMolecule(moleculeID string, dx, dy float64) error {
	return s.edit("move_molecule", func(md *chem.Model) error {
		mol, err := findMolecule(md, moleculeID)
		if err != nil {
			return err
		}
		mol.Translate(dx, dy)
		return nil
	})
}

// SetBondOrder changes the order code of a bond.
func (s *Session) SetBondOrder(moleculeID, bondID string, order chem.BondOrder) error {
	if !order.IsValid() {
		return errors.New(errors.CodeUnknownOrder, "unknown bond order").WithDetail("order=" + string(order))
	}
	return s.edit("set_bond_order", func(md *chem.Model) error {
		mol, err := findMolecule(md, moleculeID)
		if err != nil {
			return err
		}
		b, ok := mol.Bond(bondID)
		if !ok {
			return errors.New(errors.CodeEntityNotFound, "bond not found").
				WithDetail("bond=" + bondID + " molecule=" + moleculeID)
		}
		b.Order = order
		return nil
	})
}
