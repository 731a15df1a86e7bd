// Package chemistry implements the in-memory chemistry document: a Model
// owning Molecules, which own Atoms, Bonds, nested Molecules and textual
// properties.  Rings are derived on demand.  Mutations keep every
// back-reference consistent and report contract violations as
// CHEM_* errors instead of panicking.
//
// The graph is not safe for concurrent mutation; callers keep a single
// writer.
package chemistry

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/chem4word/chem4word/pkg/errors"
)

// Model is the root of a chemistry document.
type Model struct {
	molecules map[string]*Molecule
	order     []string

	// CustomXMLPartGUID correlates the model with its host document part.
	CustomXMLPartGUID string

	errors   []string
	warnings []string
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{molecules: make(map[string]*Molecule)}
}

// ── Molecules ────────────────────────────────────────────────────────────────

// Molecules returns the top-level molecules in insertion order.
func (md *Model) Molecules() []*Molecule {
	out := make([]*Molecule, 0, len(md.order))
	for _, id := range md.order {
		out = append(out, md.molecules[id])
	}
	return out
}

// Molecule returns the top-level molecule with the given id.
func (md *Model) Molecule(id string) (*Molecule, bool) {
	mol, ok := md.molecules[id]
	return mol, ok
}

// FindMolecule searches top-level and nested molecules for id.
func (md *Model) FindMolecule(id string) (*Molecule, bool) {
	var found *Molecule
	for _, mol := range md.Molecules() {
		mol.Walk(func(x *Molecule) {
			if found == nil && x.id == id {
				found = x
			}
		})
		if found != nil {
			return found, true
		}
	}
	return nil, false
}

// AddMolecule attaches a detached molecule at the top level.  Every id in
// mol's subtree must be unused anywhere in the model.
func (md *Model) AddMolecule(mol *Molecule) error {
	if err := checkAttachable(mol); err != nil {
		return err
	}
	if err := checkUniqueIDs(mol, func(id string) bool {
		_, taken := md.FindMolecule(id)
		return taken
	}); err != nil {
		return err
	}
	mol.model = md
	md.molecules[mol.id] = mol
	md.order = append(md.order, mol.id)
	return nil
}

// RemoveMolecule detaches the top-level molecule with the given id.
func (md *Model) RemoveMolecule(id string) error {
	mol, ok := md.molecules[id]
	if !ok {
		return errors.New(errors.CodeEntityNotFound, "molecule not found").WithDetail("molecule=" + id)
	}
	delete(md.molecules, id)
	md.order = removeString(md.order, id)
	mol.model = nil
	return nil
}

// ── Diagnostics ──────────────────────────────────────────────────────────────

// AddError records a non-fatal error found while building the model.
func (md *Model) AddError(msg string) { md.errors = append(md.errors, msg) }

// AddWarning records a warning found while building the model.
func (md *Model) AddWarning(msg string) { md.warnings = append(md.warnings, msg) }

// Errors returns the recorded errors.
func (md *Model) Errors() []string { return append([]string(nil), md.errors...) }

// Warnings returns the recorded warnings.
func (md *Model) Warnings() []string { return append([]string(nil), md.warnings...) }

// HasDiagnostics reports whether any error or warning was recorded.
func (md *Model) HasDiagnostics() bool { return len(md.errors)+len(md.warnings) > 0 }

// ClearDiagnostics drops all errors and warnings.
func (md *Model) ClearDiagnostics() {
	md.errors = nil
	md.warnings = nil
}

// ── Identity ─────────────────────────────────────────────────────────────────

// EnsureCustomXMLPartGUID assigns a new GUID when none is set and returns
// the current value.
func (md *Model) EnsureCustomXMLPartGUID() string {
	if md.CustomXMLPartGUID == "" {
		md.CustomXMLPartGUID = uuid.NewString()
	}
	return md.CustomXMLPartGUID
}

// ── Aggregates ───────────────────────────────────────────────────────────────

// AllAtoms returns every atom in the model.
func (md *Model) AllAtoms() []*Atom {
	var out []*Atom
	for _, mol := range md.Molecules() {
		out = append(out, mol.AllAtoms()...)
	}
	return out
}

// AllBonds returns every bond in the model.
func (md *Model) AllBonds() []*Bond {
	var out []*Bond
	for _, mol := range md.Molecules() {
		out = append(out, mol.AllBonds()...)
	}
	return out
}

// BoundingBox returns the box enclosing every atom of the model.
func (md *Model) BoundingBox() Rect {
	var r Rect
	for _, mol := range md.Molecules() {
		r = r.Union(mol.BoundingBox())
	}
	return r
}

// MeanBondLength returns the average bond length over the model.
func (md *Model) MeanBondLength() float64 {
	bonds := md.AllBonds()
	if len(bonds) == 0 {
		return 0
	}
	var sum float64
	for _, b := range bonds {
		sum += b.Length()
	}
	return sum / float64(len(bonds))
}

// ConciseFormula joins the formulas of the top-level molecules.
func (md *Model) ConciseFormula() string {
	parts := make([]string, 0, len(md.order))
	for _, mol := range md.Molecules() {
		if f := mol.ConciseFormula(); f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " . ")
}

// RefreshDerived recomputes the derived display state of every molecule.
func (md *Model) RefreshDerived() {
	for _, mol := range md.Molecules() {
		mol.Walk(func(x *Molecule) {
			x.DerivedFormula = x.ConciseFormula()
		})
	}
}

// Summary is a one-line description used in logs and CLI output.
func (md *Model) Summary() string {
	return fmt.Sprintf("%d molecule(s), %d atom(s), %d bond(s), %d error(s), %d warning(s)",
		len(md.order), len(md.AllAtoms()), len(md.AllBonds()), len(md.errors), len(md.warnings))
}
