package chemistry

import (
	"fmt"

	"github.com/chem4word/chem4word/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Molecule
// ─────────────────────────────────────────────────────────────────────────────

// Molecule owns its atoms, bonds, nested child molecules, names and
// formulas.  Every owned entity points back at exactly this molecule.
type Molecule struct {
	id string

	atoms     map[string]*Atom
	atomOrder []string
	bonds     []*Bond

	children   map[string]*Molecule
	childOrder []string

	names    []*TextualProperty
	formulas []*TextualProperty

	// DerivedFormula is the concise formula recomputed by Model.RefreshDerived.
	DerivedFormula string

	parent *Molecule
	model  *Model

	rings      []*Ring
	ringsValid bool
}

// NewMolecule constructs an empty detached molecule.
func NewMolecule(id string) *Molecule {
	return &Molecule{
		id:       id,
		atoms:    make(map[string]*Atom),
		children: make(map[string]*Molecule),
	}
}

// ID returns the molecule identifier.
func (m *Molecule) ID() string { return m.id }

// Parent returns the enclosing molecule for nested groups, or nil.
func (m *Molecule) Parent() *Molecule { return m.parent }

// Model returns the model that ultimately owns m, or nil when detached.
func (m *Molecule) Model() *Model {
	top := m
	for top.parent != nil {
		top = top.parent
	}
	return top.model
}

func (m *Molecule) invalidate() {
	m.rings = nil
	m.ringsValid = false
}

// ── Atoms ────────────────────────────────────────────────────────────────────

// Atoms returns the atoms in insertion order.
func (m *Molecule) Atoms() []*Atom {
	out := make([]*Atom, 0, len(m.atomOrder))
	for _, id := range m.atomOrder {
		out = append(out, m.atoms[id])
	}
	return out
}

// Atom returns the atom with the given id.
func (m *Molecule) Atom(id string) (*Atom, bool) {
	a, ok := m.atoms[id]
	return a, ok
}

// AtomCount returns the number of atoms directly owned by m.
func (m *Molecule) AtomCount() int { return len(m.atomOrder) }

// AddAtom attaches a detached atom to m.
func (m *Molecule) AddAtom(a *Atom) error {
	if a == nil {
		return errors.InvalidArgument("atom is nil")
	}
	if a.id == "" {
		return errors.InvalidArgument("atom id is empty").WithDetail("molecule=" + m.id)
	}
	if a.parent != nil {
		return errors.InvalidArgument("atom already belongs to a molecule").
			WithDetail(fmt.Sprintf("atom=%s owner=%s", a.id, a.parent.id))
	}
	if _, exists := m.atoms[a.id]; exists {
		return errors.New(errors.CodeDuplicateID, "duplicate atom id").
			WithDetail(fmt.Sprintf("atom=%s molecule=%s", a.id, m.id))
	}
	a.parent = m
	m.atoms[a.id] = a
	m.atomOrder = append(m.atomOrder, a.id)
	m.invalidate()
	return nil
}

// RemoveAtom detaches the atom with the given id together with every bond
// that references it.
func (m *Molecule) RemoveAtom(id string) error {
	a, ok := m.atoms[id]
	if !ok {
		return errors.New(errors.CodeEntityNotFound, "atom not found").
			WithDetail(fmt.Sprintf("atom=%s molecule=%s", id, m.id))
	}
	kept := m.bonds[:0]
	for _, b := range m.bonds {
		if b.Involves(a) {
			b.parent = nil
			continue
		}
		kept = append(kept, b)
	}
	for i := len(kept); i < len(m.bonds); i++ {
		m.bonds[i] = nil
	}
	m.bonds = kept

	delete(m.atoms, id)
	m.atomOrder = removeString(m.atomOrder, id)
	a.parent = nil
	m.invalidate()
	return nil
}

// ── Bonds ────────────────────────────────────────────────────────────────────

// Bonds returns the bonds in insertion order.
func (m *Molecule) Bonds() []*Bond {
	out := make([]*Bond, len(m.bonds))
	copy(out, m.bonds)
	return out
}

// Bond returns the bond with the given id.
func (m *Molecule) Bond(id string) (*Bond, bool) {
	for _, b := range m.bonds {
		if b.id == id {
			return b, true
		}
	}
	return nil, false
}

// BondCount returns the number of bonds directly owned by m.
func (m *Molecule) BondCount() int { return len(m.bonds) }

// BondsOf returns the bonds of m that touch a.
func (m *Molecule) BondsOf(a *Atom) []*Bond {
	var out []*Bond
	for _, b := range m.bonds {
		if b.Involves(a) {
			out = append(out, b)
		}
	}
	return out
}

// BondBetween returns the bond joining a1 and a2, if any.
func (m *Molecule) BondBetween(a1, a2 *Atom) (*Bond, bool) {
	for _, b := range m.bonds {
		if b.Involves(a1) && b.OtherAtom(a1) == a2 {
			return b, true
		}
	}
	return nil, false
}

// AddBond attaches a detached bond.  Both of its atoms must already belong
// to m.
func (m *Molecule) AddBond(b *Bond) error {
	if b == nil {
		return errors.InvalidArgument("bond is nil")
	}
	if b.id == "" {
		return errors.InvalidArgument("bond id is empty").WithDetail("molecule=" + m.id)
	}
	if b.parent != nil {
		return errors.InvalidArgument("bond already belongs to a molecule").
			WithDetail(fmt.Sprintf("bond=%s owner=%s", b.id, b.parent.id))
	}
	if b.start == nil || b.end == nil {
		return errors.InvalidArgument("bond is missing an atom").WithDetail("bond=" + b.id)
	}
	if b.start == b.end {
		return errors.InvalidArgument("bond joins an atom to itself").
			WithDetail(fmt.Sprintf("bond=%s atom=%s", b.id, b.start.id))
	}
	if b.start.parent != m || b.end.parent != m {
		return errors.InvalidArgument("bond references an atom outside the molecule").
			WithDetail(fmt.Sprintf("bond=%s atoms=%s,%s molecule=%s", b.id, b.start.id, b.end.id, m.id))
	}
	if _, exists := m.Bond(b.id); exists {
		return errors.New(errors.CodeDuplicateID, "duplicate bond id").
			WithDetail(fmt.Sprintf("bond=%s molecule=%s", b.id, m.id))
	}
	b.parent = m
	m.bonds = append(m.bonds, b)
	m.invalidate()
	return nil
}

// RemoveBond detaches the bond with the given id.  Its atoms stay.
func (m *Molecule) RemoveBond(id string) error {
	for i, b := range m.bonds {
		if b.id != id {
			continue
		}
		copy(m.bonds[i:], m.bonds[i+1:])
		m.bonds[len(m.bonds)-1] = nil
		m.bonds = m.bonds[:len(m.bonds)-1]
		b.parent = nil
		m.invalidate()
		return nil
	}
	return errors.New(errors.CodeEntityNotFound, "bond not found").
		WithDetail(fmt.Sprintf("bond=%s molecule=%s", id, m.id))
}

// ── Child molecules ──────────────────────────────────────────────────────────

// Molecules returns the nested child molecules in insertion order.
func (m *Molecule) Molecules() []*Molecule {
	out := make([]*Molecule, 0, len(m.childOrder))
	for _, id := range m.childOrder {
		out = append(out, m.children[id])
	}
	return out
}

// Molecule returns the child molecule with the given id.
func (m *Molecule) Molecule(id string) (*Molecule, bool) {
	c, ok := m.children[id]
	return c, ok
}

// AddMolecule nests a detached molecule under m.  Every id in child's
// subtree must be unused in the tree m belongs to, and in its model.
func (m *Molecule) AddMolecule(child *Molecule) error {
	if err := checkAttachable(child); err != nil {
		return err
	}
	if child == m || child.isAncestorOf(m) {
		return errors.InvalidArgument("molecule cannot contain itself").WithDetail("molecule=" + child.id)
	}
	if err := checkUniqueIDs(child, m.moleculeIDInUse); err != nil {
		return err
	}
	child.parent = m
	m.children[child.id] = child
	m.childOrder = append(m.childOrder, child.id)
	return nil
}

// RemoveMolecule detaches the child molecule with the given id.
func (m *Molecule) RemoveMolecule(id string) error {
	child, ok := m.children[id]
	if !ok {
		return errors.New(errors.CodeEntityNotFound, "molecule not found").
			WithDetail(fmt.Sprintf("molecule=%s parent=%s", id, m.id))
	}
	delete(m.children, id)
	m.childOrder = removeString(m.childOrder, id)
	child.parent = nil
	return nil
}

func (m *Molecule) isAncestorOf(other *Molecule) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == m {
			return true
		}
	}
	return false
}

// moleculeIDInUse reports whether id names a molecule of m's model, or of
// m's detached tree when m has no model.
func (m *Molecule) moleculeIDInUse(id string) bool {
	if md := m.Model(); md != nil {
		_, taken := md.FindMolecule(id)
		return taken
	}
	top := m
	for top.parent != nil {
		top = top.parent
	}
	taken := false
	top.Walk(func(x *Molecule) {
		if x.id == id {
			taken = true
		}
	})
	return taken
}

// checkUniqueIDs rejects mol when any molecule of its subtree has an id for
// which inUse reports true.
func checkUniqueIDs(mol *Molecule, inUse func(id string) bool) error {
	var dup string
	mol.Walk(func(x *Molecule) {
		if dup == "" && inUse(x.id) {
			dup = x.id
		}
	})
	if dup != "" {
		return errors.New(errors.CodeDuplicateID, "duplicate molecule id").WithDetail("molecule=" + dup)
	}
	return nil
}

func checkAttachable(mol *Molecule) error {
	if mol == nil {
		return errors.InvalidArgument("molecule is nil")
	}
	if mol.id == "" {
		return errors.InvalidArgument("molecule id is empty")
	}
	if mol.parent != nil || mol.model != nil {
		return errors.InvalidArgument("molecule already has an owner").WithDetail("molecule=" + mol.id)
	}
	return nil
}

// ── Recursive views ──────────────────────────────────────────────────────────

// AllAtoms returns the atoms of m followed by those of its descendants.
func (m *Molecule) AllAtoms() []*Atom {
	out := m.Atoms()
	for _, c := range m.Molecules() {
		out = append(out, c.AllAtoms()...)
	}
	return out
}

// AllBonds returns the bonds of m followed by those of its descendants.
func (m *Molecule) AllBonds() []*Bond {
	out := m.Bonds()
	for _, c := range m.Molecules() {
		out = append(out, c.AllBonds()...)
	}
	return out
}

// Walk calls fn for m and every descendant, parents first.
func (m *Molecule) Walk(fn func(*Molecule)) {
	fn(m)
	for _, c := range m.Molecules() {
		c.Walk(fn)
	}
}

// ── Names and formulas ───────────────────────────────────────────────────────

// Names returns the molecule's names.
func (m *Molecule) Names() []*TextualProperty { return append([]*TextualProperty(nil), m.names...) }

// Formulas returns the molecule's formulas.
func (m *Molecule) Formulas() []*TextualProperty {
	return append([]*TextualProperty(nil), m.formulas...)
}

// AddName appends a name with a freshly allocated id "<mol>.n<k>".
func (m *Molecule) AddName(typ, value string) *TextualProperty {
	tp := &TextualProperty{ID: m.nextTextualID(m.names, "n"), Type: typ, Value: value}
	m.names = append(m.names, tp)
	return tp
}

// AddFormula appends a formula with a freshly allocated id "<mol>.f<k>".
func (m *Molecule) AddFormula(typ, value string) *TextualProperty {
	tp := &TextualProperty{ID: m.nextTextualID(m.formulas, "f"), Type: typ, Value: value}
	m.formulas = append(m.formulas, tp)
	return tp
}

// PutName appends tp keeping its id.  An empty id is allocated; an id
// already used by another name or formula is rejected.
func (m *Molecule) PutName(tp *TextualProperty) error {
	return m.putTextual(&m.names, tp, "n")
}

// PutFormula is PutName for formulas.
func (m *Molecule) PutFormula(tp *TextualProperty) error {
	return m.putTextual(&m.formulas, tp, "f")
}

// RemoveTextual removes the name or formula with the given id.
func (m *Molecule) RemoveTextual(id string) bool {
	for _, list := range []*[]*TextualProperty{&m.names, &m.formulas} {
		for i, tp := range *list {
			if tp.ID == id {
				*list = append((*list)[:i], (*list)[i+1:]...)
				return true
			}
		}
	}
	return false
}

func (m *Molecule) putTextual(list *[]*TextualProperty, tp *TextualProperty, kind string) error {
	if tp == nil {
		return errors.InvalidArgument("textual property is nil")
	}
	if tp.ID == "" {
		tp.ID = m.nextTextualID(*list, kind)
	}
	if m.hasTextualID(tp.ID) {
		return errors.New(errors.CodeDuplicateID, "duplicate textual property id").
			WithDetail(fmt.Sprintf("id=%s molecule=%s", tp.ID, m.id))
	}
	*list = append(*list, tp)
	return nil
}

// nextTextualID returns "<mol>.<kind><k>" with k one more than the largest
// suffix in list, stepping past ids already taken by any name or formula.
func (m *Molecule) nextTextualID(list []*TextualProperty, kind string) string {
	ids := make([]string, 0, len(list))
	for _, tp := range list {
		ids = append(ids, tp.ID)
	}
	for k := maxSuffix(ids) + 1; ; k++ {
		id := fmt.Sprintf("%s.%s%d", m.id, kind, k)
		if !m.hasTextualID(id) {
			return id
		}
	}
}

func (m *Molecule) hasTextualID(id string) bool {
	for _, list := range [][]*TextualProperty{m.names, m.formulas} {
		for _, tp := range list {
			if tp.ID == id {
				return true
			}
		}
	}
	return false
}

func removeString(list []string, s string) []string {
	for i, v := range list {
		if v == s {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
