package chemistry

// Bond is an edge between two atoms of the same molecule.
type Bond struct {
	id    string
	start *Atom
	end   *Atom

	Order  BondOrder
	Stereo BondStereo

	parent *Molecule
}

// NewBond constructs a detached bond between start and end.
func NewBond(id string, start, end *Atom, order BondOrder) *Bond {
	return &Bond{id: id, start: start, end: end, Order: order}
}

// ID returns the bond identifier.
func (b *Bond) ID() string { return b.id }

// StartAtom returns the first atom.
func (b *Bond) StartAtom() *Atom { return b.start }

// EndAtom returns the second atom.
func (b *Bond) EndAtom() *Atom { return b.end }

// Parent returns the owning molecule, or nil for a detached bond.
func (b *Bond) Parent() *Molecule { return b.parent }

// OrderValue returns the numeric order of the bond's code.
func (b *Bond) OrderValue() (float64, bool) { return OrderToOrderValue(b.Order) }

// IsAromatic reports whether the bond carries the aromatic code.
func (b *Bond) IsAromatic() bool { return b.Order == OrderAromatic }

// Involves reports whether a is one of the bond's atoms.
func (b *Bond) Involves(a *Atom) bool { return b.start == a || b.end == a }

// OtherAtom returns the atom at the opposite end from a, or nil when a is
// not part of the bond.
func (b *Bond) OtherAtom(a *Atom) *Atom {
	switch a {
	case b.start:
		return b.end
	case b.end:
		return b.start
	}
	return nil
}

// Length returns the distance between the two atoms.
func (b *Bond) Length() float64 { return b.start.Position.Distance(b.end.Position) }

// Midpoint returns the point halfway along the bond.
func (b *Bond) Midpoint() Point { return centroid([]Point{b.start.Position, b.end.Position}) }
