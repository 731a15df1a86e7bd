package chemistry

import "math"

// Atom is a vertex of a molecule graph.  Its id is unique within the owning
// molecule and cannot change once set.
type Atom struct {
	id string

	// Unit is the element or functional group the atom stands for.  It is
	// nil when the imported symbol could not be resolved; RawSymbol then
	// keeps the original text.
	Unit      ChemicalUnit
	RawSymbol string

	Position      Point
	IsotopeNumber *int
	FormalCharge  *int

	parent *Molecule
}

// NewAtom constructs a detached atom.
func NewAtom(id string, unit ChemicalUnit, position Point) *Atom {
	return &Atom{id: id, Unit: unit, Position: position}
}

// ID returns the atom identifier.
func (a *Atom) ID() string { return a.id }

// Parent returns the owning molecule, or nil for a detached atom.
func (a *Atom) Parent() *Molecule { return a.parent }

// Symbol returns the unit symbol, or RawSymbol when the unit is unknown.
func (a *Atom) Symbol() string {
	if a.Unit != nil {
		return a.Unit.Symbol()
	}
	return a.RawSymbol
}

// Element returns the unit as an *Element when it is one.
func (a *Atom) Element() (*Element, bool) {
	e, ok := a.Unit.(*Element)
	return e, ok
}

// Charge returns the formal charge, zero when unset.
func (a *Atom) Charge() int {
	if a.FormalCharge == nil {
		return 0
	}
	return *a.FormalCharge
}

// Bonds returns the bonds of the owning molecule that touch a.
func (a *Atom) Bonds() []*Bond {
	if a.parent == nil {
		return nil
	}
	return a.parent.BondsOf(a)
}

// Neighbours returns the atoms bonded to a.
func (a *Atom) Neighbours() []*Atom {
	bonds := a.Bonds()
	out := make([]*Atom, 0, len(bonds))
	for _, b := range bonds {
		out = append(out, b.OtherAtom(a))
	}
	return out
}

// ImplicitHydrogenCount derives the number of hydrogens not drawn explicitly
// from the default valences, the bond order sum and the formal charge.  Only
// elements of the organic subset get implicit hydrogens.
func (a *Atom) ImplicitHydrogenCount() int {
	e, ok := a.Element()
	if !ok || !e.InOrganicSubset() {
		return 0
	}

	var sum float64
	for _, b := range a.Bonds() {
		if v, ok := b.Order.Value(); ok {
			sum += v
		}
	}
	used := int(math.Ceil(sum - 1e-9))
	charge := a.Charge()

	for _, v := range e.valences {
		target := v - abs(charge)
		switch e.symbol {
		case "N", "O", "P", "S":
			target = v + charge
		case "B":
			target = v - charge
		}
		if target >= used {
			return target - used
		}
	}
	return 0
}

func (a *Atom) clone() *Atom {
	cp := &Atom{
		id:        a.id,
		Unit:      a.Unit,
		RawSymbol: a.RawSymbol,
		Position:  a.Position,
	}
	if a.IsotopeNumber != nil {
		n := *a.IsotopeNumber
		cp.IsotopeNumber = &n
	}
	if a.FormalCharge != nil {
		n := *a.FormalCharge
		cp.FormalCharge = &n
	}
	return cp
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// IntPtr is a convenience for setting IsotopeNumber and FormalCharge.
func IntPtr(n int) *int { return &n }
