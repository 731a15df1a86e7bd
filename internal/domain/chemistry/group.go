package chemistry

import (
	"sort"
	"sync"
)

// ─────────────────────────────────────────────────────────────────────────────
// Functional groups
// ─────────────────────────────────────────────────────────────────────────────

// GroupComponent is one element count within a functional group.
type GroupComponent struct {
	Symbol string
	Count  int
}

// FunctionalGroup is an immutable shortcut label such as "Ph" or "CO2H"
// standing for a fixed set of atoms.
type FunctionalGroup struct {
	symbol     string
	name       string
	components []GroupComponent
	weight     float64
}

func (g *FunctionalGroup) Symbol() string        { return g.symbol }
func (g *FunctionalGroup) Name() string          { return g.name }
func (g *FunctionalGroup) AtomicWeight() float64 { return g.weight }

// Components returns the expanded element counts of the group.
func (g *FunctionalGroup) Components() []GroupComponent {
	out := make([]GroupComponent, len(g.components))
	copy(out, g.components)
	return out
}

// FunctionalGroups is an immutable index of groups by symbol.
type FunctionalGroups struct {
	bySymbol map[string]*FunctionalGroup
}

// Lookup returns the group with the given case-sensitive symbol.
func (f *FunctionalGroups) Lookup(symbol string) (*FunctionalGroup, bool) {
	if f == nil {
		return nil, false
	}
	g, ok := f.bySymbol[symbol]
	return g, ok
}

// Symbols returns all group symbols in sorted order.
func (f *FunctionalGroups) Symbols() []string {
	out := make([]string, 0, len(f.bySymbol))
	for s := range f.bySymbol {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// NewFunctionalGroup constructs a group, computing its weight from table.
// Components naming elements absent from table contribute no weight.
func NewFunctionalGroup(table *PeriodicTable, symbol, name string, components ...GroupComponent) *FunctionalGroup {
	g := &FunctionalGroup{symbol: symbol, name: name, components: components}
	for _, c := range components {
		if e, ok := table.Lookup(c.Symbol); ok {
			g.weight += e.weight * float64(c.Count)
		}
	}
	return g
}

// NewFunctionalGroups indexes the given groups.
func NewFunctionalGroups(groups ...*FunctionalGroup) *FunctionalGroups {
	f := &FunctionalGroups{bySymbol: make(map[string]*FunctionalGroup, len(groups))}
	for _, g := range groups {
		f.bySymbol[g.symbol] = g
	}
	return f
}

var (
	functionalGroupsOnce sync.Once
	functionalGroups     *FunctionalGroups
)

func comp(symbol string, count int) GroupComponent {
	return GroupComponent{Symbol: symbol, Count: count}
}

// DefaultFunctionalGroups returns the shared set of common shortcuts.
func DefaultFunctionalGroups() *FunctionalGroups {
	functionalGroupsOnce.Do(func() {
		pt := DefaultPeriodicTable()
		functionalGroups = NewFunctionalGroups(
			NewFunctionalGroup(pt, "Me", "Methyl", comp("C", 1), comp("H", 3)),
			NewFunctionalGroup(pt, "Et", "Ethyl", comp("C", 2), comp("H", 5)),
			NewFunctionalGroup(pt, "Pr", "Propyl", comp("C", 3), comp("H", 7)),
			NewFunctionalGroup(pt, "iPr", "Isopropyl", comp("C", 3), comp("H", 7)),
			NewFunctionalGroup(pt, "nBu", "Butyl", comp("C", 4), comp("H", 9)),
			NewFunctionalGroup(pt, "tBu", "tert-Butyl", comp("C", 4), comp("H", 9)),
			NewFunctionalGroup(pt, "Ph", "Phenyl", comp("C", 6), comp("H", 5)),
			NewFunctionalGroup(pt, "Bn", "Benzyl", comp("C", 7), comp("H", 7)),
			NewFunctionalGroup(pt, "OMe", "Methoxy", comp("C", 1), comp("H", 3), comp("O", 1)),
			NewFunctionalGroup(pt, "OEt", "Ethoxy", comp("C", 2), comp("H", 5), comp("O", 1)),
			NewFunctionalGroup(pt, "CO2H", "Carboxyl", comp("C", 1), comp("H", 1), comp("O", 2)),
			NewFunctionalGroup(pt, "CO2Me", "Methoxycarbonyl", comp("C", 2), comp("H", 3), comp("O", 2)),
			NewFunctionalGroup(pt, "CHO", "Formyl", comp("C", 1), comp("H", 1), comp("O", 1)),
			NewFunctionalGroup(pt, "CN", "Cyano", comp("C", 1), comp("N", 1)),
			NewFunctionalGroup(pt, "CF3", "Trifluoromethyl", comp("C", 1), comp("F", 3)),
			NewFunctionalGroup(pt, "CCl3", "Trichloromethyl", comp("C", 1), comp("Cl", 3)),
			NewFunctionalGroup(pt, "NO2", "Nitro", comp("N", 1), comp("O", 2)),
			NewFunctionalGroup(pt, "Ac", "Acetyl", comp("C", 2), comp("H", 3), comp("O", 1)),
			NewFunctionalGroup(pt, "Boc", "tert-Butoxycarbonyl", comp("C", 5), comp("H", 9), comp("O", 2)),
			NewFunctionalGroup(pt, "Cbz", "Benzyloxycarbonyl", comp("C", 8), comp("H", 7), comp("O", 2)),
			NewFunctionalGroup(pt, "Ts", "Tosyl", comp("C", 7), comp("H", 7), comp("O", 2), comp("S", 1)),
			NewFunctionalGroup(pt, "Ms", "Mesyl", comp("C", 1), comp("H", 3), comp("O", 2), comp("S", 1)),
			NewFunctionalGroup(pt, "TMS", "Trimethylsilyl", comp("C", 3), comp("H", 9), comp("Si", 1)),
			NewFunctionalGroup(pt, "SO3H", "Sulfo", comp("H", 1), comp("O", 3), comp("S", 1)),
		)
	})
	return functionalGroups
}

// ─────────────────────────────────────────────────────────────────────────────
// Tables
// ─────────────────────────────────────────────────────────────────────────────

// Tables bundles the read-only lookup tables used to resolve atom symbols.
type Tables struct {
	Elements *PeriodicTable
	Groups   *FunctionalGroups
}

// DefaultTables returns the shared periodic table and functional groups.
func DefaultTables() Tables {
	return Tables{Elements: DefaultPeriodicTable(), Groups: DefaultFunctionalGroups()}
}

// Resolve maps a symbol to a ChemicalUnit, preferring elements over
// functional groups.
func (t Tables) Resolve(symbol string) (ChemicalUnit, bool) {
	if t.Elements != nil {
		if e, ok := t.Elements.Lookup(symbol); ok {
			return e, true
		}
	}
	if g, ok := t.Groups.Lookup(symbol); ok {
		return g, true
	}
	return nil, false
}
