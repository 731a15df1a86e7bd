package chemistry

import (
	"fmt"
	"sort"
	"strings"
)

// ElementCounts returns the number of atoms per element symbol in m and its
// descendants, counting implicit hydrogens and expanding functional groups.
// Atoms whose unit is unknown are not counted.
func (m *Molecule) ElementCounts() map[string]int {
	counts := make(map[string]int)
	for _, a := range m.AllAtoms() {
		switch u := a.Unit.(type) {
		case *Element:
			counts[u.symbol]++
			if h := a.ImplicitHydrogenCount(); h > 0 {
				counts["H"] += h
			}
		case *FunctionalGroup:
			for _, c := range u.components {
				counts[c.Symbol] += c.Count
			}
		}
	}
	return counts
}

// NetCharge sums the formal charges of m and its descendants.
func (m *Molecule) NetCharge() int {
	total := 0
	for _, a := range m.AllAtoms() {
		total += a.Charge()
	}
	return total
}

// ConciseFormula renders the element counts in Hill order using the CML
// concise convention, e.g. "C 2 H 6 O 1".  A non-zero net charge is
// appended as a signed integer.  A molecule without countable atoms yields
// the empty string.
func (m *Molecule) ConciseFormula() string {
	counts := m.ElementCounts()
	if len(counts) == 0 {
		return ""
	}
	parts := make([]string, 0, 2*len(counts)+1)
	for _, sym := range hillOrder(counts) {
		parts = append(parts, sym, fmt.Sprint(counts[sym]))
	}
	if q := m.NetCharge(); q != 0 {
		parts = append(parts, fmt.Sprintf("%+d", q))
	}
	return strings.Join(parts, " ")
}

// MolecularWeight sums the atomic weights of m's atoms, implicit hydrogens
// and group components included.
func (m *Molecule) MolecularWeight() float64 {
	var w float64
	pt := DefaultPeriodicTable()
	for sym, n := range m.ElementCounts() {
		if e, ok := pt.Lookup(sym); ok {
			w += e.weight * float64(n)
		}
	}
	return w
}

// hillOrder sorts symbols with carbon first, hydrogen second and the rest
// alphabetically.  Without carbon every symbol, hydrogen included, is
// alphabetical.
func hillOrder(counts map[string]int) []string {
	syms := make([]string, 0, len(counts))
	for s := range counts {
		syms = append(syms, s)
	}
	_, hasCarbon := counts["C"]
	rank := func(s string) int {
		if !hasCarbon {
			return 2
		}
		switch s {
		case "C":
			return 0
		case "H":
			return 1
		}
		return 2
	}
	sort.Slice(syms, func(i, j int) bool {
		ri, rj := rank(syms[i]), rank(syms[j])
		if ri != rj {
			return ri < rj
		}
		return syms[i] < syms[j]
	})
	return syms
}
