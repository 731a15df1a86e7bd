package chemistry

import (
	"sort"
	"sync"
)

// ─────────────────────────────────────────────────────────────────────────────
// Chemical units
// ─────────────────────────────────────────────────────────────────────────────

// ChemicalUnit is what an atom stands for: either a periodic table Element or
// a FunctionalGroup shortcut such as "Ph".
type ChemicalUnit interface {
	Symbol() string
	Name() string
	AtomicWeight() float64
}

// Element is an immutable periodic table entry.
type Element struct {
	number   int
	symbol   string
	name     string
	weight   float64
	valences []int
}

func (e *Element) Symbol() string        { return e.symbol }
func (e *Element) Name() string          { return e.name }
func (e *Element) AtomicWeight() float64 { return e.weight }

// Number returns the atomic number.
func (e *Element) Number() int { return e.number }

// Valences returns the default valences in ascending order.  Elements
// without a well-defined covalent valence return nil.
func (e *Element) Valences() []int {
	if len(e.valences) == 0 {
		return nil
	}
	out := make([]int, len(e.valences))
	copy(out, e.valences)
	return out
}

// organicSubset lists the elements whose implicit hydrogens are derived.
var organicSubset = map[string]bool{
	"B": true, "C": true, "N": true, "O": true, "P": true,
	"S": true, "F": true, "Cl": true, "Br": true, "I": true,
}

// InOrganicSubset reports whether implicit hydrogens are computed for e.
func (e *Element) InOrganicSubset() bool { return organicSubset[e.symbol] }

// ─────────────────────────────────────────────────────────────────────────────
// PeriodicTable
// ─────────────────────────────────────────────────────────────────────────────

// PeriodicTable is an immutable symbol and number index of elements.
type PeriodicTable struct {
	bySymbol map[string]*Element
	byNumber []*Element
}

// Lookup returns the element with the given case-sensitive symbol.
func (t *PeriodicTable) Lookup(symbol string) (*Element, bool) {
	e, ok := t.bySymbol[symbol]
	return e, ok
}

// ByNumber returns the element with atomic number n.
func (t *PeriodicTable) ByNumber(n int) (*Element, bool) {
	if n < 1 || n > len(t.byNumber) {
		return nil, false
	}
	return t.byNumber[n-1], true
}

// Elements returns all elements ordered by atomic number.
func (t *PeriodicTable) Elements() []*Element {
	out := make([]*Element, len(t.byNumber))
	copy(out, t.byNumber)
	return out
}

// Len returns the number of elements.
func (t *PeriodicTable) Len() int { return len(t.byNumber) }

// NewPeriodicTable builds a table from the given elements.  It is mainly
// useful for tests that need a reduced table.
func NewPeriodicTable(elements ...*Element) *PeriodicTable {
	t := &PeriodicTable{bySymbol: make(map[string]*Element, len(elements))}
	sorted := make([]*Element, len(elements))
	copy(sorted, elements)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].number < sorted[j].number })
	for _, e := range sorted {
		t.bySymbol[e.symbol] = e
		t.byNumber = append(t.byNumber, e)
	}
	return t
}

// NewElement constructs an Element.
func NewElement(number int, symbol, name string, weight float64, valences ...int) *Element {
	return &Element{number: number, symbol: symbol, name: name, weight: weight, valences: valences}
}

var (
	periodicTableOnce sync.Once
	periodicTable     *PeriodicTable
)

// DefaultPeriodicTable returns the shared table of all 118 elements.  It is
// built on first use and never modified afterwards.
func DefaultPeriodicTable() *PeriodicTable {
	periodicTableOnce.Do(func() {
		elements := make([]*Element, 0, len(elementData))
		for _, d := range elementData {
			elements = append(elements, NewElement(d.number, d.symbol, d.name, d.weight, d.valences...))
		}
		periodicTable = NewPeriodicTable(elements...)
	})
	return periodicTable
}

type elementRow struct {
	number   int
	symbol   string
	name     string
	weight   float64
	valences []int
}

var elementData = []elementRow{
	{1, "H", "Hydrogen", 1.008, []int{1}},
	{2, "He", "Helium", 4.0026, nil},
	{3, "Li", "Lithium", 6.94, []int{1}},
	{4, "Be", "Beryllium", 9.0122, []int{2}},
	{5, "B", "Boron", 10.81, []int{3}},
	{6, "C", "Carbon", 12.011, []int{4}},
	{7, "N", "Nitrogen", 14.007, []int{3, 5}},
	{8, "O", "Oxygen", 15.999, []int{2}},
	{9, "F", "Fluorine", 18.998, []int{1}},
	{10, "Ne", "Neon", 20.180, nil},
	{11, "Na", "Sodium", 22.990, []int{1}},
	{12, "Mg", "Magnesium", 24.305, []int{2}},
	{13, "Al", "Aluminium", 26.982, []int{3}},
	{14, "Si", "Silicon", 28.085, []int{4}},
	{15, "P", "Phosphorus", 30.974, []int{3, 5}},
	{16, "S", "Sulfur", 32.06, []int{2, 4, 6}},
	{17, "Cl", "Chlorine", 35.45, []int{1}},
	{18, "Ar", "Argon", 39.948, nil},
	{19, "K", "Potassium", 39.098, []int{1}},
	{20, "Ca", "Calcium", 40.078, []int{2}},
	{21, "Sc", "Scandium", 44.956, nil},
	{22, "Ti", "Titanium", 47.867, nil},
	{23, "V", "Vanadium", 50.942, nil},
	{24, "Cr", "Chromium", 51.996, nil},
	{25, "Mn", "Manganese", 54.938, nil},
	{26, "Fe", "Iron", 55.845, nil},
	{27, "Co", "Cobalt", 58.933, nil},
	{28, "Ni", "Nickel", 58.693, nil},
	{29, "Cu", "Copper", 63.546, nil},
	{30, "Zn", "Zinc", 65.38, nil},
	{31, "Ga", "Gallium", 69.723, []int{3}},
	{32, "Ge", "Germanium", 72.630, []int{4}},
	{33, "As", "Arsenic", 74.922, []int{3, 5}},
	{34, "Se", "Selenium", 78.971, []int{2, 4, 6}},
	{35, "Br", "Bromine", 79.904, []int{1}},
	{36, "Kr", "Krypton", 83.798, nil},
	{37, "Rb", "Rubidium", 85.468, []int{1}},
	{38, "Sr", "Strontium", 87.62, []int{2}},
	{39, "Y", "Yttrium", 88.906, nil},
	{40, "Zr", "Zirconium", 91.224, nil},
	{41, "Nb", "Niobium", 92.906, nil},
	{42, "Mo", "Molybdenum", 95.95, nil},
	{43, "Tc", "Technetium", 98, nil},
	{44, "Ru", "Ruthenium", 101.07, nil},
	{45, "Rh", "Rhodium", 102.91, nil},
	{46, "Pd", "Palladium", 106.42, nil},
	{47, "Ag", "Silver", 107.87, nil},
	{48, "Cd", "Cadmium", 112.41, nil},
	{49, "In", "Indium", 114.82, []int{3}},
	{50, "Sn", "Tin", 118.71, []int{2, 4}},
	{51, "Sb", "Antimony", 121.76, []int{3, 5}},
	{52, "Te", "Tellurium", 127.60, []int{2, 4, 6}},
	{53, "I", "Iodine", 126.90, []int{1}},
	{54, "Xe", "Xenon", 131.29, nil},
	{55, "Cs", "Caesium", 132.91, []int{1}},
	{56, "Ba", "Barium", 137.33, []int{2}},
	{57, "La", "Lanthanum", 138.91, nil},
	{58, "Ce", "Cerium", 140.12, nil},
	{59, "Pr", "Praseodymium", 140.91, nil},
	{60, "Nd", "Neodymium", 144.24, nil},
	{61, "Pm", "Promethium", 145, nil},
	{62, "Sm", "Samarium", 150.36, nil},
	{63, "Eu", "Europium", 151.96, nil},
	{64, "Gd", "Gadolinium", 157.25, nil},
	{65, "Tb", "Terbium", 158.93, nil},
	{66, "Dy", "Dysprosium", 162.50, nil},
	{67, "Ho", "Holmium", 164.93, nil},
	{68, "Er", "Erbium", 167.26, nil},
	{69, "Tm", "Thulium", 168.93, nil},
	{70, "Yb", "Ytterbium", 173.05, nil},
	{71, "Lu", "Lutetium", 174.97, nil},
	{72, "Hf", "Hafnium", 178.49, nil},
	{73, "Ta", "Tantalum", 180.95, nil},
	{74, "W", "Tungsten", 183.84, nil},
	{75, "Re", "Rhenium", 186.21, nil},
	{76, "Os", "Osmium", 190.23, nil},
	{77, "Ir", "Iridium", 192.22, nil},
	{78, "Pt", "Platinum", 195.08, nil},
	{79, "Au", "Gold", 196.97, nil},
	{80, "Hg", "Mercury", 200.59, nil},
	{81, "Tl", "Thallium", 204.38, []int{1, 3}},
	{82, "Pb", "Lead", 207.2, []int{2, 4}},
	{83, "Bi", "Bismuth", 208.98, []int{3, 5}},
	{84, "Po", "Polonium", 209, nil},
	{85, "At", "Astatine", 210, []int{1}},
	{86, "Rn", "Radon", 222, nil},
	{87, "Fr", "Francium", 223, []int{1}},
	{88, "Ra", "Radium", 226, []int{2}},
	{89, "Ac", "Actinium", 227, nil},
	{90, "Th", "Thorium", 232.04, nil},
	{91, "Pa", "Protactinium", 231.04, nil},
	{92, "U", "Uranium", 238.03, nil},
	{93, "Np", "Neptunium", 237, nil},
	{94, "Pu", "Plutonium", 244, nil},
	{95, "Am", "Americium", 243, nil},
	{96, "Cm", "Curium", 247, nil},
	{97, "Bk", "Berkelium", 247, nil},
	{98, "Cf", "Californium", 251, nil},
	{99, "Es", "Einsteinium", 252, nil},
	{100, "Fm", "Fermium", 257, nil},
	{101, "Md", "Mendelevium", 258, nil},
	{102, "No", "Nobelium", 259, nil},
	{103, "Lr", "Lawrencium", 266, nil},
	{104, "Rf", "Rutherfordium", 267, nil},
	{105, "Db", "Dubnium", 268, nil},
	{106, "Sg", "Seaborgium", 269, nil},
	{107, "Bh", "Bohrium", 270, nil},
	{108, "Hs", "Hassium", 277, nil},
	{109, "Mt", "Meitnerium", 278, nil},
	{110, "Ds", "Darmstadtium", 281, nil},
	{111, "Rg", "Roentgenium", 282, nil},
	{112, "Cn", "Copernicium", 285, nil},
	{113, "Nh", "Nihonium", 286, nil},
	{114, "Fl", "Flerovium", 289, nil},
	{115, "Mc", "Moscovium", 290, nil},
	{116, "Lv", "Livermorium", 293, nil},
	{117, "Ts", "Tennessine", 294, nil},
	{118, "Og", "Oganesson", 294, nil},
}
