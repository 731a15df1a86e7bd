package chemistry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImplicitHydrogenCount(t *testing.T) {
	ethanol := chain(t, "m1", "C", "C", "O")
	expect := map[string]int{"a1": 3, "a2": 2, "a3": 1}
	for id, want := range expect {
		a, _ := ethanol.Atom(id)
		assert.Equal(t, want, a.ImplicitHydrogenCount(), id)
	}

	benzene := cycle(t, "m2", 6, OrderAromatic)
	for _, a := range benzene.Atoms() {
		assert.Equal(t, 1, a.ImplicitHydrogenCount())
	}
}

func TestImplicitHydrogenCount_Charges(t *testing.T) {
	ammonium := NewAtom("a1", element(t, "N"), Point{})
	ammonium.FormalCharge = IntPtr(1)
	require.NoError(t, NewMolecule("m1").AddAtom(ammonium))
	assert.Equal(t, 4, ammonium.ImplicitHydrogenCount())

	hydroxide := NewAtom("a1", element(t, "O"), Point{})
	hydroxide.FormalCharge = IntPtr(-1)
	assert.Equal(t, 1, hydroxide.ImplicitHydrogenCount())

	methylCation := NewAtom("a1", element(t, "C"), Point{})
	methylCation.FormalCharge = IntPtr(1)
	assert.Equal(t, 3, methylCation.ImplicitHydrogenCount())

	borohydride := NewAtom("a1", element(t, "B"), Point{})
	borohydride.FormalCharge = IntPtr(-1)
	assert.Equal(t, 4, borohydride.ImplicitHydrogenCount())
}

func TestImplicitHydrogenCount_NonOrganic(t *testing.T) {
	fe := NewAtom("a1", element(t, "Fe"), Point{})
	assert.Equal(t, 0, fe.ImplicitHydrogenCount())

	ph, _ := DefaultFunctionalGroups().Lookup("Ph")
	assert.Equal(t, 0, NewAtom("a2", ph, Point{}).ImplicitHydrogenCount())
	assert.Equal(t, 0, NewAtom("a3", nil, Point{}).ImplicitHydrogenCount())
}

func TestImplicitHydrogenCount_HypervalentSulfur(t *testing.T) {
	// Sulfur with two double bonds uses its valence of 4 or 6.
	mol := NewMolecule("m1")
	s := NewAtom("a1", element(t, "S"), Point{})
	o1 := NewAtom("a2", element(t, "O"), Point{X: 1})
	o2 := NewAtom("a3", element(t, "O"), Point{X: -1})
	for _, a := range []*Atom{s, o1, o2} {
		require.NoError(t, mol.AddAtom(a))
	}
	require.NoError(t, mol.AddBond(NewBond("b1", s, o1, OrderDouble)))
	require.NoError(t, mol.AddBond(NewBond("b2", s, o2, OrderDouble)))
	assert.Equal(t, 0, s.ImplicitHydrogenCount())
	assert.Equal(t, 0, o1.ImplicitHydrogenCount())
}

func TestConciseFormula(t *testing.T) {
	assert.Equal(t, "C 2 H 6 O 1", chain(t, "m1", "C", "C", "O").ConciseFormula())
	assert.Equal(t, "C 6 H 6", cycle(t, "m1", 6, OrderAromatic).ConciseFormula())
	assert.Equal(t, "H 2 O 1", chain(t, "m1", "O").ConciseFormula())
	assert.Equal(t, "Cl 1 H 1", chain(t, "m1", "Cl").ConciseFormula())
	assert.Equal(t, "", NewMolecule("m1").ConciseFormula())
}

func TestConciseFormula_ChargeAndGroups(t *testing.T) {
	mol := NewMolecule("m1")
	n := NewAtom("a1", element(t, "N"), Point{})
	n.FormalCharge = IntPtr(1)
	require.NoError(t, mol.AddAtom(n))
	assert.Equal(t, "H 4 N 1 +1", mol.ConciseFormula())

	toluene := chain(t, "m2", "C")
	ph, _ := DefaultFunctionalGroups().Lookup("Ph")
	phAtom := NewAtom("a2", ph, Point{X: 10})
	require.NoError(t, toluene.AddAtom(phAtom))
	c, _ := toluene.Atom("a1")
	require.NoError(t, toluene.AddBond(NewBond("b1", c, phAtom, OrderSingle)))
	assert.Equal(t, "C 7 H 8", toluene.ConciseFormula())
	assert.InDelta(t, 92.14, toluene.MolecularWeight(), 0.01)
}

func TestConciseFormula_NestedAndModel(t *testing.T) {
	md := NewModel()
	parent := NewMolecule("m1")
	require.NoError(t, parent.AddMolecule(chain(t, "m2", "C")))
	require.NoError(t, parent.AddMolecule(chain(t, "m3", "O")))
	require.NoError(t, md.AddMolecule(parent))
	require.NoError(t, md.AddMolecule(chain(t, "m4", "N")))

	assert.Equal(t, "C 1 H 6 O 1", parent.ConciseFormula())
	assert.Equal(t, "C 1 H 6 O 1 . H 3 N 1", md.ConciseFormula())

	md.RefreshDerived()
	assert.Equal(t, "C 1 H 6 O 1", parent.DerivedFormula)
	child, _ := parent.Molecule("m2")
	assert.Equal(t, "C 1 H 4", child.DerivedFormula)
}

func TestConciseFormula_UnknownUnitIgnored(t *testing.T) {
	mol := chain(t, "m1", "C")
	unknown := NewAtom("a2", nil, Point{})
	unknown.RawSymbol = "Xx"
	require.NoError(t, mol.AddAtom(unknown))
	assert.Equal(t, "C 1 H 4", mol.ConciseFormula())
	assert.Equal(t, "Xx", unknown.Symbol())
}
