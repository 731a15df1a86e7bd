package chemistry

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func element(t *testing.T, symbol string) *Element {
	t.Helper()
	e, ok := DefaultPeriodicTable().Lookup(symbol)
	require.True(t, ok, symbol)
	return e
}

// chain builds a molecule with one atom per symbol, bonded in sequence with
// single bonds, atoms spaced 10 units apart along x.
func chain(t *testing.T, id string, symbols ...string) *Molecule {
	t.Helper()
	mol := NewMolecule(id)
	var prev *Atom
	for i, s := range symbols {
		a := NewAtom(fmt.Sprintf("a%d", i+1), element(t, s), Point{X: float64(10 * i), Y: 0})
		require.NoError(t, mol.AddAtom(a))
		if prev != nil {
			require.NoError(t, mol.AddBond(NewBond(mol.NextBondID(), prev, a, OrderSingle)))
		}
		prev = a
	}
	return mol
}

// cycle builds an n-membered carbon ring with the given bond order.
func cycle(t *testing.T, id string, n int, order BondOrder) *Molecule {
	t.Helper()
	mol := NewMolecule(id)
	atoms := make([]*Atom, n)
	for i := range atoms {
		atoms[i] = NewAtom(fmt.Sprintf("a%d", i+1), element(t, "C"), Point{X: float64(i), Y: float64(i % 2)})
		require.NoError(t, mol.AddAtom(atoms[i]))
	}
	for i := range atoms {
		require.NoError(t, mol.AddBond(NewBond(fmt.Sprintf("b%d", i+1), atoms[i], atoms[(i+1)%n], order)))
	}
	return mol
}

func atomIDs(atoms []*Atom) []string {
	out := make([]string, len(atoms))
	for i, a := range atoms {
		out[i] = a.ID()
	}
	return out
}

func bondIDs(bonds []*Bond) []string {
	out := make([]string, len(bonds))
	for i, b := range bonds {
		out[i] = b.ID()
	}
	return out
}
