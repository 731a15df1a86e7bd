package chemistry

import (
	"fmt"
	"strconv"
)

// maxSuffix returns the largest trailing decimal number found in ids, or 0.
func maxSuffix(ids []string) int {
	max := 0
	for _, id := range ids {
		end := len(id)
		start := end
		for start > 0 && id[start-1] >= '0' && id[start-1] <= '9' {
			start--
		}
		if start == end {
			continue
		}
		if n, err := strconv.Atoi(id[start:end]); err == nil && n > max {
			max = n
		}
	}
	return max
}

// NextAtomID returns "a<n>" with n one more than the largest suffix in use.
func (m *Molecule) NextAtomID() string {
	return fmt.Sprintf("a%d", maxSuffix(m.atomOrder)+1)
}

// NextBondID returns "b<n>" with n one more than the largest suffix in use.
func (m *Molecule) NextBondID() string {
	ids := make([]string, 0, len(m.bonds))
	for _, b := range m.bonds {
		ids = append(ids, b.id)
	}
	return fmt.Sprintf("b%d", maxSuffix(ids)+1)
}

// NextMoleculeID returns "m<n>" with n one more than the largest suffix used
// by any molecule in the model, nested ones included.
func (md *Model) NextMoleculeID() string {
	var ids []string
	for _, mol := range md.Molecules() {
		mol.Walk(func(x *Molecule) { ids = append(ids, x.id) })
	}
	return fmt.Sprintf("m%d", maxSuffix(ids)+1)
}
