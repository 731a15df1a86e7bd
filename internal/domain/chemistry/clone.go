package chemistry

// Clone returns a fully independent deep copy of the model.  Bonds in the
// copy reference the copied atoms; nothing mutable is shared.
func (md *Model) Clone() *Model {
	cp := NewModel()
	cp.CustomXMLPartGUID = md.CustomXMLPartGUID
	cp.errors = append([]string(nil), md.errors...)
	cp.warnings = append([]string(nil), md.warnings...)
	for _, mol := range md.Molecules() {
		c := mol.Clone()
		c.model = cp
		cp.molecules[c.id] = c
		cp.order = append(cp.order, c.id)
	}
	return cp
}

// Clone returns a detached deep copy of m and its descendants.
func (m *Molecule) Clone() *Molecule {
	cp := NewMolecule(m.id)
	cp.DerivedFormula = m.DerivedFormula

	mapped := make(map[*Atom]*Atom, len(m.atoms))
	for _, id := range m.atomOrder {
		a := m.atoms[id].clone()
		a.parent = cp
		mapped[m.atoms[id]] = a
		cp.atoms[id] = a
		cp.atomOrder = append(cp.atomOrder, id)
	}
	for _, b := range m.bonds {
		cp.bonds = append(cp.bonds, &Bond{
			id:     b.id,
			start:  mapped[b.start],
			end:    mapped[b.end],
			Order:  b.Order,
			Stereo: b.Stereo,
			parent: cp,
		})
	}
	for _, id := range m.childOrder {
		child := m.children[id].Clone()
		child.parent = cp
		cp.children[id] = child
		cp.childOrder = append(cp.childOrder, id)
	}
	for _, tp := range m.names {
		cp.names = append(cp.names, tp.clone())
	}
	for _, tp := range m.formulas {
		cp.formulas = append(cp.formulas, tp.clone())
	}
	return cp
}
