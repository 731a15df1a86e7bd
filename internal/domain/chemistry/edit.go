package chemistry

// ─────────────────────────────────────────────────────────────────────────────
// Geometry queries and editing commands
// ─────────────────────────────────────────────────────────────────────────────

// Centroid returns the mean position of all atoms of m and its descendants.
func (m *Molecule) Centroid() Point {
	atoms := m.AllAtoms()
	points := make([]Point, len(atoms))
	for i, a := range atoms {
		points[i] = a.Position
	}
	return centroid(points)
}

// BoundingBox returns the box enclosing every atom of m and its descendants.
func (m *Molecule) BoundingBox() Rect {
	var r Rect
	for _, a := range m.AllAtoms() {
		r = r.Extend(a.Position)
	}
	return r
}

// Translate moves every atom of m and its descendants by (dx, dy).
func (m *Molecule) Translate(dx, dy float64) {
	for _, a := range m.AllAtoms() {
		a.Position = a.Position.Add(dx, dy)
	}
}

// Flip mirrors m about its centroid.  A horizontal flip mirrors x, a
// vertical one y.  With flipStereo set, wedges and hatches are swapped so
// that the drawn configuration is preserved.
func (m *Molecule) Flip(horizontal, flipStereo bool) {
	c := m.Centroid()
	for _, a := range m.AllAtoms() {
		if horizontal {
			a.Position.X = 2*c.X - a.Position.X
		} else {
			a.Position.Y = 2*c.Y - a.Position.Y
		}
	}
	if !flipStereo {
		return
	}
	for _, b := range m.AllBonds() {
		b.Stereo = b.Stereo.Mirror()
	}
}

// MeanBondLength returns the average length of all bonds in m and its
// descendants, or 0 when there are none.
func (m *Molecule) MeanBondLength() float64 {
	bonds := m.AllBonds()
	if len(bonds) == 0 {
		return 0
	}
	var sum float64
	for _, b := range bonds {
		sum += b.Length()
	}
	return sum / float64(len(bonds))
}
