package chemistry

// ─────────────────────────────────────────────────────────────────────────────
// Bond-Order Codex
// ─────────────────────────────────────────────────────────────────────────────

// BondOrder is the symbolic bond order code stored on a Bond and written to
// the CML order attribute.
type BondOrder string

const (
	OrderZero      BondOrder = "hbond"
	OrderOther     BondOrder = "other"
	OrderPartial01 BondOrder = "partial01"
	OrderSingle    BondOrder = "S"
	OrderPartial12 BondOrder = "partial12"
	OrderAromatic  BondOrder = "A"
	OrderDouble    BondOrder = "D"
	OrderPartial23 BondOrder = "partial23"
	OrderTriple    BondOrder = "T"
)

var orderValues = map[BondOrder]float64{
	OrderZero:      0,
	OrderOther:     0,
	OrderPartial01: 0.5,
	OrderSingle:    1,
	OrderPartial12: 1.5,
	OrderAromatic:  1.5,
	OrderDouble:    2,
	OrderPartial23: 2.5,
	OrderTriple:    3,
}

// String returns the CML code.
func (o BondOrder) String() string { return string(o) }

// IsValid reports whether o is one of the known codes.
func (o BondOrder) IsValid() bool {
	_, ok := orderValues[o]
	return ok
}

// Value is shorthand for OrderToOrderValue(o).
func (o BondOrder) Value() (float64, bool) { return OrderToOrderValue(o) }

// OrderToOrderValue returns the numeric bond order of code.  Unknown codes
// report false; callers must not treat that as a zero-order bond.
func OrderToOrderValue(code BondOrder) (float64, bool) {
	v, ok := orderValues[code]
	return v, ok
}

// OrderValueToOrder maps a numeric bond order to its code.  At 1.5 the
// aromatic flag chooses between OrderAromatic and OrderPartial12; 4 always
// maps to OrderAromatic.  Any value outside {0, 0.5, 1, 1.5, 2, 2.5, 3, 4}
// falls back to OrderZero; use LookupOrderValue to detect that case.
func OrderValueToOrder(value float64, isAromatic bool) BondOrder {
	code, _ := LookupOrderValue(value, isAromatic)
	return code
}

// LookupOrderValue is OrderValueToOrder that also reports whether value was
// one of the enumerated orders.
func LookupOrderValue(value float64, isAromatic bool) (BondOrder, bool) {
	switch value {
	case 0:
		return OrderZero, true
	case 0.5:
		return OrderPartial01, true
	case 1:
		return OrderSingle, true
	case 1.5:
		if isAromatic {
			return OrderAromatic, true
		}
		return OrderPartial12, true
	case 2:
		return OrderDouble, true
	case 2.5:
		return OrderPartial23, true
	case 3:
		return OrderTriple, true
	case 4:
		return OrderAromatic, true
	}
	return OrderZero, false
}

// ─────────────────────────────────────────────────────────────────────────────
// Bond stereo
// ─────────────────────────────────────────────────────────────────────────────

// BondStereo is the optional stereo annotation of a bond.
type BondStereo string

const (
	StereoNone          BondStereo = ""
	StereoWedge         BondStereo = "W"
	StereoHatch         BondStereo = "H"
	StereoCis           BondStereo = "C"
	StereoTrans         BondStereo = "T"
	StereoIndeterminate BondStereo = "S"
)

// ParseBondStereo maps a CML bondStereo value.  The empty string is
// StereoNone; anything else unknown reports false.
func ParseBondStereo(s string) (BondStereo, bool) {
	switch BondStereo(s) {
	case StereoNone, StereoWedge, StereoHatch, StereoCis, StereoTrans, StereoIndeterminate:
		return BondStereo(s), true
	}
	return StereoNone, false
}

// Mirror swaps wedge and hatch.  Other values are returned unchanged.
func (s BondStereo) Mirror() BondStereo {
	switch s {
	case StereoWedge:
		return StereoHatch
	case StereoHatch:
		return StereoWedge
	}
	return s
}
