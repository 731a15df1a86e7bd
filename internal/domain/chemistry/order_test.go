package chemistry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderValueToOrder(t *testing.T) {
	cases := []struct {
		value    float64
		aromatic bool
		want     BondOrder
	}{
		{0, false, OrderZero},
		{0.5, false, OrderPartial01},
		{1, false, OrderSingle},
		{1.5, false, OrderPartial12},
		{1.5, true, OrderAromatic},
		{2, false, OrderDouble},
		{2.5, true, OrderPartial23},
		{3, false, OrderTriple},
		{4, false, OrderAromatic},
		{4, true, OrderAromatic},
		{7, false, OrderZero},
		{-1, true, OrderZero},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, OrderValueToOrder(tc.value, tc.aromatic), "value=%v aromatic=%v", tc.value, tc.aromatic)
	}
}

func TestLookupOrderValue_ReportsFallback(t *testing.T) {
	code, ok := LookupOrderValue(1.25, false)
	assert.False(t, ok)
	assert.Equal(t, OrderZero, code)

	code, ok = LookupOrderValue(0, false)
	assert.True(t, ok)
	assert.Equal(t, OrderZero, code)
}

func TestOrderToOrderValue(t *testing.T) {
	cases := map[BondOrder]float64{
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
	for code, want := range cases {
		got, ok := OrderToOrderValue(code)
		assert.True(t, ok, code)
		assert.Equal(t, want, got, code)
	}
}

func TestOrderToOrderValue_UnknownIsAbsentNotZero(t *testing.T) {
	v, ok := OrderToOrderValue("Q")
	assert.False(t, ok)
	assert.Zero(t, v)
	assert.False(t, BondOrder("Q").IsValid())
	assert.True(t, OrderDouble.IsValid())
}

func TestOrderCodex_RoundTripOnLosslessValues(t *testing.T) {
	for _, v := range []float64{0, 0.5, 1, 2, 2.5, 3} {
		for _, aromatic := range []bool{false, true} {
			got, ok := OrderToOrderValue(OrderValueToOrder(v, aromatic))
			assert.True(t, ok)
			assert.Equal(t, v, got)
		}
	}
}

func TestParseBondStereo(t *testing.T) {
	for _, s := range []string{"", "W", "H", "C", "T", "S"} {
		got, ok := ParseBondStereo(s)
		assert.True(t, ok, s)
		assert.Equal(t, BondStereo(s), got)
	}
	got, ok := ParseBondStereo("X")
	assert.False(t, ok)
	assert.Equal(t, StereoNone, got)
}

func TestBondStereo_Mirror(t *testing.T) {
	assert.Equal(t, StereoHatch, StereoWedge.Mirror())
	assert.Equal(t, StereoWedge, StereoHatch.Mirror())
	assert.Equal(t, StereoCis, StereoCis.Mirror())
	assert.Equal(t, StereoNone, StereoNone.Mirror())
}
