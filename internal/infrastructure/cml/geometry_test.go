package cml

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chem4word/chem4word/internal/domain/chemistry"
)

func TestPosition(t *testing.T) {
	cases := []struct {
		name    string
		xml     string
		want    chemistry.Point
		wantMsg bool
	}{
		{"2D", `<atom id="a1" elementType="C" x2="1.25" y2="-3.5"/>`, chemistry.Point{X: 1.25, Y: -3.5}, false},
		{"3D projected", `<atom id="a1" elementType="C" x3="2" y3="4" z3="9"/>`, chemistry.Point{X: 2, Y: 4}, false},
		{"2D preferred", `<atom id="a1" elementType="C" x2="1" y2="1" x3="2" y3="2"/>`, chemistry.Point{X: 1, Y: 1}, false},
		{"incomplete 2D falls back", `<atom id="a1" elementType="C" x2="1" x3="7" y3="8"/>`, chemistry.Point{X: 7, Y: 8}, false},
		{"whitespace and exponent", `<atom id="a1" elementType="C" x2=" 1e1 " y2="0.5"/>`, chemistry.Point{X: 10, Y: 0.5}, false},
		{"comma decimal rejected", `<atom id="a1" elementType="C" x2="1,5" y2="2"/>`, chemistry.Point{}, true},
		{"none", `<atom id="a1" elementType="C"/>`, chemistry.Point{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, msg := Position(parseRoot(t, tc.xml))
			assert.Equal(t, tc.want, got)
			if tc.wantMsg {
				assert.Contains(t, msg, `"a1"`)
				assert.Contains(t, msg, `"C"`)
			} else {
				assert.Empty(t, msg)
			}
		})
	}
}

func TestFormatCoordinate(t *testing.T) {
	assert.Equal(t, "5", formatCoordinate(5))
	assert.Equal(t, "-0.125", formatCoordinate(-0.125))
}
