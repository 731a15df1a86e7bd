package cml

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/chem4word/chem4word/internal/domain/chemistry"
)

// coordinateSchemes lists the attribute pairs tried, in order.  The 3D
// scheme is projected onto the plane by dropping z.
var coordinateSchemes = [][2]string{
	{"x2", "y2"},
	{"x3", "y3"},
}

// Position reads the coordinates of an atom element.  When no scheme yields
// a complete, parseable pair it returns the origin and a message naming the
// atom's element and id.
func Position(atom *etree.Element) (chemistry.Point, string) {
	for _, scheme := range coordinateSchemes {
		x, okX := parseCoordinate(atom, scheme[0])
		y, okY := parseCoordinate(atom, scheme[1])
		if okX && okY {
			return chemistry.Point{X: x, Y: y}, ""
		}
	}
	return chemistry.Point{}, fmt.Sprintf("No atom coordinates found for %q atom with id %q",
		atom.SelectAttrValue("elementType", "?"), atom.SelectAttrValue("id", ""))
}

// parseCoordinate parses with strconv so that the decimal separator is
// always '.'.
func parseCoordinate(e *etree.Element, attr string) (float64, bool) {
	a := e.SelectAttr(attr)
	if a == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
