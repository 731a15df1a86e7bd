package cml

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/chem4word/chem4word/internal/domain/chemistry"
	"github.com/chem4word/chem4word/pkg/errors"
)

// Export serializes md as a CML document.  Coordinates are always written in
// the 2D scheme.  The custom XML part GUID is written when set.
func (c *Converter) Export(md *chemistry.Model) (string, error) {
	if md == nil {
		return "", errors.InvalidArgument("model is nil")
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	w := &writer{prefix: "cml:"}
	if c.defaultNamespace {
		w.prefix = ""
	}
	root := doc.CreateElement(w.tag(tagCML))
	if c.defaultNamespace {
		root.CreateAttr("xmlns", CMLNamespace)
	} else {
		root.CreateAttr("xmlns:cml", CMLNamespace)
	}
	root.CreateAttr("xmlns:conventions", ConventionsNamespace)
	root.CreateAttr("xmlns:cmlDict", CMLDictNamespace)
	root.CreateAttr("xmlns:nameDict", NameDictNamespace)
	root.CreateAttr("xmlns:c4w", C4WNamespace)
	root.CreateAttr("conventions", "convention:molecular")

	if md.CustomXMLPartGUID != "" {
		root.CreateElement("c4w:" + tagCustomXMLID).SetText(md.CustomXMLPartGUID)
	}
	for _, mol := range md.Molecules() {
		w.molecule(root, mol)
	}

	if c.indent > 0 {
		doc.Indent(c.indent)
	} else {
		doc.Indent(etree.NoIndent)
	}
	out, err := doc.WriteToString()
	if err != nil {
		return "", errors.Wrap(err, errors.CodeCMLSerialize, "failed to write CML")
	}
	return out, nil
}

type writer struct {
	prefix string
}

func (w *writer) tag(local string) string { return w.prefix + local }

func (w *writer) molecule(parent *etree.Element, mol *chemistry.Molecule) {
	el := parent.CreateElement(w.tag(tagMolecule))
	el.CreateAttr("id", mol.ID())

	if concise := mol.ConciseFormula(); concise != "" {
		el.CreateElement(w.tag(tagFormula)).CreateAttr("concise", concise)
	}
	for _, f := range mol.Formulas() {
		fe := el.CreateElement(w.tag(tagFormula))
		fe.CreateAttr("id", f.ID)
		if f.Type != "" {
			fe.CreateAttr("convention", f.Type)
		}
		fe.CreateAttr("inline", f.Value)
	}
	for _, n := range mol.Names() {
		ne := el.CreateElement(w.tag(tagName))
		ne.CreateAttr("id", n.ID)
		if n.Type != "" {
			ne.CreateAttr("dictRef", n.Type)
		}
		ne.SetText(n.Value)
	}

	if atoms := mol.Atoms(); len(atoms) > 0 {
		arr := el.CreateElement(w.tag(tagAtomArray))
		for _, a := range atoms {
			w.atom(arr, a)
		}
	}
	if bonds := mol.Bonds(); len(bonds) > 0 {
		arr := el.CreateElement(w.tag(tagBondArray))
		for _, b := range bonds {
			w.bond(arr, b)
		}
	}
	for _, child := range mol.Molecules() {
		w.molecule(el, child)
	}
}

func (w *writer) atom(parent *etree.Element, a *chemistry.Atom) {
	el := parent.CreateElement(w.tag(tagAtom))
	el.CreateAttr("id", a.ID())
	if sym := a.Symbol(); sym != "" {
		el.CreateAttr("elementType", sym)
	}
	el.CreateAttr("x2", formatCoordinate(a.Position.X))
	el.CreateAttr("y2", formatCoordinate(a.Position.Y))
	if a.IsotopeNumber != nil {
		el.CreateAttr("isotopeNumber", strconv.Itoa(*a.IsotopeNumber))
	}
	if a.FormalCharge != nil {
		el.CreateAttr("formalCharge", strconv.Itoa(*a.FormalCharge))
	}
}

func (w *writer) bond(parent *etree.Element, b *chemistry.Bond) {
	el := parent.CreateElement(w.tag(tagBond))
	el.CreateAttr("id", b.ID())
	el.CreateAttr("atomRefs2", b.StartAtom().ID()+" "+b.EndAtom().ID())
	el.CreateAttr("order", b.Order.String())
	if b.Stereo != chemistry.StereoNone {
		el.CreateElement(w.tag(tagBondStereo)).SetText(string(b.Stereo))
	}
}
