// Package cml converts between CML (Chemical Markup Language) documents and
// the chemistry.Model graph.  Import tolerates the schema variants produced
// by different tools: unprefixed or namespaced elements, and atoms and bonds
// listed either flat or inside atomArray/bondArray wrappers.
package cml

import "github.com/beevik/etree"

// Namespace URIs.
const (
	CMLNamespace         = "http://www.xml-cml.org/schema"
	C4WNamespace         = "http://www.chem4word.com/cml"
	ConventionsNamespace = "http://www.xml-cml.org/convention/"
	CMLDictNamespace     = "http://www.xml-cml.org/dictionary/cml/"
	NameDictNamespace    = "http://www.xml-cml.org/dictionary/cml/name/"
)

// Local element names.
const (
	tagCML         = "cml"
	tagMolecule    = "molecule"
	tagAtomArray   = "atomArray"
	tagAtom        = "atom"
	tagBondArray   = "bondArray"
	tagBond        = "bond"
	tagBondStereo  = "bondStereo"
	tagName        = "name"
	tagFormula     = "formula"
	tagCustomXMLID = "customXmlPartGuid"
)

// Locator finds CML elements by logical role.  Each role is looked up under
// every schema variant (a namespace URI, "" meaning no namespace) and the
// results are merged, deduplicated by element identity, in document order.
type Locator struct {
	cmlVariants []string
	c4wVariants []string
}

// NewLocator returns a Locator accepting unprefixed and CML-namespaced
// chemistry elements plus unprefixed and c4w-namespaced vendor elements.
// extra adds further namespace URIs to the chemistry variants.
func NewLocator(extra ...string) *Locator {
	return &Locator{
		cmlVariants: append([]string{"", CMLNamespace}, extra...),
		c4wVariants: []string{"", C4WNamespace},
	}
}

// IsMolecule reports whether e is a molecule element.
func (l *Locator) IsMolecule(e *etree.Element) bool {
	return e != nil && len(union([]*etree.Element{e}, tagMolecule, l.cmlVariants)) == 1
}

// Molecules returns the top-level molecules of a document root.  A root that
// is itself a molecule is returned on its own.
func (l *Locator) Molecules(root *etree.Element) []*etree.Element {
	if root == nil {
		return nil
	}
	if l.IsMolecule(root) {
		return []*etree.Element{root}
	}
	return union(root.ChildElements(), tagMolecule, l.cmlVariants)
}

// ChildMolecules returns the molecules nested directly under mol.
func (l *Locator) ChildMolecules(mol *etree.Element) []*etree.Element {
	return union(mol.ChildElements(), tagMolecule, l.cmlVariants)
}

// Atoms returns the atom elements of mol.
func (l *Locator) Atoms(mol *etree.Element) []*etree.Element {
	return l.wrapped(mol, tagAtomArray, tagAtom)
}

// Bonds returns the bond elements of mol.
func (l *Locator) Bonds(mol *etree.Element) []*etree.Element {
	return l.wrapped(mol, tagBondArray, tagBond)
}

// Stereo returns the bondStereo children of a bond element.
func (l *Locator) Stereo(bond *etree.Element) []*etree.Element {
	return union(bond.ChildElements(), tagBondStereo, l.cmlVariants)
}

// Names returns the name elements belonging to mol, not to its nested
// molecules.
func (l *Locator) Names(mol *etree.Element) []*etree.Element {
	return union(l.ownDescendants(mol), tagName, l.cmlVariants)
}

// Formulas returns the formula elements belonging to mol, not to its nested
// molecules.
func (l *Locator) Formulas(mol *etree.Element) []*etree.Element {
	return union(l.ownDescendants(mol), tagFormula, l.cmlVariants)
}

// CustomXMLPartGUIDs returns the customXmlPartGuid children of root.
func (l *Locator) CustomXMLPartGUIDs(root *etree.Element) []*etree.Element {
	if root == nil {
		return nil
	}
	return union(root.ChildElements(), tagCustomXMLID, l.c4wVariants)
}

// wrapped probes for wrapper elements under mol.  Without a wrapper the
// items are mol's direct children; otherwise they are the descendants of
// every wrapper.
func (l *Locator) wrapped(mol *etree.Element, wrapperTag, itemTag string) []*etree.Element {
	wrappers := union(mol.ChildElements(), wrapperTag, l.cmlVariants)
	if len(wrappers) == 0 {
		return union(mol.ChildElements(), itemTag, l.cmlVariants)
	}
	var candidates []*etree.Element
	for _, w := range wrappers {
		candidates = append(candidates, descendants(w, nil)...)
	}
	return union(candidates, itemTag, l.cmlVariants)
}

// ownDescendants lists the descendants of mol without entering nested
// molecule elements.
func (l *Locator) ownDescendants(mol *etree.Element) []*etree.Element {
	return descendants(mol, l.IsMolecule)
}

// descendants walks e depth-first in document order.  Subtrees rooted at an
// element for which stop returns true are skipped, the element included.
func descendants(e *etree.Element, stop func(*etree.Element) bool) []*etree.Element {
	var out []*etree.Element
	for _, c := range e.ChildElements() {
		if stop != nil && stop(c) {
			continue
		}
		out = append(out, c)
		out = append(out, descendants(c, stop)...)
	}
	return out
}

// union keeps the candidates whose local name is tag and whose namespace
// matches any of variants.  Each element appears once, in candidate order.
func union(candidates []*etree.Element, tag string, variants []string) []*etree.Element {
	matched := make(map[*etree.Element]bool)
	for _, ns := range variants {
		for _, e := range candidates {
			if e.Tag == tag && e.NamespaceURI() == ns {
				matched[e] = true
			}
		}
	}
	out := make([]*etree.Element, 0, len(matched))
	for _, e := range candidates {
		if matched[e] {
			out = append(out, e)
			delete(matched, e)
		}
	}
	return out
}
