package chemistry

// Common textual property types.  Names carry a dictRef, formulas a
// convention; both end up in TextualProperty.Type.
const (
	NameTypeSynonym   = "chem4word:Synonym"
	NameTypeIUPAC     = "nameDict:iupac"
	NameTypeUnknown   = "nameDict:unknown"
	FormulaTypeUser   = "chem4word:Formula"
	FormulaTypeSMILES = "chem4word:SMILES"
)

// TextualProperty is a name or formula attached to a molecule.  ID is
// scoped under the owning molecule, e.g. "m1.n2".
type TextualProperty struct {
	ID    string
	Type  string
	Value string
}

func (t *TextualProperty) clone() *TextualProperty {
	cp := *t
	return &cp
}
