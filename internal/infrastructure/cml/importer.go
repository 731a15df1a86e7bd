package cml

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/chem4word/chem4word/internal/domain/chemistry"
	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/logging"
	"github.com/chem4word/chem4word/pkg/errors"
)

// Import parses CML text into a new Model.  Malformed XML is the only fatal
// condition and yields a CML_001 error.  Per-element defects are recorded on
// the model as errors or warnings and the import carries on.
func (c *Converter) Import(text string) (*chemistry.Model, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(text); err != nil {
		return nil, errors.Wrap(err, errors.CodeCMLParse, "malformed CML")
	}
	if err := checkDocumentLevel(doc); err != nil {
		return nil, err
	}
	root := doc.Root()

	md := chemistry.NewModel()
	run := &importRun{Converter: c, model: md}

	for _, g := range c.locator.CustomXMLPartGUIDs(root) {
		if guid := strings.TrimSpace(g.Text()); guid != "" {
			md.CustomXMLPartGUID = guid
			break
		}
	}

	for _, el := range c.locator.Molecules(root) {
		run.molecule(el, nil)
	}

	md.RefreshDerived()

	c.logger.Info("imported CML",
		logging.PartGUID(md.CustomXMLPartGUID),
		logging.Int("molecules", len(md.Molecules())),
		logging.Int("atoms", len(md.AllAtoms())),
		logging.Int("bonds", len(md.AllBonds())),
		logging.Int("errors", len(md.Errors())),
		logging.Int("warnings", len(md.Warnings())),
	)
	return md, nil
}

// checkDocumentLevel rejects what the tokenizer lets through but XML does
// not allow outside the root: a second element, or text other than
// whitespace.
func checkDocumentLevel(doc *etree.Document) error {
	roots := 0
	for _, tok := range doc.Child {
		switch t := tok.(type) {
		case *etree.Element:
			roots++
		case *etree.CharData:
			if strings.TrimSpace(t.Data) != "" {
				return errors.New(errors.CodeCMLParse, "malformed CML").
					WithDetail("text outside the root element")
			}
		}
	}
	switch roots {
	case 0:
		return errors.New(errors.CodeCMLParse, "document has no root element")
	case 1:
		return nil
	default:
		return errors.New(errors.CodeCMLParse, "malformed CML").
			WithDetail(fmt.Sprintf("%d root elements", roots))
	}
}

// importRun carries the model being built through one Import call.
type importRun struct {
	*Converter
	model *chemistry.Model
}

func (r *importRun) errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.model.AddError(msg)
	r.logger.Debug("CML import error", logging.String("detail", msg))
}

func (r *importRun) warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.model.AddWarning(msg)
	r.logger.Debug("CML import warning", logging.String("detail", msg))
}

// molecule builds one molecule, attaches it under parent (or the model when
// parent is nil), then fills it.  Attaching first lets generated ids see the
// molecules already in place.
func (r *importRun) molecule(el *etree.Element, parent *chemistry.Molecule) {
	id := strings.TrimSpace(el.SelectAttrValue("id", ""))
	if id == "" {
		id = r.model.NextMoleculeID()
		r.warnf("Molecule without id was given id %q", id)
	} else if _, taken := r.model.FindMolecule(id); taken {
		fresh := r.model.NextMoleculeID()
		r.errorf("Duplicate molecule id %q was changed to %q", id, fresh)
		id = fresh
	}

	mol := chemistry.NewMolecule(id)
	var err error
	if parent == nil {
		err = r.model.AddMolecule(mol)
	} else {
		err = parent.AddMolecule(mol)
	}
	if err != nil {
		r.errorf("Molecule %q could not be added: %v", id, err)
		return
	}

	for _, a := range r.locator.Atoms(el) {
		r.atom(a, mol)
	}
	for _, b := range r.locator.Bonds(el) {
		r.bond(b, mol)
	}
	for _, n := range r.locator.Names(el) {
		r.name(n, mol)
	}
	for _, f := range r.locator.Formulas(el) {
		r.formula(f, mol)
	}
	for _, child := range r.locator.ChildMolecules(el) {
		r.molecule(child, mol)
	}
}

func (r *importRun) atom(el *etree.Element, mol *chemistry.Molecule) {
	id := strings.TrimSpace(el.SelectAttrValue("id", ""))
	if id == "" {
		id = mol.NextAtomID()
		r.errorf("Atom without id in molecule %q was given id %q", mol.ID(), id)
	}
	if _, taken := mol.Atom(id); taken {
		r.errorf("Duplicate atom id %q in molecule %q was skipped", id, mol.ID())
		return
	}

	symbol := strings.TrimSpace(el.SelectAttrValue("elementType", ""))
	unit, known := r.tables.Resolve(symbol)
	switch {
	case symbol == "":
		r.errorf("Atom %q in molecule %q has no elementType", id, mol.ID())
	case !known:
		r.errorf("Unknown element %q on atom %q in molecule %q", symbol, id, mol.ID())
	}

	pos, msg := Position(el)
	if msg != "" {
		r.errorf("%s", msg)
	}

	a := chemistry.NewAtom(id, unit, pos)
	if !known {
		a.RawSymbol = symbol
	}
	a.IsotopeNumber = r.optionalInt(el, "isotopeNumber", id)
	a.FormalCharge = r.optionalInt(el, "formalCharge", id)

	if err := mol.AddAtom(a); err != nil {
		r.errorf("Atom %q could not be added to molecule %q: %v", id, mol.ID(), err)
	}
}

func (r *importRun) optionalInt(el *etree.Element, attr, atomID string) *int {
	raw := el.SelectAttr(attr)
	if raw == nil {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw.Value))
	if err != nil {
		r.warnf("Ignoring %s %q on atom %q", attr, raw.Value, atomID)
		return nil
	}
	return &n
}

func (r *importRun) bond(el *etree.Element, mol *chemistry.Molecule) {
	id := strings.TrimSpace(el.SelectAttrValue("id", ""))

	refs := strings.Fields(el.SelectAttrValue("atomRefs2", ""))
	if len(refs) != 2 {
		r.errorf("Bond %q in molecule %q does not reference exactly two atoms", id, mol.ID())
		return
	}
	start, okStart := mol.Atom(refs[0])
	end, okEnd := mol.Atom(refs[1])
	if !okStart || !okEnd {
		r.errorf("Bond %q in molecule %q references unknown atoms %q", id, mol.ID(), strings.Join(refs, " "))
		return
	}

	if id == "" {
		id = mol.NextBondID()
		r.warnf("Bond between %q and %q in molecule %q was given id %q", refs[0], refs[1], mol.ID(), id)
	}

	rawOrder := el.SelectAttrValue("order", "")
	order, ok := ParseOrder(rawOrder)
	if !ok {
		r.errorf("Unknown bond order %q on bond %q in molecule %q", rawOrder, id, mol.ID())
	}

	b := chemistry.NewBond(id, start, end, order)
	for _, st := range r.locator.Stereo(el) {
		raw := strings.TrimSpace(st.Text())
		stereo, known := chemistry.ParseBondStereo(raw)
		if !known {
			r.warnf("Ignoring bond stereo %q on bond %q", raw, id)
			continue
		}
		b.Stereo = stereo
		break
	}

	if err := mol.AddBond(b); err != nil {
		r.errorf("Bond %q could not be added to molecule %q: %v", id, mol.ID(), err)
	}
}

// ParseOrder decodes a CML order attribute.  A missing value is a single
// bond.  Codes are matched exactly, single-letter codes case-insensitively,
// and numbers go through the codex without the aromatic flag.  Anything
// else yields OrderOther and false.
func ParseOrder(raw string) (chemistry.BondOrder, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return chemistry.OrderSingle, true
	}
	if code := chemistry.BondOrder(raw); code.IsValid() {
		return code, true
	}
	if len(raw) == 1 {
		if code := chemistry.BondOrder(strings.ToUpper(raw)); code.IsValid() {
			return code, true
		}
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		if code, ok := chemistry.LookupOrderValue(v, false); ok {
			return code, true
		}
	}
	return chemistry.OrderOther, false
}

func (r *importRun) name(el *etree.Element, mol *chemistry.Molecule) {
	tp := &chemistry.TextualProperty{
		ID:    strings.TrimSpace(el.SelectAttrValue("id", "")),
		Type:  el.SelectAttrValue("dictRef", ""),
		Value: strings.TrimSpace(el.Text()),
	}
	if err := mol.PutName(tp); err != nil {
		used := tp.ID
		tp.ID = ""
		if err := mol.PutName(tp); err != nil {
			r.errorf("Name %q in molecule %q could not be added: %v", tp.Value, mol.ID(), err)
			return
		}
		r.warnf("Name id %q in molecule %q is already used; it was changed to %q", used, mol.ID(), tp.ID)
	}
}

func (r *importRun) formula(el *etree.Element, mol *chemistry.Molecule) {
	tp := &chemistry.TextualProperty{
		ID:   strings.TrimSpace(el.SelectAttrValue("id", "")),
		Type: el.SelectAttrValue("convention", ""),
	}
	switch inline := el.SelectAttr("inline"); {
	case inline != nil:
		tp.Value = inline.Value
	case el.SelectAttr("concise") != nil:
		// Concise formulas are derived from the graph on import.
		return
	default:
		tp.Value = strings.TrimSpace(el.Text())
	}
	if err := mol.PutFormula(tp); err != nil {
		used := tp.ID
		tp.ID = ""
		if err := mol.PutFormula(tp); err != nil {
			r.errorf("Formula %q in molecule %q could not be added: %v", tp.Value, mol.ID(), err)
			return
		}
		r.warnf("Formula id %q in molecule %q is already used; it was changed to %q", used, mol.ID(), tp.ID)
	}
}
