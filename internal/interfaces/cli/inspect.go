package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	appchem "github.com/chem4word/chem4word/internal/application/chemistry"
	chem "github.com/chem4word/chem4word/internal/domain/chemistry"
	"github.com/chem4word/chem4word/pkg/errors"
)

// MoleculeSummary describes one molecule of an inspected document.
type MoleculeSummary struct {
	ID        string   `json:"id"`
	Depth     int      `json:"depth"`
	Formula   string   `json:"formula,omitempty"`
	Weight    float64  `json:"weight"`
	Atoms     int      `json:"atoms"`
	Bonds     int      `json:"bonds"`
	Rings     int      `json:"rings"`
	Names     []string `json:"names,omitempty"`
	Molecules int      `json:"molecules"`
}

// InspectResult is the output of inspect and watch.
type InspectResult struct {
	File      string            `json:"file,omitempty"`
	GUID      string            `json:"custom_xml_part_guid,omitempty"`
	Formula   string            `json:"formula,omitempty"`
	Atoms     int               `json:"atoms"`
	Bonds     int               `json:"bonds"`
	Molecules []MoleculeSummary `json:"molecules"`
	Errors    []string          `json:"errors,omitempty"`
	Warnings  []string          `json:"warnings,omitempty"`
}

// NewInspectResult summarises md.
func NewInspectResult(file string, md *chem.Model) *InspectResult {
	r := &InspectResult{
		File:      file,
		GUID:      md.CustomXMLPartGUID,
		Formula:   md.ConciseFormula(),
		Atoms:     len(md.AllAtoms()),
		Bonds:     len(md.AllBonds()),
		Molecules: []MoleculeSummary{},
		Errors:    md.Errors(),
		Warnings:  md.Warnings(),
	}
	var walk func(mol *chem.Molecule, depth int)
	walk = func(mol *chem.Molecule, depth int) {
		s := MoleculeSummary{
			ID:        mol.ID(),
			Depth:     depth,
			Formula:   mol.ConciseFormula(),
			Weight:    mol.MolecularWeight(),
			Atoms:     mol.AtomCount(),
			Bonds:     mol.BondCount(),
			Rings:     len(mol.Rings()),
			Molecules: len(mol.Molecules()),
		}
		for _, n := range mol.Names() {
			s.Names = append(s.Names, n.Value)
		}
		r.Molecules = append(r.Molecules, s)
		for _, child := range mol.Molecules() {
			walk(child, depth+1)
		}
	}
	for _, mol := range md.Molecules() {
		walk(mol, 0)
	}
	return r
}

func (r *InspectResult) String() string {
	var sb strings.Builder
	if r.File != "" {
		fmt.Fprintf(&sb, "File:     %s\n", r.File)
	}
	if r.GUID != "" {
		fmt.Fprintf(&sb, "GUID:     %s\n", r.GUID)
	}
	fmt.Fprintf(&sb, "Formula:  %s\n", r.Formula)
	fmt.Fprintf(&sb, "Contents: %d molecule(s), %d atom(s), %d bond(s)\n", len(r.Molecules), r.Atoms, r.Bonds)
	for _, m := range r.Molecules {
		fmt.Fprintf(&sb, "%s- %s  %s  atoms=%d bonds=%d rings=%d",
			strings.Repeat("  ", m.Depth), m.ID, m.Formula, m.Atoms, m.Bonds, m.Rings)
		if len(m.Names) > 0 {
			fmt.Fprintf(&sb, "  %q", strings.Join(m.Names, ", "))
		}
		sb.WriteString("\n")
	}
	for _, e := range r.Errors {
		fmt.Fprintf(&sb, "%s %s\n", warnText("error:"), e)
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&sb, "%s %s\n", warnText("warning:"), w)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// TableHeaders implements tableProvider.
func (r *InspectResult) TableHeaders() []string {
	return []string{"Molecule", "Depth", "Formula", "Weight", "Atoms", "Bonds", "Rings"}
}

// TableRows implements tableProvider.
func (r *InspectResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Molecules))
	for _, m := range r.Molecules {
		rows = append(rows, []string{
			m.ID,
			strconv.Itoa(m.Depth),
			m.Formula,
			strconv.FormatFloat(m.Weight, 'f', 3, 64),
			strconv.Itoa(m.Atoms),
			strconv.Itoa(m.Bonds),
			strconv.Itoa(m.Rings),
		})
	}
	return rows
}

func newInspectCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Import a CML file and print a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			result, err := inspectFile(cmd.Context(), cliCtx.LocalService(), args[0])
			if err != nil {
				return err
			}
			if err := PrintResult(cmd, result); err != nil {
				return err
			}
			if strict && len(result.Errors) > 0 {
				return errors.New(errors.CodeValidation, "document has errors").
					WithDetail(strconv.Itoa(len(result.Errors)) + " error(s)")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when the document has error messages")
	return cmd
}

func inspectFile(ctx context.Context, svc appchem.Service, path string) (*InspectResult, error) {
	md, err := importFile(ctx, svc, path)
	if err != nil {
		return nil, err
	}
	return NewInspectResult(path, md), nil
}

func importFile(ctx context.Context, svc appchem.Service, path string) (*chem.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "cannot read input file").WithDetail(path)
	}
	return svc.Import(ctx, string(data))
}
