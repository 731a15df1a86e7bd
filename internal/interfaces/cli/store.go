package cli

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chem4word/chem4word/internal/infrastructure/storage/minio"
)

// SavedPart is the output of store put.
type SavedPart struct {
	GUID    string `json:"guid"`
	Formula string `json:"formula,omitempty"`
}

func (p *SavedPart) String() string { return p.GUID }

// PartList is the output of store list.
type PartList struct {
	Parts []minio.PartInfo `json:"parts"`
}

func (l *PartList) String() string {
	if len(l.Parts) == 0 {
		return "no parts"
	}
	lines := make([]string, 0, len(l.Parts))
	for _, p := range l.Parts {
		lines = append(lines, p.GUID+"  "+strconv.FormatInt(p.Size, 10)+"  "+p.LastModified.UTC().Format(time.RFC3339))
	}
	return strings.Join(lines, "\n")
}

// TableHeaders implements tableProvider.
func (l *PartList) TableHeaders() []string { return []string{"GUID", "Size", "Modified"} }

// TableRows implements tableProvider.
func (l *PartList) TableRows() [][]string {
	rows := make([][]string, 0, len(l.Parts))
	for _, p := range l.Parts {
		rows = append(rows, []string{p.GUID, strconv.FormatInt(p.Size, 10), p.LastModified.UTC().Format(time.RFC3339)})
	}
	return rows
}

func newStoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage custom XML parts in the part store",
	}

	putCmd := &cobra.Command{
		Use:   "put <file>",
		Short: "Import a CML file and store it as a part",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			svc, _, err := cliCtx.StoreService(ctx)
			if err != nil {
				return err
			}
			md, err := importFile(ctx, svc, args[0])
			if err != nil {
				return err
			}
			guid, err := svc.Save(ctx, md)
			if err != nil {
				return err
			}
			return PrintResult(cmd, &SavedPart{GUID: guid, Formula: md.ConciseFormula()})
		},
	}

	var out string
	getCmd := &cobra.Command{
		Use:   "get <guid>",
		Short: "Fetch a part and print its CML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			svc, _, err := cliCtx.StoreService(ctx)
			if err != nil {
				return err
			}
			md, err := svc.Load(ctx, args[0])
			if err != nil {
				return err
			}
			text, err := svc.Export(ctx, md)
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, text)
		},
	}
	getCmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")

	deleteCmd := &cobra.Command{
		Use:   "delete <guid>",
		Short: "Delete a part",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			svc, _, err := cliCtx.StoreService(ctx)
			if err != nil {
				return err
			}
			if err := svc.Delete(ctx, args[0]); err != nil {
				return err
			}
			PrintSuccess(cmd, "deleted "+args[0])
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored parts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			_, store, err := cliCtx.StoreService(ctx)
			if err != nil {
				return err
			}
			parts, err := store.List(ctx)
			if err != nil {
				return err
			}
			if parts == nil {
				parts = []minio.PartInfo{}
			}
			return PrintResult(cmd, &PartList{Parts: parts})
		},
	}

	cmd.AddCommand(putCmd, getCmd, deleteCmd, listCmd)
	return cmd
}
