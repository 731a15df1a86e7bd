package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/chem4word/chem4word/internal/infrastructure/cml"
	"github.com/chem4word/chem4word/pkg/errors"
)

func newConvertCmd() *cobra.Command {
	var (
		out              string
		defaultNamespace bool
		indent           int
	)
	cmd := &cobra.Command{
		Use:   "convert <in>",
		Short: "Normalise a CML file",
		Long: "convert imports a CML file in any of the supported schema variants and\n" +
			"writes it back in canonical form, to stdout or to --out.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			md, err := importFile(cmd.Context(), cliCtx.LocalService(), args[0])
			if err != nil {
				return err
			}
			for _, w := range md.Warnings() {
				cliCtx.Logger.Warn(w)
			}
			for _, e := range md.Errors() {
				cliCtx.Logger.Warn(e)
			}

			var opts []cml.Option
			if cmd.Flags().Changed("default-namespace") {
				opts = append(opts, cml.WithDefaultNamespace(defaultNamespace))
			}
			if cmd.Flags().Changed("indent") {
				if indent < 0 {
					return errors.InvalidParam("indent must not be negative")
				}
				opts = append(opts, cml.WithIndent(indent))
			}
			text, err := cliCtx.Converter(opts...).Export(md)
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, text)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&defaultNamespace, "default-namespace", false, "write unprefixed elements in the default CML namespace")
	cmd.Flags().IntVar(&indent, "indent", 2, "spaces per nesting level; 0 writes a single line")
	return cmd
}

// writeOutput writes text to path, or to stdout when path is empty.
func writeOutput(cmd *cobra.Command, path, text string) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write([]byte(text + "\n"))
		return err
	}
	if err := os.WriteFile(path, []byte(text+"\n"), 0o644); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "cannot write output file").WithDetail(path)
	}
	PrintSuccess(cmd, "wrote "+path)
	return nil
}
