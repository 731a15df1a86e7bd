package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/telemetry"
)

func newTelemetryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "telemetry",
		Short: "Read telemetry events",
	}
	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Print telemetry events as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			src, err := cliCtx.TelemetrySource()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return src.Run(ctx, func(_ context.Context, ev telemetry.Event) error {
				if cliCtx.OutputFormat == "json" {
					return printJSON(cmd, ev)
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), formatEvent(ev))
				return err
			})
		},
	}
	cmd.AddCommand(tailCmd)
	return cmd
}

// formatEvent renders an event on one line with its fields sorted by key.
func formatEvent(ev telemetry.Event) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s] %s: %s", ev.Time.UTC().Format(time.RFC3339), ev.Level, ev.Source, ev.Message)
	if ev.MachineID != "" {
		fmt.Fprintf(&sb, " machine=%s", ev.MachineID)
	}
	keys := make([]string, 0, len(ev.Fields))
	for k := range ev.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%s", k, ev.Fields[k])
	}
	return sb.String()
}
