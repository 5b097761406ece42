package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"corduroy/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and last poll status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var status api.DaemonStatus
			if err := ctx.fetchJSON(cmd.Context(), "/api/status", &status); err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), status)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Resort:   %s\n", status.Resort)
			fmt.Fprintf(out, "Running:  %t (pid %d)\n", status.Running, status.PID)
			fmt.Fprintf(out, "Database: %s\n", status.DBPath)
			if status.CatalogBuiltAt != nil {
				fmt.Fprintf(out, "Catalog:  %d trails (built %s)\n",
					status.CatalogSize, status.CatalogBuiltAt.Local().Format(time.RFC1123))
			} else {
				fmt.Fprintln(out, "Catalog:  not yet built")
			}
			if cycle := status.LastCycle; cycle != nil {
				fmt.Fprintf(out, "Last poll: %s\n", cycle.CompletedAt.Local().Format(time.RFC1123))
				fmt.Fprintf(out, "  Trails: %s/%s open\n", cycle.TrailsOpen, cycle.TrailsTotal)
				fmt.Fprintf(out, "  Lifts:  %s/%s open\n", cycle.LiftsOpen, cycle.LiftsTotal)
				if cycle.Snow24h != "" {
					fmt.Fprintf(out, "  Snow 24h: %s\n", cycle.Snow24h)
				}
			} else {
				fmt.Fprintln(out, "Last poll: none recorded")
			}
			if status.LastError != "" {
				fmt.Fprintf(out, "Last error: %s\n", status.LastError)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit raw JSON")
	return cmd
}
