package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"corduroy/internal/api"
)

func newTrailsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var area string
	var openOnly bool

	cmd := &cobra.Command{
		Use:   "trails",
		Short: "Show the latest scraped trail statuses",
		RunE: func(cmd *cobra.Command, args []string) error {
			var response api.TrailListResponse
			if err := ctx.fetchJSON(cmd.Context(), "/api/trails", &response); err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), response)
			}

			out := cmd.OutOrStdout()
			if response.Cycle == nil {
				fmt.Fprintln(out, "No poll cycle recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(response.Trails))
			for _, status := range response.Trails {
				if area != "" && !strings.EqualFold(area, status.Area) {
					continue
				}
				if openOnly && !isOpenStatus(status.DayStatus) {
					continue
				}
				way := ""
				if status.WayID != 0 {
					way = fmt.Sprintf("%d (%s)", status.WayID, status.MatchTier)
				}
				rows = append(rows, []string{
					status.Reference,
					status.Name,
					status.Area,
					status.Difficulty,
					colorizeStatus(out, status.DayStatus),
					status.NightStatus,
					way,
				})
			}

			fmt.Fprintf(out, "Cycle %s: %s/%s trails open\n",
				response.Cycle.ID, response.Cycle.TrailsOpen, response.Cycle.TrailsTotal)
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Trail", "Area", "Difficulty", "Day", "Night", "OSM Way"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit raw JSON")
	cmd.Flags().StringVar(&area, "area", "", "Only show trails in the given area")
	cmd.Flags().BoolVar(&openOnly, "open", false, "Only show open trails")
	return cmd
}

func isOpenStatus(status string) bool {
	switch status {
	case "Ouvert", "Ouverte", "Open":
		return true
	}
	return false
}
