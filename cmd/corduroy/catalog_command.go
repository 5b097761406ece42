package main

import (
	"fmt"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	var search string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the OpenStreetMap trail catalog",
		Long: "Builds the trail catalog from the local feature cache (querying " +
			"Overpass when the cache is stale) and lists every mapped way.",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := ctx.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}

			entries := catalog.Entries()
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				if search != "" && !fuzzy.MatchNormalizedFold(search, entry.Name) {
					continue
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", entry.ID),
					entry.Name,
					entry.Reference,
					entry.Difficulty,
					string(entry.Category),
				})
			}

			out := cmd.OutOrStdout()
			if asJSON {
				type entryJSON struct {
					ID         int64  `json:"id"`
					Name       string `json:"name"`
					Reference  string `json:"reference,omitempty"`
					Difficulty string `json:"difficulty,omitempty"`
					Category   string `json:"category"`
				}
				payload := make([]entryJSON, 0, len(rows))
				for _, entry := range entries {
					if search != "" && !fuzzy.MatchNormalizedFold(search, entry.Name) {
						continue
					}
					payload = append(payload, entryJSON{
						ID:         entry.ID,
						Name:       entry.Name,
						Reference:  entry.Reference,
						Difficulty: entry.Difficulty,
						Category:   string(entry.Category),
					})
				}
				return writeJSON(out, payload)
			}

			fmt.Fprintf(out, "%d trails in catalog", catalog.Len())
			if search != "" {
				fmt.Fprintf(out, " (%d matching %q)", len(rows), search)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable(
				[]string{"Way ID", "Name", "Ref", "Difficulty", "Category"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Fuzzy-filter catalog entries by name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit raw JSON")
	return cmd
}
