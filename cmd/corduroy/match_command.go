package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"corduroy/internal/trail"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var difficulty string
	var reference string

	cmd := &cobra.Command{
		Use:   "match NAME",
		Short: "Resolve a trail name against the OSM catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := ctx.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			resolver, err := ctx.resolver()
			if err != nil {
				return err
			}

			record := trail.Record{
				Name:       args[0],
				Reference:  reference,
				Difficulty: difficulty,
			}
			result := resolver.Match(record, catalog)

			out := cmd.OutOrStdout()
			if result == nil {
				fmt.Fprintf(out, "No match for %q in %d catalog entries.\n", args[0], catalog.Len())
				fmt.Fprintf(out, "Normalized form: %q\n", resolver.Normalizer().Normalize(args[0]))
				return nil
			}

			entry := result.Entry
			fmt.Fprintf(out, "Matched %q -> %s\n", args[0], entry.Name)
			fmt.Fprintf(out, "  Tier:       %s\n", result.Tier)
			fmt.Fprintf(out, "  Confidence: %.3f\n", result.Confidence)
			fmt.Fprintf(out, "  Way:        %s\n", entry.WayURL())
			if entry.Reference != "" {
				fmt.Fprintf(out, "  Ref:        %s\n", entry.Reference)
			}
			if entry.Difficulty != "" {
				fmt.Fprintf(out, "  Difficulty: %s\n", entry.Difficulty)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&difficulty, "difficulty", "", "Difficulty label of the scraped trail")
	cmd.Flags().StringVar(&reference, "reference", "", "Trail number from the conditions page")
	return cmd
}
