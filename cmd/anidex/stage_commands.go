package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"anidex/internal/pipeline"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var maxPages int

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the AniList catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := ctx.newRunner()
			if err != nil {
				return err
			}
			summary, err := runner.Fetch(cmd.Context(), maxPages)
			if err != nil {
				return err
			}
			printSummaryTable(cmd, "Fetch",
				[][]string{{"Items", strconv.Itoa(summary.Items)}})
			return nil
		},
	}
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "Limit the number of catalog pages fetched (0 = all)")
	return cmd
}

func newNormalizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize",
		Short: "Compute normalized title sets for the raw catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := ctx.newRunner()
			if err != nil {
				return err
			}
			summary, err := runner.Normalize(cmd.Context())
			if err != nil {
				return err
			}
			printSummaryTable(cmd, "Normalize",
				[][]string{{"Items", strconv.Itoa(summary.Items)}})
			return nil
		},
	}
}

func newMatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "match",
		Short: "Match normalized titles against TMDB",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := ctx.newRunner()
			if err != nil {
				return err
			}
			summary, err := runner.Match(cmd.Context())
			if err != nil {
				return err
			}
			printSummaryTable(cmd, "Match", matchRows(summary))
			return nil
		},
	}
}

func newEnrichCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "enrich",
		Short: "Attach TMDB detail data to matched items",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := ctx.newRunner()
			if err != nil {
				return err
			}
			summary, err := runner.Enrich(cmd.Context())
			if err != nil {
				return err
			}
			printSummaryTable(cmd, "Enrich", [][]string{
				{"Enriched", strconv.Itoa(summary.Enriched)},
				{"Cache hits", strconv.Itoa(summary.CacheHits)},
				{"Failed", strconv.Itoa(summary.Failed)},
				{"Skipped", strconv.Itoa(summary.Skipped)},
			})
			return nil
		},
	}
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Validate and write the published datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := ctx.newRunner()
			if err != nil {
				return err
			}
			summary, err := runner.Export(cmd.Context())
			if err != nil {
				return err
			}
			printSummaryTable(cmd, "Export", [][]string{
				{"Enriched", strconv.Itoa(summary.Enriched)},
				{"No TMDB", strconv.Itoa(summary.NoTMDB)},
				{"Not matched", strconv.Itoa(summary.NotMatched)},
			})
			return nil
		},
	}
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var maxPages int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: fetch, normalize, match, enrich, export",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := ctx.newRunner()
			if err != nil {
				return err
			}
			summary, err := runner.Run(cmd.Context(), maxPages)
			if err != nil {
				return err
			}
			rows := [][]string{
				{"Fetched", strconv.Itoa(summary.Fetch.Items)},
				{"Normalized", strconv.Itoa(summary.Normalize.Items)},
			}
			rows = append(rows, matchRows(summary.Match)...)
			rows = append(rows,
				[]string{"Enriched", strconv.Itoa(summary.Enrich.Enriched)},
				[]string{"Exported", strconv.Itoa(summary.Export.Enriched)})
			printSummaryTable(cmd, "Pipeline run", rows)
			fmt.Fprintf(cmd.OutOrStdout(), "Run ID: %s\n", runner.RunID())
			return nil
		},
	}
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "Limit the number of catalog pages fetched (0 = all)")
	return cmd
}

func matchRows(summary pipeline.MatchSummary) [][]string {
	return [][]string{
		{"Matched", strconv.Itoa(summary.Matched)},
		{"Not found", strconv.Itoa(summary.NotFound)},
		{"Not matched", strconv.Itoa(summary.NotMatched)},
		{"Skipped", strconv.Itoa(summary.Skipped)},
	}
}
