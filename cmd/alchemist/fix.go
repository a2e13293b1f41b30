package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mahi3005/data-alchemist/pkg/cli"
	"github.com/Mahi3005/data-alchemist/pkg/dataset"
	"github.com/Mahi3005/data-alchemist/pkg/engine"
	"github.com/Mahi3005/data-alchemist/pkg/ingest"
)

// maxFixPasses bounds repeated fix rounds; a fix can expose another fixable
// diagnostic in the same cell.
const maxFixPasses = 5

type fixOptions struct {
	entity string
	input  string
	output string
	format string
}

var fixFlags fixOptions

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Apply every available auto-fix to an entity file",
	Long: `Load one entity file, apply every automatic fix and write the result.

Fixes are local to a row:
  - PriorityLevel and QualificationLevel are clamped into their ranges
  - a text AvailableSlots cell is rewritten as an integer array
  - plain text in AttributesJSON is wrapped as {"value": ...}

Diagnostics without a fix are left for manual editing and reported on
stderr.

Without --output the rows are written to stdout in --format.

Examples:
  # Fix in place as CSV
  alchemist fix --entity clients --input clients.csv --output clients.csv

  # Print fixed tasks as YAML
  alchemist fix --entity tasks --input tasks.xlsx --format yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv(cmd)
		if err != nil {
			return err
		}
		return runFix(cmd.Context(), env, fixFlags)
	},
}

func init() {
	rootCmd.AddCommand(fixCmd)

	fixCmd.Flags().StringVarP(&fixFlags.entity, "entity", "e", "", "entity type (clients, workers, tasks)")
	fixCmd.Flags().StringVarP(&fixFlags.input, "input", "i", "", "input file")
	fixCmd.Flags().StringVarP(&fixFlags.output, "output", "o", "", "output file (format from extension)")
	fixCmd.Flags().StringVarP(&fixFlags.format, "format", "f", "json", "stdout format when --output is not set (json, yaml, csv)")
	_ = fixCmd.MarkFlagRequired("entity")
	_ = fixCmd.MarkFlagRequired("input")
	_ = fixCmd.RegisterFlagCompletionFunc("entity", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, len(dataset.EntityTypes))
		for i, entity := range dataset.EntityTypes {
			names[i] = string(entity)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
}

func runFix(ctx context.Context, env *appEnv, opts fixOptions) error {
	entity, err := dataset.ParseEntityType(opts.entity)
	if err != nil {
		return cli.NewConfigError("entity", err.Error())
	}

	var exporter ingest.Exporter
	if opts.output == "" {
		format, err := ingest.ParseFormat(opts.format)
		if err != nil {
			return cli.NewConfigError("format", err.Error())
		}
		if format == ingest.FormatXLSX {
			return cli.NewConfigError("format", "xlsx needs --output")
		}
		if exporter, err = ingest.NewExporter(format); err != nil {
			return err
		}
	} else if _, err := ingest.DetectFormat(opts.output); err != nil {
		return cli.NewConfigError("output", err.Error())
	}

	rows, err := ingest.LoadFile(opts.input, env.ingestOptions())
	if err != nil {
		return err
	}

	session := engine.NewSession(env.newEngine(nil))
	report, err := session.Load(ctx, entity, rows)
	if err != nil {
		return err
	}
	before := report.Summary

	applied := 0
	for pass := 0; pass < maxFixPasses; pass++ {
		var n int
		report, n, err = session.ApplyAllFixes(ctx, entity)
		if err != nil {
			return fmt.Errorf("failed to apply fixes: %w", err)
		}
		applied += n
		if n == 0 {
			break
		}
	}
	env.logger.Debug("fixes applied", "entity", entity, "applied", applied)

	fixed := session.Rows(entity)
	if opts.output != "" {
		if err := ingest.WriteFile(ctx, opts.output, entity, fixed); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.output, err)
		}
	} else if err := exporter.Export(ctx, entity, fixed, env.stdout); err != nil {
		return fmt.Errorf("failed to write fixed rows: %w", err)
	}

	fmt.Fprintf(env.stderr, "%s: applied %d fixes (%d errors, %d warnings before).\n",
		entity, applied, before.Errors, before.Warnings)
	if report.Summary.Errors+report.Summary.Warnings > 0 {
		fmt.Fprintf(env.stderr, "%d errors and %d warnings need manual edits:\n", report.Summary.Errors, report.Summary.Warnings)
		return cli.NewFormatter(cli.FormatText).Report(env.stderr, report)
	}
	return nil
}
