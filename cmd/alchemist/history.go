package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mahi3005/data-alchemist/pkg/cli"
	"github.com/Mahi3005/data-alchemist/pkg/history"
)

type historyOptions struct {
	limit         int
	offset        int
	blocked       bool
	since         time.Duration
	format        string
	retentionDays int
	maxRuns       int
}

var historyFlags historyOptions

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded validation runs",
	Long: `List, show, delete and prune recorded validation runs.

Runs are recorded by "alchemist validate" (unless --no-record is given) and
by the HTTP API. The store is configured in the history section.

Examples:
  # Runs of the last day that could not proceed
  alchemist history list --since 24h --blocked

  # Full diagnostics of one run as JSON
  alchemist history show 1b4e28ba-2fa1-11d2-883f-0016d3cca427 --format json

  # Keep only the newest 100 runs
  alchemist history prune --max-runs 100`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv(cmd)
		if err != nil {
			return err
		}
		return runHistoryList(cmd.Context(), env, historyFlags)
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its diagnostics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv(cmd)
		if err != nil {
			return err
		}
		return runHistoryShow(cmd.Context(), env, historyFlags, args[0])
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv(cmd)
		if err != nil {
			return err
		}
		return runHistoryDelete(cmd.Context(), env, args[0])
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy now",
	Long: `Delete runs older than the retention period, then trim the store to the
maximum run count. Flags override the history section for this invocation.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv(cmd)
		if err != nil {
			return err
		}
		opts := historyFlags
		if !cmd.Flags().Changed("retention-days") {
			opts.retentionDays = env.cfg.History.RetentionDays
		}
		if !cmd.Flags().Changed("max-runs") {
			opts.maxRuns = env.cfg.History.MaxRuns
		}
		return runHistoryPrune(cmd.Context(), env, opts)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd, historyPruneCmd)

	historyListCmd.Flags().IntVar(&historyFlags.limit, "limit", history.DefaultListLimit, "maximum runs to list")
	historyListCmd.Flags().IntVar(&historyFlags.offset, "offset", 0, "runs to skip")
	historyListCmd.Flags().BoolVar(&historyFlags.blocked, "blocked", false, "only runs that could not proceed")
	historyListCmd.Flags().DurationVar(&historyFlags.since, "since", 0, "only runs started within this duration (e.g. 24h)")

	for _, c := range []*cobra.Command{historyListCmd, historyShowCmd} {
		c.Flags().StringVarP(&historyFlags.format, "format", "f", "text", "output format (text, json, csv)")
	}

	historyPruneCmd.Flags().IntVar(&historyFlags.retentionDays, "retention-days", 0, "delete runs older than this many days (0 keeps all)")
	historyPruneCmd.Flags().IntVar(&historyFlags.maxRuns, "max-runs", 0, "keep at most this many runs (0 means unlimited)")
}

func runHistoryList(ctx context.Context, env *appEnv, opts historyOptions) error {
	format, err := cli.ParseOutputFormat(opts.format)
	if err != nil {
		return err
	}
	if opts.limit < 0 || opts.offset < 0 {
		return cli.NewConfigError("limit", "limit and offset must not be negative")
	}

	store, err := env.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	q := history.Query{
		BlockedOnly: opts.blocked,
		Limit:       opts.limit,
		Offset:      opts.offset,
	}
	if opts.since > 0 {
		q.Since = time.Now().Add(-opts.since)
	}

	runs, err := store.List(ctx, q)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).Runs(env.stdout, runs)
}

func runHistoryShow(ctx context.Context, env *appEnv, opts historyOptions, id string) error {
	format, err := cli.ParseOutputFormat(opts.format)
	if err != nil {
		return err
	}

	store, err := env.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Get(ctx, id)
	if err != nil {
		return cli.NewCommandError("history show", err)
	}
	return cli.NewFormatter(format).Run(env.stdout, run)
}

func runHistoryDelete(ctx context.Context, env *appEnv, id string) error {
	store, err := env.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(ctx, id); err != nil {
		return cli.NewCommandError("history delete", err)
	}
	fmt.Fprintf(env.stdout, "Deleted run %s\n", id)
	return nil
}

func runHistoryPrune(ctx context.Context, env *appEnv, opts historyOptions) error {
	store, err := env.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	pruner := history.NewPruner(store, history.RetentionConfig{
		RetentionDays: opts.retentionDays,
		MaxRuns:       opts.maxRuns,
	})
	deleted, err := pruner.Prune(ctx)
	if err != nil {
		return cli.NewCommandError("history prune", err)
	}
	fmt.Fprintf(env.stdout, "Pruned %d runs\n", deleted)
	return nil
}
