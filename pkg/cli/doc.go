/*
Package cli holds the helpers shared by the alchemist commands: output
formatting, the --fail-on gate, typed command errors and signal handling.

Output Formatting:

Reports and run history render as an aligned text table, JSON or CSV:

	formatter := cli.NewFormatter(cli.FormatText)
	if err := formatter.Report(os.Stdout, report); err != nil {
		return err
	}

Exit Status:

	failOn, _ := cli.ParseFailOn("warning")
	if err := failOn.Check(report); err != nil {
		return err // wraps cli.ErrValidationFailed
	}

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
