package main

import (
	"fmt"

	"github.com/Veraticus/statement-flow/internal/cli"
	"github.com/Veraticus/statement-flow/internal/config"
	"github.com/Veraticus/statement-flow/internal/export"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered statement to CSV",
		Long: `Write every transaction matching the filters, in the chosen order, to a CSV file.
Use --out - to write to standard output.`,
		RunE: runExport,
	}

	addScopeFlags(cmd)
	addCriteriaFlags(cmd)
	addFetchFlags(cmd)
	cmd.Flags().String("sort", "date", "sort field: date, value or none")
	cmd.Flags().String("order", "desc", "sort order: asc, desc or none")
	cmd.Flags().StringP("out", "o", "", "output file, or - for stdout (required)")
	cmd.Flags().Bool("signed", false, "write debits as negative amounts")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	cached, _ := cmd.Flags().GetBool("cached")

	e, err := openEnv(cmd, envOptions{cached: cached, progress: "Fetching statement"})
	if err != nil {
		return err
	}
	defer e.Close()

	if err := applyView(cmd, e); err != nil {
		return err
	}
	if err := load(cmd, e); err != nil {
		return err
	}

	ts := e.session.Filtered()
	signed, _ := cmd.Flags().GetBool("signed")
	opts := export.Options{Location: e.fetchCfg.Location, Signed: signed}

	out, _ := cmd.Flags().GetString("out")
	if out == "-" {
		return export.WriteCSV(cmd.OutOrStdout(), ts, opts)
	}

	path := config.ExpandPath(out)
	if err := export.WriteCSVFile(path, ts, opts); err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess(fmt.Sprintf("Exported %d transactions to %s", len(ts), path)))
	return nil
}
