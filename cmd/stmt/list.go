package main

import (
	"fmt"
	"io"

	"github.com/Veraticus/statement-flow/internal/cli"
	"github.com/Veraticus/statement-flow/internal/statement"
	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show a page of the statement",
		Long: `Fetch the statement from the provider and show one page of it, with credit and
debit totals for everything that matches the filters.

Examples:
  # Latest transactions across all accounts
  stmt list

  # March credits above R$ 100, largest first
  stmt list --from 2025-03-01 --to 2025-03-31 --type credit --min 100 --sort value

  # Look up a PIX transfer in the local cache
  stmt list --cached --search E18236120202503101200s0000000001`,
		RunE: runList,
	}

	addScopeFlags(cmd)
	addCriteriaFlags(cmd)
	addViewFlags(cmd)
	addFetchFlags(cmd)
	cmd.Flags().Bool("e2e", false, "show the end-to-end code column")
	cmd.Flags().Bool("no-summary", false, "hide the totals box")

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
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
	selectPage(cmd, e)

	showE2E, _ := cmd.Flags().GetBool("e2e")
	noSummary, _ := cmd.Flags().GetBool("no-summary")
	renderView(cmd.OutOrStdout(), e.session.View(), cli.TableOptions{
		Location:     e.fetchCfg.Location,
		ShowEndToEnd: showE2E,
	}, !noSummary)
	return nil
}

// renderView prints the current page and, optionally, the totals box.
func renderView(w io.Writer, v statement.View, opts cli.TableOptions, summary bool) {
	if len(v.Transactions) == 0 {
		fmt.Fprintln(w, cli.FormatInfo("No transactions match the current filters."))
	} else {
		cli.RenderStatementTable(w, v.Transactions, opts)
	}
	if summary {
		fmt.Fprintln(w, cli.RenderMetrics(v.Metrics, v.Pagination))
	} else {
		fmt.Fprintln(w, cli.FormatPagination(v.Pagination))
	}
}
