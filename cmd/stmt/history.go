package main

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/statement-flow/internal/cli"
	"github.com/Veraticus/statement-flow/internal/statement"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent statement fetches",
		RunE:  runHistory,
	}

	addScopeFlags(cmd)
	cmd.Flags().Bool("all", false, "show fetches for every provider and account")
	cmd.Flags().Int("limit", 20, "number of fetches to show")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd, envOptions{cached: true})
	if err != nil {
		return err
	}
	defer e.Close()

	scope := statement.Scope(e.kind, e.account)
	if all, _ := cmd.Flags().GetBool("all"); all {
		scope = ""
	}
	limit, _ := cmd.Flags().GetInt("limit")

	records, err := e.store.RecentFetches(cmd.Context(), scope, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, cli.FormatInfo("No fetches recorded yet."))
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"When", "Scope", "Mode", "Fetched", "Added", "Calls", "Hidden", "Guard"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, r := range records {
		guard := ""
		if r.GuardTriggered {
			guard = "stopped"
		}
		table.Append([]string{
			r.CreatedAt.In(e.fetchCfg.Location).Format("02/01/2006 15:04"),
			r.Scope,
			string(r.Mode),
			strconv.Itoa(r.Fetched),
			strconv.Itoa(r.Added),
			strconv.Itoa(r.Calls),
			strconv.Itoa(r.Suppressed),
			guard,
		})
	}
	table.Render()
	return nil
}
