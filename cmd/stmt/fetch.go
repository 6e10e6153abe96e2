package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/statement-flow/internal/cli"
	"github.com/Veraticus/statement-flow/internal/common"
	"github.com/spf13/cobra"
)

func fetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Reload the statement from the provider into the cache",
		Long: `Fetch pages from the provider until enough visible transactions are collected,
then replace the cached statement for the provider and account with the result.

Filters narrow what is requested from the provider. A filtered fetch shows its
totals but keeps the cached statement as it was.`,
		RunE: runFetch,
	}

	addScopeFlags(cmd)
	addCriteriaFlags(cmd)
	cmd.Flags().Int("limit", 0, "visible transactions to fetch (default from config)")
	cmd.Flags().BoolP("quiet", "q", false, "hide the fetch progress bar")

	return cmd
}

func runFetch(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd, envOptions{progress: "Fetching statement"})
	if err != nil {
		return err
	}
	defer e.Close()

	if e.client == nil {
		return common.NewUserError(fmt.Sprintf("%s statements cannot be fetched; use import-ofx", e.kind), errNoRemote)
	}

	c, err := criteriaFromFlags(cmd, e.fetchCfg.Location)
	if err != nil {
		return err
	}
	if err := e.session.ApplyCriteria(c); err != nil {
		return common.NewUserError("invalid filters", err)
	}
	if err := load(cmd, e); err != nil {
		return err
	}

	v := e.session.View()
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderMetrics(v.Metrics, v.Pagination))
	return nil
}

func refreshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Merge new transactions into the cached statement",
		Long: `Fetch the newest pages from the provider and add the transactions the cache
has not seen yet. Cached transactions are kept; nothing is fetched twice into
the collection.`,
		RunE: runRefresh,
	}

	addScopeFlags(cmd)
	cmd.Flags().Int("limit", 0, "visible transactions to fetch (default from config)")
	cmd.Flags().BoolP("quiet", "q", false, "hide the fetch progress bar")

	return cmd
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd, envOptions{progress: "Checking for new transactions"})
	if err != nil {
		return err
	}
	defer e.Close()

	if e.client == nil {
		return common.NewUserError(fmt.Sprintf("%s statements cannot be refreshed; use import-ofx", e.kind), errNoRemote)
	}

	ctx := cmd.Context()
	before, err := e.session.Restore(ctx)
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, stop := handler.HandleInterrupts(ctx, "stmt refresh")
	defer stop()

	res, added, err := e.session.Refresh(ctx)
	if e.progress != nil {
		e.progress.Finish()
	}
	if err != nil {
		if handler.WasInterrupted() {
			return common.NewUserError("refresh interrupted", context.Canceled)
		}
		return fetchError(err)
	}

	reportFetch(cmd.ErrOrStderr(), res, added, "Added")
	fmt.Fprintf(cmd.OutOrStdout(), "%d cached, %d new, %d total\n", before, added, len(e.session.Transactions()))
	return nil
}
