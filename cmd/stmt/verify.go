package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/statement-flow/internal/cli"
	"github.com/Veraticus/statement-flow/internal/common"
	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/Veraticus/statement-flow/internal/provider"
	"github.com/spf13/cobra"
)

func verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <end-to-end>...",
		Short: "Check that PIX transfers exist by end-to-end code",
		Long: `Ask the provider whether each end-to-end code belongs to a settled transfer and
show what it returned. With --cached only the local cache is searched, across
every provider and account.

The command fails when any code is not found.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runVerify,
	}

	addScopeFlags(cmd)
	cmd.Flags().Bool("cached", false, "search the local cache instead of the provider")

	return cmd
}

func runVerify(cmd *cobra.Command, args []string) error {
	cached, _ := cmd.Flags().GetBool("cached")

	e, err := openEnv(cmd, envOptions{cached: cached})
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	opts := cli.TableOptions{Location: e.fetchCfg.Location, ShowEndToEnd: true}

	var found []model.Transaction
	missing := 0
	for _, code := range args {
		var matches []model.Transaction
		if e.client == nil {
			matches, err = e.store.FindByEndToEnd(ctx, code)
			if err != nil {
				return err
			}
		} else {
			res, err := e.client.VerifyEndToEnd(ctx, code)
			if err != nil {
				return fmt.Errorf("failed to verify %s: %w", code, err)
			}
			if res.Found && res.Record != nil {
				matches = append(matches, provider.Normalize(e.adapter, res.Record, time.Now()))
			}
		}

		if len(matches) == 0 {
			missing++
			fmt.Fprintln(out, cli.FormatError(fmt.Sprintf("%s not found", code)))
			continue
		}
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%s found", code)))
		found = append(found, matches...)
	}

	if len(found) > 0 {
		cli.RenderStatementTable(out, found, opts)
	}
	if missing > 0 {
		return common.NewUserError(fmt.Sprintf("%d of %d codes not found", missing, len(args)), common.ErrNotFound)
	}
	return nil
}
