package main

import (
	"errors"
	"fmt"

	"github.com/Veraticus/statement-flow/internal/bankapi"
	"github.com/Veraticus/statement-flow/internal/cli"
	"github.com/Veraticus/statement-flow/internal/common"
	"github.com/spf13/cobra"
)

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Ask the provider backend to resynchronize a date range",
		Long: `Request a backend resynchronization of the statement between two days. The
backend acknowledges the job and runs it asynchronously; run 'stmt refresh'
afterwards to pick up what it found.`,
		RunE: runSync,
	}

	addScopeFlags(cmd)
	cmd.Flags().String("from", "", "first day to resynchronize (required)")
	cmd.Flags().String("to", "", "last day to resynchronize (required)")
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	if e.client == nil {
		return common.NewUserError(fmt.Sprintf("%s has no backend to synchronize", e.kind), errNoRemote)
	}

	loc := e.fetchCfg.Location
	fromFlag, _ := cmd.Flags().GetString("from")
	toFlag, _ := cmd.Flags().GetString("to")
	from, err := parseDate(fromFlag, loc)
	if err != nil {
		return common.NewUserError("--from", err)
	}
	to, err := parseDate(toFlag, loc)
	if err != nil {
		return common.NewUserError("--to", err)
	}
	if to.Before(from) {
		return common.NewUserError("--to is before --from", errors.New("empty date range"))
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		question := fmt.Sprintf("Resynchronize %s from %s to %s?",
			e.kind, from.Format("02/01/2006"), to.Format("02/01/2006"))
		ok, err := cli.NewNonBlockingReader(cmd.InOrStdin()).Confirm(ctx, out, question)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, cli.FormatInfo("Sync cancelled."))
			return nil
		}
	}

	ack, err := e.client.TriggerSync(ctx, bankapi.SyncRequest{From: from, To: to, AccountID: e.account.ID})
	if err != nil {
		return fmt.Errorf("failed to request sync: %w", err)
	}
	if !ack.Accepted {
		return common.NewUserError("sync rejected by the provider: "+ack.Message, common.ErrRemoteFailure)
	}

	msg := "Sync requested"
	if ack.JobID != "" {
		msg += " (job " + ack.JobID + ")"
	}
	fmt.Fprintln(out, cli.FormatSuccess(msg))
	return nil
}
