package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/statement-flow/internal/common"
	"github.com/Veraticus/statement-flow/internal/config"
	"github.com/Veraticus/statement-flow/internal/tui"
	"github.com/Veraticus/statement-flow/internal/tui/themes"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func browseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the statement interactively",
		Long: `Open a full screen statement browser. The cached statement is shown first and
fetched from the provider when the cache is empty.

Keys: n/p page, s sort field, o sort order, t credit/debit, / search,
c clear filters, r fetch new, R reload, ? help, q quit.`,
		RunE: runBrowse,
	}

	addScopeFlags(cmd)
	addCriteriaFlags(cmd)
	cmd.Flags().Int("limit", 0, "visible transactions to fetch (default from config)")
	cmd.Flags().Int("page-size", 0, "rows per page (default from config)")
	cmd.Flags().Bool("cached", false, "use the local cache only, never call the provider")
	cmd.Flags().Bool("e2e", false, "start with the end-to-end code column shown")
	cmd.Flags().String("theme", "", fmt.Sprintf("color theme %v", themes.Names()))
	cmd.Flags().String("log-file", "", "write logs here while the browser is open")
	_ = viper.BindPFlag("tui.theme", cmd.Flags().Lookup("theme"))

	return cmd
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	// The browser owns the terminal; logs go to a file or nowhere.
	restore, err := redirectLogs(cmd)
	if err != nil {
		return err
	}
	defer restore()

	cached, _ := cmd.Flags().GetBool("cached")
	e, err := openEnv(cmd, envOptions{cached: cached})
	if err != nil {
		return err
	}
	defer e.Close()

	c, err := criteriaFromFlags(cmd, e.fetchCfg.Location)
	if err != nil {
		return err
	}
	if err := e.session.ApplyCriteria(c); err != nil {
		return common.NewUserError("invalid filters", err)
	}

	showE2E, _ := cmd.Flags().GetBool("e2e")
	title := fmt.Sprintf("%s statement", e.kind)
	if e.account.Name != "" {
		title += " · " + e.account.Name
	}

	return tui.Run(cmd.Context(), e.session,
		tui.WithTheme(themes.GetTheme(viper.GetString("tui.theme"))),
		tui.WithLocation(e.fetchCfg.Location),
		tui.WithTitle(title),
		tui.WithFetchOnStart(e.client != nil),
		tui.WithEndToEnd(showE2E),
	)
}

func redirectLogs(cmd *cobra.Command) (func(), error) {
	previous := slog.Default()
	var w io.Writer = io.Discard
	var file *os.File

	if path, _ := cmd.Flags().GetString("log-file"); path != "" {
		f, err := os.OpenFile(config.ExpandPath(path), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file, w = f, f
	}

	level, err := common.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		level = slog.LevelInfo
	}
	if err := common.SetupLogger(w, level, viper.GetString("logging.format")); err != nil {
		return nil, err
	}

	return func() {
		slog.SetDefault(previous)
		if file != nil {
			_ = file.Close()
		}
	}, nil
}
