package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/statement-flow/internal/bankapi"
	"github.com/Veraticus/statement-flow/internal/cli"
	"github.com/Veraticus/statement-flow/internal/common"
	"github.com/Veraticus/statement-flow/internal/config"
	"github.com/Veraticus/statement-flow/internal/filter"
	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/Veraticus/statement-flow/internal/provider"
	"github.com/Veraticus/statement-flow/internal/statement"
	"github.com/Veraticus/statement-flow/internal/storage"
	"github.com/spf13/cobra"
)

// errNoRemote is returned by the source of cache-only sessions.
var errNoRemote = errors.New("no provider API in use: statements come from the local cache")

var cacheOnlySource = statement.SourceFunc(func(context.Context, filter.Query) (*statement.Page, error) {
	return nil, errNoRemote
})

// initStorage opens and migrates the statement cache.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath, err := config.DatabasePath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// env is everything a statement command works with.
type env struct {
	store    *storage.SQLiteStorage
	client   *bankapi.Client
	session  *statement.Session
	progress *cli.FetchProgress
	adapter  *provider.Adapter
	account  model.Account
	fetchCfg config.FetchConfig
	kind     model.ProviderKind
	limit    int
}

type envOptions struct {
	// progress, when set, describes the progress bar shown while fetching.
	progress string
	// kind forces a provider instead of reading --provider.
	kind   model.ProviderKind
	cached bool
}

// openEnv resolves provider, account and settings from flags and config, and
// builds a session over the provider API or, when cached, the cache alone.
func openEnv(cmd *cobra.Command, opts envOptions) (*env, error) {
	kind := opts.kind
	if kind == "" {
		var err error
		kind, err = providerFromFlags(cmd)
		if err != nil {
			return nil, err
		}
	}

	adapter, err := provider.ForKind(kind)
	if err != nil {
		return nil, err
	}
	fetchCfg, err := config.LoadFetchConfig()
	if err != nil {
		return nil, err
	}
	noise, err := config.LoadSuppressionConfig()
	if err != nil {
		return nil, err
	}
	accounts, err := config.LoadAccounts(kind)
	if err != nil {
		return nil, err
	}
	ref, _ := cmd.Flags().GetString("account")
	account, err := config.FindAccount(accounts, ref)
	if err != nil {
		return nil, common.NewUserError("unknown account", err)
	}

	e := &env{kind: kind, adapter: adapter, account: account, fetchCfg: fetchCfg}

	var source statement.Source = cacheOnlySource
	if !opts.cached && kind != model.ProviderOFX {
		pcfg, err := config.LoadProviderConfig(kind)
		if err != nil {
			return nil, common.NewUserError(fmt.Sprintf("%s API is not configured", kind), err)
		}
		client, err := bankapi.NewClient(*pcfg)
		if err != nil {
			return nil, err
		}
		e.client = client
		source = client
	}

	e.limit = fetchCfg.Limit
	if n, _ := cmd.Flags().GetInt("limit"); n > 0 {
		e.limit = n
	}
	pageSize := fetchCfg.ViewPageSize
	if n, _ := cmd.Flags().GetInt("page-size"); n > 0 {
		pageSize = n
	}

	if opts.progress != "" && e.client != nil {
		e.progress = newProgress(cmd, e.limit, opts.progress)
	}

	e.store, err = initStorage(cmd.Context())
	if err != nil {
		return nil, err
	}

	e.session, err = statement.NewSession(statement.SessionConfig{
		Source:        source,
		Adapter:       adapter,
		Store:         e.store,
		Progress:      observe(e.progress),
		Noise:         noise,
		Account:       account,
		Limit:         e.limit,
		PageSize:      pageSize,
		FetchPageSize: fetchCfg.FetchPageSize,
		MaxIterations: fetchCfg.MaxIterations,
	})
	if err != nil {
		_ = e.store.Close()
		return nil, err
	}
	return e, nil
}

// Close releases the cache.
func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		slog.Warn("Failed to close statement cache", "error", err)
	}
}

func providerFromFlags(cmd *cobra.Command) (model.ProviderKind, error) {
	name, _ := cmd.Flags().GetString("provider")
	if name == "" {
		return config.DefaultProvider()
	}
	kind, err := model.ParseProviderKind(name)
	if err != nil {
		return "", common.NewUserError("--provider", err)
	}
	return kind, nil
}

// applyView installs filter and sort flags on the session.
func applyView(cmd *cobra.Command, e *env) error {
	c, err := criteriaFromFlags(cmd, e.fetchCfg.Location)
	if err != nil {
		return err
	}
	if err := e.session.ApplyCriteria(c); err != nil {
		return common.NewUserError("invalid filters", err)
	}

	by, order, err := sortFromFlags(cmd)
	if err != nil {
		return err
	}
	e.session.SetSort(by, order)
	return nil
}

// selectPage moves to --page once the collection is loaded.
func selectPage(cmd *cobra.Command, e *env) {
	if page, _ := cmd.Flags().GetInt("page"); page > 1 {
		e.session.SetPage(page)
	}
}

// load fills the session from the cache for cache-only sessions, or from the
// provider with a progress bar and interrupt handler active.
func load(cmd *cobra.Command, e *env) error {
	ctx := cmd.Context()
	if e.client == nil {
		n, err := e.session.Restore(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning(
				fmt.Sprintf("No cached transactions for %s. Run 'stmt fetch' first.", e.session.Scope())))
		}
		return nil
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, stop := handler.HandleInterrupts(ctx, "stmt "+cmd.Name())
	defer stop()

	res, err := e.session.Reload(ctx)
	if e.progress != nil {
		e.progress.Finish()
	}
	if err != nil {
		if handler.WasInterrupted() {
			return common.NewUserError("fetch interrupted", context.Canceled)
		}
		return fetchError(err)
	}
	reportFetch(cmd.ErrOrStderr(), res, len(res.Transactions), "Fetched")
	return nil
}

// fetchError turns a fetch failure into a message naming the failing page.
func fetchError(err error) error {
	var fe *statement.FetchError
	if errors.As(err, &fe) {
		msg := fmt.Sprintf("provider request %d (offset %d) failed", fe.Call, fe.Offset)
		switch {
		case errors.Is(err, common.ErrUnauthorized):
			msg += ": check the API key"
		case errors.Is(err, common.ErrMaxRetries):
			msg += " after retries"
		}
		return common.NewUserError(msg, err)
	}
	return err
}

func reportFetch(w io.Writer, res *statement.Result, count int, verb string) {
	msg := fmt.Sprintf("%s %d transactions in %d calls", verb, count, res.Calls)
	if res.Suppressed > 0 {
		msg += fmt.Sprintf(" (%d hidden)", res.Suppressed)
	}
	fmt.Fprintln(w, cli.FormatSuccess(msg))
	if res.GuardTriggered {
		fmt.Fprintln(w, cli.FormatWarning(
			fmt.Sprintf("Stopped after %d calls; more transactions are available. Raise fetch.max_iterations or use --limit.", res.Calls)))
	}
}

// newProgress returns a fetch progress bar unless quiet.
func newProgress(cmd *cobra.Command, limit int, description string) *cli.FetchProgress {
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		return nil
	}
	return cli.NewFetchProgress(cmd.ErrOrStderr(), limit, description)
}

// observe adapts an optional progress bar to the session hook.
func observe(p *cli.FetchProgress) statement.ProgressFunc {
	if p == nil {
		return nil
	}
	return p.Observe
}
