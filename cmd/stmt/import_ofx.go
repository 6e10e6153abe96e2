package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/statement-flow/internal/cli"
	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/Veraticus/statement-flow/internal/ofx"
	"github.com/Veraticus/statement-flow/internal/provider"
	"github.com/spf13/cobra"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import a statement from OFX/QFX files",
		Long: `Import transactions from OFX or QFX files exported from internet banking into
the local cache. Imported transactions are browsed with --provider ofx.

Examples:
  # Import a single file
  stmt import-ofx ~/Downloads/extrato_2024_01.ofx

  # Import every file in a directory
  stmt import-ofx ~/Downloads/extratos/*.ofx

  # Preview without saving
  stmt import-ofx --dry-run ~/Downloads/extrato.ofx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().String("account", "", "account id, name or CPF/CNPJ the files belong to")
	cmd.Flags().BoolP("dry-run", "d", false, "preview the import without saving")

	return cmd
}

// expandFiles resolves glob patterns, keeping literal paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}
	return files, nil
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	files, err := expandFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no files found to import")
	}

	e, err := openEnv(cmd, envOptions{kind: model.ProviderOFX, cached: true})
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	parser := ofx.NewParser()

	var records []model.RawRecord
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			slog.Error("Failed to open file", "file", path, "error", err)
			continue
		}
		parsed, err := parser.ParseFile(ctx, f)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}
		if len(parsed) == 0 {
			slog.Warn("No transactions found in file", "file", filepath.Base(path))
			continue
		}
		slog.Info("Parsed file", "file", filepath.Base(path), "transactions", len(parsed))
		records = append(records, parsed...)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, cli.FormatWarning("No transactions found in any file"))
		return nil
	}

	if dryRun {
		ts := provider.NormalizeAll(e.adapter, records, time.Now())
		cli.RenderStatementTable(out, ts, cli.TableOptions{Location: e.fetchCfg.Location})
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d transactions from %d files, nothing saved", len(ts), len(files))))
		return nil
	}

	before, err := e.session.Restore(ctx)
	if err != nil {
		return err
	}
	added, err := e.session.MergeRecords(ctx, nil, records)
	if err != nil {
		return fmt.Errorf("failed to save imported transactions: %w", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d new transactions into %s (%d already cached)",
		added, e.session.Scope(), before)))
	return nil
}
