package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/markis/budget-importer/internal/config"
	"github.com/markis/budget-importer/internal/logging"
	"github.com/markis/budget-importer/internal/model"
	"github.com/markis/budget-importer/internal/paperless"
	"github.com/markis/budget-importer/internal/reconcile"
	"github.com/markis/budget-importer/internal/sheets"
	"github.com/markis/budget-importer/internal/simplefin"
)

// bankFeed fetches accounts with transactions from the aggregation API.
type bankFeed interface {
	FetchAccounts(ctx context.Context, startDate time.Time) ([]model.Account, error)
}

// documentStore fetches scanned receipts.
type documentStore interface {
	FetchReceipts(ctx context.Context, documentType string) ([]*model.Receipt, error)
}

// spreadsheet is the ledger of record: lookup rules in, rows out.
type spreadsheet interface {
	CategoryRules(ctx context.Context, sheetName string) (map[string]model.CategoryRule, error)
	ExistingIDs(ctx context.Context, sheetName string) (map[string]bool, error)
	Append(ctx context.Context, sheetName string, rows []model.SheetRow) error
	SortByDate(ctx context.Context, sheetName string) error
}

func newImportCommand() *cobra.Command {
	var configPath string
	var schedule string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Fetch transactions, match receipts, and append new rows to the sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if schedule != "" {
				return runOnSchedule(cmd.Context(), cfg, schedule, log)
			}

			err = runImport(cmd.Context(), cfg, log)
			if errors.Is(err, context.Canceled) {
				log.Info().Msg("interrupted, exiting")
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "budget.yaml", "path to configuration file")
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron expression to run the import repeatedly")

	return cmd
}

// runImport wires real clients and executes one pipeline run.
func runImport(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	sheet, err := sheets.NewClient(ctx, cfg.Google.Credentials, cfg.Google.SpreadsheetID, log)
	if err != nil {
		return err
	}

	feed := simplefin.NewClient(cfg.SimpleFin.AccessURL, cfg.SimpleFin.Username, cfg.SimpleFin.Password, log)
	docs := paperless.NewClient(cfg.Paperless.URL, cfg.Paperless.Token, log,
		paperless.WithFieldIDs(cfg.Paperless.TotalFieldID, cfg.Paperless.CategoryFieldID))

	return runPipeline(ctx, cfg, sheet, feed, docs, log)
}

// runPipeline is the fixed-order, fail-fast pipeline. Every fetch is fully
// materialized before the next step; the sheet append at the end is the only
// external mutation.
func runPipeline(
	ctx context.Context,
	cfg *config.Config,
	sheet spreadsheet,
	feed bankFeed,
	docs documentStore,
	log zerolog.Logger,
) error {
	rules, err := sheet.CategoryRules(ctx, cfg.Google.MappingSheet)
	if err != nil {
		return fmt.Errorf("fetching category rules: %w", err)
	}

	existingIDs, err := sheet.ExistingIDs(ctx, cfg.Google.SheetName)
	if err != nil {
		return fmt.Errorf("fetching recorded ids: %w", err)
	}

	receipts, err := docs.FetchReceipts(ctx, cfg.Paperless.DocumentType)
	if err != nil {
		return fmt.Errorf("fetching receipts: %w", err)
	}

	startDate := time.Now().UTC().AddDate(0, 0, -cfg.LookbackDays)
	accounts, err := feed.FetchAccounts(ctx, startDate)
	if err != nil {
		return fmt.Errorf("fetching transactions: %w", err)
	}

	txns := reconcile.AttachReceipts(accounts, receipts)
	reconcile.Categorize(txns, rules)
	rows := reconcile.NewRows(existingIDs, txns)

	if len(rows) == 0 {
		log.Info().Msg("no new transactions")
		return nil
	}

	if err := sheet.Append(ctx, cfg.Google.SheetName, rows); err != nil {
		return fmt.Errorf("appending rows: %w", err)
	}
	if err := sheet.SortByDate(ctx, cfg.Google.SheetName); err != nil {
		return fmt.Errorf("sorting sheet: %w", err)
	}

	log.Info().Int("rows", len(rows)).Msg("import complete")
	return nil
}

// runOnSchedule runs the import immediately and then on the given cron
// schedule until interrupted.
func runOnSchedule(ctx context.Context, cfg *config.Config, schedule string, log zerolog.Logger) error {
	run := func() {
		if err := runImport(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("import failed")
		}
	}

	c := cron.New()
	if err := c.AddFunc(schedule, run); err != nil {
		return fmt.Errorf("parsing schedule %q: %w", schedule, err)
	}

	run()
	c.Start()
	defer c.Stop()

	<-ctx.Done()
	log.Info().Msg("interrupted, exiting")
	return nil
}
