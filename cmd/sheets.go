package cmd

import (
	"context"
	"fmt"

	"billing/internal/importer"
	"billing/internal/logger"
	"billing/internal/query"
	"billing/internal/sheets"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var sheetsCmd = &cobra.Command{
	Use:   "sheets",
	Short: "Exchange data with Google Sheets",
	Long: `Export invoices to a Google Sheet and import products or customers
from one.

Required environment variables:
  GOOGLE_SHEET_URL - URL of the target spreadsheet
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string

The service account needs edit access to the spreadsheet.`,
}

var sheetsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Append invoices to a worksheet",
	Example: `  # Export March 2025 to the default worksheet
  billing sheets export --from 2025-03-01 --to 2025-03-31

  # Export paid invoices to a named worksheet
  billing sheets export --status PAID --worksheet Paid`,
	Args: cobra.NoArgs,
	RunE: runSheetsExport,
}

var sheetsImportCmd = &cobra.Command{
	Use:   "import [products|customers]",
	Short: "Create products or customers from a worksheet",
	Long: `Create catalog entries from a worksheet. The first row is a header.

  products:  Name | Unit price | Stock | Tax rate %
  customers: Name | Phone | Email | Address | Tax registration no.

Rows that fail validation are skipped and reported.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"products", "customers"},
	RunE:      runSheetsImport,
}

func init() {
	rootCmd.AddCommand(sheetsCmd)
	sheetsCmd.AddCommand(sheetsExportCmd, sheetsImportCmd)

	addFilterFlags(sheetsExportCmd)
	sheetsExportCmd.Flags().String("worksheet", "", "Worksheet name (default: GOOGLE_SHEET_WORKSHEET)")

	sheetsImportCmd.Flags().String("worksheet", "", "Worksheet to read (default: Products or Customers)")
}

func runSheetsExport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("sheets-export")

	return withApp(cmd, log, func(ctx context.Context, a *app) error {
		criteria, err := criteriaFromFlags(cmd, a.location)
		if err != nil {
			return err
		}

		svc, err := openSheets(ctx, a, log)
		if err != nil {
			return err
		}

		worksheet, _ := cmd.Flags().GetString("worksheet")
		if worksheet == "" {
			worksheet = a.cfg.GoogleSheetWorksheet
		}

		invoices, err := a.manager.ListInvoices(ctx)
		if err != nil {
			return handleError(err, log)
		}
		selected := query.Apply(invoices, criteria)

		if err := svc.ExportInvoices(ctx, selected, worksheet, a.location); err != nil {
			log.Error().Err(err).Str("worksheet", worksheet).Msg("Export failed")
			return fmt.Errorf("failed to export invoices: %w", err)
		}

		return writeOutput(cmd, map[string]any{
			"worksheet": worksheet,
			"exported":  len(selected),
			"summary":   query.Summarize(selected),
		}, log)
	})
}

func runSheetsImport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("sheets-import")

	kind := args[0]
	if kind != "products" && kind != "customers" {
		return fmt.Errorf("unknown import kind %q: expected products or customers", kind)
	}

	return withApp(cmd, log, func(ctx context.Context, a *app) error {
		svc, err := openSheets(ctx, a, log)
		if err != nil {
			return err
		}

		worksheet, _ := cmd.Flags().GetString("worksheet")
		imp := importer.New(svc, a.catalog)

		var res importer.Result
		switch kind {
		case "products":
			if worksheet == "" {
				worksheet = "Products"
			}
			res, err = imp.ImportProducts(ctx, worksheet)
		default:
			if worksheet == "" {
				worksheet = "Customers"
			}
			res, err = imp.ImportCustomers(ctx, worksheet)
		}
		if err != nil {
			return handleError(err, log)
		}

		return writeOutput(cmd, res, log)
	})
}

func openSheets(ctx context.Context, a *app, log zerolog.Logger) (*sheets.Service, error) {
	if err := a.cfg.RequireSheets(); err != nil {
		return nil, err
	}

	svc, err := sheets.NewSheetsService(ctx, a.cfg.GoogleSheetURL)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create Google Sheets service")
		return nil, fmt.Errorf("failed to connect to Google Sheets: %w", err)
	}
	return svc, nil
}
