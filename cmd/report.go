package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"billing/internal/logger"
	"billing/internal/query"
	"billing/pkg/models"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Sales and tax report for a date range",
	Long: `Summarise invoices: count, total amount and total tax, plus the
sales and tax per calendar day.

Both ends of the date range are inclusive; --to covers the whole day.
Days are calendar days in REPORT_TIMEZONE (default: the local zone).`,
	Example: `  # Report for the first quarter
  billing report --from 2025-01-01 --to 2025-03-31

  # Paid invoices only, written to a file
  billing report --status PAID -o report.json`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	addFilterFlags(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("report")

	return withApp(cmd, log, func(ctx context.Context, a *app) error {
		criteria, err := criteriaFromFlags(cmd, a.location)
		if err != nil {
			return err
		}

		invoices, err := a.manager.ListInvoices(ctx)
		if err != nil {
			return handleError(err, log)
		}

		report := query.BuildReport(invoices, criteria, a.location)

		log.Info().
			Int("invoices", report.Summary.Count).
			Str("total_amount", report.Summary.TotalAmount.StringFixed(2)).
			Str("total_tax", report.Summary.TotalTax.StringFixed(2)).
			Msg("Report built")

		return writeOutput(cmd, report, log)
	})
}

// addFilterFlags registers the invoice filter flags shared by list, report
// and export commands.
func addFilterFlags(c *cobra.Command) {
	c.Flags().String("from", "", "First day to include (YYYY-MM-DD)")
	c.Flags().String("to", "", "Last day to include (YYYY-MM-DD)")
	c.Flags().String("number", "", "Exact invoice number")
	c.Flags().String("status", "", "Invoice status (PENDING or PAID)")
}

func criteriaFromFlags(cmd *cobra.Command, loc *time.Location) (query.Criteria, error) {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	number, _ := cmd.Flags().GetString("number")
	statusStr, _ := cmd.Flags().GetString("status")

	r, err := query.ParseDateRange(from, to, loc)
	if err != nil {
		return query.Criteria{}, fmt.Errorf("invalid date, expected YYYY-MM-DD: %w", err)
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return query.Criteria{}, fmt.Errorf("--to %s is before --from %s", to, from)
	}

	status := models.InvoiceStatus(strings.ToUpper(strings.TrimSpace(statusStr)))
	if status != "" && !status.Valid() {
		return query.Criteria{}, fmt.Errorf("invalid --status %q: expected PENDING or PAID", statusStr)
	}

	return query.Criteria{
		Range:         r,
		InvoiceNumber: strings.TrimSpace(number),
		Status:        status,
	}, nil
}
