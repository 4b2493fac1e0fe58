package cmd

import (
	"context"

	"billing/internal/logger"
	"billing/internal/query"
	"billing/pkg/models"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Overview of products, customers, sales and recent invoices",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("dashboard")

	return withApp(cmd, log, func(ctx context.Context, a *app) error {
		var (
			products  []models.Product
			customers []models.Customer
			invoices  []models.Invoice
		)

		// The three collections are independent; load them side by side.
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			products, err = a.catalog.ListProducts(gctx)
			return err
		})
		g.Go(func() (err error) {
			customers, err = a.catalog.ListCustomers(gctx)
			return err
		})
		g.Go(func() (err error) {
			invoices, err = a.manager.ListInvoices(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return handleError(err, log)
		}

		dashboard := query.BuildDashboard(products, customers, invoices, a.location)

		log.Info().
			Int("products", dashboard.TotalProducts).
			Int("customers", dashboard.TotalCustomers).
			Int("invoices", dashboard.TotalInvoices).
			Str("total_sales", dashboard.TotalSales.StringFixed(2)).
			Msg("Dashboard built")

		return writeOutput(cmd, dashboard, log)
	})
}
