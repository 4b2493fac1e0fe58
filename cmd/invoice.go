package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"billing/internal/logger"
	"billing/internal/query"
	"billing/pkg/models"
	"github.com/spf13/cobra"
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Create, list and settle invoices",
	Long: `Create invoices from the product catalog and mark them as paid.

An invoice copies the customer and every selected product when it is
created, prices each line as unit price x quantity plus tax, and starts
in the PENDING state. The only later change is PENDING -> PAID.`,
}

var invoiceCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an invoice for a customer",
	Example: `  # Two of product 1 and one of product 3 for customer 2
  billing invoice create --customer 2 --item 1:2 --item 3:1

  # Save the created invoice to a file
  billing invoice create --customer 1 --item 2:5 -o invoice.json`,
	Args: cobra.NoArgs,
	RunE: runInvoiceCreate,
}

var invoiceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices, optionally filtered",
	Example: `  # Invoices created in March 2025
  billing invoice list --from 2025-03-01 --to 2025-03-31

  # Only unpaid invoices
  billing invoice list --status PENDING`,
	Args: cobra.NoArgs,
	RunE: runInvoiceList,
}

var invoiceShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("invoice")
		return withApp(cmd, log, func(ctx context.Context, a *app) error {
			inv, err := a.manager.GetInvoice(ctx, args[0])
			if err != nil {
				return handleError(err, log)
			}
			return writeOutput(cmd, inv, log)
		})
	},
}

var invoicePayCmd = &cobra.Command{
	Use:   "pay [id]",
	Short: "Mark an invoice as paid",
	Long: `Mark an invoice as paid. Paying an invoice that is already paid
succeeds and leaves it unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("invoice")
		return withApp(cmd, log, func(ctx context.Context, a *app) error {
			inv, err := a.manager.MarkPaid(ctx, args[0])
			if err != nil {
				return handleError(err, log)
			}
			return writeOutput(cmd, inv, log)
		})
	},
}

func init() {
	rootCmd.AddCommand(invoiceCmd)
	invoiceCmd.AddCommand(invoiceCreateCmd, invoiceListCmd, invoiceShowCmd, invoicePayCmd)

	invoiceCreateCmd.Flags().String("customer", "", "Customer id (required)")
	invoiceCreateCmd.Flags().StringArray("item", nil, "Line item as PRODUCT_ID:QUANTITY (repeatable)")
	_ = invoiceCreateCmd.MarkFlagRequired("customer")

	addFilterFlags(invoiceListCmd)
}

func runInvoiceCreate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")

	customerID, _ := cmd.Flags().GetString("customer")
	rawItems, _ := cmd.Flags().GetStringArray("item")

	selections, err := parseItems(rawItems)
	if err != nil {
		return err
	}

	log.Info().
		Str("customer_id", customerID).
		Int("items", len(selections)).
		Msg("Creating invoice")

	return withApp(cmd, log, func(ctx context.Context, a *app) error {
		inv, err := a.manager.CreateInvoice(ctx, customerID, selections)
		if err != nil {
			return handleError(err, log)
		}
		return writeOutput(cmd, inv, log)
	})
}

func runInvoiceList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")

	return withApp(cmd, log, func(ctx context.Context, a *app) error {
		criteria, err := criteriaFromFlags(cmd, a.location)
		if err != nil {
			return err
		}

		invoices, err := a.manager.ListInvoices(ctx)
		if err != nil {
			return handleError(err, log)
		}

		selected := query.Apply(invoices, criteria)
		log.Debug().
			Int("total", len(invoices)).
			Int("selected", len(selected)).
			Msg("Invoices filtered")

		return writeOutput(cmd, selected, log)
	})
}

// parseItems parses PRODUCT_ID:QUANTITY pairs. Quantities must be whole
// numbers; range checks are left to the invoice manager.
func parseItems(raw []string) ([]models.LineSelection, error) {
	selections := make([]models.LineSelection, 0, len(raw))
	for _, item := range raw {
		id, qtyStr, ok := strings.Cut(item, ":")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid --item %q: expected PRODUCT_ID:QUANTITY", item)
		}

		qty, err := strconv.Atoi(strings.TrimSpace(qtyStr))
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in --item %q: %w", item, err)
		}

		selections = append(selections, models.LineSelection{ProductID: id, Quantity: qty})
	}
	return selections, nil
}
