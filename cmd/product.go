package cmd

import (
	"context"
	"fmt"

	"billing/internal/logger"
	"billing/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Manage the product catalog",
	Long: `Create, list, update and delete products.

Prices and tax rates are exact decimals. Editing a product never changes
invoices that were already issued; they keep the name, price and tax rate
the product had when the invoice was created.`,
}

var productListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all products",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("product")
		return withApp(cmd, log, func(ctx context.Context, a *app) error {
			products, err := a.catalog.ListProducts(ctx)
			if err != nil {
				return handleError(err, log)
			}
			return writeOutput(cmd, products, log)
		})
	},
}

var productShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("product")
		return withApp(cmd, log, func(ctx context.Context, a *app) error {
			p, err := a.catalog.GetProduct(ctx, args[0])
			if err != nil {
				return handleError(err, log)
			}
			return writeOutput(cmd, p, log)
		})
	},
}

var productCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a product",
	Example: `  # Product with 18% tax
  billing product create --name "Stapler" --price 249.50 --stock 40 --tax 18`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("product")

		p, err := productFromFlags(cmd)
		if err != nil {
			return err
		}

		return withApp(cmd, log, func(ctx context.Context, a *app) error {
			created, err := a.catalog.CreateProduct(ctx, p)
			if err != nil {
				return handleError(err, log)
			}
			return writeOutput(cmd, created, log)
		})
	},
}

var productUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Replace the details of a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("product")

		p, err := productFromFlags(cmd)
		if err != nil {
			return err
		}

		return withApp(cmd, log, func(ctx context.Context, a *app) error {
			updated, err := a.catalog.UpdateProduct(ctx, args[0], p)
			if err != nil {
				return handleError(err, log)
			}
			return writeOutput(cmd, updated, log)
		})
	},
}

var productDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("product")
		return withApp(cmd, log, func(ctx context.Context, a *app) error {
			if err := a.catalog.DeleteProduct(ctx, args[0]); err != nil {
				return handleError(err, log)
			}
			return writeOutput(cmd, map[string]any{"id": args[0], "deleted": true}, log)
		})
	},
}

func init() {
	rootCmd.AddCommand(productCmd)
	productCmd.AddCommand(productListCmd, productShowCmd, productCreateCmd, productUpdateCmd, productDeleteCmd)

	for _, c := range []*cobra.Command{productCreateCmd, productUpdateCmd} {
		c.Flags().String("name", "", "Product name (required)")
		c.Flags().String("price", "0", "Unit price")
		c.Flags().Int("stock", 0, "Stock quantity")
		c.Flags().String("tax", "0", "Tax rate in percent")
		_ = c.MarkFlagRequired("name")
	}
}

func productFromFlags(cmd *cobra.Command) (models.Product, error) {
	name, _ := cmd.Flags().GetString("name")
	priceStr, _ := cmd.Flags().GetString("price")
	stock, _ := cmd.Flags().GetInt("stock")
	taxStr, _ := cmd.Flags().GetString("tax")

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return models.Product{}, fmt.Errorf("invalid --price %q: %w", priceStr, err)
	}
	tax, err := decimal.NewFromString(taxStr)
	if err != nil {
		return models.Product{}, fmt.Errorf("invalid --tax %q: %w", taxStr, err)
	}

	return models.Product{
		Name:          name,
		UnitPrice:     price,
		StockQuantity: stock,
		TaxRate:       tax,
	}, nil
}
