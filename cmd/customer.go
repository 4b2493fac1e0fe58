package cmd

import (
	"context"

	"billing/internal/logger"
	"billing/pkg/models"
	"github.com/spf13/cobra"
)

var customerCmd = &cobra.Command{
	Use:   "customer",
	Short: "Manage customers",
	Long: `Create, list, update and delete customers.

Name and phone are required. Invoices keep a copy of the customer as it
was when they were created.`,
}

var customerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all customers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("customer")
		return withApp(cmd, log, func(ctx context.Context, a *app) error {
			customers, err := a.catalog.ListCustomers(ctx)
			if err != nil {
				return handleError(err, log)
			}
			return writeOutput(cmd, customers, log)
		})
	},
}

var customerShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("customer")
		return withApp(cmd, log, func(ctx context.Context, a *app) error {
			c, err := a.catalog.GetCustomer(ctx, args[0])
			if err != nil {
				return handleError(err, log)
			}
			return writeOutput(cmd, c, log)
		})
	},
}

var customerCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a customer",
	Example: `  billing customer create --name "Asha Traders" --phone 9000000001 \
    --email accounts@asha.example --tax-reg 29ABCDE1234F1Z5`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("customer")
		return withApp(cmd, log, func(ctx context.Context, a *app) error {
			created, err := a.catalog.CreateCustomer(ctx, customerFromFlags(cmd))
			if err != nil {
				return handleError(err, log)
			}
			return writeOutput(cmd, created, log)
		})
	},
}

var customerUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Replace the details of a customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("customer")
		return withApp(cmd, log, func(ctx context.Context, a *app) error {
			updated, err := a.catalog.UpdateCustomer(ctx, args[0], customerFromFlags(cmd))
			if err != nil {
				return handleError(err, log)
			}
			return writeOutput(cmd, updated, log)
		})
	},
}

var customerDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("customer")
		return withApp(cmd, log, func(ctx context.Context, a *app) error {
			if err := a.catalog.DeleteCustomer(ctx, args[0]); err != nil {
				return handleError(err, log)
			}
			return writeOutput(cmd, map[string]any{"id": args[0], "deleted": true}, log)
		})
	},
}

var userListCmd = &cobra.Command{
	Use:   "users",
	Short: "List operator accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("user")
		return withApp(cmd, log, func(ctx context.Context, a *app) error {
			users, err := a.catalog.ListUsers(ctx)
			if err != nil {
				return handleError(err, log)
			}
			return writeOutput(cmd, users, log)
		})
	},
}

func init() {
	rootCmd.AddCommand(customerCmd, userListCmd)
	customerCmd.AddCommand(customerListCmd, customerShowCmd, customerCreateCmd, customerUpdateCmd, customerDeleteCmd)

	for _, c := range []*cobra.Command{customerCreateCmd, customerUpdateCmd} {
		c.Flags().String("name", "", "Customer name (required)")
		c.Flags().String("phone", "", "Phone number (required)")
		c.Flags().String("email", "", "Email address")
		c.Flags().String("address", "", "Postal address")
		c.Flags().String("tax-reg", "", "Tax registration number (GST/VAT)")
		_ = c.MarkFlagRequired("name")
		_ = c.MarkFlagRequired("phone")
	}
}

func customerFromFlags(cmd *cobra.Command) models.Customer {
	name, _ := cmd.Flags().GetString("name")
	phone, _ := cmd.Flags().GetString("phone")
	email, _ := cmd.Flags().GetString("email")
	address, _ := cmd.Flags().GetString("address")
	taxReg, _ := cmd.Flags().GetString("tax-reg")

	return models.Customer{
		Name:                  name,
		Phone:                 phone,
		Email:                 email,
		Address:               address,
		TaxRegistrationNumber: taxReg,
	}
}
