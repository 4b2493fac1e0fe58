package models

import "github.com/shopspring/decimal"

// Collection names understood by the store.
const (
	CollectionProducts  = "products"
	CollectionCustomers = "customers"
	CollectionInvoices  = "invoices"
	CollectionUsers     = "users"
)

type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	StockQuantity int             `json:"stockQuantity"`
	TaxRate       decimal.Decimal `json:"taxRatePercent"`
}

type Customer struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	Phone                 string `json:"phone"`
	Email                 string `json:"email,omitempty"`
	Address               string `json:"address,omitempty"`
	TaxRegistrationNumber string `json:"taxRegistrationNumber,omitempty"` // GST/VAT number
}

// User is an operator account. Credentials are not part of the record.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
