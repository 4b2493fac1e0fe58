package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the payment state of an invoice.
type InvoiceStatus string

const (
	StatusPending InvoiceStatus = "PENDING"
	StatusPaid    InvoiceStatus = "PAID"
)

// Valid reports whether s is one of the known statuses.
func (s InvoiceStatus) Valid() bool {
	return s == StatusPending || s == StatusPaid
}

// CanTransitionTo reports whether moving from s to next is allowed.
// PENDING -> PAID is the only transition; PAID is terminal.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	return s == StatusPending && next == StatusPaid
}

// LineSelection is a product picked for an invoice together with a quantity.
type LineSelection struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// LineItem is one invoiced product. Name, price and tax rate are copied from
// the product when the invoice is created and never change afterwards.
type LineItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productNameSnapshot"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPriceSnapshot"`
	TaxRate     decimal.Decimal `json:"taxRatePercentSnapshot"` // percent, e.g. 18 for 18%
}

type Invoice struct {
	// Core identifiers
	ID            string `json:"id"`
	InvoiceNumber string `json:"invoiceNumber"` // Human-readable, assigned once at creation

	// Customer as it was when the invoice was created
	Customer Customer `json:"customerSnapshot"`

	LineItems []LineItem `json:"lineItems"`

	// Amounts, derived from LineItems
	SubTotal   decimal.Decimal `json:"subTotal"`
	TaxTotal   decimal.Decimal `json:"taxTotal"`
	GrandTotal decimal.Decimal `json:"grandTotal"`

	Status    InvoiceStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

// IsPaid reports whether the invoice has been settled.
func (i *Invoice) IsPaid() bool {
	return i.Status == StatusPaid
}
