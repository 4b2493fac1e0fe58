package store

import (
	"billing/pkg/models"
	"github.com/shopspring/decimal"
)

// DefaultSeeds returns the dataset written into a collection the first time
// it is read. Only the four named collections have seed data.
func DefaultSeeds() map[string][]Record {
	products := []models.Product{
		{ID: "1", Name: "Product A", UnitPrice: decimal.NewFromInt(100), StockQuantity: 50},
		{ID: "2", Name: "Product B", UnitPrice: decimal.NewFromInt(200), StockQuantity: 30},
		{ID: "3", Name: "Product C", UnitPrice: decimal.NewFromInt(150), StockQuantity: 20},
	}
	customers := []models.Customer{
		{ID: "1", Name: "John Doe", Email: "john@example.com", Phone: "1234567890"},
		{ID: "2", Name: "Jane Smith", Email: "jane@example.com", Phone: "0987654321"},
	}
	users := []models.User{
		{ID: "1", Name: "Admin User", Email: "admin@example.com", Role: "admin"},
	}

	return map[string][]Record{
		models.CollectionProducts:  mustNormalizeAll(products),
		models.CollectionCustomers: mustNormalizeAll(customers),
		models.CollectionInvoices:  {},
		models.CollectionUsers:     mustNormalizeAll(users),
	}
}

// mustNormalizeAll is only used on the static seed values above, which
// always marshal.
func mustNormalizeAll[T any](items []T) []Record {
	records := make([]Record, 0, len(items))
	for _, item := range items {
		record, err := Normalize(item)
		if err != nil {
			panic(err)
		}
		records = append(records, record)
	}
	return records
}
