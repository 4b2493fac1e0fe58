package billing

import (
	"strconv"
	"sync"
	"time"
)

// DefaultInvoicePrefix is prepended to every generated invoice number.
const DefaultInvoicePrefix = "INV-"

// NumberGenerator assigns human-readable invoice numbers of the form
// prefix + milliseconds since the epoch. Two invoices created in the same
// millisecond get consecutive values, so numbers are strictly increasing
// within a process.
type NumberGenerator struct {
	prefix string
	now    func() time.Time

	mu   sync.Mutex
	last int64
}

// NewNumberGenerator creates a generator with the given prefix. An empty
// prefix selects DefaultInvoicePrefix.
func NewNumberGenerator(prefix string) *NumberGenerator {
	if prefix == "" {
		prefix = DefaultInvoicePrefix
	}
	return &NumberGenerator{prefix: prefix, now: time.Now}
}

// Next returns the next invoice number.
func (g *NumberGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms

	return g.prefix + strconv.FormatInt(ms, 10)
}
