// Package parser extracts invoice items and delayed-order records from the
// text layer of vendor invoice PDFs.
package parser

import (
	"github.com/shopspring/decimal"
)

// InvoiceItem is one invoiced line of the document.
type InvoiceItem struct {
	Position      string              `json:"pos"`
	ArticleNumber string              `json:"article_number"`
	Description   string              `json:"description"`
	Quantity      *int                `json:"quantity"`
	Unit          string              `json:"unit"`
	NetPrice      decimal.NullDecimal `json:"net_price"`
	OrderNumber   *string             `json:"order_number"`
}

// HasOrderNumber reports whether the item's order number has been resolved.
func (i *InvoiceItem) HasOrderNumber() bool {
	return i.OrderNumber != nil
}

// DelayedOrderRecord is a backordered line listed inside a "Pedido retrasado"
// section.
type DelayedOrderRecord struct {
	Position      string `json:"pos"`
	ArticleNumber string `json:"article_number"`
	OpenQuantity  *int   `json:"open_quantity"`
	Description   string `json:"description"`
}

// Stats counts what the classifier did with each line of a document.
type Stats struct {
	Lines                int `json:"lines"`
	Items                int `json:"items"`
	DelayedRecords       int `json:"delayed_records"`
	DelayedSections      int `json:"delayed_sections"`
	OrderNumbersAssigned int `json:"order_numbers_assigned"`
	PendingExpired       int `json:"pending_expired"`
	DroppedInSection     int `json:"dropped_in_section"`
	Unrecognized         int `json:"unrecognized"`
}

// Result holds the two datasets extracted from one document, in encounter order.
// Both slices are non-nil, possibly empty.
type Result struct {
	Items   []InvoiceItem        `json:"items"`
	Delayed []DelayedOrderRecord `json:"delayed"`
	Stats   Stats                `json:"stats"`
}

// NetTotal sums the net price of every item with a parsable price.
func (r *Result) NetTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		if item.NetPrice.Valid {
			total = total.Add(item.NetPrice.Decimal)
		}
	}
	return total
}

// UnresolvedOrders returns the number of items that never received an order number.
func (r *Result) UnresolvedOrders() int {
	n := 0
	for i := range r.Items {
		if !r.Items[i].HasOrderNumber() {
			n++
		}
	}
	return n
}
