// Package export renders parsed invoices as spreadsheets.
package export

import (
	"strconv"

	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/parser"
)

const (
	ItemsSheet   = "Invoiced Items"
	DelayedSheet = "Delayed Orders"
)

var (
	ItemHeaders    = []string{"Pos", "Article Number", "Description", "Quantity", "Unit", "Net Price", "Order Number"}
	DelayedHeaders = []string{"Pos", "Article Number", "Open Quantity", "Description"}
)

// ItemRow is an invoice item flattened to text, empty where a value is missing.
type ItemRow struct {
	Position      string `csv:"Pos"`
	ArticleNumber string `csv:"Article Number"`
	Description   string `csv:"Description"`
	Quantity      string `csv:"Quantity"`
	Unit          string `csv:"Unit"`
	NetPrice      string `csv:"Net Price"`
	OrderNumber   string `csv:"Order Number"`
}

// DelayedRow is a backorder record flattened to text.
type DelayedRow struct {
	Position      string `csv:"Pos"`
	ArticleNumber string `csv:"Article Number"`
	OpenQuantity  string `csv:"Open Quantity"`
	Description   string `csv:"Description"`
}

// ItemRows flattens items in order.
func ItemRows(items []parser.InvoiceItem) []ItemRow {
	rows := make([]ItemRow, len(items))
	for i, item := range items {
		rows[i] = ItemRow{
			Position:      item.Position,
			ArticleNumber: item.ArticleNumber,
			Description:   item.Description,
			Quantity:      intText(item.Quantity),
			Unit:          item.Unit,
			OrderNumber:   stringText(item.OrderNumber),
		}
		if item.NetPrice.Valid {
			rows[i].NetPrice = item.NetPrice.Decimal.StringFixed(2)
		}
	}
	return rows
}

// DelayedRows flattens backorder records in order.
func DelayedRows(delayed []parser.DelayedOrderRecord) []DelayedRow {
	rows := make([]DelayedRow, len(delayed))
	for i, rec := range delayed {
		rows[i] = DelayedRow{
			Position:      rec.Position,
			ArticleNumber: rec.ArticleNumber,
			OpenQuantity:  intText(rec.OpenQuantity),
			Description:   rec.Description,
		}
	}
	return rows
}

func intText(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func stringText(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
