package parser

import (
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/invoice-converter/pkg/money"
)

// Recognizers for the invoice layout. Compiled once; regexp.Regexp is safe for
// concurrent use so every classifier shares them.
var (
	// 010 ABC123 Tornillo hexagonal 2 PZ 1,234.50
	itemPattern = regexp.MustCompile(
		`(?i)^(?P<pos>\d{2,4})\s+(?P<art>[A-Z0-9]+)\s+(?P<desc>.+?)\s+(?P<qty>\d+)\s+(?P<unit>[A-Z]{2,3})\s+(?P<price>[\d,]+\.\d{2})$`,
	)

	delayedHeaderPattern     = regexp.MustCompile(`(?i)Pedido\s+retrasado`)
	delayedTerminatorPattern = regexp.MustCompile(`(?i)Posiciones\s+en\s+total`)

	// 123456 XYZ9 5 Some description
	delayedItemPattern = regexp.MustCompile(
		`(?i)^(?P<pos>\d{6})\s+(?P<art>[A-Z0-9]+)\s+(?P<qty>\d+)\s+(?P<desc>.+)$`,
	)

	// "Pedido 98765" labels the item just before it, or the next one.
	orderForwardPattern = regexp.MustCompile(`(?i)\bPedido\s+(?P<num>\d{5,})\b`)
	// "98765 Pedido" may label either neighbour.
	orderBackwardPattern = regexp.MustCompile(`(?i)\b(?P<num>\d{5,})\s*Pedido\b`)
)

var (
	itemPos   = itemPattern.SubexpIndex("pos")
	itemArt   = itemPattern.SubexpIndex("art")
	itemDesc  = itemPattern.SubexpIndex("desc")
	itemQty   = itemPattern.SubexpIndex("qty")
	itemUnit  = itemPattern.SubexpIndex("unit")
	itemPrice = itemPattern.SubexpIndex("price")

	delayedPos  = delayedItemPattern.SubexpIndex("pos")
	delayedArt  = delayedItemPattern.SubexpIndex("art")
	delayedQty  = delayedItemPattern.SubexpIndex("qty")
	delayedDesc = delayedItemPattern.SubexpIndex("desc")

	orderForwardNum  = orderForwardPattern.SubexpIndex("num")
	orderBackwardNum = orderBackwardPattern.SubexpIndex("num")
)

// ParsePrice converts a price such as "1,234.50" into a decimal. Empty or
// unparsable text yields an invalid NullDecimal instead of an error.
func ParsePrice(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := money.ParseDecimal(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// parseQuantity returns nil when the digits do not fit in an int.
func parseQuantity(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
