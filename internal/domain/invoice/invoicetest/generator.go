// Package invoicetest generates realistic invoice text and PDF fixtures for
// tests. Lines follow the vendor layout so every generated record is known to
// be recognized, and every noise line is known not to be.
package invoicetest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Generator produces invoice lines with gofakeit.
type Generator struct {
	faker   *gofakeit.Faker
	printer *message.Printer
}

// NewGenerator creates a generator with a random seed.
func NewGenerator() *Generator {
	return NewGeneratorWithSeed(0)
}

// NewGeneratorWithSeed creates a generator with a specific seed for reproducibility.
func NewGeneratorWithSeed(seed int64) *Generator {
	return &Generator{
		faker:   gofakeit.New(seed),
		printer: message.NewPrinter(language.English),
	}
}

// Item is a generated invoice item line together with the values a parser
// should extract from it.
type Item struct {
	Line          string
	Position      string
	ArticleNumber string
	Description   string
	Quantity      int
	Unit          string
	NetPrice      decimal.Decimal
	OrderNumber   string
}

// Delayed is a generated backorder line with its expected values.
type Delayed struct {
	Line          string
	Position      string
	ArticleNumber string
	OpenQuantity  int
	Description   string
}

// Document is a full generated invoice.
type Document struct {
	Lines   []string
	Items   []Item
	Delayed []Delayed
}

var descriptionWords = []string{
	"Tornillo", "hexagonal", "Tuerca", "Arandela", "plana", "Cable", "cobre",
	"Tubo", "galvanizado", "Codo", "Válvula", "esfera", "Cinta", "aislante",
	"Brida", "acero", "inoxidable", "Manguera", "reforzada", "Llave", "ajustable",
}

var units = []string{"PZ", "KG", "MT", "CJA", "LT", "JGO"}

// Lines that neither the item nor the order-number recognizers accept.
var noiseLines = []string{
	"FACTURA",
	"Hoja 1 de 2",
	"Cliente: Ferreteria del Norte",
	"Condiciones de pago 30 dias",
	"Pos. Articulo Descripcion Cantidad Unidad Importe",
	"Subtotal antes de impuestos",
	"Moneda: MXN",
}

// ArticleNumber returns an alphanumeric article code such as "ABC1234".
func (g *Generator) ArticleNumber() string {
	return strings.ToUpper(g.faker.Lexify("???")) + g.faker.Numerify("####")
}

// Description returns two or three words of product text.
func (g *Generator) Description() string {
	n := g.faker.Number(2, 3)
	words := make([]string, n)
	for i := range words {
		words[i] = g.faker.RandomString(descriptionWords)
	}
	return strings.Join(words, " ")
}

// OrderNumber returns a five to seven digit order number.
func (g *Generator) OrderNumber() string {
	return strconv.Itoa(g.faker.Number(10000, 9999999))
}

// NoiseLine returns a line that no recognizer accepts.
func (g *Generator) NoiseLine() string {
	return g.faker.RandomString(noiseLines)
}

// Price formats cents the way the vendor prints amounts, e.g. "1,234.50".
func (g *Generator) Price(cents int64) string {
	return g.printer.Sprintf("%.2f", float64(cents)/100)
}

// Item generates the n-th item line of a document. Its order number is left
// empty; Document decides how the number is annotated.
func (g *Generator) Item(n int) Item {
	cents := int64(g.faker.Number(100, 5000000))
	item := Item{
		Position:      fmt.Sprintf("%03d", n*10),
		ArticleNumber: g.ArticleNumber(),
		Description:   g.Description(),
		Quantity:      g.faker.Number(1, 500),
		Unit:          g.faker.RandomString(units),
		NetPrice:      decimal.New(cents, -2),
	}
	item.Line = fmt.Sprintf("%s %s %s %d %s %s",
		item.Position, item.ArticleNumber, item.Description, item.Quantity, item.Unit, g.Price(cents))
	return item
}

// Delayed generates a backorder line.
func (g *Generator) Delayed() Delayed {
	d := Delayed{
		Position:      strconv.Itoa(g.faker.Number(100000, 999999)),
		ArticleNumber: g.ArticleNumber(),
		OpenQuantity:  g.faker.Number(1, 200),
		Description:   g.Description(),
	}
	d.Line = fmt.Sprintf("%s %s %d %s", d.Position, d.ArticleNumber, d.OpenQuantity, d.Description)
	return d
}

// Document generates an invoice with the given number of items and backorder
// records. Each item carries an order number, annotated either after the item
// ("Pedido N") or before it ("N Pedido"). Noise lines are scattered between
// records and the backorder lines sit in one delayed section at the end.
func (g *Generator) Document(items, delayed int) Document {
	doc := Document{
		Lines:   []string{g.NoiseLine(), g.NoiseLine()},
		Items:   make([]Item, 0, items),
		Delayed: make([]Delayed, 0, delayed),
	}

	for i := 1; i <= items; i++ {
		item := g.Item(i)
		item.OrderNumber = g.OrderNumber()

		if g.faker.Bool() {
			doc.Lines = append(doc.Lines, item.Line, "Pedido "+item.OrderNumber)
		} else {
			doc.Lines = append(doc.Lines, item.OrderNumber+" Pedido", item.Line)
		}
		if g.faker.Number(0, 3) == 0 {
			doc.Lines = append(doc.Lines, g.NoiseLine())
		}
		doc.Items = append(doc.Items, item)
	}

	if delayed > 0 {
		doc.Lines = append(doc.Lines, "Pedido retrasado", "Pos. Articulo Cant. Descripcion")
		for i := 0; i < delayed; i++ {
			d := g.Delayed()
			doc.Lines = append(doc.Lines, d.Line)
			doc.Delayed = append(doc.Delayed, d)
		}
		doc.Lines = append(doc.Lines, fmt.Sprintf("Posiciones en total %d", delayed))
	}

	doc.Lines = append(doc.Lines, g.NoiseLine())
	return doc
}

// PageLines splits the document into pages of at most perPage lines.
func (d Document) PageLines(perPage int) [][]string {
	if perPage <= 0 {
		perPage = len(d.Lines)
	}
	var pages [][]string
	for start := 0; start < len(d.Lines); start += perPage {
		end := start + perPage
		if end > len(d.Lines) {
			end = len(d.Lines)
		}
		pages = append(pages, d.Lines[start:end])
	}
	return pages
}

// Pages returns the document as page texts, perPage lines each.
func (d Document) Pages(perPage int) []string {
	chunks := d.PageLines(perPage)
	pages := make([]string, len(chunks))
	for i, lines := range chunks {
		pages[i] = strings.Join(lines, "\n")
	}
	return pages
}

// NetTotal sums the generated item prices.
func (d Document) NetTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range d.Items {
		total = total.Add(item.NetPrice)
	}
	return total
}
