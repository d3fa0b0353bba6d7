package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/parser"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Built-in number format "#,##0.00".
const numFmtThousandsTwoDecimals = 4

// WorkbookBytes renders the result as an xlsx document.
func WorkbookBytes(res *parser.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, res); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteWorkbook writes an xlsx with an items sheet and a delayed-orders sheet.
// Rows keep document order and missing values are left as empty cells.
func WriteWorkbook(w io.Writer, res *parser.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ItemsSheet); err != nil {
		return fmt.Errorf("failed to name items sheet: %w", err)
	}
	if _, err := f.NewSheet(DelayedSheet); err != nil {
		return fmt.Errorf("failed to create delayed sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	priceStyle, err := f.NewStyle(&excelize.Style{NumFmt: numFmtThousandsTwoDecimals})
	if err != nil {
		return fmt.Errorf("failed to create price style: %w", err)
	}

	var items []parser.InvoiceItem
	var delayed []parser.DelayedOrderRecord
	if res != nil {
		items, delayed = res.Items, res.Delayed
	}

	if err := writeHeader(f, ItemsSheet, ItemHeaders, headerStyle); err != nil {
		return err
	}
	for i, item := range items {
		row := []interface{}{
			item.Position,
			item.ArticleNumber,
			item.Description,
			intValue(item.Quantity),
			item.Unit,
			nil,
			stringValue(item.OrderNumber),
		}
		if item.NetPrice.Valid {
			row[5] = item.NetPrice.Decimal.InexactFloat64()
		}
		if err := setRow(f, ItemsSheet, i+2, row); err != nil {
			return err
		}
	}
	if len(items) > 0 {
		last := fmt.Sprintf("F%d", len(items)+1)
		if err := f.SetCellStyle(ItemsSheet, "F2", last, priceStyle); err != nil {
			return fmt.Errorf("failed to style prices: %w", err)
		}
	}
	if err := f.SetColWidth(ItemsSheet, "C", "C", 45); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	if err := writeHeader(f, DelayedSheet, DelayedHeaders, headerStyle); err != nil {
		return err
	}
	for i, rec := range delayed {
		row := []interface{}{
			rec.Position,
			rec.ArticleNumber,
			intValue(rec.OpenQuantity),
			rec.Description,
		}
		if err := setRow(f, DelayedSheet, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(DelayedSheet, "D", "D", 45); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := setRow(f, sheet, 1, row); err != nil {
		return err
	}

	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	if err != nil {
		return fmt.Errorf("failed to freeze %s header: %w", sheet, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowIdx int, values []interface{}) error {
	cell, _ := excelize.CoordinatesToCellName(1, rowIdx)
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, rowIdx, err)
	}
	return nil
}

// intValue and stringValue return an untyped nil for missing values so the
// cell stays empty.
func intValue(n *int) interface{} {
	if n == nil {
		return nil
	}
	return *n
}

func stringValue(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
