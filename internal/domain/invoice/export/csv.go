package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// WriteCSV writes rows with a header line matching the sheet columns.
func WriteCSV[T ItemRow | DelayedRow](w io.Writer, rows []T) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
