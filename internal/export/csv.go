package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes the report grid as CSV. Rows have different widths.
func WriteCSV(w io.Writer, r Report, meta Meta) error {
	cw := csv.NewWriter(w)
	for _, row := range Rows(r, meta) {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
