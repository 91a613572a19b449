package backup

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/source"
)

// CSVHeader is the first line of every export.
const CSVHeader = "Transaction Name,Amount,Type,Category,Date,Time"

// ExportCSV writes txs as CSV. Names are always quoted. Dates are split into
// date and time columns; a date that does not parse is written as-is with
// an empty time.
func ExportCSV(w io.Writer, txs []model.Transaction) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, CSVHeader)
	for _, t := range txs {
		date, clock := t.Date, ""
		if at, err := source.ParseDate(t.Date); err == nil {
			date, clock = at.Format("2006-01-02"), at.Format("15:04:05")
		}
		name := `"` + strings.ReplaceAll(t.Name, `"`, `""`) + `"`
		fmt.Fprintf(bw, "%s,%s,%s,%s,%s,%s\n", name, t.Amount.String(), t.Kind(), t.Category, date, clock)
	}
	return bw.Flush()
}
