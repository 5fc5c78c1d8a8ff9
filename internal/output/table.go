package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// OutputTable prints a tab-aligned table to stdout (human mode).
func OutputTable(headers []string, rows [][]string) {
	WriteTable(os.Stdout, headers, rows)
}

// WriteTable prints a tab-aligned table to an explicit writer.
func WriteTable(out io.Writer, headers []string, rows [][]string) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}
