package output

import (
	"fmt"
	"io"
	"os"
	"sort"

	yaml "go.yaml.in/yaml/v3"
)

// Format selects the wire shape of Writer output.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Writer renders structured results in the selected format.
type Writer struct {
	format Format
	out    io.Writer
}

// New returns a Writer to stdout in the given format. Unknown formats
// render as text.
func New(format Format) *Writer {
	switch format {
	case FormatJSON, FormatYAML, FormatText:
	default:
		format = FormatText
	}
	return &Writer{format: format, out: os.Stdout}
}

// NewTo returns a Writer to an explicit destination, for tests.
func NewTo(format Format, out io.Writer) *Writer {
	w := New(format)
	w.out = out
	return w
}

// Write renders one result value.
func (w *Writer) Write(v any) error {
	switch w.format {
	case FormatJSON:
		return writeJSONTo(w.out, v, true)
	case FormatYAML:
		enc := yaml.NewEncoder(w.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return w.writeText(v)
	}
}

// writeText renders maps as aligned key: value lines (sorted for stable
// output) and everything else via fmt.
func (w *Writer) writeText(v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		_, err := fmt.Fprintln(w.out, v)
		return err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w.out, "%s: %v\n", k, m[k]); err != nil {
			return err
		}
	}
	return nil
}
