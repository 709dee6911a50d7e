package formatter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/kyleking/filter-flow/internal/catalog"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatTable    OutputFormat = "table"
	FormatJSON     OutputFormat = "json"
	FormatCSV      OutputFormat = "csv"
	FormatMarkdown OutputFormat = "markdown"
)

// ParseFormat validates a format name
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatCSV, FormatMarkdown:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be table, json, csv, or markdown)", s)
	}
}

// Formatter renders tables and rows for the terminal
type Formatter struct {
	format OutputFormat
}

// NewFormatter creates a new formatter instance
func NewFormatter(format OutputFormat) *Formatter {
	return &Formatter{format: format}
}

// WriteTables writes the table descriptors
func (f *Formatter) WriteTables(w io.Writer, tables []catalog.TableDescriptor) error {
	if f.format == FormatJSON {
		return writeJSON(w, tables)
	}

	header := []string{"TABLE", "COLUMNS"}
	records := make([][]string, 0, len(tables))

	for _, t := range tables {
		cols := make([]string, 0, len(t.Columns))
		for _, c := range t.Columns {
			cols = append(cols, fmt.Sprintf("%s:%s", c.Name, c.DataType))
		}

		records = append(records, []string{t.Name, strings.Join(cols, ", ")})
	}

	return f.writeGrid(w, header, records)
}

// WriteRows writes rows with one column per entry of columns, in that order
func (f *Formatter) WriteRows(w io.Writer, columns []string, rows []catalog.Row) error {
	if f.format == FormatJSON {
		return writeJSON(w, rows)
	}

	records := make([][]string, 0, len(rows))

	for _, r := range rows {
		record := make([]string, 0, len(columns))
		for _, c := range columns {
			record = append(record, FormatValue(r[c]))
		}

		records = append(records, record)
	}

	return f.writeGrid(w, columns, records)
}

func (f *Formatter) writeGrid(w io.Writer, header []string, records [][]string) error {
	switch f.format {
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("failed to write csv header: %w", err)
		}

		if err := cw.WriteAll(records); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}

		return nil
	case FormatMarkdown:
		return writeMarkdown(w, header, records)
	default:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(header, "\t"))

		for _, r := range records {
			fmt.Fprintln(tw, strings.Join(r, "\t"))
		}

		return tw.Flush()
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}

	return nil
}

func writeMarkdown(w io.Writer, header []string, records [][]string) error {
	var b strings.Builder

	writeLine := func(cells []string) {
		escaped := make([]string, len(cells))
		for i, c := range cells {
			escaped[i] = strings.ReplaceAll(c, "|", `\|`)
		}

		b.WriteString("| " + strings.Join(escaped, " | ") + " |\n")
	}

	writeLine(header)

	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}

	writeLine(sep)

	for _, r := range records {
		writeLine(r)
	}

	_, err := io.WriteString(w, b.String())

	return err
}

// RowColumns returns the column order for rows: the descriptor's declared
// order when known, otherwise every key found in rows, sorted
func RowColumns(desc *catalog.TableDescriptor, rows []catalog.Row) []string {
	if desc != nil {
		return desc.ColumnNames()
	}

	seen := map[string]bool{}

	var cols []string

	for _, r := range rows {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}

	sort.Strings(cols)

	return cols
}

// FormatValue renders a single row value; missing values render as "-"
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		return x.Format(time.DateOnly)
	default:
		return fmt.Sprint(x)
	}
}
