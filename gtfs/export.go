package gtfs

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Export defaults.
const (
	DefaultOperator = "mvv-regional-bus"
	DefaultShape    = "rectangle"
)

// Exporter writes the colour table. Values are never quoted; separators,
// quotes, backslashes and line breaks inside a value are escaped with a
// backslash.
type Exporter struct {
	Operator string
	Shape    string
}

// NewExporter returns an Exporter with the default operator and shape.
func NewExporter() *Exporter {
	return &Exporter{Operator: DefaultOperator, Shape: DefaultShape}
}

// Write writes one record per line that has an agency and returns how
// many were written.
func (e *Exporter) Write(w io.Writer, lines []TransitLine) (int, error) {
	bw := bufio.NewWriter(w)
	n := 0
	for _, l := range lines {
		if l.Agency == nil {
			continue
		}
		record := []string{
			e.Operator, l.Line, "", "",
			l.BackgroundColor, l.TextColor, l.BorderColor,
			e.Shape, "",
			l.Agency.ID, l.Agency.Name,
		}
		if err := writeRecord(bw, record); err != nil {
			return n, fmt.Errorf("writing line %s: %w", l.Line, err)
		}
		n++
	}
	if err := bw.Flush(); err != nil {
		return n, err
	}
	return n, nil
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`,`, `\,`,
	`"`, `\"`,
	"\r", `\r`,
	"\n", `\n`,
)

func writeRecord(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := escaper.WriteString(w, f); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\r\n")
	return err
}

// WriteReport writes the lines without an agency and the operator routes
// without a colour, one message per line.
func WriteReport(w io.Writer, lines []TransitLine, operatorRoutes []Record) error {
	for _, l := range Unassigned(lines) {
		if _, err := fmt.Fprintf(w, "No MVV operated line found for route id %s. (Source: %s)\n", l.Line, l.Source); err != nil {
			return err
		}
	}
	for _, name := range Missing(lines, operatorRoutes) {
		if _, err := fmt.Fprintf(w, "Missing MVV line: %s\n", name); err != nil {
			return err
		}
	}
	return nil
}
