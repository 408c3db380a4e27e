// Package gtfs joins harvested line colours with a GTFS feed and writes
// them out as a colour table.
package gtfs

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Record is one CSV row keyed by column name.
type Record map[string]string

// ReadCSV reads a CSV file with a header row. Lines starting with '#' are
// comments and a leading byte order mark is dropped. Missing trailing
// columns read as empty strings.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.Comment = '#'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var records []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading record %d: %w", len(records)+1, err)
		}

		rec := make(Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			} else {
				rec[col] = ""
			}
		}
		records = append(records, rec)
	}
}

// LoadCSV reads the CSV file at path.
func LoadCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Feed holds the parts of a GTFS feed the join needs.
type Feed struct {
	Agencies []Record
	Routes   []Record
}

// LoadFeed reads agency.txt and routes.txt.
func LoadFeed(agencyPath, routesPath string) (*Feed, error) {
	agencies, err := LoadCSV(agencyPath)
	if err != nil {
		return nil, fmt.Errorf("loading agencies: %w", err)
	}
	routes, err := LoadCSV(routesPath)
	if err != nil {
		return nil, fmt.Errorf("loading routes: %w", err)
	}
	return &Feed{Agencies: agencies, Routes: routes}, nil
}
