package main

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"

	"github.com/hyperscalers/marketcap-race/race"
)

// loadRecords reads the date,name,value,category table from path or stdin.
// Short rows are skipped here; row-level validation happens in Normalize.
func loadRecords(path string) ([]race.Record, error) {
	var r io.ReadCloser
	switch {
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		r = f
	case term.IsTerminal(os.Stdin.Fd()):
		return nil, fmt.Errorf("no input: pass -in <csv> or pipe the table to stdin")
	default:
		r = io.NopCloser(os.Stdin)
	}
	defer func() { _ = r.Close() }()
	return parseRecords(r)
}

func parseRecords(r io.Reader) ([]race.Record, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records []race.Record
	first := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if first {
			first = false
			if isHeader(row) {
				continue
			}
		}
		if len(row) < 3 {
			continue
		}
		rec := race.Record{
			Date:  strings.TrimSpace(row[0]),
			Name:  strings.TrimSpace(row[1]),
			Value: strings.TrimSpace(row[2]),
		}
		if len(row) > 3 {
			rec.Category = strings.TrimSpace(row[3])
		}
		records = append(records, rec)
	}
	return records, nil
}

func isHeader(row []string) bool {
	return len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "date")
}
