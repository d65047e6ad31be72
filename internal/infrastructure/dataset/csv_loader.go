package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bibbank/creditrisk/internal/domain/model"
)

// LabelColumn marks defaulted borrowers with 1.
const LabelColumn = "default"

// RequiredColumns must appear in every training file.
var RequiredColumns = append(append([]string{}, model.ProfileFields...), LabelColumn)

// ErrMissingColumns is returned when the header lacks a required column.
var ErrMissingColumns = errors.New("dataset: missing required columns")

// CSVLoader reads labelled loan records from a CSV file with a header row.
type CSVLoader struct {
	path string
}

// NewCSVLoader returns a loader for path.
func NewCSVLoader(path string) *CSVLoader {
	return &CSVLoader{path: path}
}

// Load implements port.DatasetSource.
func (l *CSVLoader) Load(ctx context.Context) ([]model.Record, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", l.path, err)
	}
	defer f.Close()

	records, err := Read(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", l.path, err)
	}
	return records, nil
}

// Read parses CSV from r. Every column other than customer_id and default
// becomes a numeric profile attribute.
func Read(ctx context.Context, r io.Reader) ([]model.Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var records []model.Record
	for line := 2; ; line++ {
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rec := model.Record{Profile: make(model.CustomerProfile, len(header))}
		for i, name := range header {
			cell := strings.TrimSpace(row[i])
			switch name {
			case model.FieldCustomerID:
				rec.CustomerID = cell
			case LabelColumn:
				switch cell {
				case "1", "1.0", "true", "True":
					rec.Defaulted = true
				case "0", "0.0", "false", "False":
				default:
					return nil, fmt.Errorf("line %d: %s must be 0 or 1, got %q", line, LabelColumn, cell)
				}
			default:
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: column %s: %w", line, name, err)
				}
				rec.Profile[name] = v
			}
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, errors.New("no data rows")
	}
	return records, nil
}
