// Package marketdata reads the configured series files into memory.
//
// A series file is a columnar table with a "date" timestamp column and a
// "close" value column. Parquet and CSV files are supported, dispatched on
// the file extension. Anything unreadable surfaces as a
// utils.DataUnavailableError, which callers treat as fatal: the dashboard
// cannot start without its inputs.
package marketdata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/parquet-go/parquet-go"

	"github.com/marketboard/marketboard-go/internal/models"
	"github.com/marketboard/marketboard-go/internal/utils"
)

// parquetRecord is the row shape expected in parquet inputs.
type parquetRecord struct {
	Date  time.Time `parquet:"date"`
	Close float64   `parquet:"close"`
}

// csvRecord is the row shape expected in CSV inputs. Date stays a string
// because files in the wild mix timestamp layouts.
type csvRecord struct {
	Date  string  `csv:"date"`
	Close float64 `csv:"close"`
}

// csvTimeLayouts are the accepted CSV timestamp formats, tried in order.
var csvTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ReadSeriesFile loads one series file into a SeriesTable. The result has
// timestamps unique and sorted ascending; when the input repeats a
// timestamp the last sample wins. An empty file yields an empty table, not
// an error.
func ReadSeriesFile(path, name string) (*models.SeriesTable, error) {
	var (
		samples []models.Sample
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		samples, err = readParquet(path)
	case ".csv":
		samples, err = readCSV(path)
	default:
		return nil, utils.NewDataUnavailableErrorf(path, nil,
			"unsupported file extension %q (want .parquet or .csv)", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	normalizeSamples(samples)
	samples = dedupeSamples(samples)

	return &models.SeriesTable{
		Name:    name,
		Samples: samples,
	}, nil
}

func readParquet(path string) ([]models.Sample, error) {
	records, err := parquet.ReadFile[parquetRecord](path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, utils.NewDataUnavailableError(path, "file not found", err)
		}
		return nil, utils.NewDataUnavailableError(path, "failed to read parquet file", err)
	}

	samples := make([]models.Sample, 0, len(records))
	for _, r := range records {
		samples = append(samples, models.Sample{Time: r.Date, Close: r.Close})
	}
	return samples, nil
}

func readCSV(path string) ([]models.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, utils.NewDataUnavailableError(path, "file not found", err)
		}
		return nil, utils.NewDataUnavailableError(path, "failed to open csv file", err)
	}
	defer func() {
		_ = f.Close()
	}()

	var records []csvRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, utils.NewDataUnavailableError(path, "failed to parse csv file", err)
	}

	samples := make([]models.Sample, 0, len(records))
	for i, r := range records {
		ts, err := parseCSVTime(r.Date)
		if err != nil {
			return nil, utils.NewDataUnavailableErrorf(path, err, "bad timestamp on row %d", i+1)
		}
		samples = append(samples, models.Sample{Time: ts, Close: r.Close})
	}
	return samples, nil
}

func parseCSVTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range csvTimeLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// normalizeSamples sorts samples ascending, preserving file order within
// equal timestamps so dedupeSamples can keep the last occurrence.
func normalizeSamples(samples []models.Sample) {
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Time.Before(samples[j].Time)
	})
}

func dedupeSamples(samples []models.Sample) []models.Sample {
	if len(samples) < 2 {
		return samples
	}
	out := samples[:0]
	for i, s := range samples {
		if i+1 < len(samples) && samples[i+1].Time.Equal(s.Time) {
			continue
		}
		out = append(out, s)
	}
	return out
}
