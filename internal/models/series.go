package models

import (
	"time"
)

// Sample is a single raw observation read from a series file.
type Sample struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

// SeriesTable holds one loaded series with timestamps unique and sorted
// ascending.
type SeriesTable struct {
	Name    string   `json:"name"`
	Samples []Sample `json:"samples"`
}

// Len returns the number of samples in the table.
func (t *SeriesTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Samples)
}

// Bucket is one hourly aggregate of a series. Close carries the bucket mean
// downcast to float32. MA5 and MA20 are trailing means over the bucket
// sequence, nil while the window has not yet filled.
type Bucket struct {
	Time  time.Time `json:"time"`
	Close float32   `json:"close"`
	MA5   *float64  `json:"ma5,omitempty"`
	MA20  *float64  `json:"ma20,omitempty"`
}

// ResampledSeries is the hourly view of one series. HasMovingAverages
// reports whether the MA5/MA20 columns exist at all for this series.
type ResampledSeries struct {
	Name              string   `json:"name"`
	Buckets           []Bucket `json:"buckets"`
	HasMovingAverages bool     `json:"has_moving_averages"`
}

// AlignedRow is one row of the joined table: the primary bucket plus the
// secondary close observed at the same hour. Every field is defined; rows
// with gaps never make it into an AlignedTable.
type AlignedRow struct {
	Time     time.Time `json:"time"`
	Close    float32   `json:"close"`
	MA5      *float64  `json:"ma5,omitempty"`
	MA20     *float64  `json:"ma20,omitempty"`
	CloseVIX float32   `json:"close_vix"`
}

// AlignedTable is the joined hourly table the whole dashboard renders from.
// Rows are sorted ascending by time and contain no undefined values.
type AlignedTable struct {
	Rows              []AlignedRow `json:"rows"`
	HasMovingAverages bool         `json:"has_moving_averages"`
}

// Len returns the number of aligned rows.
func (t *AlignedTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Span returns the first and last row timestamps. ok is false for an empty
// table.
func (t *AlignedTable) Span() (first, last time.Time, ok bool) {
	if t.Len() == 0 {
		return time.Time{}, time.Time{}, false
	}
	return t.Rows[0].Time, t.Rows[len(t.Rows)-1].Time, true
}
