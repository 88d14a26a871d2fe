package services

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/marketboard/marketboard-go/internal/models"
)

// DashboardOptions carries the presentation settings taken from config.
type DashboardOptions struct {
	PrimaryLabel   string
	SecondaryLabel string
	Currency       string
	ChartHeight    int
	TableLimit     int
}

// DashboardService derives every view of the dashboard from the aligned
// table built at startup. The table is immutable, so all methods are pure
// and safe for concurrent requests.
type DashboardService struct {
	table  *models.AlignedTable
	opts   DashboardOptions
	logger *logrus.Logger
}

// NewDashboardService creates a dashboard service over the given table.
func NewDashboardService(table *models.AlignedTable, opts DashboardOptions, logger *logrus.Logger) *DashboardService {
	return &DashboardService{
		table:  table,
		opts:   opts,
		logger: logger,
	}
}

// Table returns the full aligned table.
func (ds *DashboardService) Table() *models.AlignedTable {
	return ds.table
}

// Options returns the presentation settings.
func (ds *DashboardService) Options() DashboardOptions {
	return ds.opts
}

// Span returns the timestamps of the first and last aligned rows.
func (ds *DashboardService) Span() (first, last time.Time, ok bool) {
	return ds.table.Span()
}

// Filter returns the rows whose date component falls inside the state's
// range, both ends inclusive. With only one bound supplied (a half-picked
// range) the full table comes back unchanged; an empty result is valid.
func (ds *DashboardService) Filter(state models.DisplayState) *models.AlignedTable {
	if !state.HasDateRange() {
		return ds.table
	}

	start := dateOnly(*state.Start)
	end := dateOnly(*state.End)
	rows := make([]models.AlignedRow, 0, len(ds.table.Rows))
	for _, row := range ds.table.Rows {
		d := dateOnly(row.Time)
		if d.Before(start) || d.After(end) {
			continue
		}
		rows = append(rows, row)
	}

	ds.logger.WithFields(logrus.Fields{
		"start": start.Format("2006-01-02"),
		"end":   end.Format("2006-01-02"),
		"rows":  len(rows),
	}).Debug("Filtered aligned table")

	return &models.AlignedTable{
		Rows:              rows,
		HasMovingAverages: ds.table.HasMovingAverages,
	}
}

// Summarize computes the headline metrics over a filtered table: latest
// primary and secondary values with their change since the first row, and
// the max-min range of each. An empty table yields HasData=false and no
// metrics.
func (ds *DashboardService) Summarize(table *models.AlignedTable) models.Summary {
	if table.Len() == 0 {
		return models.Summary{HasData: false}
	}

	rows := table.Rows
	first := rows[0]
	last := rows[len(rows)-1]

	primaryMin, primaryMax := rows[0].Close, rows[0].Close
	secondaryMin, secondaryMax := rows[0].CloseVIX, rows[0].CloseVIX
	for _, row := range rows[1:] {
		primaryMin = min(primaryMin, row.Close)
		primaryMax = max(primaryMax, row.Close)
		secondaryMin = min(secondaryMin, row.CloseVIX)
		secondaryMax = max(secondaryMax, row.CloseVIX)
	}

	primaryDelta := decimal.NewFromFloat32(last.Close - first.Close)
	secondaryDelta := decimal.NewFromFloat32(last.CloseVIX - first.CloseVIX)

	metrics := []models.Metric{
		{
			Label:     "Current " + ds.opts.PrimaryLabel,
			Value:     ds.opts.Currency + decimal.NewFromFloat32(last.Close).StringFixed(2),
			Delta:     primaryDelta.StringFixed(2),
			Direction: deltaDirection(primaryDelta),
		},
		{
			Label:     "Current " + ds.opts.SecondaryLabel,
			Value:     decimal.NewFromFloat32(last.CloseVIX).StringFixed(2),
			Delta:     secondaryDelta.StringFixed(2),
			Direction: deltaDirection(secondaryDelta),
		},
		{
			Label: ds.opts.PrimaryLabel + " Range",
			Value: ds.opts.Currency + decimal.NewFromFloat32(primaryMax-primaryMin).StringFixed(2),
		},
		{
			Label: ds.opts.SecondaryLabel + " Range",
			Value: decimal.NewFromFloat32(secondaryMax-secondaryMin).StringFixed(2),
		},
	}

	return models.Summary{HasData: true, Metrics: metrics}
}

// TableTail returns the last limit rows of a filtered table in time order,
// the raw-data view. A non-positive limit falls back to the configured one.
func (ds *DashboardService) TableTail(table *models.AlignedTable, limit int) []models.AlignedRow {
	if limit <= 0 {
		limit = ds.opts.TableLimit
	}
	rows := table.Rows
	if len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	out := make([]models.AlignedRow, len(rows))
	copy(out, rows)
	return out
}

func deltaDirection(delta decimal.Decimal) models.MetricDirection {
	switch delta.Sign() {
	case 1:
		return models.DirectionUp
	case -1:
		return models.DirectionDown
	default:
		return models.DirectionFlat
	}
}

// dateOnly strips the time-of-day so range checks compare calendar dates.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
