package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketboard/marketboard-go/internal/config"
	"github.com/marketboard/marketboard-go/internal/models"
)

// alignedTableAt builds a table with n hourly rows starting at start.
// Closes count up from 4000 and the secondary from 15; MA columns are
// filled on every row when withMAs is set.
func alignedTableAt(start time.Time, n int, withMAs bool) *models.AlignedTable {
	rows := make([]models.AlignedRow, n)
	for i := range rows {
		row := models.AlignedRow{
			Time:     start.Add(time.Duration(i) * time.Hour),
			Close:    float32(4000 + i),
			CloseVIX: float32(15 + i),
		}
		if withMAs {
			row.MA5 = floatPtr(float64(4000 + i))
			row.MA20 = floatPtr(float64(3990 + i))
		}
		rows[i] = row
	}
	return &models.AlignedTable{Rows: rows, HasMovingAverages: withMAs}
}

func newTestDashboard(table *models.AlignedTable) *DashboardService {
	return NewDashboardService(table, DashboardOptions{
		PrimaryLabel:   "SPX",
		SecondaryLabel: "VIX",
		Currency:       "$",
		ChartHeight:    700,
		TableLimit:     50,
	}, newTestLogger())
}

func datePtr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestDashboardService_Filter(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ds := newTestDashboard(alignedTableAt(base, 72, true))

	t.Run("both bounds inclusive", func(t *testing.T) {
		got := ds.Filter(models.DisplayState{
			Start: datePtr(2024, 3, 2),
			End:   datePtr(2024, 3, 2),
		})
		require.Equal(t, 24, got.Len())
		assert.True(t, got.Rows[0].Time.Equal(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)))
		// The bound is a date, so 23:00 on the end day is still inside.
		assert.True(t, got.Rows[23].Time.Equal(time.Date(2024, 3, 2, 23, 0, 0, 0, time.UTC)))
		assert.True(t, got.HasMovingAverages)
	})

	t.Run("full span returns everything", func(t *testing.T) {
		got := ds.Filter(models.DisplayState{
			Start: datePtr(2024, 3, 1),
			End:   datePtr(2024, 3, 3),
		})
		assert.Equal(t, 72, got.Len())
	})

	t.Run("single bound means no filter", func(t *testing.T) {
		got := ds.Filter(models.DisplayState{Start: datePtr(2024, 3, 2)})
		assert.Same(t, ds.Table(), got)
	})

	t.Run("range outside the data is empty", func(t *testing.T) {
		got := ds.Filter(models.DisplayState{
			Start: datePtr(1990, 1, 1),
			End:   datePtr(1990, 1, 2),
		})
		assert.Empty(t, got.Rows)
		assert.True(t, got.HasMovingAverages)
	})
}

func TestDashboardService_Summarize(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	table := &models.AlignedTable{
		Rows: []models.AlignedRow{
			{Time: base, Close: 4000.25, CloseVIX: 15.5},
			{Time: base.Add(time.Hour), Close: 3990.5, CloseVIX: 20.0},
			{Time: base.Add(2 * time.Hour), Close: 4010.75, CloseVIX: 12.25},
		},
	}
	ds := newTestDashboard(table)

	summary := ds.Summarize(table)
	require.True(t, summary.HasData)
	require.Len(t, summary.Metrics, 4)

	current := summary.Metrics[0]
	assert.Equal(t, "Current SPX", current.Label)
	assert.Equal(t, "$4010.75", current.Value)
	assert.Equal(t, "10.50", current.Delta)
	assert.Equal(t, models.DirectionUp, current.Direction)

	secondary := summary.Metrics[1]
	assert.Equal(t, "Current VIX", secondary.Label)
	assert.Equal(t, "12.25", secondary.Value)
	assert.Equal(t, "-3.25", secondary.Delta)
	assert.Equal(t, models.DirectionDown, secondary.Direction)

	primaryRange := summary.Metrics[2]
	assert.Equal(t, "SPX Range", primaryRange.Label)
	assert.Equal(t, "$20.25", primaryRange.Value)
	assert.Empty(t, primaryRange.Delta)

	secondaryRange := summary.Metrics[3]
	assert.Equal(t, "VIX Range", secondaryRange.Label)
	assert.Equal(t, "7.75", secondaryRange.Value)
}

func TestDashboardService_Summarize_SingleRow(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	table := &models.AlignedTable{
		Rows: []models.AlignedRow{{Time: base, Close: 4000, CloseVIX: 15}},
	}
	ds := newTestDashboard(table)

	summary := ds.Summarize(table)
	require.True(t, summary.HasData)
	assert.Equal(t, "0.00", summary.Metrics[0].Delta)
	assert.Equal(t, models.DirectionFlat, summary.Metrics[0].Direction)
	assert.Equal(t, "$0.00", summary.Metrics[2].Value)
	assert.Equal(t, "0.00", summary.Metrics[3].Value)
}

func TestDashboardService_Summarize_Empty(t *testing.T) {
	ds := newTestDashboard(&models.AlignedTable{})

	summary := ds.Summarize(&models.AlignedTable{})
	assert.False(t, summary.HasData)
	assert.Empty(t, summary.Metrics)
}

func TestDashboardService_TableTail(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	table := alignedTableAt(base, 60, false)
	ds := newTestDashboard(table)

	t.Run("falls back to configured limit", func(t *testing.T) {
		got := ds.TableTail(table, 0)
		require.Len(t, got, 50)
		assert.True(t, got[0].Time.Equal(base.Add(10*time.Hour)))
		assert.True(t, got[49].Time.Equal(base.Add(59*time.Hour)))
	})

	t.Run("explicit limit", func(t *testing.T) {
		got := ds.TableTail(table, 10)
		require.Len(t, got, 10)
		assert.True(t, got[0].Time.Equal(base.Add(50*time.Hour)))
	})

	t.Run("limit beyond the table returns everything", func(t *testing.T) {
		got := ds.TableTail(table, 100)
		assert.Len(t, got, 60)
	})

	t.Run("result is a copy", func(t *testing.T) {
		got := ds.TableTail(table, 5)
		got[0].Close = 1
		assert.Equal(t, float32(4055), table.Rows[55].Close)
	})
}

func TestDashboardService_Span(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ds := newTestDashboard(alignedTableAt(base, 60, false))

	first, last, ok := ds.Span()
	require.True(t, ok)
	assert.True(t, first.Equal(base))
	assert.True(t, last.Equal(base.Add(59*time.Hour)))

	empty := newTestDashboard(&models.AlignedTable{})
	_, _, ok = empty.Span()
	assert.False(t, ok)
}

// TestDashboardService_EndToEndPipeline runs the full load-free pipeline:
// resample both series, align them, and summarize. 25 hourly samples with
// the primary above the MA threshold leave exactly the rows where the
// 20-hour window is full.
func TestDashboardService_EndToEndPipeline(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	logger := newTestLogger()
	rs := NewResamplerService(logger)
	as := NewAlignerService(logger)

	primary, err := rs.Resample(hourlySeries("SPX", base, sequence(4000, 25)), config.MovingAveragesAuto)
	require.NoError(t, err)
	secondary, err := rs.Resample(hourlySeries("VIX", base, sequence(10, 25)), config.MovingAveragesAuto)
	require.NoError(t, err)

	assert.True(t, primary.HasMovingAverages)
	assert.False(t, secondary.HasMovingAverages)

	table := as.Align(primary, secondary)
	require.Equal(t, 6, table.Len())

	assert.True(t, table.Rows[0].Time.Equal(base.Add(19*time.Hour)))
	require.NotNil(t, table.Rows[0].MA20)
	assert.InDelta(t, 4009.5, *table.Rows[0].MA20, 1e-9)

	last := table.Rows[5]
	assert.Equal(t, float32(4024), last.Close)
	assert.Equal(t, float32(34), last.CloseVIX)
	require.NotNil(t, last.MA20)
	assert.InDelta(t, 4014.5, *last.MA20, 1e-9)

	// The aligned table starts where the 20-hour window fills, so the
	// summary sees rows 19 through 24 of the original series.
	ds := newTestDashboard(table)
	summary := ds.Summarize(table)
	require.True(t, summary.HasData)
	require.Len(t, summary.Metrics, 4)
	assert.Equal(t, "$4024.00", summary.Metrics[0].Value)
	assert.Equal(t, "5.00", summary.Metrics[0].Delta)
	assert.Equal(t, models.DirectionUp, summary.Metrics[0].Direction)
	assert.Equal(t, "34.00", summary.Metrics[1].Value)
	assert.Equal(t, "5.00", summary.Metrics[1].Delta)
	assert.Equal(t, "$5.00", summary.Metrics[2].Value)
	assert.Equal(t, "5.00", summary.Metrics[3].Value)
}
