package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/sirupsen/logrus"

	"github.com/marketboard/marketboard-go/internal/config"
	"github.com/marketboard/marketboard-go/internal/models"
)

const (
	// Moving-average windows over hourly buckets.
	maShortWindow = 5
	maLongWindow  = 20

	// movingAverageThreshold drives the "auto" policy: series whose first
	// hourly value exceeds it get MA columns. Index-scale series clear it,
	// volatility-scale series do not.
	movingAverageThreshold = 1000.0
)

// ResamplerService turns a raw series into its hourly view.
type ResamplerService struct {
	logger *logrus.Logger
}

// NewResamplerService creates a resampler with the given logger.
func NewResamplerService(logger *logrus.Logger) *ResamplerService {
	return &ResamplerService{logger: logger}
}

// Resample aggregates samples into 1-hour buckets aligned to hour
// boundaries. Each non-empty bucket carries the arithmetic mean of its
// samples downcast to float32; hours without samples produce no bucket.
// NaN and infinite samples are ignored, as is a bucket left with nothing
// after that. MA columns are attached per policy, see attachMovingAverages.
func (rs *ResamplerService) Resample(series *models.SeriesTable, policy string) (*models.ResampledSeries, error) {
	switch policy {
	case config.MovingAveragesAuto, config.MovingAveragesAlways, config.MovingAveragesNever:
	default:
		return nil, fmt.Errorf("unknown moving average policy %q", policy)
	}

	type accumulator struct {
		sum   float64
		count int
	}
	sums := make(map[int64]*accumulator)
	for _, s := range series.Samples {
		if math.IsNaN(s.Close) || math.IsInf(s.Close, 0) {
			continue
		}
		hour := s.Time.Truncate(time.Hour).Unix()
		acc := sums[hour]
		if acc == nil {
			acc = &accumulator{}
			sums[hour] = acc
		}
		acc.sum += s.Close
		acc.count++
	}

	hours := make([]int64, 0, len(sums))
	for hour := range sums {
		hours = append(hours, hour)
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i] < hours[j] })

	buckets := make([]models.Bucket, 0, len(hours))
	for _, hour := range hours {
		acc := sums[hour]
		buckets = append(buckets, models.Bucket{
			Time:  time.Unix(hour, 0).UTC(),
			Close: float32(acc.sum / float64(acc.count)),
		})
	}

	resampled := &models.ResampledSeries{
		Name:    series.Name,
		Buckets: buckets,
	}
	rs.attachMovingAverages(resampled, policy)

	rs.logger.WithFields(logrus.Fields{
		"series":          series.Name,
		"samples":         len(series.Samples),
		"buckets":         len(buckets),
		"moving_averages": resampled.HasMovingAverages,
	}).Debug("Resampled series")

	return resampled, nil
}

// attachMovingAverages adds the MA5/MA20 columns when the policy asks for
// them. Under "auto" the columns appear only when the first bucket value
// exceeds movingAverageThreshold. A bucket gets a value once its trailing
// window is full; earlier buckets stay nil. Values are rounded to two
// decimal places.
func (rs *ResamplerService) attachMovingAverages(series *models.ResampledSeries, policy string) {
	switch policy {
	case config.MovingAveragesNever:
		return
	case config.MovingAveragesAuto:
		if len(series.Buckets) == 0 || series.Buckets[0].Close <= movingAverageThreshold {
			return
		}
	}
	series.HasMovingAverages = true

	closes := make([]float64, len(series.Buckets))
	for i, b := range series.Buckets {
		closes[i] = float64(b.Close)
	}

	for i, v := range trailingSMA(closes, maShortWindow) {
		value := v
		series.Buckets[i+maShortWindow-1].MA5 = &value
	}
	for i, v := range trailingSMA(closes, maLongWindow) {
		value := v
		series.Buckets[i+maLongWindow-1].MA20 = &value
	}
}

// trailingSMA returns the simple moving average of values with the given
// period, rounded to two decimals. The result has len(values)-period+1
// entries, the first covering values[0:period]; fewer values than the
// period yield nothing.
func trailingSMA(values []float64, period int) []float64 {
	if len(values) < period {
		return nil
	}

	smaIndicator := trend.NewSmaWithPeriod[float64](period)
	result := helper.ChanToSlice(smaIndicator.Compute(helper.SliceToChan(values)))

	rounded := make([]float64, len(result))
	for i, v := range result {
		rounded[i] = math.Round(v*100) / 100
	}
	return rounded
}
