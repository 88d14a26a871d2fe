package services

import (
	"github.com/sirupsen/logrus"

	"github.com/marketboard/marketboard-go/internal/models"
)

// AlignerService joins the two hourly series into the table the dashboard
// renders from.
type AlignerService struct {
	logger *logrus.Logger
}

// NewAlignerService creates an aligner with the given logger.
func NewAlignerService(logger *logrus.Logger) *AlignerService {
	return &AlignerService{logger: logger}
}

// Align left-joins the secondary series onto the primary's bucket times.
// Only the secondary close is taken; its own MA columns, if any, never
// reach the joined table. Rows missing the secondary value, or missing an
// MA value while the primary carries MA columns, are dropped. The result
// stays sorted ascending because the primary is.
func (as *AlignerService) Align(primary, secondary *models.ResampledSeries) *models.AlignedTable {
	secondaryCloses := make(map[int64]float32, len(secondary.Buckets))
	for _, b := range secondary.Buckets {
		secondaryCloses[b.Time.Unix()] = b.Close
	}

	rows := make([]models.AlignedRow, 0, len(primary.Buckets))
	for _, b := range primary.Buckets {
		closeVIX, ok := secondaryCloses[b.Time.Unix()]
		if !ok {
			continue
		}
		if primary.HasMovingAverages && (b.MA5 == nil || b.MA20 == nil) {
			continue
		}
		rows = append(rows, models.AlignedRow{
			Time:     b.Time,
			Close:    b.Close,
			MA5:      b.MA5,
			MA20:     b.MA20,
			CloseVIX: closeVIX,
		})
	}

	as.logger.WithFields(logrus.Fields{
		"primary_buckets":   len(primary.Buckets),
		"secondary_buckets": len(secondary.Buckets),
		"aligned_rows":      len(rows),
	}).Debug("Aligned series")

	return &models.AlignedTable{
		Rows:              rows,
		HasMovingAverages: primary.HasMovingAverages,
	}
}
