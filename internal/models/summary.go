package models

// MetricDirection is the movement indicator attached to a delta.
type MetricDirection string

const (
	DirectionUp   MetricDirection = "up"
	DirectionDown MetricDirection = "down"
	DirectionFlat MetricDirection = "flat"
)

// Metric is one headline statistic, preformatted for display.
type Metric struct {
	Label     string          `json:"label"`
	Value     string          `json:"value"`
	Delta     string          `json:"delta,omitempty"`
	Direction MetricDirection `json:"direction,omitempty"`
}

// Summary is the set of headline metrics for the current view. HasData is
// false when the filtered table is empty; consumers render nothing instead
// of indexing into missing rows.
type Summary struct {
	HasData bool     `json:"has_data"`
	Metrics []Metric `json:"metrics,omitempty"`
}
