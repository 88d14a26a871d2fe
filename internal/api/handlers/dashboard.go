package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/marketboard/marketboard-go/internal/middleware"
	"github.com/marketboard/marketboard-go/internal/models"
	"github.com/marketboard/marketboard-go/internal/services"
	"github.com/marketboard/marketboard-go/internal/utils"
)

// dateLayout is the wire format for the start/end query parameters.
const dateLayout = "2006-01-02"

type DashboardHandler struct {
	dashboard *services.DashboardService
	logger    *logrus.Logger
}

func NewDashboardHandler(dashboard *services.DashboardService, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		logger:    logger,
	}
}

// MetaResponse tells the page what to render before the first data call:
// labels, the available date span, and the default control state.
type MetaResponse struct {
	PrimaryLabel      string              `json:"primary_label"`
	SecondaryLabel    string              `json:"secondary_label"`
	Currency          string              `json:"currency"`
	HasData           bool                `json:"has_data"`
	HasMovingAverages bool                `json:"has_moving_averages"`
	Rows              int                 `json:"rows"`
	MinDate           string              `json:"min_date,omitempty"`
	MaxDate           string              `json:"max_date,omitempty"`
	Defaults          models.DisplayState `json:"defaults"`
	Timestamp         time.Time           `json:"timestamp"`
}

// TableResponse is the raw-data tail view.
type TableResponse struct {
	Rows      []models.AlignedRow `json:"rows"`
	Total     int                 `json:"total"`
	Limit     int                 `json:"limit"`
	Timestamp time.Time           `json:"timestamp"`
}

// GetMeta handles GET /api/v1/dashboard/meta.
func (h *DashboardHandler) GetMeta(c *gin.Context) {
	opts := h.dashboard.Options()
	table := h.dashboard.Table()

	response := MetaResponse{
		PrimaryLabel:      opts.PrimaryLabel,
		SecondaryLabel:    opts.SecondaryLabel,
		Currency:          opts.Currency,
		HasMovingAverages: table.HasMovingAverages,
		Rows:              table.Len(),
		Defaults:          models.DefaultDisplayState(),
		Timestamp:         time.Now(),
	}
	if first, last, ok := h.dashboard.Span(); ok {
		response.HasData = true
		response.MinDate = first.Format(dateLayout)
		response.MaxDate = last.Format(dateLayout)
	}

	c.JSON(http.StatusOK, response)
}

// GetChart handles GET /api/v1/dashboard/chart. The response is a plotly
// figure document built from the filtered table and the trace toggles.
func (h *DashboardHandler) GetChart(c *gin.Context) {
	state, err := parseDisplayState(c)
	if err != nil {
		h.logger.WithError(err).Warn("Rejected chart query")
		middleware.RecordError(c, err, "invalid display state")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filtered := h.dashboard.Filter(state)
	middleware.AddSpanAttribute(c, "dashboard.rows", filtered.Len())

	c.JSON(http.StatusOK, h.dashboard.BuildChart(filtered, state))
}

// GetSummary handles GET /api/v1/dashboard/summary.
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	state, err := parseDisplayState(c)
	if err != nil {
		h.logger.WithError(err).Warn("Rejected summary query")
		middleware.RecordError(c, err, "invalid display state")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filtered := h.dashboard.Filter(state)
	middleware.AddSpanAttribute(c, "dashboard.rows", filtered.Len())

	c.JSON(http.StatusOK, h.dashboard.Summarize(filtered))
}

// GetTable handles GET /api/v1/dashboard/table.
func (h *DashboardHandler) GetTable(c *gin.Context) {
	state, err := parseDisplayState(c)
	if err != nil {
		h.logger.WithError(err).Warn("Rejected table query")
		middleware.RecordError(c, err, "invalid display state")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			h.logger.WithField("limit", raw).Warn("Rejected table query")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Limit must be a positive integer"})
			return
		}
	}

	filtered := h.dashboard.Filter(state)
	rows := h.dashboard.TableTail(filtered, limit)
	if limit <= 0 {
		limit = h.dashboard.Options().TableLimit
	}

	c.JSON(http.StatusOK, TableResponse{
		Rows:      rows,
		Total:     filtered.Len(),
		Limit:     limit,
		Timestamp: time.Now(),
	})
}

// parseDisplayState reads the view controls from the query string. Dates
// use YYYY-MM-DD; the toggles accept strconv.ParseBool forms and default
// to on. Supplying only one of start/end is allowed and means no filter.
func parseDisplayState(c *gin.Context) (models.DisplayState, error) {
	state := models.DefaultDisplayState()

	if raw := c.Query("start"); raw != "" {
		ts, err := time.Parse(dateLayout, raw)
		if err != nil {
			return state, utils.NewValidationErrorf("invalid start date %q, want YYYY-MM-DD", raw)
		}
		state.Start = &ts
	}
	if raw := c.Query("end"); raw != "" {
		ts, err := time.Parse(dateLayout, raw)
		if err != nil {
			return state, utils.NewValidationErrorf("invalid end date %q, want YYYY-MM-DD", raw)
		}
		state.End = &ts
	}

	for name, dst := range map[string]*bool{
		"ma5":       &state.ShowMA5,
		"ma20":      &state.ShowMA20,
		"secondary": &state.ShowSecondary,
	} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return state, utils.NewValidationErrorf("invalid %s flag %q, want a boolean", name, raw)
		}
		*dst = value
	}

	return state, nil
}
