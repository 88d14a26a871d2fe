package services

import (
	"github.com/marketboard/marketboard-go/internal/models"
)

// Trace and panel styling. The palette keeps the primary line cool and the
// volatility panel warm so the two read apart at a glance.
const (
	primaryColor   = "#2E86AB"
	maShortColor   = "#F77F00"
	maLongColor    = "#06A77D"
	secondaryColor = "#D62828"
	secondaryFill  = "rgba(214, 40, 40, 0.1)"

	tickLabelLayout = "2006-01-02 15:04"

	// Panel layout fractions. Rendered heights follow plotly subplot math:
	// the spacing is carved out of the full figure before the height
	// fractions are applied.
	panelSpacing         = 0.1
	topPanelFraction     = 0.7
	topPanelFractionSolo = 1.0
	bottomPanelFraction  = 0.3

	maxTickCount        = 10
	annotationTitleSize = 16
)

// BuildChart assembles the figure document for one request. X positions
// are row ordinals, never timestamps, so sessions with market gaps plot
// without holes; the calendar shows up only through tick labels and hover
// text. Trace toggles drop traces, and turning the secondary panel off
// collapses it to zero height rather than re-scaling the whole figure.
func (ds *DashboardService) BuildChart(table *models.AlignedTable, state models.DisplayState) *models.ChartSpec {
	rows := table.Rows
	n := len(rows)

	x := make([]int, n)
	text := make([]string, n)
	closes := make([]float64, n)
	secondary := make([]float64, n)
	for i, row := range rows {
		x[i] = i
		text[i] = row.Time.Format(tickLabelLayout)
		closes[i] = float64(row.Close)
		secondary[i] = float64(row.CloseVIX)
	}

	traces := []models.Trace{{
		Type:          "scatter",
		Mode:          "lines",
		Name:          ds.opts.PrimaryLabel,
		X:             x,
		Y:             closes,
		Text:          text,
		Line:          &models.LineStyle{Color: primaryColor, Width: 2},
		HoverTemplate: "<b>%{text}</b><br>Price: " + ds.opts.Currency + "%{y:.2f}<extra></extra>",
		YAxis:         "y",
	}}

	if state.ShowMA5 && table.HasMovingAverages {
		traces = append(traces, models.Trace{
			Type:          "scatter",
			Mode:          "lines",
			Name:          "5H Avg",
			X:             x,
			Y:             maValues(rows, func(r models.AlignedRow) *float64 { return r.MA5 }),
			Text:          text,
			Line:          &models.LineStyle{Color: maShortColor, Width: 1.5, Dash: "dash"},
			HoverTemplate: "<b>%{text}</b><br>5H Avg: " + ds.opts.Currency + "%{y:.2f}<extra></extra>",
			YAxis:         "y",
		})
	}
	if state.ShowMA20 && table.HasMovingAverages {
		traces = append(traces, models.Trace{
			Type:          "scatter",
			Mode:          "lines",
			Name:          "20H Avg",
			X:             x,
			Y:             maValues(rows, func(r models.AlignedRow) *float64 { return r.MA20 }),
			Text:          text,
			Line:          &models.LineStyle{Color: maLongColor, Width: 1.5, Dash: "dot"},
			HoverTemplate: "<b>%{text}</b><br>20H Avg: " + ds.opts.Currency + "%{y:.2f}<extra></extra>",
			YAxis:         "y",
		})
	}
	if state.ShowSecondary {
		traces = append(traces, models.Trace{
			Type:          "scatter",
			Mode:          "lines",
			Name:          ds.opts.SecondaryLabel,
			X:             x,
			Y:             secondary,
			Text:          text,
			Line:          &models.LineStyle{Color: secondaryColor, Width: 2},
			Fill:          "tozeroy",
			FillColor:     secondaryFill,
			HoverTemplate: "<b>%{text}</b><br>" + ds.opts.SecondaryLabel + ": %{y:.2f}<extra></extra>",
			YAxis:         "y2",
		})
	}

	stride := n / maxTickCount
	if stride < 1 {
		stride = 1
	}
	tickVals := make([]int, 0, maxTickCount+1)
	tickText := make([]string, 0, maxTickCount+1)
	for i := 0; i < n; i += stride {
		tickVals = append(tickVals, i)
		tickText = append(tickText, text[i])
	}

	topDomain, bottomDomain := panelDomains(state.ShowSecondary)

	primaryAxisTitle := ds.opts.PrimaryLabel + " Price"
	if ds.opts.Currency != "" {
		primaryAxisTitle += " (" + ds.opts.Currency + ")"
	}
	secondaryAxisTitle := ""
	if state.ShowSecondary {
		secondaryAxisTitle = ds.opts.SecondaryLabel
	}

	return &models.ChartSpec{
		Data: traces,
		Layout: models.Layout{
			Height:     ds.opts.ChartHeight,
			HoverMode:  "x unified",
			ShowLegend: true,
			Legend: models.Legend{
				Orientation: "h",
				YAnchor:     "bottom",
				Y:           1.02,
				XAnchor:     "right",
				X:           1,
			},
			Margin: models.Margin{L: 60, R: 30, T: 80, B: 60},
			XAxis: models.XAxis{
				TickMode:  "array",
				TickVals:  tickVals,
				TickText:  tickText,
				TickAngle: -45,
			},
			YAxis: models.YAxis{
				Title:  models.AxisTitle{Text: primaryAxisTitle},
				Domain: topDomain,
			},
			YAxis2: models.YAxis{
				Title:  models.AxisTitle{Text: secondaryAxisTitle},
				Domain: bottomDomain,
				Anchor: "x",
			},
			Annotations: []models.Annotation{
				panelTitle(ds.opts.PrimaryLabel+" Price with Moving Averages", topDomain[1]),
				panelTitle(ds.opts.SecondaryLabel, bottomDomain[1]),
			},
		},
	}
}

// panelDomains splits the figure vertically between the two panels. With
// the secondary hidden its panel keeps a zero-height slot at the bottom so
// the top panel claims the rest of the figure.
func panelDomains(showSecondary bool) (top, bottom [2]float64) {
	usable := 1 - panelSpacing
	if !showSecondary {
		return [2]float64{1 - usable*topPanelFractionSolo, 1}, [2]float64{0, 0}
	}
	return [2]float64{1 - usable*topPanelFraction, 1}, [2]float64{0, usable * bottomPanelFraction}
}

func panelTitle(text string, y float64) models.Annotation {
	return models.Annotation{
		Text:      text,
		X:         0.5,
		Y:         y,
		XRef:      "paper",
		YRef:      "paper",
		XAnchor:   "center",
		YAnchor:   "bottom",
		ShowArrow: false,
		Font:      models.Font{Size: annotationTitleSize},
	}
}

func maValues(rows []models.AlignedRow, pick func(models.AlignedRow) *float64) []float64 {
	values := make([]float64, len(rows))
	for i, row := range rows {
		if v := pick(row); v != nil {
			values[i] = *v
		}
	}
	return values
}
