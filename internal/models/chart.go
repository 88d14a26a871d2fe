package models

// ChartSpec is a renderer-ready figure description: a list of traces plus
// layout. The field names follow the plotly.js figure schema so the page
// can hand the whole document to Plotly.newPlot unchanged.
type ChartSpec struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one line on the chart. X carries row positions (0..n-1), never
// timestamps; the real timestamps ride along in Text for hover rendering.
type Trace struct {
	Type          string     `json:"type"`
	Mode          string     `json:"mode,omitempty"`
	Name          string     `json:"name"`
	X             []int      `json:"x"`
	Y             []float64  `json:"y"`
	Text          []string   `json:"text,omitempty"`
	Line          *LineStyle `json:"line,omitempty"`
	Fill          string     `json:"fill,omitempty"`
	FillColor     string     `json:"fillcolor,omitempty"`
	HoverTemplate string     `json:"hovertemplate,omitempty"`
	YAxis         string     `json:"yaxis,omitempty"`
}

// LineStyle mirrors plotly's trace line object.
type LineStyle struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
	Dash  string  `json:"dash,omitempty"`
}

// Layout holds the figure-level presentation settings.
type Layout struct {
	Height      int          `json:"height"`
	HoverMode   string       `json:"hovermode"`
	ShowLegend  bool         `json:"showlegend"`
	Legend      Legend       `json:"legend"`
	Margin      Margin       `json:"margin"`
	XAxis       XAxis        `json:"xaxis"`
	YAxis       YAxis        `json:"yaxis"`
	YAxis2      YAxis        `json:"yaxis2"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Legend places the trace legend horizontally above the top panel.
type Legend struct {
	Orientation string  `json:"orientation"`
	YAnchor     string  `json:"yanchor"`
	Y           float64 `json:"y"`
	XAnchor     string  `json:"xanchor"`
	X           float64 `json:"x"`
}

// Margin is the figure margin in pixels.
type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

// XAxis is the shared positional axis. Tick labels are explicit because the
// positions themselves carry no calendar meaning.
type XAxis struct {
	TickMode  string   `json:"tickmode"`
	TickVals  []int    `json:"tickvals"`
	TickText  []string `json:"ticktext"`
	TickAngle int      `json:"tickangle"`
}

// YAxis is one panel's value axis. Domain is the vertical slice of the
// figure the panel occupies, [0,1] fractions bottom to top.
type YAxis struct {
	Title  AxisTitle  `json:"title"`
	Domain [2]float64 `json:"domain"`
	Anchor string     `json:"anchor,omitempty"`
}

// AxisTitle wraps the axis title text the way plotly expects it.
type AxisTitle struct {
	Text string `json:"text"`
}

// Annotation is a paper-anchored text label, used for the panel titles.
type Annotation struct {
	Text      string  `json:"text"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	XAnchor   string  `json:"xanchor"`
	YAnchor   string  `json:"yanchor"`
	ShowArrow bool    `json:"showarrow"`
	Font      Font    `json:"font"`
}

// Font sets annotation text size.
type Font struct {
	Size int `json:"size"`
}
