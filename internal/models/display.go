package models

import "time"

// DisplayState captures one request's view controls: the date window and
// the trace toggles. A nil Start or End means that bound was not supplied;
// filtering only applies when both are present.
type DisplayState struct {
	Start         *time.Time `json:"start,omitempty"`
	End           *time.Time `json:"end,omitempty"`
	ShowMA5       bool       `json:"show_ma5"`
	ShowMA20      bool       `json:"show_ma20"`
	ShowSecondary bool       `json:"show_secondary"`
}

// DefaultDisplayState returns the initial control state: full date span,
// every trace visible.
func DefaultDisplayState() DisplayState {
	return DisplayState{
		ShowMA5:       true,
		ShowMA20:      true,
		ShowSecondary: true,
	}
}

// HasDateRange reports whether both bounds were supplied. A single-sided
// range is treated as no filter at all.
func (s DisplayState) HasDateRange() bool {
	return s.Start != nil && s.End != nil
}
