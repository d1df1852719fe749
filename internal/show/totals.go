package show

import "github.com/Vasu1712/scenyx-showtime/internal/models"

// Totals is the sum of scene durations and the sum of transition durations.
type Totals struct {
	Scenes      int
	Transitions int
}

// Total is the grand total.
func (t Totals) Total() int {
	return t.Scenes + t.Transitions
}

// ComputeTotals sums every scene and every transition in s, including
// transitions that no longer join adjacent scenes.
func ComputeTotals(s models.Show) Totals {
	var t Totals
	for _, sc := range s.Scenes {
		t.Scenes += sc.Duration
	}
	for _, tr := range s.Transitions {
		t.Transitions += tr.Duration
	}
	return t
}

// Summary is Totals in seconds and in M:SS form, ready to encode.
type Summary struct {
	Total           int    `json:"total" yaml:"total"`
	Scenes          int    `json:"scenes" yaml:"scenes"`
	Transitions     int    `json:"transitions" yaml:"transitions"`
	TotalText       string `json:"totalText" yaml:"totalText"`
	ScenesText      string `json:"scenesText" yaml:"scenesText"`
	TransitionsText string `json:"transitionsText" yaml:"transitionsText"`
}

func Summarize(s models.Show) Summary {
	t := ComputeTotals(s)
	return Summary{
		Total:           t.Total(),
		Scenes:          t.Scenes,
		Transitions:     t.Transitions,
		TotalText:       FormatDuration(t.Total()),
		ScenesText:      FormatDuration(t.Scenes),
		TransitionsText: FormatDuration(t.Transitions),
	}
}
