// Package report turns the per-object tracking counters into text, summary
// statistics, charts and run records.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"

	"github.com/julianpalladino/football-tracking/types"
)

// Lines formats one block per object with its tracked frame counts and the
// success rate rounded to three decimals
func Lines(stats []types.ObjectStats) []string {
	lines := make([]string, 0, 2*len(stats))
	for _, s := range stats {
		lines = append(lines,
			fmt.Sprintf("===== Tracked object %s #%d ====", s.Name, s.ID),
			fmt.Sprintf("Successfully tracked frames: %d/%d (%%%s)", s.Successful, s.Total, FormatRate(s)),
		)
	}
	return lines
}

// FormatRate returns the rounded success rate with at least one decimal, or
// "n/a" when no frame was processed
func FormatRate(s types.ObjectStats) string {
	rate, err := s.SuccessRate()
	if err != nil {
		return "n/a"
	}
	out := strconv.FormatFloat(Round(rate, 3), 'f', -1, 64)
	if !strings.Contains(out, ".") {
		out += ".0"
	}
	return out
}

// Round rounds v to the given number of decimals, half away from zero
func Round(v float64, decimals int) float64 {
	return scalar.Round(v, decimals)
}

// Summary aggregates the success rates of the objects that processed at
// least one frame
type Summary struct {
	Objects int
	Rated   int
	Mean    float64
	Min     float64
	Max     float64
}

// Summarize computes mean, min and max success rates
func Summarize(stats []types.ObjectStats) Summary {
	summary := Summary{Objects: len(stats)}

	rates := make([]float64, 0, len(stats))
	for _, s := range stats {
		if rate, err := s.SuccessRate(); err == nil {
			rates = append(rates, rate)
		}
	}
	summary.Rated = len(rates)
	if len(rates) == 0 {
		return summary
	}

	summary.Mean = stat.Mean(rates, nil)
	summary.Min = floats.Min(rates)
	summary.Max = floats.Max(rates)
	return summary
}

// String renders the summary on one line
func (s Summary) String() string {
	if s.Rated == 0 {
		return fmt.Sprintf("%d objects, no frames processed", s.Objects)
	}
	return fmt.Sprintf("%d objects, success rate mean %.3f%% (min %.3f%%, max %.3f%%)",
		s.Objects, s.Mean, s.Min, s.Max)
}

// Run describes one finished tracking session
type Run struct {
	ID             string
	InputPath      string
	ConditionsPath string
	OutputPath     string
	Method         string
	StartedAt      time.Time
	FinishedAt     time.Time
	Objects        []types.ObjectStats
}

// NewRun builds the record of a session that started at started and just
// finished
func NewRun(cfg types.TrackingConfig, stats []types.ObjectStats, started time.Time) Run {
	return Run{
		ID:             uuid.NewString(),
		InputPath:      cfg.InputPath,
		ConditionsPath: cfg.ConditionsPath,
		OutputPath:     cfg.OutputPath,
		Method:         cfg.Method,
		StartedAt:      started,
		FinishedAt:     time.Now(),
		Objects:        stats,
	}
}

// Duration returns how long the run took
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
