package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/errors"

	"github.com/julianpalladino/football-tracking/types"
)

// RenderChart writes an HTML bar chart of the success rate of each object.
// Objects without processed frames are drawn at zero.
func RenderChart(w io.Writer, title string, stats []types.ObjectStats) error {
	labels := make([]string, 0, len(stats))
	data := make([]opts.BarData, 0, len(stats))
	for _, s := range stats {
		rate, _ := s.SuccessRate()
		labels = append(labels, fmt.Sprintf("%s #%d", s.Name, s.ID))
		data = append(data, opts.BarData{
			Name:  fmt.Sprintf("%d/%d frames", s.Successful, s.Total),
			Value: Round(rate, 3),
		})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Tracking report", Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: Summarize(stats).String()}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "success %", Min: 0, Max: 100}),
	)
	bar.SetXAxis(labels).AddSeries("success rate", data)

	if err := bar.Render(w); err != nil {
		return errors.Wrap(err, "failed to render chart")
	}
	return nil
}
