package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Row is one finished episode as shown in the charts.
type Row struct {
	Episode int
	Score   int
	Turns   int
	Outcome string
}

// Outcomes fixes the order of the outcome bars.
var Outcomes = []string{"won", "died", "timeout"}

// Render writes an HTML page with a score line, a turn line and an outcome histogram.
func Render(w io.Writer, title string, rows []Row) error {
	episodes := make([]string, 0, len(rows))
	scores := make([]opts.LineData, 0, len(rows))
	turns := make([]opts.LineData, 0, len(rows))
	counts := make(map[string]int, len(Outcomes))
	for _, r := range rows {
		episodes = append(episodes, strconv.Itoa(r.Episode))
		scores = append(scores, opts.LineData{Value: r.Score})
		turns = append(turns, opts.LineData{Value: r.Turns})
		counts[r.Outcome]++
	}

	scoreLine := charts.NewLine()
	scoreLine.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: "score per episode",
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)
	scoreLine.SetXAxis(episodes).AddSeries("score", scores)

	turnLine := charts.NewLine()
	turnLine.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Subtitle: "turns per episode",
		}),
	)
	turnLine.SetXAxis(episodes).AddSeries("turns", turns)

	bars := make([]opts.BarData, 0, len(Outcomes))
	for _, o := range Outcomes {
		bars = append(bars, opts.BarData{Value: counts[o]})
	}
	outcomeBar := charts.NewBar()
	outcomeBar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Subtitle: "outcomes",
		}),
	)
	outcomeBar.SetXAxis(Outcomes).AddSeries("episodes", bars)

	page := components.NewPage()
	page.AddCharts(
		scoreLine,
		turnLine,
		outcomeBar,
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}

// WriteFile renders the report into path, creating parent directories.
func WriteFile(path, title string, rows []Row) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer f.Close()
	return Render(f, title, rows)
}
