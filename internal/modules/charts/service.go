// Package charts adapts finished metric matrices for presentation: row-major
// chart series for JSON consumers and rendered PNG line charts.
package charts

import (
	"fmt"

	"github.com/rs/zerolog"
	charts "github.com/vicanso/go-charts/v2"

	"github.com/quantrove/capscope/internal/domain"
)

// ChartDataPoint is a single point on a chart. Value is nil where the
// underlying cell is absent.
type ChartDataPoint struct {
	Time  string   `json:"time"` // YYYY-MM-DD
	Value *float64 `json:"value"`
}

// Series is one group's line.
type Series struct {
	Name   string           `json:"name"`
	Points []ChartDataPoint `json:"points"`
}

// LineOptions configure a rendered chart.
type LineOptions struct {
	Title      string
	YLabel     string
	Percentage bool // Render values as percentages (x100)
	Width      int
	Height     int
}

// Service converts matrices to chart data.
type Service struct {
	log zerolog.Logger
}

// NewService creates a new charts service.
func NewService(log zerolog.Logger) *Service {
	return &Service{log: log.With().Str("service", "charts").Logger()}
}

// SeriesFrom converts a matrix into one series per group, preserving absent
// cells as nil values.
func (s *Service) SeriesFrom(m *domain.Matrix) []Series {
	out := make([]Series, 0, len(m.Groups()))
	for _, g := range m.Groups() {
		points := make([]ChartDataPoint, m.Rows())
		for i := 0; i < m.Rows(); i++ {
			points[i] = ChartDataPoint{Time: m.Period(i).Format(domain.DateFormat)}
			if c := m.At(i, g); c.Valid {
				v := c.Value
				points[i].Value = &v
			}
		}
		out = append(out, Series{Name: g, Points: points})
	}
	return out
}

// RenderLine renders the matrix as a comparative PNG line chart, one line
// per group. Absent cells become chart gaps rather than zeros.
func (s *Service) RenderLine(m *domain.Matrix, opts LineOptions) ([]byte, error) {
	if m.Rows() == 0 {
		return nil, fmt.Errorf("cannot render empty matrix")
	}
	if opts.Width <= 0 {
		opts.Width = 1000
	}
	if opts.Height <= 0 {
		opts.Height = 600
	}

	scale := 1.0
	if opts.Percentage {
		scale = 100.0
	}

	labels := make([]string, m.Rows())
	for i := 0; i < m.Rows(); i++ {
		labels[i] = m.Period(i).Format(domain.DateFormat)
	}

	values := make([][]float64, 0, len(m.Groups()))
	for _, g := range m.Groups() {
		line := make([]float64, m.Rows())
		for i := 0; i < m.Rows(); i++ {
			if c := m.At(i, g); c.Valid {
				line[i] = c.Value * scale
			} else {
				line[i] = charts.GetNullValue()
			}
		}
		values = append(values, line)
	}

	title := opts.Title
	if opts.YLabel != "" {
		title += " (" + opts.YLabel + ")"
	}

	painter, err := charts.LineRender(values,
		charts.TitleTextOptionFunc(title),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			BoundaryGap: charts.FalseFlag(),
			SplitNumber: 10,
		}),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: m.Groups(),
			Left: charts.PositionRight,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(opts.Width),
		charts.HeightOptionFunc(opts.Height),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	img, err := painter.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}

	s.log.Debug().Str("title", opts.Title).Int("series", len(values)).Msg("Chart rendered")
	return img, nil
}
