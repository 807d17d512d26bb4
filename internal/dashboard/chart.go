package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/serena/serena/internal/domain/health"
)

// ErrNoChartData is returned when a breakdown has no segments to draw.
var ErrNoChartData = errors.New(NoExpensesMessage)

// RenderChart draws the breakdown as a donut chart PNG.
func RenderChart(b Breakdown, width, height int) ([]byte, error) {
	if b.Empty() {
		return nil, ErrNoChartData
	}

	values := make([]chart.Value, 0, len(b.Segments))
	for _, s := range b.Segments {
		amount, _ := s.Amount.Float64()
		values = append(values, chart.Value{
			Label: s.Label,
			Value: amount,
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex(strings.TrimPrefix(s.Color, "#")),
				StrokeColor: chart.ColorWhite,
				StrokeWidth: 2,
				FontColor:   chart.ColorWhite,
				FontSize:    12,
			},
		})
	}

	donut := chart.DonutChart{
		Width:  width,
		Height: height,
		Values: values,
		Background: chart.Style{
			Padding:   chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
			FillColor: chart.ColorWhite,
		},
	}

	buf := bytes.NewBuffer(nil)
	if err := donut.Render(chart.PNG, buf); err != nil {
		return nil, fmt.Errorf("render expense chart: %w", err)
	}
	return buf.Bytes(), nil
}

// ErrNoTrendData is returned when a metric series has no usable readings.
var ErrNoTrendData = errors.New("No hay lecturas para este período")

const trendDateLayout = "2006-01-02"

// trendSeries splits a metric series into plottable lines. Blood pressure
// yields systolic and diastolic lines; temperature a single one. Readings
// that do not parse are skipped.
func trendSeries(m *health.Metrics) []chart.TimeSeries {
	names := []string{"Temperatura"}
	if m.Type == health.MetricBloodPressure {
		names = []string{"Sistólica", "Diastólica"}
	}
	out := make([]chart.TimeSeries, len(names))
	for i, n := range names {
		out[i].Name = n
	}

	for _, r := range m.Readings {
		at, err := time.Parse(trendDateLayout, r.Date)
		if err != nil {
			continue
		}
		var values []float64
		if m.Type == health.MetricBloodPressure {
			sys, dia, ok := strings.Cut(r.Value, "/")
			s, err1 := strconv.ParseFloat(strings.TrimSpace(sys), 64)
			d, err2 := strconv.ParseFloat(strings.TrimSpace(dia), 64)
			if !ok || err1 != nil || err2 != nil {
				continue
			}
			values = []float64{s, d}
		} else {
			v, err := strconv.ParseFloat(strings.TrimSpace(r.Value), 64)
			if err != nil {
				continue
			}
			values = []float64{v}
		}
		for i, v := range values {
			out[i].XValues = append(out[i].XValues, at)
			out[i].YValues = append(out[i].YValues, v)
		}
	}
	return out
}

var trendColors = []string{"dc2626", "1e40af"}

// RenderTrend draws a metric series as a line chart PNG.
func RenderTrend(m *health.Metrics, width, height int) ([]byte, error) {
	if m == nil {
		return nil, ErrNoTrendData
	}
	lines := trendSeries(m)
	if len(lines[0].XValues) == 0 {
		return nil, ErrNoTrendData
	}

	// Explicit ranges keep a single reading or a flat series drawable.
	xMin, xMax := lines[0].XValues[0], lines[0].XValues[0]
	yMin, yMax := lines[0].YValues[0], lines[0].YValues[0]
	series := make([]chart.Series, 0, len(lines))
	for i, l := range lines {
		for j, at := range l.XValues {
			if at.Before(xMin) {
				xMin = at
			}
			if at.After(xMax) {
				xMax = at
			}
			yMin = math.Min(yMin, l.YValues[j])
			yMax = math.Max(yMax, l.YValues[j])
		}
		l.Style = chart.Style{
			StrokeColor: drawing.ColorFromHex(trendColors[i%len(trendColors)]),
			StrokeWidth: 2,
			DotWidth:    3,
			DotColor:    drawing.ColorFromHex(trendColors[i%len(trendColors)]),
		}
		series = append(series, l)
	}

	graph := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding:   chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
			Range: &chart.ContinuousRange{
				Min: float64(xMin.Add(-12 * time.Hour).UnixNano()),
				Max: float64(xMax.Add(12 * time.Hour).UnixNano()),
			},
		},
		YAxis: chart.YAxis{
			Name:  m.Unit,
			Range: &chart.ContinuousRange{Min: math.Floor(yMin) - 1, Max: math.Ceil(yMax) + 1},
		},
		Series: series,
	}
	if len(series) > 1 {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}

	buf := bytes.NewBuffer(nil)
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, fmt.Errorf("render %s trend: %w", m.Type, err)
	}
	return buf.Bytes(), nil
}
