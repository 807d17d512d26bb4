package dashboard

import (
	"bytes"
	"errors"
	"testing"

	"github.com/serena/serena/internal/domain/health"
)

func TestRenderChart(t *testing.T) {
	png, err := RenderChart(ExpenseBreakdown(amounts("Vivienda", 45000, "Salud", 35000)), 400, 400)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("expected PNG output")
	}
}

func TestRenderChart_Empty(t *testing.T) {
	if _, err := RenderChart(ExpenseBreakdown(nil), 400, 400); !errors.Is(err, ErrNoChartData) {
		t.Errorf("expected ErrNoChartData, got %v", err)
	}
}

func TestRenderTrend_BloodPressure(t *testing.T) {
	m := &health.Metrics{Type: health.MetricBloodPressure, Unit: "mmHg", Readings: []health.MetricReading{
		{Date: "2024-03-10", Value: "145/92"},
		{Date: "2024-03-11", Value: "sin dato"},
		{Date: "2024-03-12", Value: "130/85"},
	}}
	lines := trendSeries(m)
	if len(lines) != 2 || len(lines[0].YValues) != 2 || lines[1].YValues[1] != 85 {
		t.Fatalf("unexpected series %+v", lines)
	}

	png, err := RenderTrend(m, 480, 240)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("expected PNG output")
	}
}

func TestRenderTrend_SingleFlatReading(t *testing.T) {
	m := &health.Metrics{Type: health.MetricTemperature, Readings: []health.MetricReading{{Date: "2024-03-10", Value: "36.5"}}}
	if _, err := RenderTrend(m, 480, 240); err != nil {
		t.Errorf("a single reading should still draw, got %v", err)
	}
}

func TestRenderTrend_Empty(t *testing.T) {
	m := &health.Metrics{Type: health.MetricTemperature, Readings: []health.MetricReading{{Date: "ayer", Value: "36.5"}}}
	if _, err := RenderTrend(m, 480, 240); !errors.Is(err, ErrNoTrendData) {
		t.Errorf("expected ErrNoTrendData, got %v", err)
	}
	if _, err := RenderTrend(nil, 480, 240); !errors.Is(err, ErrNoTrendData) {
		t.Errorf("expected ErrNoTrendData for nil, got %v", err)
	}
}
