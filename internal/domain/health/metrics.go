package health

import (
	"strings"
	"time"
)

const (
	MetricBloodPressure = "blood_pressure"
	MetricTemperature   = "temperature"
)

var metricUnits = map[string]string{
	MetricBloodPressure: "mmHg",
	MetricTemperature:   "°C",
}

// ValidMetric reports whether t names a supported metric series.
func ValidMetric(t string) bool {
	_, ok := metricUnits[t]
	return ok
}

// ExtractMetric builds a series from symptom events ordered oldest first.
func ExtractMetric(metric string, events []*Event, loc *time.Location) *Metrics {
	out := &Metrics{Type: metric, Unit: metricUnits[metric], Readings: []MetricReading{}}
	for _, e := range events {
		if e.Category != CategoryPhysical || e.Subcategory != SubSymptoms {
			continue
		}
		text := strings.ToLower(e.Value)
		var (
			v  string
			ok bool
		)
		switch metric {
		case MetricBloodPressure:
			if strings.Contains(text, "presión") || strings.Contains(text, "presion") {
				v, ok = BloodPressure(text)
			}
		case MetricTemperature:
			if strings.Contains(text, "temperatura") {
				v, ok = Temperature(text)
			}
		}
		if !ok {
			continue
		}
		out.Readings = append(out.Readings, MetricReading{
			Date:   e.RecordedAt.In(loc).Format("2006-01-02"),
			Value:  v,
			Status: StatusFromRating(e.Rating),
		})
	}
	return out
}
