package health

import (
	"testing"
	"time"
)

func ev(category, sub, value string, rating int, ago time.Duration) *Event {
	return &Event{
		Category:    category,
		Subcategory: sub,
		Value:       value,
		Rating:      rating,
		RecordedAt:  time.Now().Add(-ago),
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.HasData {
		t.Error("expected hasData false")
	}
	if s.PhysicalVars.BloodPressure.Value != "120/80" || s.PhysicalVars.Temperature.Value != "36.5" {
		t.Errorf("expected defaults, got %+v", s.PhysicalVars)
	}
	if s.PhysicalVars.OxygenSaturation.Value != "98" || s.PhysicalVars.Weight.Value != "70" {
		t.Errorf("expected defaults, got %+v", s.PhysicalVars)
	}
	if s.Sleep.Hours != "8" || s.CognitiveState.Rating != 8 || s.PhysicalState.Rating != 8 || s.EmotionalState.Rating != 7 {
		t.Errorf("unexpected defaults %+v", s)
	}
	if s.GeneralConclusion != ConclusionGood {
		t.Errorf("expected Bueno, got %s", s.GeneralConclusion)
	}
	if s.AutonomyState != nil {
		t.Error("expected no autonomy state")
	}
}

func TestSummarize_Vitals(t *testing.T) {
	events := []*Event{
		ev(CategoryPhysical, SubSymptoms, "Temperatura de 37,8 grados", 6, time.Hour),
		ev(CategoryPhysical, SubSymptoms, "Presión 135/85", 9, 2*time.Hour),
		ev(CategoryPhysical, SubSymptoms, "Oxígeno en 94%", 4, 3*time.Hour),
		ev(CategoryPhysical, SubSymptoms, "temperatura 36.2", 9, 4*time.Hour),
	}
	s := Summarize(events)
	if !s.HasData {
		t.Fatal("expected hasData")
	}
	if got := s.PhysicalVars.Temperature; got.Value != "37.8" || got.Status != StatusModerate {
		t.Errorf("expected newest temperature 37.8 Moderado, got %+v", got)
	}
	if got := s.PhysicalVars.BloodPressure; got.Value != "135/85" || got.Status != StatusNormal {
		t.Errorf("unexpected blood pressure %+v", got)
	}
	if got := s.PhysicalVars.OxygenSaturation; got.Value != "94" || got.Status != StatusLow {
		t.Errorf("unexpected oxygenation %+v", got)
	}
}

func TestSummarize_StatesAndConclusion(t *testing.T) {
	events := []*Event{
		ev(CategoryCognitive, "Memoria", "Olvidó el almuerzo", 4, time.Hour),
		ev(CategoryEmotional, "Ánimo", "Triste", 3, 2*time.Hour),
		ev(CategoryPhysical, SubMobility, "Camina con bastón", 5, 3*time.Hour),
		ev(CategoryPhysical, SubSleep, "Durmió 5,5 horas", 5, 4*time.Hour),
		ev(CategoryAutonomy, "Higiene", "Se baña con ayuda", 6, 5*time.Hour),
		ev(CategoryCognitive, "Memoria", "Lúcido", 9, 6*time.Hour),
	}
	s := Summarize(events)
	if s.CognitiveState.Rating != 4 || s.CognitiveState.Description != "Olvidó el almuerzo" {
		t.Errorf("expected newest cognitive event, got %+v", s.CognitiveState)
	}
	if s.PhysicalState.Rating != 5 || s.PhysicalState.Description != "Camina con bastón" {
		t.Errorf("unexpected physical state %+v", s.PhysicalState)
	}
	if s.Sleep.Hours != "5,5" || s.Sleep.Status != StatusModerate {
		t.Errorf("unexpected sleep %+v", s.Sleep)
	}
	if s.AutonomyState == nil || s.AutonomyState.Rating != 6 {
		t.Errorf("unexpected autonomy %+v", s.AutonomyState)
	}
	// (4+5+3)/3 = 4
	if s.GeneralConclusion != ConclusionBad {
		t.Errorf("expected Malo, got %s", s.GeneralConclusion)
	}
}

func TestSummarize_OnlyRecentWindow(t *testing.T) {
	var events []*Event
	for i := 0; i < SummaryWindow; i++ {
		events = append(events, ev(CategoryMedication, "Dosis", "Tomó pastilla", 8, time.Duration(i)*time.Hour))
	}
	events = append(events, ev(CategoryCognitive, "Memoria", "Confuso", 1, 20*time.Hour))
	s := Summarize(events)
	if s.CognitiveState.Rating != 8 {
		t.Errorf("events beyond the window must be ignored, got %+v", s.CognitiveState)
	}
}

func TestStatusHelpers(t *testing.T) {
	tests := []struct {
		rating int
		want   string
	}{
		{10, StatusNormal}, {8, StatusNormal}, {7, StatusModerate}, {5, StatusModerate}, {4, StatusLow}, {0, StatusLow},
	}
	for _, tt := range tests {
		if got := StatusFromRating(tt.rating); got != tt.want {
			t.Errorf("StatusFromRating(%d) = %s, want %s", tt.rating, got, tt.want)
		}
	}
	if SleepStatus(7) != StatusNormal || SleepStatus(6.5) != StatusModerate || SleepStatus(4) != StatusLow {
		t.Error("unexpected sleep status")
	}
	if Conclusion(7, 7, 7) != ConclusionGood || Conclusion(5, 5, 6) != ConclusionFair || Conclusion(4, 5, 5) != ConclusionBad {
		t.Error("unexpected conclusion")
	}
}

func TestExtractMetric(t *testing.T) {
	events := []*Event{
		ev(CategoryPhysical, SubSymptoms, "Presión 140/90", 4, 3*time.Hour),
		ev(CategoryPhysical, SubSymptoms, "Temperatura 38,1", 3, 2*time.Hour),
		ev(CategoryPhysical, SubSymptoms, "presion 120/80", 9, time.Hour),
		ev(CategoryCognitive, "Memoria", "presión 1/1", 9, time.Hour),
	}
	bp := ExtractMetric(MetricBloodPressure, events, time.UTC)
	if bp.Unit != "mmHg" || len(bp.Readings) != 2 {
		t.Fatalf("unexpected series %+v", bp)
	}
	if bp.Readings[0].Value != "140/90" || bp.Readings[1].Value != "120/80" {
		t.Errorf("expected oldest first, got %+v", bp.Readings)
	}
	temp := ExtractMetric(MetricTemperature, events, time.UTC)
	if len(temp.Readings) != 1 || temp.Readings[0].Value != "38.1" || temp.Readings[0].Status != StatusLow {
		t.Errorf("unexpected temperature series %+v", temp.Readings)
	}
}

func TestCategoryTokens(t *testing.T) {
	if name, ok := NameForToken(TokenEmotional); !ok || name != CategoryEmotional {
		t.Errorf("unexpected mapping %s", name)
	}
	if _, ok := NameForToken(TokenAll); ok {
		t.Error("all must not map to a category")
	}
	if TokenForName(CategoryAutonomy) != TokenAutonomy {
		t.Error("expected autonomy token")
	}
	if TokenForName("Desconocida") != TokenPhysical {
		t.Error("unknown names should map to physical")
	}
}

func TestToHistoryItem_Truncates(t *testing.T) {
	long := ""
	for i := 0; i < 120; i++ {
		long += "á"
	}
	e := &Event{ID: 3, OriginalText: long, RecordedAt: time.Date(2024, 3, 15, 14, 5, 0, 0, time.UTC)}
	it := e.ToHistoryItem(time.UTC)
	if it.Date != "15/03/2024" || it.Time != "14:05" {
		t.Errorf("unexpected date/time %s %s", it.Date, it.Time)
	}
	if n := len([]rune(it.OriginalText)); n != 103 {
		t.Errorf("expected 100 runes plus ellipsis, got %d", n)
	}
}
