package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/serena/serena/internal/domain/health"
	"github.com/serena/serena/pkg/period"
)

// Status classes used by the vital sign and weekly summary indicators.
const (
	ClassGood     = "good"
	ClassModerate = "moderate"
	ClassBad      = "bad"
)

type CurrentStatus struct {
	Status string `json:"status"`
	Score  int    `json:"score"`
	Emoji  string `json:"emoji"`
}

type BloodPressure struct {
	Systolic  int `json:"systolic"`
	Diastolic int `json:"diastolic"`
}

type VitalSigns struct {
	BloodPressure BloodPressure `json:"bloodPressure"`
	Temperature   float64       `json:"temperature"`
	Oxygenation   int           `json:"oxygenation"`
}

type ScoreItem struct {
	Score       int    `json:"score"`
	Description string `json:"description"`
}

type WeeklySummary struct {
	Physical  ScoreItem `json:"physical"`
	Cognitive ScoreItem `json:"cognitive"`
	Emotional ScoreItem `json:"emotional"`
	Autonomy  ScoreItem `json:"autonomy"`
}

// Overview is the health summary reshaped for the dashboard cards.
type Overview struct {
	HasData       bool           `json:"hasData"`
	CurrentStatus *CurrentStatus `json:"currentStatus"`
	VitalSigns    *VitalSigns    `json:"vitalSigns"`
	NormalValues  VitalSigns     `json:"normalValues"`
	WeeklySummary *WeeklySummary `json:"weeklySummary"`
	Sleep         *health.Sleep  `json:"sleep,omitempty"`
}

// HealthEvent is a history row reshaped for display.
type HealthEvent struct {
	ID           int64     `json:"id"`
	Category     string    `json:"category"`
	CategoryName string    `json:"categoryName"`
	Subcategory  string    `json:"subcategory"`
	Description  string    `json:"description"`
	OriginalText string    `json:"originalText"`
	Date         time.Time `json:"date"`
	Score        int       `json:"score"`
	Edited       bool      `json:"edited"`
}

// NormalValues are the reference readings shown next to the patient's.
var NormalValues = VitalSigns{
	BloodPressure: BloodPressure{Systolic: 130, Diastolic: 80},
	Temperature:   36.5,
	Oxygenation:   98,
}

const derivedAutonomy = "Se deriva de los datos de estado físico"

// ToOverview converts a backend summary. Vital sign values that do not parse
// are reported as zero.
func ToOverview(s *health.Summary) *Overview {
	o := &Overview{HasData: s.HasData, NormalValues: NormalValues}
	if !s.HasData {
		return o
	}

	score, emoji := conclusionScore(s.GeneralConclusion)
	o.CurrentStatus = &CurrentStatus{Status: s.GeneralConclusion, Score: score, Emoji: emoji}

	sys, dia := splitBloodPressure(s.PhysicalVars.BloodPressure.Value)
	temp, _ := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s.PhysicalVars.Temperature.Value), ",", "."), 64)
	ox, _ := strconv.Atoi(strings.TrimSpace(s.PhysicalVars.OxygenSaturation.Value))
	o.VitalSigns = &VitalSigns{
		BloodPressure: BloodPressure{Systolic: sys, Diastolic: dia},
		Temperature:   temp,
		Oxygenation:   ox,
	}

	autonomy := ScoreItem{Score: max(6, s.PhysicalState.Rating-1), Description: derivedAutonomy}
	if s.AutonomyState != nil {
		autonomy = ScoreItem{Score: s.AutonomyState.Rating, Description: s.AutonomyState.Description}
	}
	o.WeeklySummary = &WeeklySummary{
		Physical:  ScoreItem{Score: s.PhysicalState.Rating, Description: s.PhysicalState.Description},
		Cognitive: ScoreItem{Score: s.CognitiveState.Rating, Description: s.CognitiveState.Description},
		Emotional: ScoreItem{Score: s.EmotionalState.Rating, Description: s.EmotionalState.Description},
		Autonomy:  autonomy,
	}
	sleep := s.Sleep
	o.Sleep = &sleep
	return o
}

func conclusionScore(conclusion string) (int, string) {
	switch conclusion {
	case health.ConclusionGood:
		return 8, "😊"
	case health.ConclusionFair:
		return 6, "🙂"
	case health.ConclusionBad:
		return 4, "☹️"
	default:
		return 5, "😐"
	}
}

func splitBloodPressure(v string) (int, int) {
	parts := strings.SplitN(strings.TrimSpace(v), "/", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	s, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
	d, _ := strconv.Atoi(strings.TrimSpace(parts[1]))
	return s, d
}

// BloodPressureClass classifies a reading.
func BloodPressureClass(bp BloodPressure) string {
	switch {
	case bp.Systolic > 140 || bp.Diastolic > 90:
		return ClassBad
	case bp.Systolic > 130 || bp.Diastolic > 85:
		return ClassModerate
	default:
		return ClassGood
	}
}

// TemperatureClass classifies a body temperature in °C.
func TemperatureClass(t float64) string {
	switch {
	case t > 38:
		return ClassBad
	case t > 37.5:
		return ClassModerate
	default:
		return ClassGood
	}
}

// OxygenClass classifies an oxygen saturation percentage.
func OxygenClass(o int) string {
	switch {
	case o < 90:
		return ClassBad
	case o < 95:
		return ClassModerate
	default:
		return ClassGood
	}
}

// ScoreClass classifies a 0-10 weekly score.
func ScoreClass(score int) string {
	switch {
	case score >= 8:
		return ClassGood
	case score >= 5:
		return ClassModerate
	default:
		return ClassBad
	}
}

// HealthSummary fetches the summary and converts it to an Overview.
func (c *Client) HealthSummary(ctx context.Context, patientID int64, p period.Period, rng period.Range) (*Overview, error) {
	var raw health.Summary
	if err := c.do(ctx, "health_summary", http.MethodGet, "/api/health/summary",
		periodQuery(patientID, p, rng), nil, &raw, "Error al obtener resumen de salud"); err != nil {
		return nil, err
	}
	return ToOverview(&raw), nil
}

// HealthHistory fetches events of the period. category is a filter token;
// "all" or empty fetch every category.
func (c *Client) HealthHistory(ctx context.Context, patientID int64, p period.Period, rng period.Range, category string) ([]HealthEvent, error) {
	q := periodQuery(patientID, p, rng)
	if _, ok := health.NameForToken(category); ok {
		q.Set("category", category)
	}
	var raw health.HistoryResponse
	if err := c.do(ctx, "health_history", http.MethodGet, "/api/health/history",
		q, nil, &raw, "Error al obtener historial de salud"); err != nil {
		return nil, err
	}
	loc := c.now().Location()
	out := make([]HealthEvent, 0, len(raw.History))
	for _, it := range raw.History {
		at, err := time.ParseInLocation("02/01/2006 15:04", it.Date+" "+it.Time, loc)
		if err != nil {
			return nil, &Error{Kind: KindDecode, Status: http.StatusOK, Message: "Respuesta inválida del servidor", Err: err}
		}
		out = append(out, HealthEvent{
			ID:           it.ID,
			Category:     health.TokenForName(it.Category),
			CategoryName: it.Category,
			Subcategory:  it.Subcategory,
			Description:  it.Value,
			OriginalText: it.OriginalText,
			Date:         at,
			Score:        it.Rating,
			Edited:       it.Edited,
		})
	}
	return out, nil
}

// HealthMetrics fetches a metric series (blood_pressure or temperature).
func (c *Client) HealthMetrics(ctx context.Context, patientID int64, metric string, p period.Period, rng period.Range) (*health.Metrics, error) {
	if !health.ValidMetric(metric) {
		return nil, validationError("Tipo de métrica no válido")
	}
	var out health.Metrics
	if err := c.do(ctx, "health_metrics", http.MethodGet, "/api/health/metrics/"+url.PathEscape(metric),
		periodQuery(patientID, p, rng), nil, &out, "Error al obtener métricas de salud"); err != nil {
		return nil, err
	}
	return &out, nil
}

// HealthEventEdit is what the caregiver changes on a health event.
type HealthEventEdit struct {
	CategoryName string
	Value        string
	Rating       int
}

// UpdateHealthEvent sends an edit. Expense items that ended up in the health
// history cannot be edited from here.
func (c *Client) UpdateHealthEvent(ctx context.Context, id int64, in HealthEventEdit) (*health.HistoryItem, error) {
	if strings.Contains(strings.ToLower(in.CategoryName), "gasto") {
		return nil, validationError("Los items de gastos no pueden editarse desde el dashboard de salud")
	}
	value := strings.TrimSpace(in.Value)
	if value == "" {
		return nil, validationError("Por favor, complete la descripción")
	}
	if in.Rating < 0 || in.Rating > 10 {
		return nil, validationError("La calificación debe estar entre 0 y 10")
	}
	body := health.UpdateRequest{Value: &value, Rating: &in.Rating}
	var out health.HistoryItem
	if err := c.do(ctx, "update_health_event", http.MethodPut, "/api/health/history/"+strconv.FormatInt(id, 10),
		nil, body, &out, "Error actualizando evento de salud"); err != nil {
		return nil, err
	}
	return &out, nil
}
