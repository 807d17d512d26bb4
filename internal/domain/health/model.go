package health

import "time"

// Event maps to the health_events table. Category holds the display name
// ("Salud Física", ...), see categories.go for the token mapping.
type Event struct {
	ID           int64     `db:"id" json:"id"`
	PatientID    int64     `db:"patient_id" json:"patient_id"`
	MessageID    *int64    `db:"message_id" json:"message_id,omitempty"`
	Category     string    `db:"category" json:"category"`
	Subcategory  string    `db:"subcategory" json:"subcategory"`
	Value        string    `db:"value" json:"value"`
	Rating       int       `db:"rating" json:"rating"`
	Confidence   float64   `db:"confidence" json:"confidence"`
	OriginalText string    `db:"original_text" json:"original_text"`
	Edited       bool      `db:"edited" json:"edited"`
	RecordedAt   time.Time `db:"recorded_at" json:"recorded_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Reading is a vital sign value with its qualitative status.
type Reading struct {
	Value  string `json:"value"`
	Status string `json:"status"`
}

type Weight struct {
	Value  string `json:"value"`
	Status string `json:"status"`
	BMI    string `json:"bmi"`
}

type PhysicalVars struct {
	BloodPressure    Reading `json:"bloodPressure"`
	Temperature      Reading `json:"temperature"`
	OxygenSaturation Reading `json:"oxygenSaturation"`
	Weight           Weight  `json:"weight"`
}

type Sleep struct {
	Hours  string `json:"hours"`
	Status string `json:"status"`
}

// State is a 0-10 rating with the text that produced it.
type State struct {
	Rating      int    `json:"rating"`
	Description string `json:"description"`
}

// Summary is the response of GET /health/summary.
type Summary struct {
	HasData           bool         `json:"hasData"`
	PhysicalVars      PhysicalVars `json:"physicalVars"`
	Sleep             Sleep        `json:"sleep"`
	CognitiveState    State        `json:"cognitiveState"`
	PhysicalState     State        `json:"physicalState"`
	EmotionalState    State        `json:"emotionalState"`
	AutonomyState     *State       `json:"autonomyState,omitempty"`
	GeneralConclusion string       `json:"generalConclusion"`
}

// HistoryItem is one row of GET /health/history.
type HistoryItem struct {
	ID           int64  `json:"id"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	OriginalText string `json:"original_text"`
	Category     string `json:"category"`
	Subcategory  string `json:"subcategory"`
	Value        string `json:"value"`
	Rating       int    `json:"rating"`
	Edited       bool   `json:"edited"`
}

type HistoryResponse struct {
	History []HistoryItem `json:"history"`
}

// UpdateRequest is the body of PUT /health/history/:id.
type UpdateRequest struct {
	Value  *string `json:"value"`
	Rating *int    `json:"rating"`
}

// MetricReading is one point of a metric series.
type MetricReading struct {
	Date   string `json:"date"`
	Value  string `json:"value"`
	Status string `json:"status"`
}

// Metrics is the response of GET /health/metrics/:type.
type Metrics struct {
	Type     string          `json:"type"`
	Unit     string          `json:"unit"`
	Readings []MetricReading `json:"readings"`
}

const (
	historyDateLayout = "02/01/2006"
	historyTimeLayout = "15:04"
	originalTextMax   = 100
)

// ToHistoryItem renders e with times in loc.
func (e *Event) ToHistoryItem(loc *time.Location) HistoryItem {
	at := e.RecordedAt.In(loc)
	return HistoryItem{
		ID:           e.ID,
		Date:         at.Format(historyDateLayout),
		Time:         at.Format(historyTimeLayout),
		OriginalText: truncate(e.OriginalText, originalTextMax),
		Category:     e.Category,
		Subcategory:  e.Subcategory,
		Value:        e.Value,
		Rating:       e.Rating,
		Edited:       e.Edited,
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
