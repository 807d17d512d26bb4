package health

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	StatusNormal   = "Normal"
	StatusModerate = "Moderado"
	StatusLow      = "Bajo"

	ConclusionGood = "Bueno"
	ConclusionFair = "Regular"
	ConclusionBad  = "Malo"
)

// SummaryWindow is how many recent events feed a summary.
const SummaryWindow = 10

var (
	reTemperature = regexp.MustCompile(`(\d+(?:[.,]\d+)?)`)
	reBloodPress  = regexp.MustCompile(`(\d+/\d+)`)
	reOxygen      = regexp.MustCompile(`(\d+)(?:%|\s*por\s*ciento)?`)
	reSleepHours  = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:horas|hs)`)
)

// DefaultSummary is reported when the window holds no events.
func DefaultSummary() *Summary {
	return &Summary{
		PhysicalVars: PhysicalVars{
			BloodPressure:    Reading{Value: "120/80", Status: StatusNormal},
			Temperature:      Reading{Value: "36.5", Status: StatusNormal},
			OxygenSaturation: Reading{Value: "98", Status: StatusNormal},
			Weight:           Weight{Value: "70", Status: StatusNormal, BMI: "24"},
		},
		Sleep:             Sleep{Hours: "8", Status: StatusNormal},
		CognitiveState:    State{Rating: 8, Description: "Estado cognitivo estable"},
		PhysicalState:     State{Rating: 8, Description: "Buena movilidad general"},
		EmotionalState:    State{Rating: 7, Description: "Estado emocional estable"},
		GeneralConclusion: ConclusionGood,
	}
}

// StatusFromRating maps a 0-10 rating to a status label.
func StatusFromRating(rating int) string {
	switch {
	case rating >= 8:
		return StatusNormal
	case rating >= 5:
		return StatusModerate
	default:
		return StatusLow
	}
}

// SleepStatus maps hours slept to a status label.
func SleepStatus(hours float64) string {
	switch {
	case hours >= 7:
		return StatusNormal
	case hours >= 5:
		return StatusModerate
	default:
		return StatusLow
	}
}

// Conclusion averages the three core ratings.
func Conclusion(cognitive, physical, emotional int) string {
	avg := float64(cognitive+physical+emotional) / 3
	switch {
	case avg >= 7:
		return ConclusionGood
	case avg >= 5:
		return ConclusionFair
	default:
		return ConclusionBad
	}
}

// Summarize builds a summary from events ordered newest first. Only the
// first SummaryWindow events are considered and for every field the newest
// matching event wins.
func Summarize(events []*Event) *Summary {
	s := DefaultSummary()
	if len(events) == 0 {
		return s
	}
	if len(events) > SummaryWindow {
		events = events[:SummaryWindow]
	}
	s.HasData = true

	var haveTemp, haveBP, haveOx, haveMobility, haveSleep, haveCog, haveEmo bool
	for _, e := range events {
		switch e.Category {
		case CategoryPhysical:
			switch e.Subcategory {
			case SubSymptoms:
				text := strings.ToLower(e.Value)
				status := StatusFromRating(e.Rating)
				switch {
				case strings.Contains(text, "temperatura"):
					if v, ok := Temperature(text); ok && !haveTemp {
						s.PhysicalVars.Temperature = Reading{Value: v, Status: status}
						haveTemp = true
					}
				case strings.Contains(text, "presión") || strings.Contains(text, "presion"):
					if v, ok := BloodPressure(text); ok && !haveBP {
						s.PhysicalVars.BloodPressure = Reading{Value: v, Status: status}
						haveBP = true
					}
				case strings.Contains(text, "oxígeno") || strings.Contains(text, "oxigeno"):
					if m := reOxygen.FindStringSubmatch(text); m != nil && !haveOx {
						s.PhysicalVars.OxygenSaturation = Reading{Value: m[1], Status: status}
						haveOx = true
					}
				}
			case SubMobility:
				if !haveMobility {
					s.PhysicalState = State{Rating: e.Rating, Description: e.Value}
					haveMobility = true
				}
			case SubSleep:
				if haveSleep {
					continue
				}
				haveSleep = true
				if m := reSleepHours.FindStringSubmatch(strings.ToLower(e.Value)); m != nil {
					hours, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
					if err == nil {
						s.Sleep = Sleep{Hours: m[1], Status: SleepStatus(hours)}
					}
				}
			}
		case CategoryCognitive:
			if !haveCog {
				s.CognitiveState = State{Rating: e.Rating, Description: e.Value}
				haveCog = true
			}
		case CategoryEmotional:
			if !haveEmo {
				s.EmotionalState = State{Rating: e.Rating, Description: e.Value}
				haveEmo = true
			}
		case CategoryAutonomy:
			if s.AutonomyState == nil {
				s.AutonomyState = &State{Rating: e.Rating, Description: e.Value}
			}
		}
	}

	s.GeneralConclusion = Conclusion(s.CognitiveState.Rating, s.PhysicalState.Rating, s.EmotionalState.Rating)
	return s
}

// Temperature extracts the first number of text with a dot decimal separator.
func Temperature(text string) (string, bool) {
	m := reTemperature.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.ReplaceAll(m[1], ",", "."), true
}

// BloodPressure extracts an "S/D" reading from text.
func BloodPressure(text string) (string, bool) {
	m := reBloodPress.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}
