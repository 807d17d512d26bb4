// Package period resolves the dashboard time filters (day, week, fortnight,
// month and custom ranges) into concrete date windows.
package period

import (
	"errors"
	"fmt"
	"time"
)

// Period is a time window token as it travels in query strings.
type Period string

const (
	Day       Period = "day"
	Week      Period = "week"
	Fortnight Period = "fortnight"
	Month     Period = "month"
	Custom    Period = "custom"
)

// DateLayout is the wire format for custom range bounds.
const DateLayout = "2006-01-02"

// All lists the periods in the order the selector shows them.
var All = []Period{Day, Week, Fortnight, Month, Custom}

var labels = map[Period]string{
	Day:       "Último Día",
	Week:      "Última Semana",
	Fortnight: "Última Quincena",
	Month:     "Último Mes",
	Custom:    "Elegir",
}

// ErrInvalid is returned for tokens outside the known set.
var ErrInvalid = errors.New("Período no válido. Use 'day', 'week', 'fortnight', 'month' o 'custom'")

// Parse validates a token. An empty token resolves to def.
func Parse(s string, def Period) (Period, error) {
	if s == "" {
		return def, nil
	}
	p := Period(s)
	if _, ok := labels[p]; !ok {
		return "", ErrInvalid
	}
	return p, nil
}

// Label returns the Spanish selector label.
func (p Period) Label() string {
	return labels[p]
}

func (p Period) String() string {
	return string(p)
}

// Window is a half-open [From, To) interval.
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// Range holds the optional explicit bounds of a custom period.
type Range struct {
	From string
	To   string
}

// Resolve computes the window for p relative to now. Custom periods need
// rng.From; rng.To defaults to now and is inclusive of the whole day.
func Resolve(p Period, now time.Time, rng Range) (Window, error) {
	to := now
	switch p {
	case Day:
		y, m, d := now.Date()
		return Window{From: time.Date(y, m, d, 0, 0, 0, 0, now.Location()), To: to}, nil
	case Week:
		return Window{From: now.AddDate(0, 0, -7), To: to}, nil
	case Fortnight:
		return Window{From: now.AddDate(0, 0, -15), To: to}, nil
	case Month, "":
		return Window{From: now.AddDate(0, 0, -30), To: to}, nil
	case Custom:
		return resolveCustom(now, rng)
	default:
		return Window{}, ErrInvalid
	}
}

func resolveCustom(now time.Time, rng Range) (Window, error) {
	if rng.From == "" {
		return Window{}, fmt.Errorf("el período personalizado requiere fecha de inicio")
	}
	from, err := time.ParseInLocation(DateLayout, rng.From, now.Location())
	if err != nil {
		return Window{}, fmt.Errorf("fecha de inicio inválida %q: %w", rng.From, err)
	}
	to := now
	if rng.To != "" {
		end, err := time.ParseInLocation(DateLayout, rng.To, now.Location())
		if err != nil {
			return Window{}, fmt.Errorf("fecha de fin inválida %q: %w", rng.To, err)
		}
		to = end.AddDate(0, 0, 1)
	}
	if !from.Before(to) {
		return Window{}, fmt.Errorf("la fecha de inicio debe ser anterior a la fecha de fin")
	}
	return Window{From: from, To: to}, nil
}
