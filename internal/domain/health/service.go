package health

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/serena/serena/pkg/period"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrInvalidMetric   = errors.New("invalid metric type")
)

// ValidationError carries a user facing message for a rejected request.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

type Service struct {
	events   EventRepository
	patients PatientLookup
	loc      *time.Location
	now      func() time.Time
}

func NewService(events EventRepository, patients PatientLookup) *Service {
	return &Service{events: events, patients: patients, loc: time.Local, now: time.Now}
}

func (s *Service) checkPatient(ctx context.Context, id int64) error {
	ok, err := s.patients.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check patient %d: %w", id, err)
	}
	if !ok {
		return ErrPatientNotFound
	}
	return nil
}

// Summary computes the health summary from the most recent events of the window.
func (s *Service) Summary(ctx context.Context, patientID int64, w period.Window) (*Summary, error) {
	if err := s.checkPatient(ctx, patientID); err != nil {
		return nil, err
	}
	events, err := s.events.List(ctx, Filter{PatientID: patientID, From: w.From, To: w.To}, SummaryWindow)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	return Summarize(events), nil
}

// History lists events newest first. Unknown or "all" category tokens apply
// no filter.
func (s *Service) History(ctx context.Context, patientID int64, w period.Window, token string) ([]HistoryItem, error) {
	if err := s.checkPatient(ctx, patientID); err != nil {
		return nil, err
	}
	f := Filter{PatientID: patientID, From: w.From, To: w.To}
	if name, ok := NameForToken(token); ok {
		f.Category = name
	}
	events, err := s.events.List(ctx, f, 0)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	items := make([]HistoryItem, 0, len(events))
	for _, e := range events {
		items = append(items, e.ToHistoryItem(s.loc))
	}
	return items, nil
}

// Metrics returns the series of metric extracted from symptom events.
func (s *Service) Metrics(ctx context.Context, patientID int64, metric string, w period.Window) (*Metrics, error) {
	if !ValidMetric(metric) {
		return nil, ErrInvalidMetric
	}
	if err := s.checkPatient(ctx, patientID); err != nil {
		return nil, err
	}
	events, err := s.events.List(ctx, Filter{
		PatientID:   patientID,
		From:        w.From,
		To:          w.To,
		Category:    CategoryPhysical,
		Subcategory: SubSymptoms,
	}, 0)
	if err != nil {
		return nil, fmt.Errorf("list symptoms: %w", err)
	}
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return ExtractMetric(metric, events, s.loc), nil
}

// UpdateEvent edits value and/or rating and flags the event as edited.
func (s *Service) UpdateEvent(ctx context.Context, id int64, req UpdateRequest) (*Event, error) {
	if req.Value == nil && req.Rating == nil {
		return nil, &ValidationError{Msg: "No se recibieron datos para actualizar"}
	}
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Value != nil {
		v := strings.TrimSpace(*req.Value)
		if v == "" {
			return nil, &ValidationError{Msg: "El valor no puede estar vacío"}
		}
		e.Value = v
	}
	if req.Rating != nil {
		if err := validRating(*req.Rating); err != nil {
			return nil, err
		}
		e.Rating = *req.Rating
		e.Confidence = float64(*req.Rating) / 10
	}
	e.Edited = true
	if err := s.events.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// RecordEvent stores a new classified event. A zero RecordedAt means now.
func (s *Service) RecordEvent(ctx context.Context, e *Event) error {
	if !ValidCategory(e.Category) {
		return &ValidationError{Msg: fmt.Sprintf("Categoría no válida: %s", e.Category)}
	}
	if strings.TrimSpace(e.Value) == "" {
		return &ValidationError{Msg: "El valor no puede estar vacío"}
	}
	if err := validRating(e.Rating); err != nil {
		return err
	}
	if err := s.checkPatient(ctx, e.PatientID); err != nil {
		return err
	}
	if e.Confidence == 0 {
		e.Confidence = float64(e.Rating) / 10
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = s.now()
	}
	if err := s.events.Create(ctx, e); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Location is the zone history dates are rendered in.
func (s *Service) Location() *time.Location { return s.loc }

func validRating(r int) error {
	if r < 0 || r > 10 {
		return &ValidationError{Msg: "La calificación debe estar entre 0 y 10"}
	}
	return nil
}
