// Package sandbox generates reproducible demo data for a caregiver dashboard:
// one patient with a month of financial transactions and health events
// written the way caregivers report them.
package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/serena/serena/internal/domain/financial"
	"github.com/serena/serena/internal/domain/health"
	"github.com/serena/serena/internal/domain/patient"
	"github.com/serena/serena/pkg/period"
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// SeedConfig controls the volume and shape of generated demo data.
type SeedConfig struct {
	PatientName          string `json:"patientName"`
	Days                 int    `json:"days"`
	ExpensesPerDay       int    `json:"expensesPerDay"`
	HealthEventsPerDay   int    `json:"healthEventsPerDay"`
	IncludeMonthlyIncome bool   `json:"includeMonthlyIncome"`
	Seed                 int64  `json:"seed"`
}

// DefaultSeedConfig covers the longest built-in period with some slack.
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		PatientName:          "Rosa Martínez",
		Days:                 35,
		ExpensesPerDay:       1,
		HealthEventsPerDay:   3,
		IncludeMonthlyIncome: true,
	}
}

// SeedResult summarizes the output of a seed operation.
type SeedResult struct {
	PatientID    int64         `json:"patientId"`
	Transactions int           `json:"transactions"`
	HealthEvents int           `json:"healthEvents"`
	Duration     time.Duration `json:"duration"`
}

// ---------------------------------------------------------------------------
// Vocabulary
// ---------------------------------------------------------------------------

type expenseDef struct {
	Category string
	Texts    []string
	Low      int64
	High     int64
}

type eventDef struct {
	Category    string
	Subcategory string
	Texts       []string
	MinRating   int
}

var (
	expenseDefs = []expenseDef{
		{"Cuidados", []string{"Turno de cuidadora", "Cuidadora fin de semana"}, 25000, 45000},
		{"Salud", []string{"Consulta geriatra", "Kinesiología"}, 15000, 40000},
		{"Supermercado", []string{"Compra semanal", "Frutas y verduras"}, 8000, 30000},
		{"Medicamentos", []string{"Losartán", "Paracetamol", "Vitamina D"}, 3000, 18000},
		{"Transporte", []string{"Taxi al hospital", "Remise"}, 4000, 12000},
		{"Servicios básicos", []string{"Cuenta de luz", "Cuenta de agua"}, 10000, 25000},
		{"Recreación", []string{"Salida al parque", "Revista"}, 2000, 8000},
		{"Varios", []string{"Pañales", "Artículos de aseo"}, 3000, 10000},
	}

	monthlyCharges = []struct {
		Type     string
		Category string
		Text     string
		Amount   int64
	}{
		{financial.TypeIncome, "Pensión", "Pensión mensual", 450000},
		{financial.TypeIncome, "Aporte familiar", "Aporte de los hijos", 200000},
		{financial.TypeExpense, "Vivienda", "Arriendo", 280000},
	}

	eventDefs = []eventDef{
		{health.CategoryPhysical, health.SubSymptoms, []string{"Temperatura de %s grados"}, 5},
		{health.CategoryPhysical, health.SubSymptoms, []string{"Presión %s"}, 4},
		{health.CategoryPhysical, health.SubSymptoms, []string{"Oxígeno en %s%%"}, 5},
		{health.CategoryPhysical, health.SubMobility, []string{"Caminó por el pasillo con bastón", "Necesitó ayuda para levantarse"}, 4},
		{health.CategoryPhysical, health.SubSleep, []string{"Durmió %s horas"}, 4},
		{health.CategoryCognitive, "Memoria", []string{"Recordó a sus nietos por nombre", "Preguntó varias veces qué día era"}, 3},
		{health.CategoryEmotional, "Ánimo", []string{"Estuvo contenta en la visita", "Lloró en la tarde"}, 3},
		{health.CategoryMedication, "Dosis", []string{"Tomó losartán en la mañana", "Olvidó la dosis de la noche"}, 5},
		{health.CategoryAutonomy, "Higiene", []string{"Se bañó sola", "Necesitó ayuda para vestirse"}, 4},
	}
)

// ---------------------------------------------------------------------------
// DataGenerator
// ---------------------------------------------------------------------------

// DataGenerator produces deterministic demo records.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator returns a generator seeded for reproducibility. If seed is
// 0 a time-based seed is chosen.
func NewDataGenerator(seed int64) *DataGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &DataGenerator{rng: rand.New(rand.NewSource(seed))}
}

func (g *DataGenerator) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}

func (g *DataGenerator) between(low, high int64) int64 {
	return low + g.rng.Int63n(high-low+1)
}

// roundTo rounds v down to a multiple of step.
func roundTo(v, step int64) int64 {
	return v / step * step
}

// GenerateExpense produces one expense on day.
func (g *DataGenerator) GenerateExpense(patientID int64, day time.Time) financial.CreateRequest {
	def := expenseDefs[g.rng.Intn(len(expenseDefs))]
	amount := decimal.NewFromInt(roundTo(g.between(def.Low, def.High), 500))
	return request(patientID, financial.TypeExpense, def.Category, g.pick(def.Texts), amount, day)
}

func request(patientID int64, txType, category, text string, amount decimal.Decimal, day time.Time) financial.CreateRequest {
	date := day.Format(period.DateLayout)
	return financial.CreateRequest{
		PatientID:   &patientID,
		Type:        &txType,
		Category:    &category,
		Amount:      &amount,
		Date:        &date,
		Description: text,
	}
}

// GenerateEvent produces one health event at the given instant.
func (g *DataGenerator) GenerateEvent(patientID int64, at time.Time) *health.Event {
	def := eventDefs[g.rng.Intn(len(eventDefs))]
	rating := def.MinRating + g.rng.Intn(11-def.MinRating)
	text := g.pick(def.Texts)

	switch def.Subcategory {
	case health.SubSymptoms:
		text = fmt.Sprintf(text, g.vital(text))
	case health.SubSleep:
		text = fmt.Sprintf(text, fmt.Sprintf("%d", 4+g.rng.Intn(6)))
	}

	return &health.Event{
		PatientID:    patientID,
		Category:     def.Category,
		Subcategory:  def.Subcategory,
		Value:        text,
		Rating:       rating,
		OriginalText: "Hoy " + lowerFirst(text),
		RecordedAt:   at,
	}
}

func (g *DataGenerator) vital(format string) string {
	switch format[0] {
	case 'T':
		return fmt.Sprintf("%d,%d", 36+g.rng.Intn(3), g.rng.Intn(10))
	case 'P':
		return fmt.Sprintf("%d/%d", 110+g.rng.Intn(40), 70+g.rng.Intn(25))
	default:
		return fmt.Sprintf("%d", 88+g.rng.Intn(12))
	}
}

func lowerFirst(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	if r[0] >= 'A' && r[0] <= 'Z' {
		r[0] += 'a' - 'A'
	}
	return string(r)
}

// ---------------------------------------------------------------------------
// Plan
// ---------------------------------------------------------------------------

// Plan is the generated data before it is written anywhere.
type Plan struct {
	Patient      *patient.Patient           `json:"patient"`
	Transactions []financial.CreateRequest `json:"transactions"`
	HealthEvents []*health.Event           `json:"healthEvents"`
}

// Generate builds a plan ending at now. Patient ids in the plan are 0 until
// Apply assigns the stored id.
func (g *DataGenerator) Generate(cfg SeedConfig, now time.Time) *Plan {
	age := 82
	conditions := "Hipertensión, deterioro cognitivo leve"
	plan := &Plan{Patient: &patient.Patient{Name: cfg.PatientName, Age: &age, Conditions: &conditions}}

	start := now.AddDate(0, 0, -cfg.Days+1)
	for d := 0; d < cfg.Days; d++ {
		day := time.Date(start.Year(), start.Month(), start.Day()+d, 0, 0, 0, 0, now.Location())

		if cfg.IncludeMonthlyIncome && (d == 0 || day.Day() == 1) {
			for _, m := range monthlyCharges {
				plan.Transactions = append(plan.Transactions,
					request(0, m.Type, m.Category, m.Text, decimal.NewFromInt(m.Amount), day))
			}
		}
		for i := 0; i < cfg.ExpensesPerDay; i++ {
			plan.Transactions = append(plan.Transactions, g.GenerateExpense(0, day))
		}
		for i := 0; i < cfg.HealthEventsPerDay; i++ {
			at := day.Add(time.Duration(8+g.rng.Intn(12))*time.Hour + time.Duration(g.rng.Intn(60))*time.Minute)
			if at.After(now) {
				at = now.Add(-time.Duration(i+1) * time.Minute)
			}
			plan.HealthEvents = append(plan.HealthEvents, g.GenerateEvent(0, at))
		}
	}
	return plan
}

// ExportNDJSON writes every planned record as newline-delimited JSON.
func (p *Plan) ExportNDJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(p.Patient); err != nil {
		return fmt.Errorf("encoding patient: %w", err)
	}
	for _, t := range p.Transactions {
		if err := enc.Encode(t); err != nil {
			return fmt.Errorf("encoding transaction: %w", err)
		}
	}
	for _, e := range p.HealthEvents {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("encoding health event: %w", err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Seeder
// ---------------------------------------------------------------------------

type PatientStore interface {
	CreatePatient(ctx context.Context, p *patient.Patient) error
}

type TransactionStore interface {
	Register(ctx context.Context, req financial.CreateRequest) (*financial.Transaction, error)
}

type EventStore interface {
	RecordEvent(ctx context.Context, e *health.Event) error
}

// Seeder writes a generated plan through the domain services so every
// record passes the same validation as API input.
type Seeder struct {
	config       SeedConfig
	patients     PatientStore
	transactions TransactionStore
	events       EventStore
	logger       zerolog.Logger
	now          func() time.Time
}

func NewSeeder(cfg SeedConfig, patients PatientStore, txs TransactionStore, events EventStore, logger zerolog.Logger) *Seeder {
	return &Seeder{
		config:       cfg,
		patients:     patients,
		transactions: txs,
		events:       events,
		logger:       logger,
		now:          time.Now,
	}
}

// Plan generates the records without writing them.
func (s *Seeder) Plan() *Plan {
	return NewDataGenerator(s.config.Seed).Generate(s.config, s.now())
}

// Run generates and stores a full demo data set.
func (s *Seeder) Run(ctx context.Context) (*SeedResult, error) {
	start := time.Now()
	plan := s.Plan()

	if err := s.patients.CreatePatient(ctx, plan.Patient); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	result := &SeedResult{PatientID: plan.Patient.ID}

	for _, req := range plan.Transactions {
		id := plan.Patient.ID
		req.PatientID = &id
		if _, err := s.transactions.Register(ctx, req); err != nil {
			return result, fmt.Errorf("register transaction: %w", err)
		}
		result.Transactions++
	}
	for _, e := range plan.HealthEvents {
		e.PatientID = plan.Patient.ID
		if err := s.events.RecordEvent(ctx, e); err != nil {
			return result, fmt.Errorf("record health event: %w", err)
		}
		result.HealthEvents++
	}

	result.Duration = time.Since(start)
	s.logger.Info().
		Int64("patient_id", result.PatientID).
		Int("transactions", result.Transactions).
		Int("health_events", result.HealthEvents).
		Dur("duration", result.Duration).
		Msg("demo data seeded")
	return result, nil
}
