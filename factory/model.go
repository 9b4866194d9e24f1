/*
Package factory converts JSON and YAML documents into overtime values.

PURPOSE:
  Model registries and month records are stored and exchanged as plain
  documents. The factory is the single place that turns those documents
  into validated engine values, so every caller (HTTP handlers, the CLI,
  the stores) gets the same normalization.

DOCUMENT SHAPES:
  Models (stored per user and month):
    [
      {"id": "default-standard", "name": "CLT Padrão", "multiplier": 1.5},
      {"id": "default-100", "name": "Hora Extra 100%", "multiplier": 2}
    ]

  Month file (CLI input, JSON or YAML):
    month: "2025-03"
    salary: 3200
    days:
      - date: "2025-03-14"
        startTime: "20:00"
        endTime: "06:00"
        projectWorked: Deploy
        calculationModelId: default-standard
    models:
      - {id: default-100, name: Hora Extra 100%, multiplier: 2}

KEY FEATURES:
  - Registries always go through overtime.NormalizeRegistry
  - Day entries with unknown model ids are reconciled to the fallback model
  - Multipliers travel as JSON numbers and become decimals here

USAGE:
  registry, err := factory.ParseModels(data)
  doc, err := factory.ToJSON(registry)
  month, err := factory.ParseMonthDocument(data, factory.FormatYAML)

SEE ALSO:
  - overtime/model.go: Registry and normalization rules
  - cmd/overtime: reads month files through ParseMonthDocument
*/
package factory

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/MatheSouzaF/horas-extras/overtime"
)

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// ModelJSON is the stored and wire representation of a calculation model.
type ModelJSON struct {
	ID         string  `json:"id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}

// DayJSON is the wire representation of a day entry.
type DayJSON struct {
	ID                 string `json:"id,omitempty" yaml:"id,omitempty"`
	Date               string `json:"date" yaml:"date"`
	StartTime          string `json:"startTime" yaml:"startTime"`
	EndTime            string `json:"endTime" yaml:"endTime"`
	ProjectWorked      string `json:"projectWorked,omitempty" yaml:"projectWorked,omitempty"`
	CalculationModelID string `json:"calculationModelId,omitempty" yaml:"calculationModelId,omitempty"`
}

// MonthDocument is a self-contained month file.
type MonthDocument struct {
	Month  string      `json:"month" yaml:"month"`
	Salary float64     `json:"salary" yaml:"salary"`
	Days   []DayJSON   `json:"days" yaml:"days"`
	Models []ModelJSON `json:"models,omitempty" yaml:"models,omitempty"`
}

// Month is a parsed month document.
type Month struct {
	Record   overtime.MonthRecord
	Registry overtime.Registry
}

// Format names a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath guesses the format from a file extension. Unknown
// extensions are treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// =============================================================================
// MODELS
// =============================================================================

// ParseModels parses a JSON array of models into a normalized registry.
// Empty input yields the default registry.
func ParseModels(data []byte) (overtime.Registry, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return overtime.DefaultRegistry(), nil
	}
	var docs []ModelJSON
	if err := json.Unmarshal(data, &docs); err != nil {
		return overtime.Registry{}, fmt.Errorf("failed to parse models JSON: %w", err)
	}
	return FromModelDocs(docs), nil
}

// ParseModelsYAML is ParseModels for YAML input.
func ParseModelsYAML(data []byte) (overtime.Registry, error) {
	var docs []ModelJSON
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return overtime.Registry{}, fmt.Errorf("failed to parse models YAML: %w", err)
	}
	return FromModelDocs(docs), nil
}

// FromModelDocs normalizes decoded model documents.
func FromModelDocs(docs []ModelJSON) overtime.Registry {
	models := make([]overtime.CalculationModel, 0, len(docs))
	for _, d := range docs {
		models = append(models, overtime.FlatModel(
			overtime.ModelID(d.ID),
			d.Name,
			MultiplierFromFloat(d.Multiplier),
		))
	}
	return overtime.NormalizeRegistry(models)
}

// ModelDocs converts a registry to documents, in order.
func ModelDocs(registry overtime.Registry) []ModelJSON {
	models := registry.Models()
	docs := make([]ModelJSON, len(models))
	for i, m := range models {
		docs[i] = ModelDoc(m)
	}
	return docs
}

// ModelDoc converts one model to its document.
func ModelDoc(m overtime.CalculationModel) ModelJSON {
	return ModelJSON{
		ID:         string(m.ID),
		Name:       m.Name,
		Multiplier: m.Multiplier.InexactFloat64(),
	}
}

// ToJSON encodes a registry as a JSON array.
func ToJSON(registry overtime.Registry) ([]byte, error) {
	return json.Marshal(ModelDocs(registry))
}

// =============================================================================
// DAYS
// =============================================================================

// FromDayDocs converts wire days to entries, trimming the project name.
func FromDayDocs(docs []DayJSON) []overtime.DayEntry {
	days := make([]overtime.DayEntry, len(docs))
	for i, d := range docs {
		days[i] = overtime.DayEntry{
			ID:                 d.ID,
			Date:               d.Date,
			StartTime:          d.StartTime,
			EndTime:            d.EndTime,
			ProjectWorked:      strings.TrimSpace(d.ProjectWorked),
			CalculationModelID: overtime.ModelID(strings.TrimSpace(d.CalculationModelID)),
		}
	}
	return days
}

// DayDocs converts entries to wire days.
func DayDocs(days []overtime.DayEntry) []DayJSON {
	docs := make([]DayJSON, len(days))
	for i, d := range days {
		docs[i] = DayJSON{
			ID:                 d.ID,
			Date:               d.Date,
			StartTime:          d.StartTime,
			EndTime:            d.EndTime,
			ProjectWorked:      d.ProjectWorked,
			CalculationModelID: string(d.CalculationModelID),
		}
	}
	return docs
}

// =============================================================================
// MONTH DOCUMENTS
// =============================================================================

// ParseMonthDocument decodes a month file. The month key must be YYYY-MM.
// Missing models fall back to the default registry and days referencing
// unknown models are reassigned to the first model.
func ParseMonthDocument(data []byte, format Format) (Month, error) {
	var doc MonthDocument
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatJSON, "":
		err = json.Unmarshal(data, &doc)
	default:
		return Month{}, fmt.Errorf("unsupported document format %q", format)
	}
	if err != nil {
		return Month{}, fmt.Errorf("failed to parse month %s: %w", format, err)
	}

	month, ok := overtime.ParseMonth(doc.Month)
	if !ok {
		return Month{}, fmt.Errorf("%w: %q", overtime.ErrInvalidMonth, doc.Month)
	}

	registry := FromModelDocs(doc.Models)
	days, _ := registry.Reconcile(FromDayDocs(doc.Days))

	return Month{
		Record: overtime.MonthRecord{
			Month:  month,
			Salary: overtime.SalaryFromFloat(doc.Salary),
			Days:   days,
		},
		Registry: registry,
	}, nil
}

// MultiplierFromFloat guards decimal.NewFromFloat against NaN and infinities,
// which YAML can express. NormalizeRegistry clamps the result to at least 1.
func MultiplierFromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}
