package factory_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MatheSouzaF/horas-extras/factory"
	"github.com/MatheSouzaF/horas-extras/overtime"
)

func TestParseModels(t *testing.T) {
	registry, err := factory.ParseModels([]byte(`[
		{"id": "default-standard", "name": "Renamed", "multiplier": 9},
		{"id": "night", "name": " Noturno ", "multiplier": 2.5},
		{"id": "", "name": "orphan", "multiplier": 2}
	]`))
	require.NoError(t, err)

	models := registry.Models()
	require.Len(t, models, 2)
	assert.Equal(t, overtime.StandardModelID, models[0].ID)
	assert.Equal(t, overtime.StandardModelName, models[0].Name)
	assert.Equal(t, overtime.ModelID("night"), models[1].ID)
	assert.Equal(t, "Noturno", models[1].Name)
	assert.Equal(t, 2.5, models[1].Multiplier.InexactFloat64())
}

func TestParseModels_EmptyInputYieldsDefaults(t *testing.T) {
	for _, in := range []string{"", "  ", "[]", "null"} {
		registry, err := factory.ParseModels([]byte(in))
		require.NoError(t, err, in)
		assert.Equal(t, 2, registry.Len(), in)
	}
}

func TestParseModels_InvalidJSON(t *testing.T) {
	_, err := factory.ParseModels([]byte(`{"id":`))
	assert.Error(t, err)
}

func TestParseModelsYAML(t *testing.T) {
	registry, err := factory.ParseModelsYAML([]byte(`
- id: holiday
  name: Feriado
  multiplier: 3
- id: cheap
  name: Cheap
  multiplier: 0.5
`))
	require.NoError(t, err)

	models := registry.Models()
	require.Len(t, models, 3)
	assert.Equal(t, overtime.StandardModelID, models[0].ID)
	assert.Equal(t, 3.0, models[1].Multiplier.InexactFloat64())
	assert.Equal(t, 1.0, models[2].Multiplier.InexactFloat64())
}

func TestToJSON_RoundTripIsStable(t *testing.T) {
	// GIVEN: A normalized registry
	registry, err := factory.ParseModels([]byte(`[{"id":"x","name":"X","multiplier":1.75}]`))
	require.NoError(t, err)

	// WHEN: Encoding and parsing again
	data, err := factory.ToJSON(registry)
	require.NoError(t, err)
	again, err := factory.ParseModels(data)
	require.NoError(t, err)

	// THEN: The same models come back
	var docs []factory.ModelJSON
	require.NoError(t, json.Unmarshal(data, &docs))
	assert.Equal(t, docs, factory.ModelDocs(again))
	assert.Equal(t, "default-standard", docs[0].ID)
	assert.Equal(t, 1.5, docs[0].Multiplier)
}

func TestParseMonthDocument_YAML(t *testing.T) {
	doc := []byte(`
month: "2025-03"
salary: 3200
days:
  - date: "2025-03-14"
    startTime: "20:00"
    endTime: "06:00"
    projectWorked: "  Deploy "
    calculationModelId: default-standard
  - date: "2025-03-12"
    startTime: "09:00"
    endTime: "14:00"
    calculationModelId: holiday
  - date: "2025-03-13"
    startTime: "09:00"
    endTime: "10:00"
    calculationModelId: removed
models:
  - {id: holiday, name: Feriado, multiplier: 2}
`)

	month, err := factory.ParseMonthDocument(doc, factory.FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "2025-03", month.Record.Month)
	assert.Equal(t, 3200.0, month.Record.Salary.InexactFloat64())
	require.Len(t, month.Record.Days, 3)
	assert.Equal(t, "Deploy", month.Record.Days[0].ProjectWorked)
	assert.Equal(t, overtime.ModelID("holiday"), month.Record.Days[1].CalculationModelID)
	assert.Equal(t, overtime.StandardModelID, month.Record.Days[2].CalculationModelID)

	report := overtime.DefaultEngine.BuildReport(month.Record, month.Registry)
	assert.Equal(t, 610.0, report.Totals.TotalValue.InexactFloat64())
}

func TestParseMonthDocument_JSONWithoutModels(t *testing.T) {
	month, err := factory.ParseMonthDocument([]byte(`{
		"month": "2025-04",
		"salary": 1600,
		"days": [{"date":"2025-04-01","startTime":"18:00","endTime":"20:00"}]
	}`), factory.FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, 2, month.Registry.Len())
	assert.Equal(t, overtime.StandardModelID, month.Record.Days[0].CalculationModelID)
}

func TestParseMonthDocument_Errors(t *testing.T) {
	_, err := factory.ParseMonthDocument([]byte(`{"month":"April","salary":1}`), factory.FormatJSON)
	assert.ErrorIs(t, err, overtime.ErrInvalidMonth)

	_, err = factory.ParseMonthDocument([]byte(`month: [`), factory.FormatYAML)
	assert.Error(t, err)

	_, err = factory.ParseMonthDocument([]byte(`{}`), factory.Format("toml"))
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, factory.FormatYAML, factory.FormatFromPath("march.yaml"))
	assert.Equal(t, factory.FormatYAML, factory.FormatFromPath("MARCH.YML"))
	assert.Equal(t, factory.FormatJSON, factory.FormatFromPath("march.json"))
	assert.Equal(t, factory.FormatJSON, factory.FormatFromPath("march"))
}
