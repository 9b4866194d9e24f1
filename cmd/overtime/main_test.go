package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MatheSouzaF/horas-extras/overtime"
)

const monthYAML = `month: "2025-03"
salary: 3200
days:
  - date: "2025-03-14"
    startTime: "20:00"
    endTime: "06:00"
    projectWorked: Deploy
    calculationModelId: default-standard
  - date: "2025-03-12"
    startTime: "09:00"
    endTime: "14:00"
    projectWorked: Portal
    calculationModelId: default-100
`

func writeMonth(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBRL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "R$ 0,00"},
		{"20", "R$ 20,00"},
		{"3200", "R$ 3.200,00"},
		{"1234.567", "R$ 1.234,57"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, brl(decimal.RequireFromString(tt.in)), tt.in)
	}
}

func TestPrintReport_Wraparound(t *testing.T) {
	path := writeMonth(t, "march.yaml", monthYAML)

	var out bytes.Buffer
	require.NoError(t, printReport(&out, path, overtime.DefaultEngine))

	text := out.String()
	assert.Contains(t, text, "Horas extras 2025-03")
	assert.Contains(t, text, "R$ 3.200,00")
	assert.Contains(t, text, "15,00h")
	assert.Contains(t, text, "R$ 580,00")
	assert.Contains(t, text, "Deploy")
	assert.Contains(t, text, overtime.StandardModelName)
}

func TestPrintReport_SameDay(t *testing.T) {
	path := writeMonth(t, "march.yaml", monthYAML)

	var out bytes.Buffer
	require.NoError(t, printReport(&out, path, overtime.FlatRateEngine))

	assert.Contains(t, out.String(), "5,00h")
	assert.Contains(t, out.String(), "R$ 200,00")
}

func TestPrintReport_EmptyMonth(t *testing.T) {
	path := writeMonth(t, "empty.json", `{"month":"2025-04","salary":0,"days":[]}`)

	var out bytes.Buffer
	require.NoError(t, printReport(&out, path, overtime.DefaultEngine))

	assert.Contains(t, out.String(), "Nenhum dia registrado.")
}

func TestPrintReport_Errors(t *testing.T) {
	var out bytes.Buffer

	err := printReport(&out, filepath.Join(t.TempDir(), "missing.json"), overtime.DefaultEngine)
	assert.ErrorContains(t, err, "read month file")

	path := writeMonth(t, "bad.json", `{"month":"March","days":[]}`)
	err = printReport(&out, path, overtime.DefaultEngine)
	assert.ErrorIs(t, err, overtime.ErrInvalidMonth)
}

func TestRenderModels_DefaultRegistry(t *testing.T) {
	path := writeMonth(t, "march.yaml", monthYAML)
	month, err := loadMonthFile(path)
	require.NoError(t, err)

	var out bytes.Buffer
	renderModels(&out, month.Registry)

	assert.Contains(t, out.String(), string(overtime.StandardModelID))
	assert.Contains(t, out.String(), string(overtime.DoubleModelID))
	assert.Contains(t, out.String(), "1.5x")
}

func TestReportCommand_RejectsUnknownPolicy(t *testing.T) {
	path := writeMonth(t, "march.yaml", monthYAML)
	t.Cleanup(func() { reportOvernight = string(overtime.Wraparound) })

	rootCmd.SetArgs([]string{"report", path, "--overnight", "sometimes"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})

	err := rootCmd.Execute()
	assert.ErrorContains(t, err, "invalid --overnight")
}

func TestFileWatcher_FiresOnWrite(t *testing.T) {
	path := writeMonth(t, "march.yaml", monthYAML)

	var calls atomic.Int32
	w, err := newFileWatcher(path, 10*time.Millisecond, func() { calls.Add(1) })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Writes to siblings are ignored
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.yaml"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(monthYAML), 0o644))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}
