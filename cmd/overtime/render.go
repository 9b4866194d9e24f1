package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/MatheSouzaF/horas-extras/overtime"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	moneyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// brl formats a value as Brazilian currency, e.g. "R$ 1.234,56".
func brl(d decimal.Decimal) string {
	return "R$ " + humanize.FormatFloat("#.###,##", d.Round(2).InexactFloat64())
}

// hours formats hours with two decimals and a comma separator.
func hours(d decimal.Decimal) string {
	return humanize.FormatFloat("#.###,##", d.Round(2).InexactFloat64()) + "h"
}

func renderReport(w io.Writer, r overtime.Report) {
	fmt.Fprintln(w, titleStyle.Render("Horas extras "+r.Month))

	summary := []string{
		fmt.Sprintf("Salário:       %s", brl(r.Salary)),
		fmt.Sprintf("Valor hora:    %s", brl(r.HourlyRate)),
		fmt.Sprintf("Total horas:   %s", hours(r.Totals.TotalHours)),
		fmt.Sprintf("Total a pagar: %s", moneyStyle.Render(brl(r.Totals.TotalValue))),
		mutedStyle.Render(fmt.Sprintf("50%%: %s  100%%: %s  virada: %s",
			brl(r.Flat.Total50), brl(r.Flat.Total100), r.Overnight)),
	}
	fmt.Fprintln(w, boxStyle.Render(strings.Join(summary, "\n")))

	if len(r.Days) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("Nenhum dia registrado."))
		return
	}

	fmt.Fprintln(w, headerStyle.Render("Dias"))
	for _, d := range r.Days {
		model := d.ModelName
		if model == "" {
			model = "-"
		}
		fmt.Fprintf(w, "  %-10s  %5s-%-5s  %-16s  %-18s  %8s  %s\n",
			d.Entry.Date, d.Entry.StartTime, d.Entry.EndTime,
			overtime.ProjectLabel(d.Entry.ProjectWorked), model,
			hours(d.Hours), brl(d.Value))
	}

	fmt.Fprintln(w, headerStyle.Render("Projetos"))
	for _, p := range r.Projects {
		fmt.Fprintf(w, "  %-16s  %8s  %s\n", p.Label, hours(p.Hours), brl(p.TotalValue))
	}
}

func renderModels(w io.Writer, registry overtime.Registry) {
	fmt.Fprintln(w, titleStyle.Render("Modelos de cálculo"))
	for i, m := range registry.Models() {
		line := fmt.Sprintf("  %-20s  %-18s  %sx", m.ID, m.Name, m.Multiplier.String())
		if m.IsStandard() {
			line += mutedStyle.Render("  (faixas noturna/fim de semana 2x)")
		}
		if i == 0 {
			line += mutedStyle.Render("  padrão")
		}
		fmt.Fprintln(w, line)
	}
}
