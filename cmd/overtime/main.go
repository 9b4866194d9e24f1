/*
main.go - Offline overtime calculator

PURPOSE:
  Values a month file without running the API server. The file holds the
  salary, the day entries and optionally the calculation models of one
  month, as JSON or YAML:

    month: "2025-03"
    salary: 6400
    models:
      - {id: default-standard, name: CLT Padrão, multiplier: 1.5}
    days:
      - {date: "2025-03-14", startTime: "18:00", endTime: "23:00", projectWorked: Deploy}

COMMANDS:
  overtime report <file> [--overnight wrap|same-day] [--watch]
  overtime models <file>

SEE ALSO:
  - factory/model.go: Month document parsing
  - overtime/aggregate.go: BuildReport
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "overtime",
	Short: "Value overtime hours from a month file",
	Long: `overtime reads a month file (JSON or YAML) holding a salary, day
entries and calculation models, and prints the valued report.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(modelsCmd)
}
