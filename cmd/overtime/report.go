package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MatheSouzaF/horas-extras/factory"
	"github.com/MatheSouzaF/horas-extras/overtime"
)

var (
	reportOvernight string
	reportWatch     bool
)

var reportCmd = &cobra.Command{
	Use:   "report <file>",
	Short: "Print the valued report of a month file",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

var modelsCmd = &cobra.Command{
	Use:   "models <file>",
	Short: "List the calculation models of a month file",
	Args:  cobra.ExactArgs(1),
	RunE:  runModels,
}

func init() {
	reportCmd.Flags().StringVar(&reportOvernight, "overnight", string(overtime.Wraparound), "Overnight policy: wrap, same-day")
	reportCmd.Flags().BoolVar(&reportWatch, "watch", false, "Re-render whenever the file changes")
}

func runReport(cmd *cobra.Command, args []string) error {
	policy, ok := overtime.ParseOvernightPolicy(reportOvernight)
	if !ok {
		return fmt.Errorf("invalid --overnight %q, use wrap or same-day", reportOvernight)
	}
	engine := overtime.Engine{Overnight: policy}
	path := args[0]
	out := cmd.OutOrStdout()

	if err := printReport(out, path, engine); err != nil {
		return err
	}
	if !reportWatch {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := newFileWatcher(path, 0, func() {
		fmt.Fprintln(out)
		if err := printReport(out, path, engine); err != nil {
			// Keep watching; the next save may fix it.
			slog.Warn("Could not render report", "path", path, "error", err)
		}
	})
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

func runModels(cmd *cobra.Command, args []string) error {
	month, err := loadMonthFile(args[0])
	if err != nil {
		return err
	}
	renderModels(cmd.OutOrStdout(), month.Registry)
	return nil
}

func printReport(w io.Writer, path string, engine overtime.Engine) error {
	month, err := loadMonthFile(path)
	if err != nil {
		return err
	}
	renderReport(w, engine.BuildReport(month.Record, month.Registry))
	return nil
}

func loadMonthFile(path string) (factory.Month, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return factory.Month{}, fmt.Errorf("read month file: %w", err)
	}
	return factory.ParseMonthDocument(data, factory.FormatFromPath(path))
}
