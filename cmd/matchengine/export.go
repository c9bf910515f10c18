package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	exportpkg "github.com/dfci/matchengine/internal/export"
	"github.com/dfci/matchengine/internal/store"
)

func newExportCmd() *cobra.Command {
	var storeURI, format, outputPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export trial_match records to CSV or JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(storeURI, format, outputPath)
		},
	}

	cmd.Flags().StringVar(&storeURI, "store", "", "DuckDB database path")
	cmd.Flags().StringVar(&format, "format", "csv", "Output format: csv or json")
	cmd.Flags().StringVar(&outputPath, "output", "", "Output file (default: stdout)")

	return cmd
}

func runExport(storeURI, format, outputPath string) error {
	s, err := store.Open(storeURI)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	matches, err := s.ListTrialMatches()
	if err != nil {
		return fmt.Errorf("list trial matches: %w", err)
	}

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "csv":
		w, err := exportpkg.NewCSVWriter(out)
		if err != nil {
			return fmt.Errorf("create csv writer: %w", err)
		}
		for _, m := range matches {
			if err := w.Write(m); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
		return w.Flush()

	case "json":
		w, err := exportpkg.NewJSONWriter(out)
		if err != nil {
			return fmt.Errorf("create json writer: %w", err)
		}
		for _, m := range matches {
			if err := w.Write(m); err != nil {
				return fmt.Errorf("write json element: %w", err)
			}
		}
		return w.Close()

	default:
		return fmt.Errorf("unknown export format %q (want csv or json)", format)
	}
}
