package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dfci/matchengine/internal/fulltext"
	"github.com/dfci/matchengine/internal/loader"
	"github.com/dfci/matchengine/internal/store"
)

func newLoadCmd() *cobra.Command {
	var storeURI, clinicalPath, genomicPath, trialDir, svIndexPath string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Ingest clinical, genomic, and trial documents into the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(storeURI, clinicalPath, genomicPath, trialDir, svIndexPath)
		},
	}

	cmd.Flags().StringVar(&storeURI, "store", "", "DuckDB database path (empty for in-memory, rarely useful for load)")
	cmd.Flags().StringVar(&clinicalPath, "clinical", "", "Tab-delimited clinical records file")
	cmd.Flags().StringVar(&genomicPath, "genomic", "", "Tab-delimited genomic records file")
	cmd.Flags().StringVar(&trialDir, "trials", "", "Directory of YAML trial documents")
	cmd.Flags().StringVar(&svIndexPath, "sv-index", "", "Structural-variant full-text index path (empty for in-memory, lost on exit)")

	return cmd
}

func runLoad(storeURI, clinicalPath, genomicPath, trialDir, svIndexPath string) error {
	s, err := store.Open(storeURI)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	clinicalBySample := map[string]string{}

	if clinicalPath != "" {
		records, warnings, err := loader.LoadClinical(clinicalPath)
		if err != nil {
			return fmt.Errorf("load clinical: %w", err)
		}
		for _, w := range warnings {
			fmt.Println("warning:", w)
		}
		for _, r := range records {
			clinicalBySample[r.SampleID] = r.ClinicalID
		}
		if err := loader.IngestClinical(s.DB(), records); err != nil {
			return fmt.Errorf("ingest clinical: %w", err)
		}
		fmt.Printf("loaded %d clinical records\n", len(records))
	}

	if genomicPath != "" {
		records, err := loader.LoadGenomic(genomicPath, clinicalBySample)
		if err != nil {
			return fmt.Errorf("load genomic: %w", err)
		}
		if err := loader.IngestGenomic(s.DB(), records); err != nil {
			return fmt.Errorf("ingest genomic: %w", err)
		}
		fmt.Printf("loaded %d genomic records\n", len(records))

		idx, err := fulltext.Open(svIndexPath)
		if err != nil {
			return fmt.Errorf("open structural variant index: %w", err)
		}
		defer idx.Close()
		if err := loader.IndexStructuralVariants(idx, records); err != nil {
			return fmt.Errorf("index structural variants: %w", err)
		}
	}

	if trialDir != "" {
		trials, warnings, err := loader.LoadTrialDir(trialDir)
		if err != nil {
			return fmt.Errorf("load trials: %w", err)
		}
		for _, w := range warnings {
			fmt.Println("warning:", w)
		}
		if err := loader.IngestTrials(s.DB(), trials); err != nil {
			return fmt.Errorf("ingest trials: %w", err)
		}
		fmt.Printf("loaded %d trials\n", len(trials))
	}

	return nil
}
