// Command matchengine runs the clinical-trial matching pipeline: load
// clinical/genomic/trial documents into a DuckDB store, run a matching
// pass producing trial_match records, and export them. The cobra root
// plus subcommand layout follows the teacher's cmd/vibe-vep, with the
// config subcommand (latent in the teacher, its cobra command never
// wired into main) actually attached here.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "matchengine",
		Short: "Match cancer patients to clinical trial eligibility criteria",
		Long: `matchengine evaluates a set of clinical trials' eligibility criteria
against a population of patient clinical and genomic records, producing a
sorted list of patient-to-trial matches.`,
	}

	root.AddCommand(newLoadCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newConfigCmd())

	return root
}
