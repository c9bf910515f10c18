package query

import "github.com/dfci/matchengine/internal/model"

// Store is the document-store contract the evaluator depends on. A concrete
// implementation (internal/store) renders Predicate into its native query
// form; nothing in this package imports a store driver directly.
type Store interface {
	// FindClinicalSampleIDs returns the distinct sample_id set matching pred.
	FindClinicalSampleIDs(pred Predicate) ([]string, error)

	// FindGenomic returns genomic rows matching pred, projected to every
	// field FormatAlteration needs to reconstruct an alteration
	// string (plus structural_variant_comment when includeSVComment is set).
	FindGenomic(pred Predicate, includeSVComment bool) ([]model.GenomicRecord, error)

	// AllSampleIDs returns the fixed population of all clinical sample ids
	// for the duration of the run.
	AllSampleIDs() ([]string, error)
}
