// Package fulltext indexes structural_variant_comment free text with bleve,
// grounded on the search-index setup in the bleve-backed example pack
// repo's internal/search package. It is a secondary accelerator only: the
// regex word-boundary search from internal/criteria (rewriteStructuralVariant)
// remains the ground truth for SV gene matching, since the original
// matchengine's semantics are defined in terms of that regex, not a
// relevance-scored search. The index narrows candidate rows before the
// regex check runs, which matters once structural_variant_comment grows
// past a few thousand free-text rows.
package fulltext

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Index is an in-memory (or on-disk) bleve index over one field:
// structural_variant_comment, keyed by genomic_id.
type Index struct {
	idx bleve.Index
}

// commentDoc is the document shape indexed per genomic row.
type commentDoc struct {
	Comment string `json:"comment"`
}

// Open opens the index at path, creating it with a text-field mapping if it
// doesn't exist yet. An empty path builds a transient in-memory index.
func Open(path string) (*Index, error) {
	if path == "" {
		idx, err := bleve.NewMemOnly(buildMapping())
		if err != nil {
			return nil, fmt.Errorf("create in-memory sv index: %w", err)
		}
		return &Index{idx: idx}, nil
	}

	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, buildMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("open sv index: %w", err)
	}
	return &Index{idx: idx}, nil
}

func buildMapping() *mapping.IndexMappingImpl {
	commentField := bleve.NewTextFieldMapping()
	commentField.Analyzer = "en"

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("comment", commentField)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = docMapping
	return im
}

// Close closes the underlying index.
func (i *Index) Close() error { return i.idx.Close() }

// IndexComment adds or replaces one genomic row's structural variant
// comment under its genomic_id.
func (i *Index) IndexComment(genomicID, comment string) error {
	if comment == "" {
		return nil
	}
	return i.idx.Index(genomicID, commentDoc{Comment: comment})
}

// CandidateIDs returns the genomic_ids whose structural_variant_comment
// plausibly mentions gene, narrowing the set the regex ground truth needs
// to re-check exactly.
func (i *Index) CandidateIDs(gene string, limit int) ([]string, error) {
	q := bleve.NewMatchQuery(gene)
	q.SetField("comment")
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)

	result, err := i.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search sv index: %w", err)
	}
	ids := make([]string, 0, len(result.Hits))
	for _, hit := range result.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}
