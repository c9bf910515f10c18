package traverse

import (
	"github.com/dfci/matchengine/internal/matchtree"
	"github.com/dfci/matchengine/internal/model"
)

// Evidence is one deduplicated (sample, alteration) record surviving at the
// root of a match tree, ready for the Match Emitter to annotate with
// trial-level and clinical context.
type Evidence struct {
	SampleID     string
	Alteration   string
	ClinicalOnly bool
	Genomic      *model.GenomicRecord // nil when ClinicalOnly
}

// clinicalOnlyLeaves returns the set of clinical leaf node indices that
// have no genomic relative anywhere in the tree, per the ancestor-walk rule
// in spec.md §4.8 rule 1. The walk checks, for every ancestor of the leaf,
// whether any *other* child subtree of that ancestor contains a genomic
// leaf; one such sibling at any ancestor disqualifies clinical-only status,
// matching the rule's "and"/"or" wording literally (in practice this
// reduces to: a clinical leaf is clinical-only iff the whole tree contains
// no genomic leaf at all, since a clinical leaf's own subtree never does).
// This is the spec's flagged open question (§9): encoded exactly, with a
// dedicated fixture in clinical_only_test.go.
func clinicalOnlyLeaves(t *matchtree.Tree) map[int]bool {
	out := map[int]bool{}
	for idx, n := range t.Nodes {
		if n.Kind != matchtree.KindClinical {
			continue
		}
		out[idx] = !hasGenomicRelative(t, idx)
	}
	return out
}

func hasGenomicRelative(t *matchtree.Tree, leaf int) bool {
	child := leaf
	parent := t.Nodes[leaf].Parent
	for parent != -1 {
		for _, sibling := range t.Nodes[parent].Children {
			if sibling == child {
				continue
			}
			if t.HasGenomicDescendant(sibling) {
				return true
			}
		}
		child = parent
		parent = t.Nodes[parent].Parent
	}
	return false
}

// Reconstruct builds the deduplicated per-sample evidence list for every
// sample surviving at the tree's root, per spec.md §4.8's pre-order pass.
func Reconstruct(res *Result) []Evidence {
	t := res.Tree
	root := t.Root

	var genomicLeaves []int
	for idx, n := range t.Nodes {
		if n.Kind == matchtree.KindGenomic {
			genomicLeaves = append(genomicLeaves, idx)
		}
	}

	var out []Evidence
	seen := map[string]bool{}

	for sampleID := range res.Sets[root] {
		var emitted int

		for _, leaf := range genomicLeaves {
			matches, ok := res.Genomic[leaf][sampleID]
			if !ok {
				continue
			}
			for _, m := range matches {
				rec := m.Record
				key := sampleID + "\x00" + m.Alteration
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, Evidence{SampleID: sampleID, Alteration: m.Alteration, ClinicalOnly: false, Genomic: &rec})
				emitted++
			}
		}

		if emitted > 0 {
			continue
		}

		// No genomic evidence reached this sample: either the tree is purely
		// clinical (every clinical leaf is clinical-only), or a pure-OR tree
		// let this sample through via a clinical branch even though the tree
		// contains genomic leaves elsewhere. Either way there is nothing to
		// cross-join here, so the sample gets a single clinical-only record.
		key := sampleID + "\x00None"
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, Evidence{SampleID: sampleID, Alteration: "None", ClinicalOnly: true})
	}

	return out
}
