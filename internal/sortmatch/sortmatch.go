// Package sortmatch imposes the final deterministic ordering on emitted
// trial matches, mirroring the add_sort_order pipeline in the original
// matchengine (spec.md §4.10).
package sortmatch

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dfci/matchengine/internal/model"
)

// tierBucket classifies one match into the coarse priority bucket from
// spec.md §4.10 item 1. Checks run in the listed priority order since a
// match can satisfy more than one condition (e.g. tier=1 and wildtype=true).
func tierBucket(m model.TrialMatch) int {
	switch {
	case m.VariantCategory == "SV" && m.MatchType == "gene":
		return -1
	case m.MMRStatus == "Deficient (MMR-D / MSI-H)":
		return 0
	case m.Tier != nil && *m.Tier == 1:
		return 1
	case m.Tier != nil && *m.Tier == 2:
		return 2
	case m.VariantCategory == "CNV":
		return 3
	case m.Tier != nil && *m.Tier == 3:
		return 4
	case m.Tier != nil && *m.Tier == 4:
		return 5
	case m.Wildtype != nil && *m.Wildtype:
		return 6
	default:
		return 7
	}
}

func matchTypeRank(m model.TrialMatch) int {
	switch m.MatchType {
	case "variant":
		return 0
	case "gene":
		return 1
	default:
		return 2
	}
}

func cancerTypeRank(m model.TrialMatch) int {
	if m.CancerTypeMatch == "specific" {
		return 0
	}
	return 1
}

func centerRank(m model.TrialMatch) int {
	if strings.EqualFold(m.CoordinatingCenter, "Dana-Farber") {
		return 0
	}
	return 1
}

// key is the 5-tuple from spec.md §4.10, minus protocol recency which is
// assigned after grouping (item 5 depends on a dense rank within groups).
type key struct {
	tier       int
	matchType  int
	cancerType int
	center     int
}

func keyOf(m model.TrialMatch) key {
	return key{
		tier:       tierBucket(m),
		matchType:  matchTypeRank(m),
		cancerType: cancerTypeRank(m),
		center:     centerRank(m),
	}
}

func less(a, b key) bool {
	if a.tier != b.tier {
		return a.tier < b.tier
	}
	if a.matchType != b.matchType {
		return a.matchType < b.matchType
	}
	if a.cancerType != b.cancerType {
		return a.cancerType < b.cancerType
	}
	return a.center < b.center
}

// Sort orders matches in place, assigning SortKey and SortOrder on every
// record. Within a (sample_id, tier-bucket) group, matches are further
// ranked by descending protocol_no via per-group dense rank (spec.md §4.10
// item 5), then the whole slice is sorted by sample_id and the final
// 5-tuple (including the protocol rank as the fifth element).
func Sort(matches []model.TrialMatch) {
	type group struct {
		sampleID string
		tier     int
	}
	protocolRank := map[group]map[string]int{}

	groupProtocols := map[group][]string{}
	for _, m := range matches {
		g := group{sampleID: m.SampleID, tier: tierBucket(m)}
		groupProtocols[g] = append(groupProtocols[g], m.ProtocolNo)
	}
	for g, protocols := range groupProtocols {
		protocolRank[g] = map[string]int{}
		sort.Slice(protocols, func(i, j int) bool {
			return protocolNumLess(protocols[j], protocols[i]) // descending
		})
		rank := 0
		var prev string
		first := true
		for _, p := range protocols {
			if first || p != prev {
				if !first {
					rank++
				}
				prev = p
				first = false
			}
			protocolRank[g][p] = rank
		}
	}

	for i := range matches {
		m := &matches[i]
		k := keyOf(*m)
		g := group{sampleID: m.SampleID, tier: k.tier}
		pr := protocolRank[g][m.ProtocolNo]
		m.SortKey = []int{k.tier, k.matchType, k.cancerType, k.center, pr}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].SampleID != matches[j].SampleID {
			return matches[i].SampleID < matches[j].SampleID
		}
		ki, kj := matches[i].SortKey, matches[j].SortKey
		for idx := range ki {
			if ki[idx] != kj[idx] {
				return ki[idx] < kj[idx]
			}
		}
		return false
	})

	// Final integer rank per sample_id, per the closing paragraph of §4.10.
	var prevSample string
	rank := 0
	for i := range matches {
		if matches[i].SampleID != prevSample {
			rank = 0
			prevSample = matches[i].SampleID
		} else {
			rank++
		}
		matches[i].SortOrder = rank
	}
}

// protocolNumLess compares protocol numbers numerically when both parse as
// integers, falling back to lexicographic comparison otherwise (protocol
// numbers sometimes carry a site suffix, e.g. "10-001-B").
func protocolNumLess(a, b string) bool {
	an, aerr := strconv.Atoi(strings.TrimSpace(a))
	bn, berr := strconv.Atoi(strings.TrimSpace(b))
	if aerr == nil && berr == nil {
		return an < bn
	}
	return a < b
}
