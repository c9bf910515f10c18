// Package oncotree expands a diagnosis name (or the _SOLID_/_LIQUID_/"All
// Tumors" sentinels) into the set of descendant tumor-type names, mirroring
// oncotreenx.build_oncotree + MatchEngine._search_oncotree_diagnosis in the
// original matchengine. The line-oriented parent-pointer text format is
// parsed the way the teacher's internal/cache/gtf_loader.go parses its
// tab-delimited GENCODE records: one record per line, build an in-memory
// tree, done once at startup.
package oncotree

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Node is one oncotree taxonomy entry.
type Node struct {
	Code     string
	Text     string
	Parent   string
	Children []*Node
}

// Tree is the in-memory oncotree taxonomy, built once at startup and never
// mutated afterwards (spec.md §5: "Oncotree... built once before workers
// start and treated as immutable").
type Tree struct {
	byCode map[string]*Node
	byText map[string]*Node
	root   []*Node

	liquidNames map[string]bool // cached descendant set of the Lymphoid/Myeloid subtrees
	allNames    []string

	jsonDescendants map[string][]string // set when loaded via LoadJSON
}

// Sentinels recognized in a diagnosis criterion value.
const (
	SentinelLiquid     = "_LIQUID_"
	SentinelSolid      = "_SOLID_"
	AllLiquidTumors    = "All Liquid Tumors"
	AllSolidTumors     = "All Solid Tumors"
	AllTumors          = "All Tumors"
)

// liquidRoots are the tumor-type names whose descendants form the "liquid"
// (hematologic) side of the tree, per original's lookup_text(onco_tree,
// "Lymph") / lookup_text(onco_tree, "Blood").
var liquidRoots = []string{"Lymph", "Blood"}

// Load parses the tab-delimited oncotree text file: one node per line,
// columns `code<TAB>text<TAB>parent_code`.
func Load(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open oncotree file: %w", err)
	}
	defer f.Close()
	return parse(f)
}

func parse(r io.Reader) (*Tree, error) {
	t := &Tree{byCode: map[string]*Node{}, byText: map[string]*Node{}}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		code := strings.TrimSpace(fields[0])
		text := strings.TrimSpace(fields[1])
		parent := ""
		if len(fields) >= 3 {
			parent = strings.TrimSpace(fields[2])
		}
		n := &Node{Code: code, Text: text, Parent: parent}
		t.byCode[code] = n
		t.byText[text] = n
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading oncotree file: %w", err)
	}

	for _, n := range t.byCode {
		if n.Parent == "" {
			t.root = append(t.root, n)
			continue
		}
		if p, ok := t.byCode[n.Parent]; ok {
			p.Children = append(p.Children, n)
		} else {
			t.root = append(t.root, n)
		}
	}

	t.allNames = make([]string, 0, len(t.byCode))
	for _, n := range t.byCode {
		t.allNames = append(t.allNames, n.Text)
	}

	t.liquidNames = map[string]bool{}
	for _, rootText := range liquidRoots {
		if n, ok := t.byText[rootText]; ok {
			for _, d := range descendants(n) {
				t.liquidNames[d.Text] = true
			}
		}
	}

	return t, nil
}

// LoadJSON loads the alternative diagnosis->descendants mapping file
// (spec.md §6 "also accepts a JSON mapping file from diagnosis->descendant
// list as an alternative").
func LoadJSON(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open oncotree json: %w", err)
	}
	var mapping map[string][]string
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("parse oncotree json: %w", err)
	}

	t := &Tree{byCode: map[string]*Node{}, byText: map[string]*Node{}, liquidNames: map[string]bool{}}
	seen := map[string]bool{}
	for diag, descendants := range mapping {
		n := &Node{Code: diag, Text: diag}
		t.byText[diag] = n
		t.byCode[diag] = n
		if !seen[diag] {
			seen[diag] = true
			t.allNames = append(t.allNames, diag)
		}
		for _, d := range descendants {
			if !seen[d] {
				seen[d] = true
				t.allNames = append(t.allNames, d)
			}
		}
	}
	// jsonDescendants stores the precomputed expansion directly.
	t.jsonDescendants = mapping
	return t, nil
}

// descendants returns n and every node reachable from it (pre-order).
func descendants(n *Node) []*Node {
	out := []*Node{n}
	for _, c := range n.Children {
		out = append(out, descendants(c)...)
	}
	return out
}

// Expand resolves a single diagnosis string (without any "!" negation
// marker, which is the criterion compiler's concern) into the set of
// matching tumor-type display names. unconstrained is true for "All
// Tumors", meaning the predicate should be dropped entirely. found is false
// when the diagnosis isn't present in the tree, in which case the original
// value should be passed through unchanged (spec.md §4.4).
func (t *Tree) Expand(diagnosis string) (names []string, unconstrained bool, found bool) {
	switch diagnosis {
	case AllTumors:
		return nil, true, true
	case SentinelLiquid, AllLiquidTumors:
		return t.liquidList(), false, true
	case SentinelSolid, AllSolidTumors:
		return t.solidList(), false, true
	}

	if t.jsonDescendants != nil {
		if ds, ok := t.jsonDescendants[diagnosis]; ok {
			out := append([]string{diagnosis}, ds...)
			return dedup(out), false, true
		}
		return nil, false, false
	}

	n, ok := t.byText[diagnosis]
	if !ok {
		return nil, false, false
	}
	var texts []string
	for _, d := range descendants(n) {
		texts = append(texts, d.Text)
	}
	return dedup(texts), false, true
}

func (t *Tree) liquidList() []string {
	out := make([]string, 0, len(t.liquidNames))
	for name := range t.liquidNames {
		out = append(out, name)
	}
	return out
}

func (t *Tree) solidList() []string {
	var out []string
	for _, name := range t.allNames {
		if !t.liquidNames[name] {
			out = append(out, name)
		}
	}
	return out
}

func dedup(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
