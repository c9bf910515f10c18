// Package traverse walks a compiled match tree against the patient
// population, computing per-node sample sets with AND/OR/negation set
// semantics (post-order) and then reconstructing per-sample evidence
// (pre-order), mirroring traverse_match_tree / _assess_match in the
// original matchengine (spec.md §4.8).
package traverse

import (
	"context"
	"time"

	"github.com/dfci/matchengine/internal/criteria"
	"github.com/dfci/matchengine/internal/matchtree"
	"github.com/dfci/matchengine/internal/oncotree"
	"github.com/dfci/matchengine/internal/query"
)

// MatchMethod selects whether the annotation-service variant matcher
// participates, per spec.md §6 config.
type MatchMethod string

const (
	MethodGeneral  MatchMethod = "general"
	MethodAnnotated MatchMethod = "annotated"
)

// Context carries everything a leaf evaluation needs, built once per run
// and shared read-only across worker goroutines (spec.md §5: "the
// all_samples set, Oncotree, and annotation cache are built once before
// workers start and are treated as immutable").
type Context struct {
	Ctx             context.Context
	Store           query.Store
	AllSamples      []string
	Onco            *oncotree.Tree
	Now             time.Time
	AnnotationCache criteria.AnnotationCache
	Method          MatchMethod
}

// doneCh returns the cancellation channel for the embedded context, treating
// a nil Ctx as "never cancelled" so callers can construct a bare Context in
// tests without wiring one up.
func (c *Context) doneCh() <-chan struct{} {
	if c.Ctx == nil {
		return nil
	}
	return c.Ctx.Done()
}
