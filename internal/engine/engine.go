// Package engine orchestrates a full matching run: it compiles every
// trial's match trees, fans workers out across (trial, match-tree) pairs
// per spec.md §5, collects surviving evidence, emits match records, and
// sorts the final output. The worker-pool shape is grounded on the
// teacher's internal/annotate/parallel.go (WorkItem/WorkResult channels,
// OrderedCollect-style draining), generalized from annotating variants to
// evaluating match trees.
package engine

import (
	"context"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dfci/matchengine/internal/criteria"
	"github.com/dfci/matchengine/internal/emit"
	"github.com/dfci/matchengine/internal/matcherr"
	"github.com/dfci/matchengine/internal/matchtree"
	"github.com/dfci/matchengine/internal/model"
	"github.com/dfci/matchengine/internal/oncotree"
	"github.com/dfci/matchengine/internal/query"
	"github.com/dfci/matchengine/internal/sortmatch"
	"github.com/dfci/matchengine/internal/traverse"
)

// Engine holds the immutable, once-built dependencies every worker shares
// (spec.md §5: "the all_samples set, Oncotree, and annotation cache are
// built once before workers start and are treated as immutable").
type Engine struct {
	Store           query.Store
	Clinical        emit.ClinicalLookup
	AllSamples      []string
	Onco            *oncotree.Tree
	AnnotationCache criteria.AnnotationCache
	Method          traverse.MatchMethod
	Workers         int
	Log             *zap.SugaredLogger
}

// workItem is one unit of fan-out: a single treatment node's match tree.
type workItem struct {
	trial model.Trial
	ref   matchtree.LevelRef
	level emit.LevelInfo
	tree  *matchtree.Tree
}

type workResult struct {
	matches []model.TrialMatch
	err     error
}

// Run compiles and evaluates every trial, returning the fully sorted set
// of trial matches. now is injected so age-criterion translation
// (internal/criteria.CompileClinical) is deterministic.
func (e *Engine) Run(ctx context.Context, trials []model.Trial, now time.Time) ([]model.TrialMatch, error) {
	workers := e.Workers
	if workers <= 0 {
		workers = min(8, runtime.NumCPU())
	}

	items := make(chan workItem, 2*workers)
	results := make(chan workResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				matches, err := e.evaluateLevel(ctx, now, item)
				results <- workResult{matches: matches, err: err}
			}
		}()
	}

	go func() {
		defer close(items)
		for _, trial := range trials {
			select {
			case <-ctx.Done():
				return
			default:
			}

			compiled, err := matchtree.Compile(trial)
			if err != nil {
				if e.Log != nil {
					e.Log.Warnw("skipping invalid trial", "protocol_no", trial.ProtocolNo, "error", err)
				}
				continue
			}

			for ref, tree := range compiled.Trees {
				select {
				case items <- workItem{trial: trial, ref: ref, level: levelInfoFor(compiled, ref), tree: tree}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var all []model.TrialMatch
	for r := range results {
		if r.err != nil {
			if e.Log != nil {
				e.Log.Warnw("match tree evaluation failed", "error", r.err)
			}
			continue
		}
		all = append(all, r.matches...)
	}

	if ctx.Err() != nil {
		return nil, matcherr.New(matcherr.StoreError, "", ctx.Err())
	}

	sortmatch.Sort(all)
	return all, nil
}

func (e *Engine) evaluateLevel(ctx context.Context, now time.Time, item workItem) ([]model.TrialMatch, error) {
	tctx := &traverse.Context{
		Ctx:             ctx,
		Store:           e.Store,
		AllSamples:      e.AllSamples,
		Onco:            e.Onco,
		Now:             now,
		AnnotationCache: e.AnnotationCache,
		Method:          e.Method,
	}

	res, err := traverse.Evaluate(tctx, item.tree)
	if err != nil {
		return nil, err
	}
	evidence := traverse.Reconstruct(res)
	return emit.Emit(item.trial, item.ref, item.level, e.Clinical, evidence), nil
}

func levelInfoFor(ct *matchtree.CompiledTrial, ref matchtree.LevelRef) emit.LevelInfo {
	step := ct.Trial.Steps[ref.StepIdx]
	switch {
	case ref.ArmIdx < 0:
		return emit.LevelInfo{InternalID: step.InternalID, Code: step.Code}
	case ref.DoseIdx < 0:
		arm := step.Arms[ref.ArmIdx]
		return emit.LevelInfo{
			InternalID: arm.InternalID, Code: arm.Code,
			ArmName: arm.Name, ArmDescription: arm.Description,
			ArmSuspended: arm.Suspended,
		}
	default:
		arm := step.Arms[ref.ArmIdx]
		dose := arm.DoseLevels[ref.DoseIdx]
		return emit.LevelInfo{
			InternalID: dose.InternalID, Code: dose.Code,
			ArmName: arm.Name, ArmDescription: arm.Description,
			ArmSuspended: arm.Suspended, LevelSuspended: dose.Suspended,
		}
	}
}
