package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dfci/matchengine/internal/annotation"
	"github.com/dfci/matchengine/internal/config"
	"github.com/dfci/matchengine/internal/criteria"
	"github.com/dfci/matchengine/internal/engine"
	"github.com/dfci/matchengine/internal/fulltext"
	"github.com/dfci/matchengine/internal/loader"
	"github.com/dfci/matchengine/internal/matchtree"
	"github.com/dfci/matchengine/internal/model"
	"github.com/dfci/matchengine/internal/oncotree"
	"github.com/dfci/matchengine/internal/store"
	"github.com/dfci/matchengine/internal/traverse"
)

func newRunCmd() *cobra.Command {
	var storeURI, oncotreePath, matchMethod, svIndexPath string
	var workers int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate every trial in the store against the loaded patient population",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd.Context(), storeURI, oncotreePath, matchMethod, svIndexPath, workers)
		},
	}

	cmd.Flags().StringVar(&storeURI, "store", "", "DuckDB database path")
	cmd.Flags().StringVar(&oncotreePath, "oncotree-file", "", "Oncotree text or JSON mapping file (defaults to the configured tumor_tree_path)")
	cmd.Flags().StringVar(&matchMethod, "match-method", "", "general or annotated (defaults to config)")
	cmd.Flags().StringVar(&svIndexPath, "sv-index", "", "Structural-variant full-text index path built by `load` (empty to skip acceleration)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker pool size (0 = min(8, NumCPU))")

	return cmd
}

func runMatch(ctx context.Context, storeURI, oncotreePath, matchMethod, svIndexPath string, workers int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if storeURI == "" {
		storeURI = cfg.StoreURI
	}
	if oncotreePath == "" {
		oncotreePath = cfg.TumorTreePath
	}
	if matchMethod == "" {
		matchMethod = string(cfg.MatchMethod)
	}
	if workers == 0 {
		workers = cfg.WorkerCount
	}

	log, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()
	sugar := log.Sugar()

	s, err := store.Open(storeURI)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	if svIndexPath != "" {
		idx, err := fulltext.Open(svIndexPath)
		if err != nil {
			return fmt.Errorf("open structural variant index: %w", err)
		}
		defer idx.Close()
		s.WithFullText(idx)
	}

	trials, err := loader.LoadTrialsFromStore(s.DB())
	if err != nil {
		return fmt.Errorf("load trials from store: %w", err)
	}

	allSamples, err := s.AllSampleIDs()
	if err != nil {
		return fmt.Errorf("list sample population: %w", err)
	}

	var onco *oncotree.Tree
	if oncotreePath != "" {
		onco, err = oncotree.Load(oncotreePath)
		if err != nil {
			return fmt.Errorf("load oncotree: %w", err)
		}
	} else {
		onco = &oncotree.Tree{}
	}

	method := traverse.MatchMethod(matchMethod)
	var cache criteria.AnnotationCache
	if method == traverse.MethodAnnotated {
		if cfg.AnnotationEndpoint == "" {
			return fmt.Errorf("match-method=annotated requires annotation_endpoint in config")
		}
		client := annotation.NewClient(cfg.AnnotationEndpoint, cfg.AnnotationToken)
		declarations := collectAnnotatedDeclarations(trials)
		cache, err = client.FetchCache(ctx, declarations)
		if err != nil {
			sugar.Warnw("annotation service unavailable, degrading to general matcher", "error", err)
			method = traverse.MethodGeneral
		}
	}

	eng := &engine.Engine{
		Store:           s,
		Clinical:        s,
		AllSamples:      allSamples,
		Onco:            onco,
		AnnotationCache: cache,
		Method:          method,
		Workers:         workers,
		Log:             sugar,
	}

	matches, err := eng.Run(ctx, trials, time.Now())
	if err != nil {
		return fmt.Errorf("run matching pass: %w", err)
	}

	if err := s.ReplaceTrialMatches(matches); err != nil {
		return fmt.Errorf("write trial matches: %w", err)
	}

	sugar.Infow("matching pass complete", "trials", len(trials), "matches", len(matches))
	return nil
}

// collectAnnotatedDeclarations walks every trial's match trees for genomic
// leaves declaring annotated_variant, so the annotation service can be
// called once up front with the full (gene, alteration) set (spec.md §6).
func collectAnnotatedDeclarations(trials []model.Trial) []annotation.Declaration {
	seen := map[annotation.Declaration]bool{}
	var out []annotation.Declaration
	for _, t := range trials {
		compiled, err := matchtree.Compile(t)
		if err != nil {
			continue
		}
		for _, tree := range compiled.Trees {
			for _, n := range tree.Nodes {
				if n.Kind != matchtree.KindGenomic {
					continue
				}
				alteration, ok := n.Criteria["annotated_variant"].(string)
				if !ok {
					continue
				}
				gene, _ := n.Criteria["hugo_symbol"].(string)
				d := annotation.Declaration{HugoSymbol: gene, Alteration: alteration}
				if !seen[d] {
					seen[d] = true
					out = append(out, d)
				}
			}
		}
	}
	return out
}
