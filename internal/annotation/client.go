// Package annotation is an HTTP client for the optional external
// annotation service (spec.md §6), grounded on the teacher's plain
// net/http REST loader style (internal/cache/rest_loader.go): no HTTP
// client library, a single http.Client with a timeout, manual JSON
// decode/encode.
package annotation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dfci/matchengine/internal/criteria"
	"github.com/dfci/matchengine/internal/matcherr"
)

// Client calls the batched gene/variant annotation endpoint.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewClient builds a Client. token may be empty if the endpoint requires none.
func NewClient(endpoint, token string) *Client {
	return &Client{
		endpoint: endpoint,
		token:    token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type oncokbVariant struct {
	HugoSymbol string `json:"hugoSymbol"`
	Alteration string `json:"alteration"`
}

type annotationQuery struct {
	ID         string `json:"id"`
	HugoSymbol string `json:"hugoSymbol"`
	Alteration string `json:"alteration"`
}

type requestBody struct {
	OncokbVariants []oncokbVariant   `json:"oncokbVariants"`
	Queries        []annotationQuery `json:"queries"`
}

type resultEntry struct {
	HugoSymbol string `json:"hugoSymbol"`
	Alteration string `json:"alteration"`
}

type responseEntry struct {
	Query  annotationQuery `json:"query"`
	Result []resultEntry   `json:"result"`
}

// Declaration is one (gene, declared alteration) pair a trial's criteria
// reference, to be resolved to canonical alteration tokens.
type Declaration struct {
	HugoSymbol string
	Alteration string
}

// FetchCache calls the annotation endpoint once with every declared
// (gene, alteration) pair and returns the gene -> declared-alteration ->
// canonical-token cache the annotated-variant matcher consumes (spec.md §6).
// Any transport or decode failure returns a matcherr.AnnotationError,
// which callers should treat as "degrade to the non-annotated matcher"
// per spec.md §7.
func (c *Client) FetchCache(ctx context.Context, declarations []Declaration) (criteria.AnnotationCache, error) {
	body := requestBody{}
	for i, d := range declarations {
		body.OncokbVariants = append(body.OncokbVariants, oncokbVariant{HugoSymbol: d.HugoSymbol, Alteration: d.Alteration})
		body.Queries = append(body.Queries, annotationQuery{ID: fmt.Sprintf("q%d", i), HugoSymbol: d.HugoSymbol, Alteration: d.Alteration})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, matcherr.New(matcherr.AnnotationError, c.endpoint, fmt.Errorf("encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, matcherr.New(matcherr.AnnotationError, c.endpoint, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, matcherr.New(matcherr.AnnotationError, c.endpoint, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, matcherr.New(matcherr.AnnotationError, c.endpoint, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var entries []responseEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, matcherr.New(matcherr.AnnotationError, c.endpoint, fmt.Errorf("decode response: %w", err))
	}

	cache := criteria.AnnotationCache{}
	for _, e := range entries {
		gene := e.Query.HugoSymbol
		if cache[gene] == nil {
			cache[gene] = map[string][]string{}
		}
		tokens := make([]string, 0, len(e.Result))
		for _, r := range e.Result {
			tokens = append(tokens, r.Alteration)
		}
		cache[gene][e.Query.Alteration] = tokens
	}
	return cache, nil
}
