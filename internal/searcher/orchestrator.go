package searcher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/tracing"
)

// Path names the branch of the orchestration policy a query took.
type Path string

const (
	PathEmpty     Path = "empty"
	PathExact     Path = "exact"
	PathEscalated Path = "escalated"
	PathPhrase    Path = "phrase"
)

// Outcome is the result of one search together with how it was produced.
type Outcome struct {
	Results     []SearchResult `json:"results"`
	Path        Path           `json:"path"`
	Suggestions []string       `json:"suggestions,omitempty"`
}

// Orchestrator answers raw query text with ranked phrase index records.
// It is safe for concurrent use; it never writes to either index.
type Orchestrator struct {
	phrases  indexer.Index
	resolver *Resolver
	composer *Composer
	logger   *slog.Logger
}

func New(indices Indices, opts Options) (*Orchestrator, error) {
	if err := indices.validate(); err != nil {
		return nil, err
	}
	return &Orchestrator{
		phrases:  indices.Phrases,
		resolver: NewResolver(indices.Words, opts),
		composer: NewComposer(opts),
		logger:   slog.Default().With("component", "search-orchestrator"),
	}, nil
}

// Search runs raw through the orchestration policy.
//
// Whitespace-only input returns no results without touching the indices.
// Otherwise raw is split on single spaces, keeping empty tokens. A single
// token is first looked up as an exact term; on a miss the resolver runs on
// the raw text and the compound query is evaluated with that one token as
// the phrase. More tokens resolve the last token and evaluate the compound
// query once. Index faults are returned wrapped; zero matches are not an
// error.
func (o *Orchestrator) Search(ctx context.Context, raw string) (*Outcome, error) {
	if len(strings.Fields(raw)) == 0 {
		return &Outcome{Path: PathEmpty, Results: []SearchResult{}}, nil
	}
	log := logger.FromContext(ctx)
	tokens := strings.Split(raw, " ")

	if len(tokens) == 1 {
		results, err := o.evaluate(ctx, o.composer.Compose(tokens, nil))
		if err != nil {
			return nil, err
		}
		if len(results) > 0 {
			log.Debug("exact match", "query", raw, "results", len(results))
			return &Outcome{Path: PathExact, Results: results}, nil
		}

		suggestions, err := o.resolve(ctx, raw)
		if err != nil {
			return nil, err
		}
		results, err = o.evaluate(ctx, o.composer.Compound(tokens, suggestions))
		if err != nil {
			return nil, err
		}
		log.Debug("escalated single token",
			"query", raw,
			"suggestions", len(suggestions),
			"results", len(results),
		)
		return &Outcome{Path: PathEscalated, Results: results, Suggestions: suggestions}, nil
	}

	var suggestions []string
	if last := tokens[len(tokens)-1]; strings.TrimSpace(last) != "" {
		var err error
		suggestions, err = o.resolve(ctx, last)
		if err != nil {
			return nil, err
		}
	}
	results, err := o.evaluate(ctx, o.composer.Compose(tokens, suggestions))
	if err != nil {
		return nil, err
	}
	log.Debug("phrase search",
		"query", raw,
		"tokens", len(tokens),
		"suggestions", len(suggestions),
		"results", len(results),
	)
	return &Outcome{Path: PathPhrase, Results: results, Suggestions: suggestions}, nil
}

func (o *Orchestrator) resolve(ctx context.Context, token string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tracing.SpanFromContext(ctx) != nil {
		var span *tracing.Span
		ctx, span = tracing.StartChildSpan(ctx, "resolve")
		span.SetAttr("token", token)
		defer span.End()
	}
	return o.resolver.Resolve(ctx, token)
}

func (o *Orchestrator) evaluate(ctx context.Context, q indexer.Query) ([]SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tracing.SpanFromContext(ctx) != nil {
		var span *tracing.Span
		ctx, span = tracing.StartChildSpan(ctx, "evaluate")
		span.SetAttr("query", q.String())
		defer span.End()
	}
	hits, err := o.phrases.Search(ctx, q, o.composer.Limit())
	if err != nil {
		return nil, fmt.Errorf("evaluating %s: %w", q, err)
	}
	return toResults(hits), nil
}
