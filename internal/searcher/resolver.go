package searcher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer"
)

// Resolver expands a partial token into completion candidates from the word
// index.
type Resolver struct {
	words  indexer.Index
	opts   Options
	logger *slog.Logger
}

func NewResolver(words indexer.Index, opts Options) *Resolver {
	return &Resolver{
		words:  words,
		opts:   opts,
		logger: slog.Default().With("component", "suggestion-resolver"),
	}
}

// Resolve returns the distinct tokens matching token. It first runs a parsed
// query over the token n-grams and only when that finds nothing falls back
// to a bounded edit-distance lookup of the lowercased token. A blank token
// yields no suggestions and no index access.
func (r *Resolver) Resolve(ctx context.Context, token string) ([]string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parsed := indexer.Parsed(indexer.FieldTokenNgram, token, r.opts.Conjunction)
	hits, err := r.words.Search(ctx, parsed, r.opts.SuggestionLimit)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", token, err)
	}

	if len(hits) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fuzzy := indexer.Fuzzy(indexer.FieldToken, strings.ToLower(token), r.opts.FuzzyDistance, r.opts.Transpositions)
		hits, err = r.words.Search(ctx, fuzzy, r.opts.SuggestionLimit)
		if err != nil {
			return nil, fmt.Errorf("resolving %q by edit distance: %w", token, err)
		}
		r.logger.Debug("structured lookup empty, used edit distance", "token", token, "hits", len(hits))
	}

	return distinctTokens(hits), nil
}

func distinctTokens(hits []indexer.Hit) []string {
	if len(hits) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(hits))
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		tok := h.Field(indexer.FieldToken)
		if tok == "" {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
