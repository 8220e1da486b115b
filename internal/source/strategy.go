package source

import (
	"context"
	"fmt"
	"log/slog"

	"KeywordAnalyzer/internal/domain"
	"KeywordAnalyzer/internal/ports"
)

// StrategySource implements KeywordImporter by asking registered sources in
// a fixed order and merging their records.
type StrategySource struct {
	registry *Registry
	names    []string
	logger   *slog.Logger
}

var _ ports.KeywordImporter = (*StrategySource)(nil)

// NewStrategySource wires the registry with the ordered source names to query.
func NewStrategySource(reg *Registry, names []string, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		names:    names,
		logger:   log,
	}
}

// Import queries every available source. Records are de-duplicated by
// normalized keyword, first seen wins, and capped at query.MaxRows.
func (s *StrategySource) Import(ctx context.Context, query domain.KeywordQuery) ([]domain.KeywordRecord, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("keyword source registry is not configured")
	}

	s.debug("import keywords", "sources", len(s.names), "product", query.Product)

	var (
		aggregated []domain.KeywordRecord
		seen       = map[string]struct{}{}
		queried    int
	)
	for _, name := range s.names {
		src, err := s.registry.Resolve(name)
		if err != nil {
			return nil, err
		}
		if !src.Available() {
			s.debug("skip unavailable source", "source", name)
			continue
		}
		queried++

		records, err := src.Fetch(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", name, err)
		}
		s.debug("source produced keywords", "source", name, "count", len(records))

		for _, rec := range records {
			if _, dup := seen[rec.Keyword]; dup {
				continue
			}
			seen[rec.Keyword] = struct{}{}
			aggregated = append(aggregated, rec)
			if query.MaxRows > 0 && len(aggregated) >= query.MaxRows {
				return aggregated, nil
			}
		}
	}

	if queried == 0 {
		return nil, fmt.Errorf("%w: none of %v can be queried", domain.ErrSourceUnavailable, s.names)
	}
	if len(aggregated) == 0 {
		return nil, domain.ErrNoKeywords
	}

	s.debug("import done", "total_keywords", len(aggregated))
	return aggregated, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
