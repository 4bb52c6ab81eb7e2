package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prestia/prestia-api/internal/cache"
	"github.com/prestia/prestia-api/internal/repository"
	"github.com/prestia/prestia-api/pkg/logger"
)

const (
	overviewCacheKey     = "analytics:overview"
	distributionCacheKey = "analytics:status_distribution"
	analyticsCacheTTL    = 15 * time.Minute
)

// AnalyticsService serves portfolio-level aggregates with a short cache in
// front of the heavy queries.
type AnalyticsService struct {
	repo  repository.AnalyticsRepository
	cache cache.Cache
}

func NewAnalyticsService(repo repository.AnalyticsRepository, c cache.Cache) *AnalyticsService {
	return &AnalyticsService{repo: repo, cache: c}
}

func (s *AnalyticsService) GetOverview(ctx context.Context) (*repository.PortfolioOverview, error) {
	if cached, ok := s.cache.Get(ctx, overviewCacheKey); ok {
		var overview repository.PortfolioOverview
		if err := json.Unmarshal([]byte(cached), &overview); err == nil {
			return &overview, nil
		}
	}

	overview, err := s.repo.GetOverview(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(overview); err == nil {
		if err := s.cache.Set(ctx, overviewCacheKey, string(data), analyticsCacheTTL); err != nil {
			logger.Warn("failed to cache portfolio overview", "error", err)
		}
	}

	return overview, nil
}

func (s *AnalyticsService) GetStatusDistribution(ctx context.Context) ([]repository.StatusCount, error) {
	if cached, ok := s.cache.Get(ctx, distributionCacheKey); ok {
		var counts []repository.StatusCount
		if err := json.Unmarshal([]byte(cached), &counts); err == nil {
			return counts, nil
		}
	}

	counts, err := s.repo.GetStatusDistribution(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(counts); err == nil {
		if err := s.cache.Set(ctx, distributionCacheKey, string(data), analyticsCacheTTL); err != nil {
			logger.Warn("failed to cache status distribution", "error", err)
		}
	}

	return counts, nil
}

// RefreshCache recomputes the aggregates and rewrites the cache entries.
// Runs from the scheduler so interactive requests mostly hit warm data.
func (s *AnalyticsService) RefreshCache(ctx context.Context) error {
	overview, err := s.repo.GetOverview(ctx)
	if err != nil {
		return err
	}
	if data, err := json.Marshal(overview); err == nil {
		if err := s.cache.Set(ctx, overviewCacheKey, string(data), analyticsCacheTTL); err != nil {
			return err
		}
	}

	counts, err := s.repo.GetStatusDistribution(ctx)
	if err != nil {
		return err
	}
	if data, err := json.Marshal(counts); err == nil {
		if err := s.cache.Set(ctx, distributionCacheKey, string(data), analyticsCacheTTL); err != nil {
			return err
		}
	}

	logger.Info("analytics cache refreshed")
	return nil
}
