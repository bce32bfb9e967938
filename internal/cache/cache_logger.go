package cache

import (
	"context"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", helper.GetCacheKey(pattern))
	}
}

// InvalidateRankings drops every cached leaderboard and user statistic.
// Called after any write that can change a ranking, once it has committed.
func InvalidateRankings(ctx context.Context, cm *CacheManager) {
	if cm == nil {
		return
	}
	if err := cm.bumpRankingGeneration(ctx); err != nil {
		slog.ErrorContext(ctx, "Failed to bump ranking generation", "error", err)
	}
	SafeInvalidatePattern(ctx, cm.Leaderboard, "*")
	SafeInvalidatePattern(ctx, cm.Stats, "*")
}
