package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quizhub/quiz-service/internal/cache"
	"github.com/quizhub/quiz-service/internal/repositories"
	"github.com/quizhub/quiz-service/internal/validator"
	"gorm.io/gorm"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
	defaultRecentDays       = 7
	maxRecentDays           = 365
	recentAttemptsInStats   = 10
)

type rankingService struct {
	repo         repositories.Repository
	db           *gorm.DB
	logger       *slog.Logger
	cacheManager *cache.CacheManager
	cacheTTL     time.Duration
	now          func() time.Time
}

func NewRankingService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, cacheManager *cache.CacheManager, cacheTTL time.Duration) RankingService {
	if cacheTTL <= 0 {
		cacheTTL = cache.LeaderboardCacheConfig.TTL
	}
	return &rankingService{
		repo:         repo,
		db:           db,
		logger:       logger,
		cacheManager: cacheManager,
		cacheTTL:     cacheTTL,
		now:          utcNow,
	}
}

// ===== LEADERBOARDS =====

func (s *rankingService) GeneralLeaderboard(ctx context.Context, limit int) ([]*LeaderboardEntry, error) {
	limit, err := leaderboardLimit(limit)
	if err != nil {
		return nil, err
	}

	helper, key := s.cacheFor(ctx, s.leaderboardCache(), fmt.Sprintf("general:%d", limit))
	entries, err := cached(ctx, helper, s.cacheTTL, key, func() ([]*LeaderboardEntry, error) {
		attempts, err := s.repo.Leaderboard().ListCompleted(ctx, s.db, repositories.CompletedAttemptFilters{})
		if err != nil {
			return nil, internalError("load completed attempts", err)
		}
		return buildLeaderboard(attempts, limit), nil
	})
	if err != nil {
		s.logger.Error("Failed to build general leaderboard", "error", err)
		return nil, asServiceError("general leaderboard", err)
	}

	return entries, nil
}

// LeaderboardBySubject ranks users over attempts of the subject's quizzes only.
// An unknown subject yields an empty leaderboard.
func (s *rankingService) LeaderboardBySubject(ctx context.Context, subjectID uint, limit int) ([]*LeaderboardEntry, error) {
	if err := validID(subjectID); err != nil {
		return nil, err
	}
	limit, err := leaderboardLimit(limit)
	if err != nil {
		return nil, err
	}

	helper, key := s.cacheFor(ctx, s.leaderboardCache(), fmt.Sprintf("subject:%d:%d", subjectID, limit))
	entries, err := cached(ctx, helper, s.cacheTTL, key, func() ([]*LeaderboardEntry, error) {
		attempts, err := s.repo.Leaderboard().ListCompleted(ctx, s.db, repositories.CompletedAttemptFilters{
			SubjectID: &subjectID,
		})
		if err != nil {
			return nil, internalError("load subject attempts", err)
		}
		return buildLeaderboard(attempts, limit), nil
	})
	if err != nil {
		s.logger.Error("Failed to build subject leaderboard", "subject_id", subjectID, "error", err)
		return nil, asServiceError("subject leaderboard", err)
	}

	return entries, nil
}

// ===== USER STATISTICS =====

func (s *rankingService) UserStats(ctx context.Context, userID uint) (*UserStatsResponse, error) {
	if err := validID(userID); err != nil {
		return nil, err
	}

	helper, key := s.cacheFor(ctx, s.statsCache(), fmt.Sprintf("user:%d", userID))
	stats, err := cached(ctx, helper, s.cacheTTL, key, func() (*UserStatsResponse, error) {
		user, err := s.repo.User().GetByID(ctx, s.db, userID)
		if err != nil {
			return nil, storeError("get user", err, ErrUserNotFound, nil)
		}

		attempts, err := s.repo.Leaderboard().ListCompleted(ctx, s.db, repositories.CompletedAttemptFilters{
			UserID: &userID,
		})
		if err != nil {
			return nil, internalError("load user attempts", err)
		}

		// Attempts arrive newest completion first
		recent := attempts
		if len(recent) > recentAttemptsInStats {
			recent = recent[:recentAttemptsInStats]
		}
		summaries := make([]AttemptSummary, 0, len(recent))
		for _, attempt := range recent {
			summaries = append(summaries, toAttemptSummary(attempt))
		}

		return &UserStatsResponse{
			User:           toUserSummary(user),
			Statistics:     computeUserStats(attempts),
			RecentAttempts: summaries,
		}, nil
	})
	if err != nil {
		return nil, asServiceError("user stats", err)
	}

	return stats, nil
}

// RecentBestScores ranks individual attempts of the last days by raw score,
// not by percentage. It reads through to the store on every call.
func (s *rankingService) RecentBestScores(ctx context.Context, days, limit int) ([]*RecentScoreEntry, error) {
	days, err := boundedParam("days", days, defaultRecentDays, maxRecentDays)
	if err != nil {
		return nil, err
	}
	limit, err = leaderboardLimit(limit)
	if err != nil {
		return nil, err
	}

	since := s.now().Add(-time.Duration(days) * 24 * time.Hour)

	attempts, err := s.repo.Leaderboard().ListBestSince(ctx, s.db, since, limit)
	if err != nil {
		s.logger.Error("Failed to load recent scores", "days", days, "error", err)
		return nil, internalError("load recent scores", err)
	}

	entries := make([]*RecentScoreEntry, 0, len(attempts))
	for _, attempt := range attempts {
		entry := &RecentScoreEntry{AttemptSummary: toAttemptSummary(attempt)}
		if attempt.User != nil {
			entry.User = toUserSummary(attempt.User)
		} else {
			entry.User.ID = attempt.UserID
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// ===== HELPERS =====

func (s *rankingService) leaderboardCache() *cache.CacheHelper {
	if s.cacheManager == nil {
		return nil
	}
	return s.cacheManager.Leaderboard
}

func (s *rankingService) statsCache() *cache.CacheHelper {
	if s.cacheManager == nil {
		return nil
	}
	return s.cacheManager.Stats
}

// cacheFor scopes key to the current ranking generation. A nil helper means
// the view is read straight from the store.
func (s *rankingService) cacheFor(ctx context.Context, helper *cache.CacheHelper, key string) (*cache.CacheHelper, string) {
	if helper == nil || !helper.Enabled() {
		return nil, key
	}

	scoped, err := s.cacheManager.RankingKey(ctx, key)
	if err != nil {
		s.logger.Warn("Ranking cache unavailable, reading from store", "key", key, "error", err)
		return nil, key
	}
	return helper, scoped
}

// cached serves fetch through the helper when caching is on
func cached[T any](ctx context.Context, helper *cache.CacheHelper, ttl time.Duration, key string, fetch func() (T, error)) (T, error) {
	if helper == nil || !helper.Enabled() {
		return fetch()
	}

	var dest T
	err := helper.CacheOrExecute(ctx, key, &dest, ttl, func() (interface{}, error) {
		value, err := fetch()
		if err != nil {
			return nil, err
		}
		return value, nil
	})
	return dest, err
}

func leaderboardLimit(limit int) (int, error) {
	return boundedParam("limit", limit, defaultLeaderboardLimit, maxLeaderboardLimit)
}

// boundedParam maps 0 to def and rejects values outside 1..max
func boundedParam(field string, value, def, max int) (int, error) {
	switch {
	case value == 0:
		return def, nil
	case value < 0:
		return 0, newValidationError(validator.ValidationErrors{{
			Field: field, Message: "must be at least 1", Value: value, Rule: "min",
		}})
	case value > max:
		return 0, newValidationError(validator.ValidationErrors{{
			Field: field, Message: fmt.Sprintf("must be at most %d", max), Value: value, Rule: "max",
		}})
	}
	return value, nil
}
