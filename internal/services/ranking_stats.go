package services

import (
	"sort"

	"github.com/jinzhu/copier"
	"github.com/quizhub/quiz-service/internal/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// percentage returns score/total*100. Callers only pass scored attempts.
func percentage(score, total int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(score)).
		Div(decimal.NewFromInt(int64(total))).
		Mul(hundred)
}

func attemptPercentage(attempt *models.QuizAttempt) decimal.Decimal {
	if attempt.Score == nil || attempt.TotalQuestions == nil {
		return decimal.Zero
	}
	return percentage(*attempt.Score, *attempt.TotalQuestions)
}

// computeUserStats aggregates scored completed attempts. An empty slice yields
// zeros and a nil LastAttempt.
func computeUserStats(attempts []*models.QuizAttempt) UserStatistics {
	stats := UserStatistics{TotalAttempts: len(attempts)}
	if len(attempts) == 0 {
		return stats
	}

	sum := decimal.Zero
	best := decimal.Zero
	for i, attempt := range attempts {
		pct := attemptPercentage(attempt)
		sum = sum.Add(pct)
		if i == 0 || pct.GreaterThan(best) {
			best = pct
		}

		if attempt.CompletedAt != nil && (stats.LastAttempt == nil || attempt.CompletedAt.After(*stats.LastAttempt)) {
			last := *attempt.CompletedAt
			stats.LastAttempt = &last
		}
	}

	stats.AverageScore = sum.Div(decimal.NewFromInt(int64(len(attempts)))).Round(2).InexactFloat64()
	stats.BestScore = best.Round(2).InexactFloat64()
	stats.TotalPoints = sum.Round(0).IntPart()

	return stats
}

// buildLeaderboard groups attempts by user and ranks users by average
// percentage, then attempt count, then user id.
func buildLeaderboard(attempts []*models.QuizAttempt, limit int) []*LeaderboardEntry {
	byUser := make(map[uint][]*models.QuizAttempt)
	users := make(map[uint]*models.User)
	for _, attempt := range attempts {
		byUser[attempt.UserID] = append(byUser[attempt.UserID], attempt)
		if attempt.User != nil {
			users[attempt.UserID] = attempt.User
		}
	}

	entries := make([]*LeaderboardEntry, 0, len(byUser))
	for userID, userAttempts := range byUser {
		entry := &LeaderboardEntry{
			User:           models.UserSummary{ID: userID},
			UserStatistics: computeUserStats(userAttempts),
		}
		if user, ok := users[userID]; ok {
			entry.User = toUserSummary(user)
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.AverageScore != b.AverageScore {
			return a.AverageScore > b.AverageScore
		}
		if a.TotalAttempts != b.TotalAttempts {
			return a.TotalAttempts > b.TotalAttempts
		}
		return a.User.ID < b.User.ID
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i, entry := range entries {
		entry.Rank = i + 1
	}

	return entries
}

func toAttemptSummary(attempt *models.QuizAttempt) AttemptSummary {
	summary := AttemptSummary{
		AttemptID:   attempt.ID,
		Percentage:  attemptPercentage(attempt).Round(2).InexactFloat64(),
		TimeSpent:   attempt.TimeSpent,
		CompletedAt: attempt.CompletedAt,
	}
	if attempt.Score != nil {
		summary.Score = *attempt.Score
	}
	if attempt.TotalQuestions != nil {
		summary.TotalQuestions = *attempt.TotalQuestions
	}
	if attempt.Quiz != nil {
		summary.Quiz = toQuizSummary(attempt.Quiz)
	}
	return summary
}

// ===== SUMMARY MAPPING =====

func toUserSummary(user *models.User) models.UserSummary {
	var summary models.UserSummary
	_ = copier.Copy(&summary, user)
	return summary
}

func toQuizSummary(quiz *models.Quiz) *models.QuizSummary {
	summary := &models.QuizSummary{
		ID:         quiz.ID,
		Title:      quiz.Title,
		Difficulty: quiz.Difficulty,
	}
	if quiz.Subject != nil {
		subject := &models.SubjectSummary{}
		_ = copier.Copy(subject, quiz.Subject)
		summary.Subject = subject
	}
	if quiz.Category != nil {
		category := &models.CategorySummary{}
		_ = copier.Copy(category, quiz.Category)
		summary.Category = category
	}
	return summary
}
