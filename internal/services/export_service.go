package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
)

const leaderboardSheet = "Leaderboard"

var leaderboardHeader = []interface{}{
	"Rank", "User ID", "Name", "Email", "Attempts", "Average Score", "Best Score", "Total Points", "Last Attempt",
}

type exportService struct {
	ranking RankingService
	logger  *slog.Logger
}

func NewExportService(ranking RankingService, logger *slog.Logger) ExportService {
	return &exportService{
		ranking: ranking,
		logger:  logger,
	}
}

// ExportLeaderboard renders the general leaderboard, or the subject one when
// subjectID is set, as an XLSX workbook.
func (s *exportService) ExportLeaderboard(ctx context.Context, subjectID *uint, limit int) ([]byte, error) {
	var (
		entries []*LeaderboardEntry
		err     error
	)
	if subjectID != nil {
		entries, err = s.ranking.LeaderboardBySubject(ctx, *subjectID, limit)
	} else {
		entries, err = s.ranking.GeneralLeaderboard(ctx, limit)
	}
	if err != nil {
		return nil, err
	}

	data, err := writeLeaderboardWorkbook(entries)
	if err != nil {
		s.logger.Error("Failed to render leaderboard export", "error", err)
		return nil, internalError("render leaderboard", err)
	}

	s.logger.Info("Leaderboard exported", "rows", len(entries), "bytes", len(data))
	return data, nil
}

func writeLeaderboardWorkbook(entries []*LeaderboardEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", leaderboardSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(leaderboardSheet, "A1", &leaderboardHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(leaderboardHeader))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(leaderboardSheet, "A1", lastCol+"1", bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, entry := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}

		lastAttempt := ""
		if entry.LastAttempt != nil {
			lastAttempt = entry.LastAttempt.UTC().Format(time.RFC3339)
		}

		row := []interface{}{
			entry.Rank,
			entry.User.ID,
			entry.User.Name,
			entry.User.Email,
			entry.TotalAttempts,
			entry.AverageScore,
			entry.BestScore,
			entry.TotalPoints,
			lastAttempt,
		}
		if err := f.SetSheetRow(leaderboardSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
