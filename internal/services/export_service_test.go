package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExportService_ExportLeaderboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	quiz := env.createQuiz("Exported", 1)
	ada := env.createUser("Ada", "ada@example.com")
	bob := env.createUser("Bob", "bob@example.com")
	env.completedAttempt(ada.ID, quiz.ID, 9, 10, baseTime)
	env.completedAttempt(bob.ID, quiz.ID, 4, 10, baseTime)

	data, err := env.export.ExportLeaderboard(ctx, nil, 10)
	if err != nil {
		t.Fatalf("Failed to export leaderboard: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(leaderboardSheet)
	if err != nil {
		t.Fatalf("Failed to read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Rank" || rows[0][2] != "Name" {
		t.Errorf("Unexpected header %v", rows[0])
	}
	if rows[1][0] != "1" || rows[1][2] != "Ada" || rows[1][5] != "90" {
		t.Errorf("Unexpected first row %v", rows[1])
	}
	if rows[2][2] != "Bob" {
		t.Errorf("Expected Bob second, got %v", rows[2])
	}

	t.Run("SubjectScoped", func(t *testing.T) {
		other := env.createSubject("Music")
		data, err := env.export.ExportLeaderboard(ctx, &other.ID, 10)
		if err != nil {
			t.Fatalf("Failed to export leaderboard: %v", err)
		}

		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("Failed to open workbook: %v", err)
		}
		defer f.Close()

		rows, err := f.GetRows(leaderboardSheet)
		if err != nil {
			t.Fatalf("Failed to read rows: %v", err)
		}
		if len(rows) != 1 {
			t.Errorf("Expected only the header row, got %d rows", len(rows))
		}
	})
}
