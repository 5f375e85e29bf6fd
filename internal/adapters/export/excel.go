// Package export renders leaderboards as Excel workbooks.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/okian/hireloop/internal/domain/model"
)

// Sheet names.
const (
	LeaderboardSheet = "Leaderboard"
	SummarySheet     = "Summary"
)

var leaderboardHeader = []string{
	"Rank", "Candidate", "Composite", "Percentile",
	"Skill Match", "Experience", "Interview", "Feedback", "Past Success",
	"Evaluation", "Updated",
}

// WriteLeaderboard writes rows, already in rank order, as an xlsx workbook.
func WriteLeaderboard(w io.Writer, job model.JobPosting, rows []model.Ranking, generatedAt time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", LeaderboardSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	if err := writeLeaderboard(f, rows, headerStyle); err != nil {
		return err
	}
	if err := writeSummary(f, job, rows, generatedAt, headerStyle); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeLeaderboard(f *excelize.File, rows []model.Ranking, headerStyle int) error {
	if err := f.SetSheetRow(LeaderboardSheet, "A1", &leaderboardHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(leaderboardHeader), 1)
	if err := f.SetCellStyle(LeaderboardSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	_ = f.SetColWidth(LeaderboardSheet, "B", "B", 24)
	_ = f.SetColWidth(LeaderboardSheet, "J", "K", 38)

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{
			r.RankPosition, r.CandidateID, r.CompositeScore, r.Percentile,
			r.Components.Skill, r.Components.Experience, r.Components.Interview,
			r.Components.Feedback, r.Components.PastSuccess,
			r.EvaluationID, r.LastUpdated.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(LeaderboardSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return nil
}

func writeSummary(f *excelize.File, job model.JobPosting, rows []model.Ranking, generatedAt time.Time, headerStyle int) error {
	_ = f.SetColWidth(SummarySheet, "A", "A", 22)
	_ = f.SetColWidth(SummarySheet, "B", "B", 40)

	var top, mean float64
	for i, r := range rows {
		if i == 0 || r.CompositeScore > top {
			top = r.CompositeScore
		}
		mean += r.CompositeScore
	}
	if len(rows) > 0 {
		mean /= float64(len(rows))
	}

	lines := [][]any{
		{"Leaderboard Report", ""},
		{"Job ID", job.ID},
		{"Job Title", job.Title},
		{"Generated", generatedAt.UTC().Format(time.RFC3339)},
		{"Candidates", len(rows)},
		{"Top Composite", top},
		{"Mean Composite", fmt.Sprintf("%.2f", mean)},
	}
	for i, line := range lines {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &line); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "B1", headerStyle); err != nil {
		return fmt.Errorf("style summary: %w", err)
	}
	return nil
}
