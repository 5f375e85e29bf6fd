package gormstore

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/okian/hireloop/internal/adapters/repository"
	"github.com/okian/hireloop/internal/domain/model"
)

func dryRunDB() (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=hireloop dbname=hireloop sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
}

func TestEvaluationQuery(t *testing.T) {
	Convey("Given a dry-run postgres session", t, func() {
		db, err := dryRunDB()
		So(err, ShouldBeNil)

		Convey("When building an evaluation query with every filter", func() {
			from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
			sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
				return evaluationQuery(tx, model.EvaluationFilter{
					JobID:   "job-1",
					Created: model.TimeRange{From: from, To: from.AddDate(0, 0, 1)},
					Limit:   100,
				}).Find(&[]evaluationRow{})
			})

			Convey("Then the SQL filters, orders newest first and limits", func() {
				So(sql, ShouldContainSubstring, `FROM "evaluations"`)
				So(sql, ShouldContainSubstring, "job_id = 'job-1'")
				So(sql, ShouldContainSubstring, "created_at >= ")
				So(sql, ShouldContainSubstring, "created_at < ")
				So(sql, ShouldContainSubstring, "ORDER BY created_at DESC, final_score DESC, candidate_id ASC")
				So(sql, ShouldContainSubstring, "LIMIT 100")
				So(sql, ShouldNotContainSubstring, "candidate_id =")
			})
		})
	})
}

func TestRowConversion(t *testing.T) {
	Convey("Given a training log with weights and a duration", t, func() {
		l := model.TrainingLog{
			ID:        "log-1",
			Status:    model.TrainingCompleted,
			Weights:   model.WeightVector{Version: 2, Screening: 0.275, Technical: 0.45, Behavioral: 0.275},
			Delta:     model.WeightDelta{Technical: 0.05},
			StartedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			Duration:  1500 * time.Millisecond,
		}

		Convey("When it passes through the row type", func() {
			got := toTrainingLogRow(l).toModel()

			Convey("Then the JSON columns and the millisecond duration survive", func() {
				So(got.Weights.Technical, ShouldEqual, 0.45)
				So(got.Delta.Technical, ShouldEqual, 0.05)
				So(got.Duration, ShouldEqual, 1500*time.Millisecond)
				So(got.Status, ShouldEqual, model.TrainingCompleted)
			})
		})
	})

	Convey("Given feedback with a decision", t, func() {
		fb := model.Feedback{ID: "f1", CandidateID: "c1", Decision: model.DecisionNextRound, OverallRating: 4}
		got := toFeedbackRow(fb).toModel()

		Convey("Then the decision string maps back to the enum", func() {
			So(got.Decision, ShouldEqual, model.DecisionNextRound)
			So(got.OverallRating, ShouldEqual, 4)
		})
	})
}

func TestTableNames(t *testing.T) {
	Convey("Every row type maps to its own table", t, func() {
		seen := map[string]bool{}
		for _, m := range allModels() {
			name := m.(interface{ TableName() string }).TableName()
			So(seen[name], ShouldBeFalse)
			seen[name] = true
		}
		So(len(seen), ShouldEqual, 8)
	})
}

func TestInsertFailed(t *testing.T) {
	Convey("Given a unique violation translated by the driver", t, func() {
		err := insertFailed(gorm.ErrDuplicatedKey, "insert feedback f1")

		Convey("Then it surfaces as a duplicate id", func() {
			So(errors.Is(err, repository.ErrDuplicateID), ShouldBeTrue)
			So(err.Error(), ShouldStartWith, "insert feedback f1: ")
		})
	})

	Convey("Given any other insert failure", t, func() {
		cause := errors.New("connection reset")
		err := insertFailed(cause, "insert evaluation e1")

		Convey("Then the cause is kept and no duplicate is reported", func() {
			So(errors.Is(err, cause), ShouldBeTrue)
			So(errors.Is(err, repository.ErrDuplicateID), ShouldBeFalse)
		})
	})
}
