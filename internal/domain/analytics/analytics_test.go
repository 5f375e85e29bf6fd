package analytics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/hireloop/internal/adapters/repository"
	"github.com/okian/hireloop/internal/domain/analytics"
	"github.com/okian/hireloop/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	day     = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	prevDay = day.AddDate(0, 0, -1)
)

func layer(source string, ms float64) model.LayerResult {
	return model.LayerResult{Source: source, DurationMS: ms}
}

func seed(ctx context.Context, store *repository.MemStore) {
	_ = store.UpsertCandidate(ctx, model.Candidate{ID: "A", CreatedAt: day.Add(10 * time.Hour)})
	_ = store.UpsertCandidate(ctx, model.Candidate{ID: "B", CreatedAt: day.Add(11 * time.Hour)})
	_ = store.UpsertCandidate(ctx, model.Candidate{ID: "C", CreatedAt: prevDay.Add(9 * time.Hour)})

	_ = store.InsertEvaluation(ctx, model.Evaluation{
		ID: "eA", CandidateID: "A", JobID: "job-1", FinalScore: 80, CreatedAt: day.Add(12 * time.Hour),
		Screening: layer("gemini", 100), Technical: layer("gemini", 200), Behavioral: layer(model.SourceFallback, 300),
	})
	_ = store.InsertEvaluation(ctx, model.Evaluation{
		ID: "eB", CandidateID: "B", JobID: "job-1", FinalScore: 60, CreatedAt: day.Add(13 * time.Hour),
		Screening: layer(model.SourceFallback, 200), Technical: layer(model.SourceFallback, 400), Behavioral: layer(model.SourceFallback, 500),
	})
	_ = store.InsertEvaluation(ctx, model.Evaluation{
		ID: "eC", CandidateID: "C", JobID: "job-1", FinalScore: 70, CreatedAt: prevDay.Add(12 * time.Hour),
		Screening: layer("anthropic", 100), Technical: layer("anthropic", 100), Behavioral: layer("anthropic", 100),
	})

	_ = store.InsertFeedback(ctx, model.Feedback{ID: "fA", CandidateID: "A", JobID: "job-1", OverallRating: 5, Decision: model.DecisionHire, SubmittedAt: day.Add(14 * time.Hour)})
	_ = store.InsertFeedback(ctx, model.Feedback{ID: "fB", CandidateID: "B", JobID: "job-1", OverallRating: 3, Decision: model.DecisionReject, SubmittedAt: day.Add(15 * time.Hour)})
	_ = store.InsertFeedback(ctx, model.Feedback{ID: "fC", CandidateID: "C", JobID: "job-1", OverallRating: 4, Decision: model.DecisionHire, SubmittedAt: prevDay.Add(15 * time.Hour)})

	_ = store.InsertTrainingLog(ctx, model.TrainingLog{ID: "t1", Status: model.TrainingCompleted, AccuracyAfter: 82.5, StartedAt: prevDay})
	_ = store.InsertTrainingLog(ctx, model.TrainingLog{ID: "t2", Status: model.TrainingFailed, StartedAt: day})
}

func TestAggregator_RollupDaily(t *testing.T) {
	Convey("Given one day of activity and an older day", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		seed(ctx, store)
		fixed := day.Add(23 * time.Hour)
		agg := analytics.NewAggregator(store,
			analytics.WithUnitCosts(map[string]float64{"gemini": 0.002, "anthropic": 0.003}),
			analytics.WithClock(func() time.Time { return fixed }))

		Convey("When the day is rolled up", func() {
			m, err := agg.RollupDaily(ctx, day.Add(17*time.Hour))
			So(err, ShouldBeNil)

			Convey("Then same-day counts ignore the older day", func() {
				So(m.Date, ShouldEqual, "2025-03-01")
				So(m.Applications, ShouldEqual, 2)
				So(m.Interviews, ShouldEqual, 2)
				So(m.Hires, ShouldEqual, 1)
				So(m.FeedbackCount, ShouldEqual, 2)
				So(m.FeedbackRate, ShouldEqual, 100.0)
				So(m.AvgRating, ShouldEqual, 4.0)
				So(m.UpdatedAt.Equal(fixed), ShouldBeTrue)
			})

			Convey("And layer timings are averaged per layer", func() {
				So(m.AvgScreeningMS, ShouldEqual, 150.0)
				So(m.AvgTechnicalMS, ShouldEqual, 300.0)
				So(m.AvgBehavioralMS, ShouldEqual, 400.0)
			})

			Convey("And only provider-sourced layers are billed", func() {
				So(m.ProviderCalls, ShouldResemble, map[string]int{"gemini": 2})
				So(m.EstimatedCost, ShouldAlmostEqual, 0.004, 1e-9)
			})

			Convey("And accuracy combines the last completed run with a fresh sample", func() {
				So(m.ModelAccuracy, ShouldEqual, 82.5)
				So(m.CurrentAccuracy, ShouldEqual, 66.67)
				So(m.FalsePositiveRate, ShouldEqual, 0.0)
				So(m.FalseNegativeRate, ShouldEqual, 50.0)
			})

			Convey("And re-running it overwrites the same row", func() {
				_, err := agg.RollupDaily(ctx, day)
				So(err, ShouldBeNil)
				rows, _ := store.ListDailyMetrics(ctx, "2025-03-01", "2025-03-01")
				So(len(rows), ShouldEqual, 1)
				So(rows[0].Interviews, ShouldEqual, 2)
			})
		})

		Convey("When an empty day is rolled up", func() {
			m, err := agg.RollupDaily(ctx, day.AddDate(0, 0, 5))

			Convey("Then rates are zero and accuracy still reflects the sample", func() {
				So(err, ShouldBeNil)
				So(m.Interviews, ShouldEqual, 0)
				So(m.FeedbackRate, ShouldEqual, 0.0)
				So(m.AvgRating, ShouldEqual, 0.0)
				So(m.EstimatedCost, ShouldEqual, 0.0)
				So(m.CurrentAccuracy, ShouldEqual, 66.67)
			})
		})
	})

	Convey("Given an empty store", t, func() {
		m, err := analytics.NewAggregator(repository.NewMemStore()).RollupDaily(context.Background(), day)

		Convey("Then accuracy falls back to the default and model accuracy is zero", func() {
			So(err, ShouldBeNil)
			So(m.CurrentAccuracy, ShouldEqual, 75.0)
			So(m.ModelAccuracy, ShouldEqual, 0.0)
		})
	})
}

func TestSummarize(t *testing.T) {
	rows := []model.DailyMetric{
		{Date: "2025-03-01", Interviews: 10, Hires: 1, FeedbackCount: 5, FeedbackRate: 50, CurrentAccuracy: 60, AvgRating: 4, EstimatedCost: 0.01},
		{Date: "2025-03-02", Interviews: 10, Hires: 1, FeedbackCount: 5, FeedbackRate: 50, CurrentAccuracy: 62, AvgRating: 3, EstimatedCost: 0.02},
		{Date: "2025-03-03", Interviews: 10, Hires: 1, FeedbackCount: 4, FeedbackRate: 40, CurrentAccuracy: 70, AvgRating: 4},
		{Date: "2025-03-04", Interviews: 10, Hires: 1, FeedbackCount: 4, FeedbackRate: 40, CurrentAccuracy: 72, AvgRating: 5},
	}

	Convey("Given four days of metrics", t, func() {
		s := analytics.Summarize("2025-03-01", "2025-03-04", rows)

		Convey("Then sums and averages cover every row", func() {
			So(s.Days, ShouldEqual, 4)
			So(s.Interviews, ShouldEqual, 40)
			So(s.Hires, ShouldEqual, 4)
			So(s.Feedback, ShouldEqual, 18)
			So(s.EstimatedCost, ShouldAlmostEqual, 0.03, 1e-9)
			So(s.AvgAccuracy, ShouldEqual, 66.0)
			So(s.AvgSuccessRate, ShouldEqual, 10.0)
			So(s.AvgFeedbackRate, ShouldEqual, 45.0)
			So(s.AvgRating, ShouldEqual, 4.0)
		})

		Convey("Then trends compare half-range means", func() {
			So(s.Trends.Accuracy, ShouldEqual, analytics.TrendImproving)
			So(s.Trends.SuccessRate, ShouldEqual, analytics.TrendStable)
			So(s.Trends.FeedbackRate, ShouldEqual, analytics.TrendDeclining)
		})
	})

	Convey("Given no rows", t, func() {
		s := analytics.Summarize("2025-03-01", "2025-03-02", nil)
		So(s.Days, ShouldEqual, 0)
		So(s.Trends.Accuracy, ShouldEqual, analytics.TrendStable)
	})
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		values []float64
		want   analytics.Trend
	}{
		{"single value", []float64{5}, analytics.TrendStable},
		{"within threshold", []float64{50, 52}, analytics.TrendStable},
		{"odd length puts the middle in the second half", []float64{10, 11, 20}, analytics.TrendImproving},
		{"drop", []float64{80, 80, 70, 70}, analytics.TrendDeclining},
	}
	Convey("Classify", t, func() {
		for _, tc := range cases {
			Convey(tc.name, func() {
				So(analytics.Classify(tc.values), ShouldEqual, tc.want)
			})
		}
	})
}

func TestAggregator_Summarize(t *testing.T) {
	Convey("Given stored rollups", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		seed(ctx, store)
		agg := analytics.NewAggregator(store)
		_, _ = agg.RollupDaily(ctx, prevDay)
		_, _ = agg.RollupDaily(ctx, day)

		Convey("A range covering both days sums them", func() {
			s, err := agg.Summarize(ctx, prevDay, day)
			So(err, ShouldBeNil)
			So(s.Days, ShouldEqual, 2)
			So(s.Applications, ShouldEqual, 3)
			So(s.Interviews, ShouldEqual, 3)
			So(s.Hires, ShouldEqual, 2)
		})

		Convey("A reversed range is rejected", func() {
			_, err := agg.Summarize(ctx, day, prevDay)
			So(errors.Is(err, analytics.ErrInvalidRange), ShouldBeTrue)
		})
	})
}

func TestParseDate(t *testing.T) {
	Convey("ParseDate", t, func() {
		d, err := analytics.ParseDate("2025-03-01")
		So(err, ShouldBeNil)
		So(d.Equal(day), ShouldBeTrue)

		_, err = analytics.ParseDate("03/01/2025")
		So(errors.Is(err, analytics.ErrInvalidDate), ShouldBeTrue)
	})
}
