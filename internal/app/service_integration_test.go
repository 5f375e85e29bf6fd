package service_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/okian/hireloop/internal/adapters/repository"
	service "github.com/okian/hireloop/internal/app"
	"github.com/okian/hireloop/internal/config"
	"github.com/okian/hireloop/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func seedJob(ctx context.Context, svc *service.Service) {
	_, err := svc.RegisterJob(ctx, model.JobPosting{ID: "j1", Title: "Backend Engineer", RequiredSkills: []string{"go", "sql"}})
	So(err, ShouldBeNil)
	for _, c := range []model.Candidate{
		{ID: "c1", Name: "Ada", Email: "ada@example.com", Skills: []string{"Go", "SQL"}},
		{ID: "c2", Name: "Bo", Email: "bo@example.com", Skills: []string{"Python"}},
	} {
		_, err := svc.RegisterCandidate(ctx, c)
		So(err, ShouldBeNil)
	}
}

func feedbackFor(id, candidate string, d model.Decision) model.Feedback {
	return model.Feedback{
		ID: id, CandidateID: candidate, JobID: "j1",
		TechnicalRating: 5, CommunicationRating: 2, CultureFitRating: 2, OverallRating: 4,
		Decision: d,
	}
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a started service with a scripted provider", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		svc := newService(store, func(c *config.Config) {
			c.ProviderUnitCosts = map[string]float64{"scripted": 0.01}
		}, service.WithProvider(scriptedProvider{}))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		seedJob(ctx, svc)

		for _, req := range []model.EvaluationRequest{
			{RequestID: "r1", CandidateID: "c1", JobID: "j1", Transcript: "I built a Go service."},
			{RequestID: "r2", CandidateID: "c2", JobID: "j1"},
		} {
			So(svc.Enqueue(ctx, req), ShouldBeNil)
		}
		So(eventually(func() bool {
			rows, err := svc.Leaderboard(ctx, "j1", 10)
			return err == nil && len(rows) == 2
		}), ShouldBeTrue)

		Convey("Queued requests are evaluated and ranked", func() {
			evals, err := store.ListEvaluations(ctx, model.EvaluationFilter{JobID: "j1"})
			So(err, ShouldBeNil)
			So(len(evals), ShouldEqual, 2)
			for _, ev := range evals {
				So(ev.FinalScore, ShouldEqual, 80)
				So(ev.Weights.Technical, ShouldEqual, 0.40)
				So(ev.Technical.Source, ShouldEqual, "scripted")
			}

			rows, err := svc.Leaderboard(ctx, "j1", 10)
			So(err, ShouldBeNil)
			So(rows[0].RankPosition, ShouldEqual, 1)
			So(rows[1].RankPosition, ShouldEqual, 2)
			So(rows[0].CompositeScore, ShouldBeGreaterThanOrEqualTo, rows[1].CompositeScore)
			So(eventually(func() bool { return svc.GetStats(ctx)["processed"] == int64(2) }), ShouldBeTrue)
		})

		Convey("Feedback trains new weights that later evaluations use", func() {
			_, err := svc.SubmitFeedback(ctx, feedbackFor("f1", "c1", model.DecisionHire))
			So(err, ShouldBeNil)
			_, err = svc.SubmitFeedback(ctx, feedbackFor("f2", "c2", model.DecisionReject))
			So(err, ShouldBeNil)

			res, err := svc.Adapt(ctx, "manual")
			So(err, ShouldBeNil)
			So(res.Status, ShouldEqual, model.TrainingCompleted)
			So(res.FeedbackCount, ShouldEqual, 2)
			So(res.AccuracyBefore, ShouldEqual, 50)
			So(res.Weights.Technical, ShouldAlmostEqual, 0.45, 1e-9)

			w, err := svc.CurrentWeights(ctx)
			So(err, ShouldBeNil)
			So(w.Technical, ShouldAlmostEqual, 0.45, 1e-9)

			logs, err := svc.TrainingLogs(ctx, 10)
			So(err, ShouldBeNil)
			So(len(logs), ShouldEqual, 1)
			So(logs[0].Trigger, ShouldEqual, "manual")

			again, err := svc.Adapt(ctx, "manual")
			So(err, ShouldBeNil)
			So(again.Status, ShouldEqual, model.TrainingSkipped)

			So(svc.Enqueue(ctx, model.EvaluationRequest{RequestID: "r3", CandidateID: "c2", JobID: "j1"}), ShouldBeNil)
			So(eventually(func() bool {
				evals, err := store.ListEvaluations(ctx, model.EvaluationFilter{CandidateID: "c2"})
				return err == nil && len(evals) == 2
			}), ShouldBeTrue)
			evals, _ := store.ListEvaluations(ctx, model.EvaluationFilter{CandidateID: "c2"})
			for _, ev := range evals {
				if ev.Weights.Version > 0 {
					So(ev.Weights.Technical, ShouldAlmostEqual, 0.45, 1e-9)
				}
			}
		})

		Convey("The daily rollup counts the day's activity", func() {
			_, _ = svc.SubmitFeedback(ctx, feedbackFor("f1", "c1", model.DecisionHire))

			m, err := svc.RollupDaily(ctx, fixedNow)
			So(err, ShouldBeNil)
			So(m.Date, ShouldEqual, "2025-03-01")
			So(m.Applications, ShouldEqual, 2)
			So(m.Interviews, ShouldEqual, 2)
			So(m.Hires, ShouldEqual, 1)
			So(m.FeedbackRate, ShouldEqual, 50)
			So(m.ProviderCalls["scripted"], ShouldEqual, 6)
			So(m.EstimatedCost, ShouldAlmostEqual, 0.06, 1e-9)

			sum, err := svc.Summarize(ctx, fixedNow.AddDate(0, 0, -1), fixedNow)
			So(err, ShouldBeNil)
			So(sum.Applications, ShouldEqual, 2)
			So(sum.Hires, ShouldEqual, 1)
		})

		Convey("The leaderboard exports as a workbook", func() {
			var buf bytes.Buffer
			So(svc.ExportLeaderboard(ctx, "j1", &buf), ShouldBeNil)

			f, err := excelize.OpenReader(&buf)
			So(err, ShouldBeNil)
			defer f.Close()
			rows, err := f.GetRows("Leaderboard")
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 3)
		})
	})
}

func TestServiceSchedulers(t *testing.T) {
	Convey("Given a service with fast schedulers", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()

		Convey("Scheduled training waits for enough feedback", func() {
			svc := newService(store, func(c *config.Config) {
				c.TrainingInterval = 20 * time.Millisecond
				c.MinTrainingFeedback = 2
			})
			seedJob(ctx, svc)
			_, _ = svc.SubmitFeedback(ctx, feedbackFor("f1", "c1", model.DecisionHire))
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			time.Sleep(100 * time.Millisecond)
			logs, err := svc.TrainingLogs(ctx, 10)
			So(err, ShouldBeNil)
			So(logs, ShouldBeEmpty)

			_, _ = svc.SubmitFeedback(ctx, feedbackFor("f2", "c2", model.DecisionReject))
			So(eventually(func() bool {
				logs, err := svc.TrainingLogs(ctx, 10)
				return err == nil && len(logs) == 1 && logs[0].Trigger == "scheduled"
			}), ShouldBeTrue)
		})

		Convey("The rollup scheduler writes today's row", func() {
			svc := newService(store, func(c *config.Config) {
				c.RollupInterval = 20 * time.Millisecond
			})
			seedJob(ctx, svc)
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			So(eventually(func() bool {
				m, err := store.GetDailyMetric(ctx, "2025-03-01")
				return err == nil && m.Applications == 2
			}), ShouldBeTrue)
		})
	})
}
