package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/hireloop/internal/adapters/mq/queue"
	"github.com/okian/hireloop/internal/adapters/repository"
	service "github.com/okian/hireloop/internal/app"
	"github.com/okian/hireloop/internal/config"
	"github.com/okian/hireloop/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// scriptedProvider answers every layer with the same well-formed result.
type scriptedProvider struct{}

func (scriptedProvider) Name() string { return "scripted" }

func (scriptedProvider) Generate(context.Context, string, string) (string, error) {
	return `{"score": 80, "passed": true, "summary": "solid", "strengths": ["depth"], "concerns": [],
		"metrics": {"completeness": 80, "keyword_match": 80, "skill_match": 80,
		"technical_depth": 80, "problem_solving": 80, "communication_of_ideas": 80,
		"communication": 80, "confidence": 80, "clarity": 80, "hesitation_count": 1}}`, nil
}

type brokenProvider struct{}

func (brokenProvider) Name() string { return "broken" }

func (brokenProvider) Generate(context.Context, string, string) (string, error) {
	return "", errors.New("quota exhausted")
}

func testConfig(mutate func(*config.Config)) *config.Config {
	cfg := config.New()
	cfg.WorkerCount = 2
	cfg.QueueSize = 100
	cfg.TrainingInterval = 0
	cfg.RollupInterval = 0
	if mutate != nil {
		mutate(cfg)
	}
	return cfg
}

func newService(store *repository.MemStore, mutate func(*config.Config), opts ...service.Option) *service.Service {
	opts = append([]service.Option{
		service.WithStore(store),
		service.WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	svc, err := service.New(context.Background(), testConfig(mutate), opts...)
	So(err, ShouldBeNil)
	return svc
}

// eventually polls cond until it holds or two seconds pass.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service over the in-memory store", t, func() {
		ctx := context.Background()
		svc := newService(repository.NewMemStore(), nil)

		Convey("Stats report it as stopped before Start", func() {
			stats := svc.GetStats(ctx)
			So(stats["started"], ShouldEqual, false)
			So(stats["provider"], ShouldEqual, config.ProviderNone)
			So(stats["workerCount"], ShouldEqual, 2)
			So(stats["queueCapacity"], ShouldEqual, 100)
			svc.Stop()
		})

		Convey("Start is idempotent and Stop marks it stopped", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.GetStats(ctx)["started"], ShouldEqual, true)

			svc.Stop()
			So(svc.GetStats(ctx)["started"], ShouldEqual, false)
		})
	})
}

func TestService_New(t *testing.T) {
	Convey("Given configurations that cannot build a provider", t, func() {
		ctx := context.Background()

		Convey("An unknown provider is rejected", func() {
			cfg := testConfig(func(c *config.Config) { c.Provider = "openai" })
			_, err := service.New(ctx, cfg, service.WithStore(repository.NewMemStore()))
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("Gemini without a key is rejected", func() {
			cfg := testConfig(func(c *config.Config) { c.Provider = config.ProviderGemini })
			_, err := service.New(ctx, cfg, service.WithStore(repository.NewMemStore()))
			So(err, ShouldNotBeNil)
		})

		Convey("A nil config falls back to defaults", func() {
			svc, err := service.New(ctx, nil, service.WithStore(repository.NewMemStore()))
			So(err, ShouldBeNil)
			So(svc.GetStats(ctx)["provider"], ShouldEqual, config.ProviderNone)
			svc.Stop()
		})
	})
}

func TestService_Intake(t *testing.T) {
	Convey("Given a stopped service", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		svc := newService(store, func(c *config.Config) { c.QueueSize = 1 })
		defer svc.Stop()

		Convey("Request ids are deduplicated until unrecorded", func() {
			So(svc.SeenAndRecord(ctx, "req-1"), ShouldBeFalse)
			So(svc.SeenAndRecord(ctx, "req-1"), ShouldBeTrue)
			So(svc.Size(), ShouldEqual, int64(1))
			svc.Unrecord(ctx, "req-1")
			So(svc.SeenAndRecord(ctx, "req-1"), ShouldBeFalse)
		})

		Convey("A full queue rejects without blocking", func() {
			So(svc.Enqueue(ctx, model.EvaluationRequest{RequestID: "a"}), ShouldBeNil)
			err := svc.Enqueue(ctx, model.EvaluationRequest{RequestID: "b"})
			So(errors.Is(err, queue.ErrFull), ShouldBeTrue)
			So(svc.GetStats(ctx)["queueLength"], ShouldEqual, 1)
		})

		Convey("Registration stamps missing creation times", func() {
			c, err := svc.RegisterCandidate(ctx, model.Candidate{ID: "c1", Name: "Ada"})
			So(err, ShouldBeNil)
			So(c.CreatedAt.Equal(fixedNow), ShouldBeTrue)

			j, err := svc.RegisterJob(ctx, model.JobPosting{ID: "j1", Title: "Backend"})
			So(err, ShouldBeNil)
			So(j.CreatedAt.Equal(fixedNow), ShouldBeTrue)

			stored, err := store.GetCandidate(ctx, "c1")
			So(err, ShouldBeNil)
			So(stored.Name, ShouldEqual, "Ada")
		})

		Convey("Feedback is validated and stored unconsumed", func() {
			_, err := svc.SubmitFeedback(ctx, model.Feedback{ID: "f1", CandidateID: "c1", OverallRating: 7})
			So(errors.Is(err, model.ErrRatingOutOfRange), ShouldBeTrue)

			_, err = svc.RegisterCandidate(ctx, model.Candidate{ID: "c1", Name: "Ada"})
			So(err, ShouldBeNil)
			_, err = svc.RegisterJob(ctx, model.JobPosting{ID: "j1", Title: "Backend"})
			So(err, ShouldBeNil)

			fb, err := svc.SubmitFeedback(ctx, model.Feedback{
				ID: "f2", CandidateID: "c1", JobID: "j1",
				TechnicalRating: 4, CommunicationRating: 4, CultureFitRating: 4, OverallRating: 4,
				Decision: model.DecisionHire, UsedForTraining: true,
			})
			So(err, ShouldBeNil)
			So(fb.UsedForTraining, ShouldBeFalse)

			pending, err := svc.PendingFeedback(ctx)
			So(err, ShouldBeNil)
			So(pending, ShouldEqual, 1)

			_, err = svc.SubmitFeedback(ctx, model.Feedback{
				ID: "f2", CandidateID: "c1", JobID: "j1",
				TechnicalRating: 4, CommunicationRating: 4, CultureFitRating: 4, OverallRating: 4,
				Decision: model.DecisionHire,
			})
			So(errors.Is(err, repository.ErrDuplicateID), ShouldBeTrue)
		})

		Convey("Feedback must reference a registered candidate and job", func() {
			valid := model.Feedback{
				ID: "f3", CandidateID: "ghost", JobID: "j1",
				TechnicalRating: 4, CommunicationRating: 4, CultureFitRating: 4, OverallRating: 4,
				Decision: model.DecisionHire,
			}
			_, err := svc.SubmitFeedback(ctx, valid)
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "candidate ghost")

			_, err = svc.RegisterCandidate(ctx, model.Candidate{ID: "c1", Name: "Ada"})
			So(err, ShouldBeNil)
			valid.CandidateID, valid.JobID = "c1", "no-such-job"
			_, err = svc.SubmitFeedback(ctx, valid)
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "job no-such-job")

			pending, err := svc.PendingFeedback(ctx)
			So(err, ShouldBeNil)
			So(pending, ShouldEqual, 0)
		})

		Convey("Unknown jobs are not found", func() {
			_, err := svc.RankJob(ctx, "nope")
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
			_, err = svc.Leaderboard(ctx, "nope", 10)
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
			So(errors.Is(svc.ExportLeaderboard(ctx, "nope", &bytes.Buffer{}), model.ErrNotFound), ShouldBeTrue)
		})

		Convey("Evaluating an unknown candidate fails", func() {
			_, _ = svc.RegisterJob(ctx, model.JobPosting{ID: "j1", Title: "Backend"})
			err := svc.Evaluate(ctx, model.EvaluationRequest{RequestID: "r1", CandidateID: "ghost", JobID: "j1"})
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
		})

		Convey("Weights default before the first training run", func() {
			w, err := svc.CurrentWeights(ctx)
			So(err, ShouldBeNil)
			So(w.Technical, ShouldEqual, 0.40)
		})
	})
}

func TestService_ProviderFallback(t *testing.T) {
	Convey("Given a service whose provider always fails", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		svc := newService(store, nil, service.WithProvider(brokenProvider{}))
		defer svc.Stop()

		_, _ = svc.RegisterJob(ctx, model.JobPosting{ID: "j1", Title: "Backend", RequiredSkills: []string{"go"}})
		_, _ = svc.RegisterCandidate(ctx, model.Candidate{ID: "c1", Name: "Ada", Email: "ada@example.com", Skills: []string{"Go"}})

		Convey("Every layer is scored by its fallback", func() {
			So(svc.Evaluate(ctx, model.EvaluationRequest{RequestID: "r1", CandidateID: "c1", JobID: "j1"}), ShouldBeNil)

			evals, err := store.ListEvaluations(ctx, model.EvaluationFilter{CandidateID: "c1"})
			So(err, ShouldBeNil)
			So(len(evals), ShouldEqual, 1)
			for _, r := range evals[0].LayerResults() {
				So(r.Source, ShouldEqual, model.SourceFallback)
			}
			So(svc.GetStats(ctx)["provider"], ShouldEqual, "broken")
		})
	})
}
