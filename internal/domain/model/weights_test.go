package model_test

import (
	"errors"
	"math"
	"testing"
	"time"

	model "github.com/okian/hireloop/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestWeightVector(t *testing.T) {
	convey.Convey("Given the default weight vector", t, func() {
		w := model.DefaultWeights()

		convey.Convey("Then it should sum to one and validate", func() {
			convey.So(w.Sum(), convey.ShouldAlmostEqual, 1.0, model.WeightTolerance)
			convey.So(w.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When fusing layer scores", func() {
			final := w.Fuse(80, 70, 60)

			convey.Convey("Then it should round the weighted sum", func() {
				// 0.3*80 + 0.4*70 + 0.3*60 = 24 + 28 + 18 = 70
				convey.So(final, convey.ShouldEqual, 70)
			})
		})

		convey.Convey("When fusing scores with a fractional result", func() {
			final := w.Fuse(81, 77, 64)

			convey.Convey("Then it should round to the nearest integer", func() {
				// 24.3 + 30.8 + 19.2 = 74.3
				convey.So(final, convey.ShouldEqual, 74)
			})
		})
	})

	convey.Convey("Given an unnormalized weight vector", t, func() {
		w := model.WeightVector{Screening: 0.275, Technical: 0.45, Behavioral: 0.275 + 0.1}

		convey.Convey("Then validation should fail", func() {
			err := w.Validate()
			convey.So(errors.Is(err, model.ErrWeightsNotNormalized), convey.ShouldBeTrue)
		})

		convey.Convey("When normalizing", func() {
			n := w.Normalize()

			convey.Convey("Then the triple should sum to exactly one", func() {
				convey.So(math.Abs(n.Sum()-1), convey.ShouldBeLessThanOrEqualTo, model.WeightTolerance)
				convey.So(n.Validate(), convey.ShouldBeNil)
				convey.So(n.Technical, convey.ShouldBeGreaterThan, n.Screening)
			})
		})
	})

	convey.Convey("Given a vector with a negative component", t, func() {
		w := model.WeightVector{Screening: -0.1, Technical: 0.6, Behavioral: 0.5}

		convey.Convey("Then validation should reject it", func() {
			err := w.Validate()
			convey.So(errors.Is(err, model.ErrNegativeWeight), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "screening=-0.1000")
		})

		convey.Convey("And each layer reads back its own weight", func() {
			convey.So(w.Get(model.LayerScreening), convey.ShouldEqual, -0.1)
			convey.So(w.Get(model.LayerTechnical), convey.ShouldEqual, 0.6)
			convey.So(w.Get(model.LayerBehavioral), convey.ShouldEqual, 0.5)
			convey.So(w.Get(model.Layer("other")), convey.ShouldEqual, 0)
		})

		convey.Convey("And normalizing should clamp it to zero", func() {
			n := w.Normalize()
			convey.So(n.Screening, convey.ShouldEqual, 0)
			convey.So(n.Validate(), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given an all-zero vector", t, func() {
		n := model.WeightVector{}.Normalize()

		convey.Convey("Then normalizing should fall back to the defaults", func() {
			convey.So(n.Screening, convey.ShouldEqual, 0.30)
			convey.So(n.Technical, convey.ShouldEqual, 0.40)
		})
	})

	convey.Convey("Given two vectors", t, func() {
		a := model.DefaultWeights()
		b := model.WeightVector{Screening: 0.275, Technical: 0.45, Behavioral: 0.275}

		convey.Convey("Then Diff should report the per-layer change", func() {
			d := a.Diff(b)
			convey.So(d.Technical, convey.ShouldAlmostEqual, 0.05, 1e-9)
			convey.So(d.Screening, convey.ShouldAlmostEqual, -0.025, 1e-9)
			convey.So(d.Behavioral, convey.ShouldAlmostEqual, -0.025, 1e-9)
		})
	})
}

func TestEvaluationOrdering(t *testing.T) {
	convey.Convey("Given evaluations for the same job", t, func() {
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		older := model.Evaluation{CandidateID: "a", FinalScore: 90, CreatedAt: now.Add(-time.Hour)}
		newer := model.Evaluation{CandidateID: "a", FinalScore: 50, CreatedAt: now}

		convey.Convey("Then the more recent one wins", func() {
			convey.So(newer.NewerThan(older), convey.ShouldBeTrue)
			convey.So(older.NewerThan(newer), convey.ShouldBeFalse)
		})

		convey.Convey("When timestamps tie", func() {
			high := model.Evaluation{CandidateID: "b", FinalScore: 80, CreatedAt: now}
			low := model.Evaluation{CandidateID: "a", FinalScore: 70, CreatedAt: now}
			same := model.Evaluation{CandidateID: "c", FinalScore: 80, CreatedAt: now}

			convey.Convey("Then the higher final score wins, then the smaller id", func() {
				convey.So(high.NewerThan(low), convey.ShouldBeTrue)
				convey.So(high.NewerThan(same), convey.ShouldBeTrue)
				convey.So(same.NewerThan(high), convey.ShouldBeFalse)
			})
		})
	})
}

func TestFeedbackValidate(t *testing.T) {
	convey.Convey("Given employer feedback", t, func() {
		fb := model.Feedback{
			CandidateID:         "cand-1",
			TechnicalRating:     4,
			CommunicationRating: 3,
			CultureFitRating:    5,
			OverallRating:       4,
			Decision:            model.DecisionHire,
		}

		convey.Convey("Then a complete record should validate", func() {
			convey.So(fb.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When a rating is out of range", func() {
			fb.CultureFitRating = 6
			convey.So(errors.Is(fb.Validate(), model.ErrRatingOutOfRange), convey.ShouldBeTrue)
		})

		convey.Convey("When the decision is unknown", func() {
			fb.Decision = "ghosted"
			convey.So(errors.Is(fb.Validate(), model.ErrUnknownDecision), convey.ShouldBeTrue)
		})

		convey.Convey("When the candidate is missing", func() {
			fb.CandidateID = ""
			convey.So(errors.Is(fb.Validate(), model.ErrMissingCandidate), convey.ShouldBeTrue)
		})

		convey.Convey("Then only hire and reject count as labelled", func() {
			convey.So(model.DecisionHire.Labelled(), convey.ShouldBeTrue)
			convey.So(model.DecisionReject.Labelled(), convey.ShouldBeTrue)
			convey.So(model.DecisionMaybe.Labelled(), convey.ShouldBeFalse)
			convey.So(model.DecisionNextRound.Labelled(), convey.ShouldBeFalse)
		})
	})
}
