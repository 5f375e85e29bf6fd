// Package outcome compares predicted hiring outcomes with employer decisions.
package outcome

import (
	"math"

	"github.com/okian/hireloop/internal/domain/model"
)

// Prediction constants.
const (
	// HireThreshold is the score a candidate must exceed to be predicted a hire.
	HireThreshold = 75.0
	// DefaultAccuracy is reported when no labelled feedback matches an evaluation.
	DefaultAccuracy = 75.0
)

// PredictHire applies the hire predicate to a 0-100 score.
func PredictHire(score float64) bool {
	return score > HireThreshold
}

// Pair joins a predicted score with the employer's decision for the same candidate.
type Pair struct {
	CandidateID string
	Score       float64
	Decision    model.Decision
}

// Confusion is a binary confusion matrix over labelled pairs.
type Confusion struct {
	TruePositive  int
	FalsePositive int
	TrueNegative  int
	FalseNegative int
}

// Tally builds a confusion matrix. Pairs whose decision is not hire or reject
// are ignored.
func Tally(pairs []Pair) Confusion {
	var c Confusion
	for _, p := range pairs {
		if !p.Decision.Labelled() {
			continue
		}
		predicted := PredictHire(p.Score)
		actual := p.Decision == model.DecisionHire
		switch {
		case predicted && actual:
			c.TruePositive++
		case predicted && !actual:
			c.FalsePositive++
		case !predicted && actual:
			c.FalseNegative++
		default:
			c.TrueNegative++
		}
	}
	return c
}

// Total returns the number of labelled pairs.
func (c Confusion) Total() int {
	return c.TruePositive + c.FalsePositive + c.TrueNegative + c.FalseNegative
}

// Accuracy returns correct/total as a percentage, or DefaultAccuracy when empty.
func (c Confusion) Accuracy() float64 {
	total := c.Total()
	if total == 0 {
		return DefaultAccuracy
	}
	return round2(float64(c.TruePositive+c.TrueNegative) / float64(total) * 100)
}

// FalsePositiveRate returns FP/(FP+TN) as a percentage, 0 when undefined.
func (c Confusion) FalsePositiveRate() float64 {
	d := c.FalsePositive + c.TrueNegative
	if d == 0 {
		return 0
	}
	return round2(float64(c.FalsePositive) / float64(d) * 100)
}

// FalseNegativeRate returns FN/(FN+TP) as a percentage, 0 when undefined.
func (c Confusion) FalseNegativeRate() float64 {
	d := c.FalseNegative + c.TruePositive
	if d == 0 {
		return 0
	}
	return round2(float64(c.FalseNegative) / float64(d) * 100)
}

// LatestByCandidate indexes evaluations by candidate, keeping the most recent.
func LatestByCandidate(evals []model.Evaluation) map[string]model.Evaluation {
	out := make(map[string]model.Evaluation, len(evals))
	for _, e := range evals {
		if cur, ok := out[e.CandidateID]; !ok || e.NewerThan(cur) {
			out[e.CandidateID] = e
		}
	}
	return out
}

// Match pairs each feedback row with its candidate's latest evaluation, scored
// by score. Feedback without a matching evaluation is dropped.
func Match(feedback []model.Feedback, latest map[string]model.Evaluation, score func(model.Evaluation) float64) []Pair {
	pairs := make([]Pair, 0, len(feedback))
	for _, fb := range feedback {
		e, ok := latest[fb.CandidateID]
		if !ok {
			continue
		}
		pairs = append(pairs, Pair{CandidateID: fb.CandidateID, Score: score(e), Decision: fb.Decision})
	}
	return pairs
}

// FinalScore scores an evaluation by its stored final score.
func FinalScore(e model.Evaluation) float64 { return e.FinalScore }

// Rescore scores an evaluation by recombining its stored layer scores with w.
func Rescore(w model.WeightVector) func(model.Evaluation) float64 {
	return func(e model.Evaluation) float64 {
		return w.Fuse(e.ScreeningScore, e.TechnicalScore, e.BehavioralScore)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
