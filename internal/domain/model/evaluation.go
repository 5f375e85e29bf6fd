package model

import "time"

// Layer names one assessment stage.
type Layer string

// Assessment layers in pipeline order.
const (
	LayerScreening  Layer = "screening"
	LayerTechnical  Layer = "technical"
	LayerBehavioral Layer = "behavioral"
)

// SourceFallback marks a layer result produced by the local heuristic.
const SourceFallback = "fallback"

// Layers lists every assessment layer in pipeline order.
func Layers() []Layer {
	return []Layer{LayerScreening, LayerTechnical, LayerBehavioral}
}

// LayerResult is the normalized output of one layer scorer. The shape is the
// same whether a provider or the fallback heuristic produced it.
type LayerResult struct {
	Layer      Layer              `json:"layer"`
	Score      float64            `json:"score"`
	Passed     bool               `json:"passed"`
	Metrics    map[string]float64 `json:"metrics"`
	Summary    string             `json:"summary,omitempty"`
	Strengths  []string           `json:"strengths,omitempty"`
	Concerns   []string           `json:"concerns,omitempty"`
	Source     string             `json:"source"`
	DurationMS float64            `json:"duration_ms"`
}

// Metric returns the named metric, or def when it is absent.
func (r LayerResult) Metric(name string, def float64) float64 {
	if v, ok := r.Metrics[name]; ok {
		return v
	}
	return def
}

// FromProvider reports whether a provider, not the fallback, produced r.
func (r LayerResult) FromProvider() bool {
	return r.Source != "" && r.Source != SourceFallback
}

// Evaluation is one immutable assessment of a candidate for a job.
// The most recent Evaluation per (candidate, job) is authoritative.
type Evaluation struct {
	ID              string       `json:"id"`
	CandidateID     string       `json:"candidate_id"`
	JobID           string       `json:"job_id"`
	ScreeningScore  float64      `json:"screening_score"`
	TechnicalScore  float64      `json:"technical_score"`
	BehavioralScore float64      `json:"behavioral_score"`
	FinalScore      float64      `json:"final_score"`
	Screening       LayerResult  `json:"screening"`
	Technical       LayerResult  `json:"technical"`
	Behavioral      LayerResult  `json:"behavioral"`
	Weights         WeightVector `json:"weights"`
	CreatedAt       time.Time    `json:"created_at"`
}

// LayerResults returns the three layer results in pipeline order.
func (e Evaluation) LayerResults() []LayerResult {
	return []LayerResult{e.Screening, e.Technical, e.Behavioral}
}

// NewerThan orders evaluations by recency. Ties fall back to the higher final
// score, then to the lexicographically smaller candidate id.
func (e Evaluation) NewerThan(o Evaluation) bool {
	if !e.CreatedAt.Equal(o.CreatedAt) {
		return e.CreatedAt.After(o.CreatedAt)
	}
	if e.FinalScore != o.FinalScore {
		return e.FinalScore > o.FinalScore
	}
	return e.CandidateID < o.CandidateID
}
