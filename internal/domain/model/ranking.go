package model

import "time"

// RankingComponents are the five 0-100 signals behind a composite score.
type RankingComponents struct {
	Skill       float64 `json:"skill_match"`
	Experience  float64 `json:"experience"`
	Interview   float64 `json:"interview"`
	Feedback    float64 `json:"feedback"`
	PastSuccess float64 `json:"past_success"`
}

// Ranking is a candidate's leaderboard row for one job, keyed by
// (CandidateID, JobID) and overwritten on every ranking run.
type Ranking struct {
	CandidateID     string            `json:"candidate_id"`
	JobID           string            `json:"job_id"`
	EvaluationID    string            `json:"evaluation_id"`
	CompositeScore  float64           `json:"composite_score"`
	RankPosition    int               `json:"rank_position"`
	Percentile      float64           `json:"percentile"`
	Components      RankingComponents `json:"components"`
	TotalCandidates int               `json:"total_candidates"`
	LastUpdated     time.Time         `json:"last_updated"`
}
