package gormstore

import (
	"time"

	"gorm.io/datatypes"

	"github.com/okian/hireloop/internal/domain/model"
)

type candidateRow struct {
	ID         string                       `gorm:"primaryKey;type:varchar(64)"`
	Name       string                       `gorm:"type:varchar(255)"`
	Email      string                       `gorm:"type:varchar(255)"`
	Phone      string                       `gorm:"type:varchar(64)"`
	Location   string                       `gorm:"type:varchar(255)"`
	Summary    string                       `gorm:"type:text"`
	Experience string                       `gorm:"type:text"`
	Education  string                       `gorm:"type:text"`
	Skills     datatypes.JSONType[[]string] `gorm:"type:jsonb"`
	CreatedAt  time.Time                    `gorm:"not null;index"`
}

func (candidateRow) TableName() string { return "candidates" }

type jobRow struct {
	ID             string                       `gorm:"primaryKey;type:varchar(64)"`
	Title          string                       `gorm:"type:varchar(255)"`
	RequiredSkills datatypes.JSONType[[]string] `gorm:"type:jsonb"`
	CreatedAt      time.Time                    `gorm:"not null"`
}

func (jobRow) TableName() string { return "job_postings" }

type evaluationRow struct {
	ID              string                                 `gorm:"primaryKey;type:varchar(64)"`
	CandidateID     string                                 `gorm:"type:varchar(64);not null;index"`
	JobID           string                                 `gorm:"type:varchar(64);not null;index"`
	ScreeningScore  float64                                `gorm:"not null"`
	TechnicalScore  float64                                `gorm:"not null"`
	BehavioralScore float64                                `gorm:"not null"`
	FinalScore      float64                                `gorm:"not null"`
	Screening       datatypes.JSONType[model.LayerResult]  `gorm:"type:jsonb"`
	Technical       datatypes.JSONType[model.LayerResult]  `gorm:"type:jsonb"`
	Behavioral      datatypes.JSONType[model.LayerResult]  `gorm:"type:jsonb"`
	Weights         datatypes.JSONType[model.WeightVector] `gorm:"type:jsonb"`
	CreatedAt       time.Time                              `gorm:"not null;index"`
}

func (evaluationRow) TableName() string { return "evaluations" }

type feedbackRow struct {
	ID                  string    `gorm:"primaryKey;type:varchar(64)"`
	CandidateID         string    `gorm:"type:varchar(64);not null;index"`
	JobID               string    `gorm:"type:varchar(64);index"`
	InterviewID         string    `gorm:"type:varchar(64)"`
	TechnicalRating     int       `gorm:"not null"`
	CommunicationRating int       `gorm:"not null"`
	CultureFitRating    int       `gorm:"not null"`
	OverallRating       int       `gorm:"not null"`
	Decision            string    `gorm:"type:varchar(16);not null"`
	UsedForTraining     bool      `gorm:"not null;default:false;index"`
	SubmittedAt         time.Time `gorm:"not null;index"`
}

func (feedbackRow) TableName() string { return "feedback" }

type weightRow struct {
	ID         string                                 `gorm:"primaryKey;type:varchar(64)"`
	Version    int                                    `gorm:"not null;uniqueIndex"`
	Screening  float64                                `gorm:"not null"`
	Technical  float64                                `gorm:"not null"`
	Behavioral float64                                `gorm:"not null"`
	SubWeights datatypes.JSONType[map[string]float64] `gorm:"type:jsonb"`
	CreatedAt  time.Time                              `gorm:"not null"`
}

func (weightRow) TableName() string { return "weight_vectors" }

type trainingLogRow struct {
	ID              string                                 `gorm:"primaryKey;type:varchar(64)"`
	Trigger         string                                 `gorm:"type:varchar(64)"`
	Status          string                                 `gorm:"type:varchar(16);not null;index"`
	FeedbackCount   int                                    `gorm:"not null"`
	EvaluationCount int                                    `gorm:"not null"`
	AccuracyBefore  float64                                `gorm:"not null"`
	AccuracyAfter   float64                                `gorm:"not null"`
	PreviousWeights datatypes.JSONType[model.WeightVector] `gorm:"type:jsonb"`
	Weights         datatypes.JSONType[model.WeightVector] `gorm:"type:jsonb"`
	Delta           datatypes.JSONType[model.WeightDelta]  `gorm:"type:jsonb"`
	Error           string                                 `gorm:"type:text"`
	StartedAt       time.Time                              `gorm:"not null;index"`
	DurationMS      int64                                  `gorm:"not null"`
}

func (trainingLogRow) TableName() string { return "training_logs" }

type rankingRow struct {
	CandidateID     string                                      `gorm:"primaryKey;type:varchar(64)"`
	JobID           string                                      `gorm:"primaryKey;type:varchar(64);index"`
	EvaluationID    string                                      `gorm:"type:varchar(64)"`
	CompositeScore  float64                                     `gorm:"not null"`
	RankPosition    int                                         `gorm:"not null"`
	Percentile      float64                                     `gorm:"not null"`
	Components      datatypes.JSONType[model.RankingComponents] `gorm:"type:jsonb"`
	TotalCandidates int                                         `gorm:"not null"`
	LastUpdated     time.Time                                   `gorm:"not null"`
}

func (rankingRow) TableName() string { return "rankings" }

type dailyMetricRow struct {
	Date              string                             `gorm:"primaryKey;type:char(10)"`
	Applications      int                                `gorm:"not null"`
	Interviews        int                                `gorm:"not null"`
	Hires             int                                `gorm:"not null"`
	AvgScreeningMS    float64                            `gorm:"column:avg_screening_ms"`
	AvgTechnicalMS    float64                            `gorm:"column:avg_technical_ms"`
	AvgBehavioralMS   float64                            `gorm:"column:avg_behavioral_ms"`
	ModelAccuracy     float64                            `gorm:"not null"`
	CurrentAccuracy   float64                            `gorm:"not null"`
	FalsePositiveRate float64                            `gorm:"not null"`
	FalseNegativeRate float64                            `gorm:"not null"`
	ProviderCalls     datatypes.JSONType[map[string]int] `gorm:"type:jsonb"`
	EstimatedCost     float64                            `gorm:"not null"`
	FeedbackCount     int                                `gorm:"not null"`
	FeedbackRate      float64                            `gorm:"not null"`
	AvgRating         float64                            `gorm:"not null"`
	UpdatedAt         time.Time                          `gorm:"not null"`
}

func (dailyMetricRow) TableName() string { return "daily_metrics" }

func allModels() []any {
	return []any{
		&candidateRow{}, &jobRow{}, &evaluationRow{}, &feedbackRow{},
		&weightRow{}, &trainingLogRow{}, &rankingRow{}, &dailyMetricRow{},
	}
}

func toCandidateRow(c model.Candidate) candidateRow {
	return candidateRow{
		ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone, Location: c.Location,
		Summary: c.Summary, Experience: c.Experience, Education: c.Education,
		Skills: datatypes.NewJSONType(c.Skills), CreatedAt: c.CreatedAt,
	}
}

func (r candidateRow) toModel() model.Candidate {
	return model.Candidate{
		ID: r.ID, Name: r.Name, Email: r.Email, Phone: r.Phone, Location: r.Location,
		Summary: r.Summary, Experience: r.Experience, Education: r.Education,
		Skills: r.Skills.Data(), CreatedAt: r.CreatedAt,
	}
}

func toJobRow(j model.JobPosting) jobRow {
	return jobRow{ID: j.ID, Title: j.Title, RequiredSkills: datatypes.NewJSONType(j.RequiredSkills), CreatedAt: j.CreatedAt}
}

func (r jobRow) toModel() model.JobPosting {
	return model.JobPosting{ID: r.ID, Title: r.Title, RequiredSkills: r.RequiredSkills.Data(), CreatedAt: r.CreatedAt}
}

func toEvaluationRow(e model.Evaluation) evaluationRow {
	return evaluationRow{
		ID:              e.ID,
		CandidateID:     e.CandidateID,
		JobID:           e.JobID,
		ScreeningScore:  e.ScreeningScore,
		TechnicalScore:  e.TechnicalScore,
		BehavioralScore: e.BehavioralScore,
		FinalScore:      e.FinalScore,
		Screening:       datatypes.NewJSONType(e.Screening),
		Technical:       datatypes.NewJSONType(e.Technical),
		Behavioral:      datatypes.NewJSONType(e.Behavioral),
		Weights:         datatypes.NewJSONType(e.Weights),
		CreatedAt:       e.CreatedAt,
	}
}

func (r evaluationRow) toModel() model.Evaluation {
	return model.Evaluation{
		ID:              r.ID,
		CandidateID:     r.CandidateID,
		JobID:           r.JobID,
		ScreeningScore:  r.ScreeningScore,
		TechnicalScore:  r.TechnicalScore,
		BehavioralScore: r.BehavioralScore,
		FinalScore:      r.FinalScore,
		Screening:       r.Screening.Data(),
		Technical:       r.Technical.Data(),
		Behavioral:      r.Behavioral.Data(),
		Weights:         r.Weights.Data(),
		CreatedAt:       r.CreatedAt,
	}
}

func toFeedbackRow(f model.Feedback) feedbackRow {
	return feedbackRow{
		ID:                  f.ID,
		CandidateID:         f.CandidateID,
		JobID:               f.JobID,
		InterviewID:         f.InterviewID,
		TechnicalRating:     f.TechnicalRating,
		CommunicationRating: f.CommunicationRating,
		CultureFitRating:    f.CultureFitRating,
		OverallRating:       f.OverallRating,
		Decision:            string(f.Decision),
		UsedForTraining:     f.UsedForTraining,
		SubmittedAt:         f.SubmittedAt,
	}
}

func (r feedbackRow) toModel() model.Feedback {
	return model.Feedback{
		ID:                  r.ID,
		CandidateID:         r.CandidateID,
		JobID:               r.JobID,
		InterviewID:         r.InterviewID,
		TechnicalRating:     r.TechnicalRating,
		CommunicationRating: r.CommunicationRating,
		CultureFitRating:    r.CultureFitRating,
		OverallRating:       r.OverallRating,
		Decision:            model.Decision(r.Decision),
		UsedForTraining:     r.UsedForTraining,
		SubmittedAt:         r.SubmittedAt,
	}
}

func toWeightRow(w model.WeightVector) weightRow {
	return weightRow{
		ID: w.ID, Version: w.Version,
		Screening: w.Screening, Technical: w.Technical, Behavioral: w.Behavioral,
		SubWeights: datatypes.NewJSONType(w.SubWeights), CreatedAt: w.CreatedAt,
	}
}

func (r weightRow) toModel() model.WeightVector {
	return model.WeightVector{
		ID: r.ID, Version: r.Version,
		Screening: r.Screening, Technical: r.Technical, Behavioral: r.Behavioral,
		SubWeights: r.SubWeights.Data(), CreatedAt: r.CreatedAt,
	}
}

func toTrainingLogRow(l model.TrainingLog) trainingLogRow {
	return trainingLogRow{
		ID:              l.ID,
		Trigger:         l.Trigger,
		Status:          string(l.Status),
		FeedbackCount:   l.FeedbackCount,
		EvaluationCount: l.EvaluationCount,
		AccuracyBefore:  l.AccuracyBefore,
		AccuracyAfter:   l.AccuracyAfter,
		PreviousWeights: datatypes.NewJSONType(l.PreviousWeights),
		Weights:         datatypes.NewJSONType(l.Weights),
		Delta:           datatypes.NewJSONType(l.Delta),
		Error:           l.Error,
		StartedAt:       l.StartedAt,
		DurationMS:      l.Duration.Milliseconds(),
	}
}

func (r trainingLogRow) toModel() model.TrainingLog {
	return model.TrainingLog{
		ID:              r.ID,
		Trigger:         r.Trigger,
		Status:          model.TrainingStatus(r.Status),
		FeedbackCount:   r.FeedbackCount,
		EvaluationCount: r.EvaluationCount,
		AccuracyBefore:  r.AccuracyBefore,
		AccuracyAfter:   r.AccuracyAfter,
		PreviousWeights: r.PreviousWeights.Data(),
		Weights:         r.Weights.Data(),
		Delta:           r.Delta.Data(),
		Error:           r.Error,
		StartedAt:       r.StartedAt,
		Duration:        time.Duration(r.DurationMS) * time.Millisecond,
	}
}

func toRankingRow(r model.Ranking) rankingRow {
	return rankingRow{
		CandidateID:     r.CandidateID,
		JobID:           r.JobID,
		EvaluationID:    r.EvaluationID,
		CompositeScore:  r.CompositeScore,
		RankPosition:    r.RankPosition,
		Percentile:      r.Percentile,
		Components:      datatypes.NewJSONType(r.Components),
		TotalCandidates: r.TotalCandidates,
		LastUpdated:     r.LastUpdated,
	}
}

func (r rankingRow) toModel() model.Ranking {
	return model.Ranking{
		CandidateID:     r.CandidateID,
		JobID:           r.JobID,
		EvaluationID:    r.EvaluationID,
		CompositeScore:  r.CompositeScore,
		RankPosition:    r.RankPosition,
		Percentile:      r.Percentile,
		Components:      r.Components.Data(),
		TotalCandidates: r.TotalCandidates,
		LastUpdated:     r.LastUpdated,
	}
}

func toDailyMetricRow(m model.DailyMetric) dailyMetricRow {
	return dailyMetricRow{
		Date:              m.Date,
		Applications:      m.Applications,
		Interviews:        m.Interviews,
		Hires:             m.Hires,
		AvgScreeningMS:    m.AvgScreeningMS,
		AvgTechnicalMS:    m.AvgTechnicalMS,
		AvgBehavioralMS:   m.AvgBehavioralMS,
		ModelAccuracy:     m.ModelAccuracy,
		CurrentAccuracy:   m.CurrentAccuracy,
		FalsePositiveRate: m.FalsePositiveRate,
		FalseNegativeRate: m.FalseNegativeRate,
		ProviderCalls:     datatypes.NewJSONType(m.ProviderCalls),
		EstimatedCost:     m.EstimatedCost,
		FeedbackCount:     m.FeedbackCount,
		FeedbackRate:      m.FeedbackRate,
		AvgRating:         m.AvgRating,
		UpdatedAt:         m.UpdatedAt,
	}
}

func (r dailyMetricRow) toModel() model.DailyMetric {
	return model.DailyMetric{
		Date:              r.Date,
		Applications:      r.Applications,
		Interviews:        r.Interviews,
		Hires:             r.Hires,
		AvgScreeningMS:    r.AvgScreeningMS,
		AvgTechnicalMS:    r.AvgTechnicalMS,
		AvgBehavioralMS:   r.AvgBehavioralMS,
		ModelAccuracy:     r.ModelAccuracy,
		CurrentAccuracy:   r.CurrentAccuracy,
		FalsePositiveRate: r.FalsePositiveRate,
		FalseNegativeRate: r.FalseNegativeRate,
		ProviderCalls:     r.ProviderCalls.Data(),
		EstimatedCost:     r.EstimatedCost,
		FeedbackCount:     r.FeedbackCount,
		FeedbackRate:      r.FeedbackRate,
		AvgRating:         r.AvgRating,
		UpdatedAt:         r.UpdatedAt,
	}
}
