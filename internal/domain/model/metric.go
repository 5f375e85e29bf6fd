package model

import "time"

// DateLayout is the key format for DailyMetric.
const DateLayout = "2006-01-02"

// DailyMetric aggregates one calendar day of activity. Upserted by Date.
type DailyMetric struct {
	Date              string         `json:"date"`
	Applications      int            `json:"applications"`
	Interviews        int            `json:"interviews"`
	Hires             int            `json:"hires"`
	AvgScreeningMS    float64        `json:"avg_screening_ms"`
	AvgTechnicalMS    float64        `json:"avg_technical_ms"`
	AvgBehavioralMS   float64        `json:"avg_behavioral_ms"`
	ModelAccuracy     float64        `json:"model_accuracy"`
	CurrentAccuracy   float64        `json:"current_accuracy"`
	FalsePositiveRate float64        `json:"false_positive_rate"`
	FalseNegativeRate float64        `json:"false_negative_rate"`
	ProviderCalls     map[string]int `json:"provider_calls"`
	EstimatedCost     float64        `json:"estimated_cost"`
	FeedbackCount     int            `json:"feedback_count"`
	FeedbackRate      float64        `json:"feedback_rate"`
	AvgRating         float64        `json:"avg_rating"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// DayBounds returns [start, end) of the UTC calendar day containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
