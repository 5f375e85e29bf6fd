// Package gormstore implements repository.Store on PostgreSQL through GORM.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/okian/hireloop/internal/adapters/repository"
	"github.com/okian/hireloop/internal/domain/model"
)

// Store is a PostgreSQL-backed repository.Store.
type Store struct {
	db *gorm.DB
}

var _ repository.Store = (*Store)(nil)

// Open connects to dsn and migrates the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection without migrating.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates every table.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, repository.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// insertFailed reports a failed insert. Unique violations surface as
// repository.ErrDuplicateID.
func insertFailed(err error, what string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", what, repository.ErrDuplicateID)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// UpsertCandidate inserts or updates a candidate, keeping its created_at.
func (s *Store) UpsertCandidate(ctx context.Context, c model.Candidate) error {
	if c.ID == "" {
		return repository.ErrMissingID
	}
	row := toCandidateRow(c)
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "phone", "location", "summary", "experience", "education", "skills"}),
	}).Create(&row).Error
}

// GetCandidate loads one candidate.
func (s *Store) GetCandidate(ctx context.Context, id string) (model.Candidate, error) {
	var row candidateRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return model.Candidate{}, notFound(err, "candidate "+id)
	}
	return row.toModel(), nil
}

// ListCandidates returns candidates newest first.
func (s *Store) ListCandidates(ctx context.Context, f model.CandidateFilter) ([]model.Candidate, error) {
	q := timeRange(s.db.WithContext(ctx), "created_at", f.Created).Order("created_at DESC, id ASC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var rows []candidateRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	out := make([]model.Candidate, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// UpsertJob inserts or updates a job posting.
func (s *Store) UpsertJob(ctx context.Context, j model.JobPosting) error {
	if j.ID == "" {
		return repository.ErrMissingID
	}
	row := toJobRow(j)
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "required_skills"}),
	}).Create(&row).Error
}

// GetJob loads one job posting.
func (s *Store) GetJob(ctx context.Context, id string) (model.JobPosting, error) {
	var row jobRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return model.JobPosting{}, notFound(err, "job "+id)
	}
	return row.toModel(), nil
}

// InsertEvaluation appends an evaluation.
func (s *Store) InsertEvaluation(ctx context.Context, e model.Evaluation) error {
	if e.ID == "" {
		return repository.ErrMissingID
	}
	row := toEvaluationRow(e)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return insertFailed(err, "insert evaluation "+e.ID)
	}
	return nil
}

// ListEvaluations returns evaluations newest first.
func (s *Store) ListEvaluations(ctx context.Context, f model.EvaluationFilter) ([]model.Evaluation, error) {
	var rows []evaluationRow
	if err := evaluationQuery(s.db.WithContext(ctx), f).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	out := make([]model.Evaluation, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

func evaluationQuery(q *gorm.DB, f model.EvaluationFilter) *gorm.DB {
	q = q.Model(&evaluationRow{})
	if f.JobID != "" {
		q = q.Where("job_id = ?", f.JobID)
	}
	if f.CandidateID != "" {
		q = q.Where("candidate_id = ?", f.CandidateID)
	}
	q = timeRange(q, "created_at", f.Created).Order("created_at DESC, final_score DESC, candidate_id ASC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	return q
}

// InsertFeedback appends a feedback row.
func (s *Store) InsertFeedback(ctx context.Context, fb model.Feedback) error {
	if fb.ID == "" {
		return repository.ErrMissingID
	}
	row := toFeedbackRow(fb)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return insertFailed(err, "insert feedback "+fb.ID)
	}
	return nil
}

// ListFeedback returns feedback newest first.
func (s *Store) ListFeedback(ctx context.Context, f model.FeedbackFilter) ([]model.Feedback, error) {
	q := s.db.WithContext(ctx).Model(&feedbackRow{})
	if f.JobID != "" {
		q = q.Where("job_id = ?", f.JobID)
	}
	if f.CandidateID != "" {
		q = q.Where("candidate_id = ?", f.CandidateID)
	}
	if f.OnlyUnused {
		q = q.Where("used_for_training = ?", false)
	}
	q = timeRange(q, "submitted_at", f.Submitted).Order("submitted_at DESC, id ASC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var rows []feedbackRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	out := make([]model.Feedback, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// CurrentWeights returns the highest committed version.
func (s *Store) CurrentWeights(ctx context.Context) (model.WeightVector, error) {
	var row weightRow
	if err := s.db.WithContext(ctx).Order("version DESC").First(&row).Error; err != nil {
		return model.WeightVector{}, notFound(err, "weights")
	}
	return row.toModel(), nil
}

// CommitTraining flips used_for_training with a conditional update and
// writes the log and the new vector in one transaction.
func (s *Store) CommitTraining(ctx context.Context, log model.TrainingLog, w model.WeightVector, feedbackIDs []string) (model.WeightVector, error) {
	if err := w.Validate(); err != nil {
		return model.WeightVector{}, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(feedbackIDs) > 0 {
			res := tx.Model(&feedbackRow{}).
				Where("id IN ? AND used_for_training = ?", feedbackIDs, false).
				Update("used_for_training", true)
			if res.Error != nil {
				return fmt.Errorf("consume feedback: %w", res.Error)
			}
			if res.RowsAffected != int64(len(feedbackIDs)) {
				return fmt.Errorf("consumed %d of %d rows: %w", res.RowsAffected, len(feedbackIDs), repository.ErrFeedbackConsumed)
			}
		}

		var latest int
		if err := tx.Model(&weightRow{}).Select("COALESCE(MAX(version), 0)").Scan(&latest).Error; err != nil {
			return fmt.Errorf("read weight version: %w", err)
		}
		w.Version = latest + 1
		if w.CreatedAt.IsZero() {
			w.CreatedAt = log.StartedAt.Add(log.Duration)
		}
		wr := toWeightRow(w)
		if err := tx.Create(&wr).Error; err != nil {
			return fmt.Errorf("insert weights: %w", err)
		}

		log.Weights = w
		lr := toTrainingLogRow(log)
		if err := tx.Create(&lr).Error; err != nil {
			return insertFailed(err, "insert training log")
		}
		return nil
	})
	if err != nil {
		return model.WeightVector{}, err
	}
	return w, nil
}

// InsertTrainingLog appends a log row.
func (s *Store) InsertTrainingLog(ctx context.Context, log model.TrainingLog) error {
	if log.ID == "" {
		return repository.ErrMissingID
	}
	row := toTrainingLogRow(log)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return insertFailed(err, "insert training log")
	}
	return nil
}

// ListTrainingLogs returns logs newest first.
func (s *Store) ListTrainingLogs(ctx context.Context, f model.TrainingLogFilter) ([]model.TrainingLog, error) {
	q := s.db.WithContext(ctx).Model(&trainingLogRow{})
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	q = q.Order("started_at DESC, id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var rows []trainingLogRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list training logs: %w", err)
	}
	out := make([]model.TrainingLog, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// UpsertRankings writes rows keyed by (candidate_id, job_id).
func (s *Store) UpsertRankings(ctx context.Context, rows []model.Ranking) error {
	if len(rows) == 0 {
		return nil
	}
	out := make([]rankingRow, len(rows))
	for i, r := range rows {
		if r.CandidateID == "" || r.JobID == "" {
			return repository.ErrMissingID
		}
		out[i] = toRankingRow(r)
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "candidate_id"}, {Name: "job_id"}},
		UpdateAll: true,
	}).Create(&out).Error
	if err != nil {
		return fmt.Errorf("upsert rankings: %w", err)
	}
	return nil
}

// ListRankings returns a job's rows in leaderboard order.
func (s *Store) ListRankings(ctx context.Context, jobID string, limit int) ([]model.Ranking, error) {
	if limit < 0 {
		return nil, repository.ErrInvalidLimit
	}
	q := s.db.WithContext(ctx).Where("job_id = ?", jobID).
		Order("composite_score DESC, rank_position ASC, candidate_id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []rankingRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list rankings: %w", err)
	}
	out := make([]model.Ranking, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// UpsertDailyMetric writes the row keyed by date.
func (s *Store) UpsertDailyMetric(ctx context.Context, m model.DailyMetric) error {
	if m.Date == "" {
		return repository.ErrMissingID
	}
	row := toDailyMetricRow(m)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert daily metric %s: %w", m.Date, err)
	}
	return nil
}

// GetDailyMetric loads one day.
func (s *Store) GetDailyMetric(ctx context.Context, date string) (model.DailyMetric, error) {
	var row dailyMetricRow
	if err := s.db.WithContext(ctx).First(&row, "date = ?", date).Error; err != nil {
		return model.DailyMetric{}, notFound(err, "daily metric "+date)
	}
	return row.toModel(), nil
}

// ListDailyMetrics returns days in [from, to] ascending.
func (s *Store) ListDailyMetrics(ctx context.Context, from, to string) ([]model.DailyMetric, error) {
	q := s.db.WithContext(ctx).Model(&dailyMetricRow{})
	if from != "" {
		q = q.Where("date >= ?", from)
	}
	if to != "" {
		q = q.Where("date <= ?", to)
	}
	var rows []dailyMetricRow
	if err := q.Order("date ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list daily metrics: %w", err)
	}
	out := make([]model.DailyMetric, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// Stats reports table row counts.
func (s *Store) Stats() map[string]int {
	out := make(map[string]int)
	for name, m := range map[string]any{
		"candidates":    &candidateRow{},
		"jobs":          &jobRow{},
		"evaluations":   &evaluationRow{},
		"feedback":      &feedbackRow{},
		"training_logs": &trainingLogRow{},
		"rankings":      &rankingRow{},
	} {
		var n int64
		if err := s.db.Model(m).Count(&n).Error; err == nil {
			out[name] = int(n)
		}
	}
	return out
}

func timeRange(q *gorm.DB, column string, r model.TimeRange) *gorm.DB {
	if !r.From.IsZero() {
		q = q.Where(column+" >= ?", r.From)
	}
	if !r.To.IsZero() {
		q = q.Where(column+" < ?", r.To)
	}
	return q
}
