package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/okian/hireloop/internal/adapters/mq/queue"
	"github.com/okian/hireloop/internal/domain/model"
	"github.com/okian/hireloop/pkg/metrics"
)

type candidateRequest struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Location   string   `json:"location"`
	Summary    string   `json:"summary"`
	Experience string   `json:"experience"`
	Education  string   `json:"education"`
	Skills     []string `json:"skills"`
}

type jobRequest struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	RequiredSkills []string `json:"required_skills"`
}

type evaluationRequest struct {
	RequestID   string `json:"request_id"`
	CandidateID string `json:"candidate_id"`
	JobID       string `json:"job_id"`
	Transcript  string `json:"transcript"`
}

type ackResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

func orNewID(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return uuid.NewString()
}

// handleCreateCandidate serves POST /candidates.
func (s *Server) handleCreateCandidate(c *gin.Context) {
	const op = "api.create_candidate"
	var req candidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.writeError(c, WrapKind(op, ErrBadRequest, errMissing("name")))
		return
	}
	stored, err := s.deps.RegisterCandidate(c.Request.Context(), model.Candidate{
		ID:         orNewID(req.ID),
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.TrimSpace(req.Email),
		Phone:      req.Phone,
		Location:   req.Location,
		Summary:    req.Summary,
		Experience: req.Experience,
		Education:  req.Education,
		Skills:     req.Skills,
		CreatedAt:  s.now(),
	})
	if err != nil {
		s.writeError(c, Wrap(op, err))
		return
	}
	writeData(c, http.StatusCreated, stored)
}

// handleCreateJob serves POST /jobs.
func (s *Server) handleCreateJob(c *gin.Context) {
	const op = "api.create_job"
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		s.writeError(c, WrapKind(op, ErrBadRequest, errMissing("title")))
		return
	}
	stored, err := s.deps.RegisterJob(c.Request.Context(), model.JobPosting{
		ID:             orNewID(req.ID),
		Title:          strings.TrimSpace(req.Title),
		RequiredSkills: req.RequiredSkills,
		CreatedAt:      s.now(),
	})
	if err != nil {
		s.writeError(c, Wrap(op, err))
		return
	}
	writeData(c, http.StatusCreated, stored)
}

// handleSubmitEvaluation serves POST /evaluations. The request is queued and
// processed asynchronously; a repeated request_id is acknowledged once.
func (s *Server) handleSubmitEvaluation(c *gin.Context) {
	const op = "api.submit_evaluation"
	var req evaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, WrapKind(op, ErrBadRequest, err))
		return
	}
	switch {
	case strings.TrimSpace(req.CandidateID) == "":
		s.writeError(c, WrapKind(op, ErrBadRequest, errMissing("candidate_id")))
		return
	case strings.TrimSpace(req.JobID) == "":
		s.writeError(c, WrapKind(op, ErrBadRequest, errMissing("job_id")))
		return
	}

	ctx := c.Request.Context()
	id := orNewID(req.RequestID)
	if s.deps.SeenAndRecord(ctx, id) {
		metrics.RecordDuplicateRequest()
		writeData(c, http.StatusOK, ackResponse{RequestID: id, Status: "duplicate", Duplicate: true})
		return
	}

	err := s.deps.Enqueue(ctx, model.EvaluationRequest{
		RequestID:   id,
		CandidateID: strings.TrimSpace(req.CandidateID),
		JobID:       strings.TrimSpace(req.JobID),
		Transcript:  req.Transcript,
		ReceivedAt:  s.now(),
	})
	if err != nil {
		s.deps.Unrecord(ctx, id)
		if errors.Is(err, queue.ErrFull) {
			err = WrapKind(op, ErrBackpressure, err)
		} else {
			err = Wrap(op, err)
		}
		s.writeError(c, err)
		return
	}
	writeData(c, http.StatusAccepted, ackResponse{RequestID: id, Status: "accepted"})
}

// handleSubmitFeedback serves POST /feedback.
func (s *Server) handleSubmitFeedback(c *gin.Context) {
	const op = "api.submit_feedback"
	var fb model.Feedback
	if err := c.ShouldBindJSON(&fb); err != nil {
		s.writeError(c, WrapKind(op, ErrBadRequest, err))
		return
	}
	fb.ID = orNewID(fb.ID)
	fb.UsedForTraining = false
	if fb.SubmittedAt.IsZero() {
		fb.SubmittedAt = s.now()
	}
	if err := fb.Validate(); err != nil {
		s.writeError(c, WrapKind(op, ErrBadRequest, err))
		return
	}
	stored, err := s.deps.SubmitFeedback(c.Request.Context(), fb)
	if err != nil {
		s.writeError(c, Wrap(op, err))
		return
	}
	writeData(c, http.StatusCreated, stored)
}
