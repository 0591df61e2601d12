package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/formpulse/formpulse-backend/internal/model"
	"github.com/formpulse/formpulse-backend/internal/response"
	"github.com/formpulse/formpulse-backend/internal/service"
	"github.com/formpulse/formpulse-backend/internal/validator"
)

// RespondentHandler handles respondent-facing endpoints (taking a survey,
// submitting answers, evaluating branching logic).
type RespondentHandler struct {
	surveyService     *service.SurveyService
	submissionService *service.SubmissionService
}

// NewRespondentHandler creates a new RespondentHandler.
func NewRespondentHandler(
	surveyService *service.SurveyService,
	submissionService *service.SubmissionService,
) *RespondentHandler {
	return &RespondentHandler{
		surveyService:     surveyService,
		submissionService: submissionService,
	}
}

// GetSurvey godoc
// GET /api/v1/surveys/:survey_id
// Returns the respondent-facing payload from Redis (bypasses PostgreSQL).
func (h *RespondentHandler) GetSurvey(c *gin.Context) {
	surveyID, err := uuid.Parse(c.Param("survey_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	payload, err := h.surveyService.GetRespondentPayload(c.Request.Context(), surveyID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrSurveyNotPublished)
		return
	}

	response.Success(c, http.StatusOK, payload)
}

// SubmitResponse godoc
// POST /api/v1/surveys/:survey_id/responses
// Persists a completed answer set and returns the scored result. Scoring
// and band fields are omitted entirely when scoring is disabled.
func (h *RespondentHandler) SubmitResponse(c *gin.Context) {
	surveyID, err := uuid.Parse(c.Param("survey_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitResponseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.submissionService.Submit(c.Request.Context(), surveyID, req.Answers)
	if err != nil {
		if errors.Is(err, service.ErrSurveyNotPublished) {
			response.Fail(c, http.StatusNotFound, response.ErrSurveyNotPublished)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// evaluateLogicRequest is the payload for one branching evaluation.
type evaluateLogicRequest struct {
	ResponseID string          `json:"response_id" binding:"omitempty,uuid"`
	QuestionID string          `json:"question_id" binding:"required"`
	Answers    model.AnswerMap `json:"answers" binding:"required"`
}

// EvaluateLogic godoc
// POST /api/v1/surveys/:survey_id/logic/evaluate
// Evaluates one question's logic rules against the answers collected so
// far and returns the branching decision, or action "continue" when no
// rule matched.
func (h *RespondentHandler) EvaluateLogic(c *gin.Context) {
	surveyID, err := uuid.Parse(c.Param("survey_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req evaluateLogicRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	decision, err := h.submissionService.EvaluateLogic(c.Request.Context(), surveyID, req.ResponseID, req.QuestionID, req.Answers)
	if err != nil {
		if errors.Is(err, service.ErrSurveyNotPublished) {
			response.Fail(c, http.StatusNotFound, response.ErrSurveyNotPublished)
			return
		}
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	if decision == nil {
		response.Success(c, http.StatusOK, gin.H{"action": "continue"})
		return
	}
	response.Success(c, http.StatusOK, decision)
}
