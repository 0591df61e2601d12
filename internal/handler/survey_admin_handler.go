package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/formpulse/formpulse-backend/internal/middleware"
	"github.com/formpulse/formpulse-backend/internal/model"
	"github.com/formpulse/formpulse-backend/internal/response"
	"github.com/formpulse/formpulse-backend/internal/scoring"
	"github.com/formpulse/formpulse-backend/internal/service"
	"github.com/formpulse/formpulse-backend/internal/validator"
)

// SurveyAdminHandler handles survey authoring endpoints.
type SurveyAdminHandler struct {
	surveyService *service.SurveyService
}

// NewSurveyAdminHandler creates a new SurveyAdminHandler.
func NewSurveyAdminHandler(surveyService *service.SurveyService) *SurveyAdminHandler {
	return &SurveyAdminHandler{surveyService: surveyService}
}

// ListSurveys godoc
// GET /api/v1/admin/surveys
func (h *SurveyAdminHandler) ListSurveys(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	surveys, pagination, err := h.surveyService.ListByAuthor(c.Request.Context(), claims.UserID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if surveys == nil {
		surveys = []model.Survey{}
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"surveys": surveys}, pagination)
}

// CreateSurvey godoc
// POST /api/v1/admin/surveys
func (h *SurveyAdminHandler) CreateSurvey(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateSurveyRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	survey := &model.Survey{
		Title:     req.Title,
		AuthorID:  claims.UserID,
		Questions: req.Questions,
	}
	if err := h.surveyService.Create(c.Request.Context(), survey); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"survey": survey})
}

// GetSurvey godoc
// GET /api/v1/admin/surveys/:id
func (h *SurveyAdminHandler) GetSurvey(c *gin.Context) {
	surveyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	survey, err := h.surveyService.GetByID(c.Request.Context(), surveyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"survey": survey})
}

// UpdateSurvey godoc
// PUT /api/v1/admin/surveys/:id
func (h *SurveyAdminHandler) UpdateSurvey(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	surveyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateSurveyRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	survey, err := h.surveyService.Update(c.Request.Context(), surveyID, claims.UserID, &req)
	if err != nil {
		h.failSurveyError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"survey": survey})
}

// DeleteSurvey godoc
// DELETE /api/v1/admin/surveys/:id
func (h *SurveyAdminHandler) DeleteSurvey(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	surveyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.surveyService.Delete(c.Request.Context(), surveyID, claims.UserID); err != nil {
		h.failSurveyError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// PublishSurvey godoc
// POST /api/v1/admin/surveys/:id/publish
func (h *SurveyAdminHandler) PublishSurvey(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	surveyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.surveyService.Publish(c.Request.Context(), surveyID, claims.UserID); err != nil {
		h.failSurveyError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"published": true})
}

// UpdateScoringConfig godoc
// PUT /api/v1/admin/surveys/:id/scoring
// Replaces the survey's scoring configuration. The body is decoded
// strictly: fields outside the allowed schema (e.g. a scoringEngineId
// override injected into generated configs) are rejected with 400.
func (h *SurveyAdminHandler) UpdateScoringConfig(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	surveyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()

	var cfg model.SurveyScoreConfig
	if err := dec.Decode(&cfg); err != nil {
		if strings.Contains(err.Error(), "unknown field") {
			response.Fail(c, http.StatusBadRequest, response.ErrScoreConfigRejected)
			return
		}
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	if err := h.surveyService.UpdateScoringConfig(c.Request.Context(), surveyID, claims.UserID, &cfg); err != nil {
		h.failSurveyError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"scoring": cfg})
}

// ValidateScoringConfig godoc
// POST /api/v1/admin/surveys/:id/scoring/validate
// Dry-run validation so the authoring UI can show every problem at once
// without persisting anything.
func (h *SurveyAdminHandler) ValidateScoringConfig(c *gin.Context) {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()

	var cfg model.SurveyScoreConfig
	if err := dec.Decode(&cfg); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrScoreConfigRejected)
		return
	}

	response.Success(c, http.StatusOK, scoring.ValidateScoreConfig(&cfg))
}

// failSurveyError maps service errors onto API error codes.
func (h *SurveyAdminHandler) failSurveyError(c *gin.Context, err error) {
	var cfgErr *service.ScoreConfigError
	switch {
	case errors.As(err, &cfgErr):
		response.FailWithDetails(c, http.StatusBadRequest, response.ErrScoreConfigInvalid, cfgErr.Errors)
	case errors.Is(err, service.ErrNotSurveyAuthor):
		response.Fail(c, http.StatusForbidden, response.ErrNotSurveyAuthor)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusBadRequest, response.ErrNoQuestions)
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		if strings.Contains(err.Error(), "expected DRAFT") {
			response.Fail(c, http.StatusBadRequest, response.ErrSurveyNotDraft)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
