package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/formpulse/formpulse-backend/internal/middleware"
	"github.com/formpulse/formpulse-backend/internal/response"
	"github.com/formpulse/formpulse-backend/internal/service"
)

// ResponseAdminHandler exposes collected responses to survey authors.
type ResponseAdminHandler struct {
	submissionService *service.SubmissionService
}

// NewResponseAdminHandler creates a new ResponseAdminHandler.
func NewResponseAdminHandler(submissionService *service.SubmissionService) *ResponseAdminHandler {
	return &ResponseAdminHandler{submissionService: submissionService}
}

// ListResponses godoc
// GET /api/v1/admin/surveys/:id/responses
func (h *ResponseAdminHandler) ListResponses(c *gin.Context) {
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

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	responses, total, err := h.submissionService.ListResponses(c.Request.Context(), surveyID, claims.UserID, page, perPage)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotSurveyAuthor):
			response.Fail(c, http.StatusForbidden, response.ErrNotSurveyAuthor)
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	totalPages := (total + perPage - 1) / perPage
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"responses": responses}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	})
}

// GetResponse godoc
// GET /api/v1/admin/responses/:id
func (h *ResponseAdminHandler) GetResponse(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	responseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	resp, err := h.submissionService.GetResponse(c.Request.Context(), responseID, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotSurveyAuthor):
			response.Fail(c, http.StatusForbidden, response.ErrNotSurveyAuthor)
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"response": resp})
}
